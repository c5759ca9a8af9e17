package app

import (
	"reflect"

	"github.com/iov-one/timevault"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler
type Decorators struct {
	chain []timevault.Decorator
}

/*
ChainDecorators takes a chain of decorators,
and upon adding a final Handler (often a Router),
returns a Handler that will execute this whole stack.

  app.ChainDecorators(
    utils.NewLogging(),
    utils.NewRecovery(),
    sigs.NewDecorator(),
    utils.NewSavepoint().OnDeliver(),
  ).WithHandler(
    myapp.NewRouter(),
  )
*/
func ChainDecorators(chain ...timevault.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain.
// Nil decorators are skipped, so optional ones can be passed inline.
func (d Decorators) Chain(chain ...timevault.Decorator) Decorators {
	next := make([]timevault.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, dec := range chain {
		if isNilDecorator(dec) {
			continue
		}
		next = append(next, dec)
	}
	return Decorators{chain: next}
}

func isNilDecorator(d timevault.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler resolves the stack and returns a concrete Handler
// that will pass through the chain of decorators before calling
// the final Handler.
func (d Decorators) WithHandler(h timevault.Handler) timevault.Handler {
	// wrap from the last decorator to the first one, as the top of the
	// chain is executed first
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a
// specific Handler. Simplified version of a closure.
type step struct {
	d    timevault.Decorator
	next timevault.Handler
}

var _ timevault.Handler = step{}

// Check passes the handler into the decorator, implements Handler
func (s step) Check(ctx timevault.Context, store timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	return s.d.Check(ctx, store, tx, s.next)
}

// Deliver passes the handler into the decorator, implements Handler
func (s step) Deliver(ctx timevault.Context, store timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	return s.d.Deliver(ctx, store, tx, s.next)
}
