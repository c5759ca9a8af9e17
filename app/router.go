package app

import (
	"fmt"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]timevault.Handler
}

var _ timevault.Registry = (*Router)(nil)
var _ timevault.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]timevault.Handler),
	}
}

// Handle adds a new Handler for the given message type.
// Panics if the path is invalid or already registered.
func (r *Router) Handle(msg timevault.Msg, h timevault.Handler) {
	path := msg.Path()
	if !timevault.IsValidPath(path) {
		panic(fmt.Sprintf("invalid message path %q", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is
// found, returns a noSuchPath Handler. Always returns a non-nil Handler.
func (r *Router) handler(tx timevault.Tx) timevault.Handler {
	msg, err := tx.GetMsg()
	if err != nil {
		return errHandler(errors.Wrap(err, "cannot load message"))
	}
	if msg == nil {
		return errHandler(errors.Wrap(errors.ErrMsg, "nil message"))
	}
	path := msg.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return errHandler(errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", path))
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx timevault.Context, store timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	return r.handler(tx).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx timevault.Context, store timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	return r.handler(tx).Deliver(ctx, store, tx)
}

// errHandler returns a Handler that always fails with given error.
func errHandler(err error) timevault.Handler {
	return failingHandler{err: err}
}

type failingHandler struct {
	err error
}

func (h failingHandler) Check(timevault.Context, timevault.KVStore, timevault.Tx) (*timevault.CheckResult, error) {
	return nil, h.err
}

func (h failingHandler) Deliver(timevault.Context, timevault.KVStore, timevault.Tx) (*timevault.DeliverResult, error) {
	return nil, h.err
}
