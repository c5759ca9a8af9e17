package weavetest

import (
	"context"
	"fmt"

	"github.com/iov-one/timevault"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced conditions.
// Signer and Signers may be used together, all of them are granted.
type Auth struct {
	// Signer is a convenience attribute for a single signer.
	Signer timevault.Condition

	// Signers represents an authentication of multiple signers.
	Signers []timevault.Condition
}

func (a *Auth) GetConditions(timevault.Context) []timevault.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	// Signer goes first so that it is the main signer.
	return append([]timevault.Condition{a.Signer}, a.Signers...)
}

func (a *Auth) HasAddress(ctx timevault.Context, addr timevault.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve permissions.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

type ctxAuthKey string

func (a *CtxAuth) SetConditions(ctx timevault.Context, permissions ...timevault.Condition) timevault.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), permissions)
}

func (a *CtxAuth) GetConditions(ctx timevault.Context) []timevault.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]timevault.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []timevault.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx timevault.Context, addr timevault.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
