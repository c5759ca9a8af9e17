package x

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// Authenticator is an interface we can use to extract authentication info
// from the context.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(timevault.Context) []timevault.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(timevault.Context, timevault.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators
func (m MultiAuth) GetConditions(ctx timevault.Context) []timevault.Condition {
	var res []timevault.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !hasPerm(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx timevault.Context, addr timevault.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx timevault.Context, auth Authenticator) []timevault.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]timevault.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first permission if any, otherwise nil
func MainSigner(ctx timevault.Context, auth Authenticator) timevault.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// AnySigner returns the address given explicitly or, when it is empty, the
// address of the main signer. An explicit address must be authenticated.
// ErrUnauthorized is returned if no usable identity can be determined.
func AnySigner(ctx timevault.Context, auth Authenticator, explicit timevault.Address) (timevault.Address, error) {
	if len(explicit) != 0 {
		if !auth.HasAddress(ctx, explicit) {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", explicit)
		}
		return explicit, nil
	}
	signer := MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return signer.Address(), nil
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx timevault.Context, auth Authenticator, required []timevault.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasAllConditions returns true if all elements in required are
// also in context.
func HasAllConditions(ctx timevault.Context, auth Authenticator, required []timevault.Condition) bool {
	perms := auth.GetConditions(ctx)
	for _, r := range required {
		if !hasPerm(perms, r) {
			return false
		}
	}
	return true
}

func hasPerm(perms []timevault.Condition, perm timevault.Condition) bool {
	for _, p := range perms {
		if p.Equals(perm) {
			return true
		}
	}
	return false
}
