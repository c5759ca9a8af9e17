package ledger

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/x"
)

const sendTxCost int64 = 100

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r timevault.Registry, auth x.Authenticator, ctrl Mover) {
	r.Handle(&SendMsg{}, SendHandler{auth: auth, ctrl: ctrl})
}

// SendHandler will handle sending funds
type SendHandler struct {
	auth x.Authenticator
	ctrl Mover
}

var _ timevault.Handler = SendHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &timevault.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the funds from source to destination if all
// preconditions are met
func (h SendHandler) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	msg, src, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Transfer(ctx, db, h.auth, src, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &timevault.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx timevault.Context, tx timevault.Tx) (*SendMsg, timevault.Address, error) {
	var msg SendMsg
	if err := timevault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	src, err := x.AnySigner(ctx, h.auth, msg.Source)
	if err != nil {
		return nil, nil, err
	}
	return &msg, src, nil
}
