package vault

import (
	"encoding/binary"
	"fmt"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createVaultCost     int64 = 300
	depositCost         int64 = 100
	triggerRecoveryCost int64 = 50
	withdrawCost        int64 = 100
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r timevault.Registry, auth x.Authenticator, ledger Ledger) {
	ctrl := NewController(ledger)
	r.Handle(&CreateVaultMsg{}, CreateVaultHandler{auth: auth, ctrl: ctrl})
	r.Handle(&DepositMsg{}, DepositHandler{auth: auth, ctrl: ctrl})
	r.Handle(&TriggerRecoveryMsg{}, TriggerRecoveryHandler{auth: auth, ctrl: ctrl})
	r.Handle(&WithdrawMsg{}, WithdrawHandler{auth: auth, ctrl: ctrl})
}

func ownerTag(owner timevault.Address) common.KVPair {
	return common.KVPair{Key: []byte("vault.owner"), Value: []byte(owner.String())}
}

// CreateVaultHandler creates a vault for the signer.
type CreateVaultHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ timevault.Handler = CreateVaultHandler{}

func (h CreateVaultHandler) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &timevault.CheckResult{GasAllocated: createVaultCost}, nil
}

func (h CreateVaultHandler) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	msg, owner, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	v, err := h.ctrl.Initialize(db, owner, msg.Backup, msg.UnlockTime)
	if err != nil {
		return nil, err
	}
	return &timevault.DeliverResult{
		Data: RecordKey(owner),
		Log:  fmt.Sprintf("custody %s", v.CustodyAddress()),
		Tags: []common.KVPair{ownerTag(owner)},
	}, nil
}

func (h CreateVaultHandler) validate(ctx timevault.Context, tx timevault.Tx) (*CreateVaultMsg, timevault.Address, error) {
	var msg CreateVaultMsg
	if err := timevault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	owner, err := x.AnySigner(ctx, h.auth, msg.Owner)
	if err != nil {
		return nil, nil, err
	}
	return &msg, owner, nil
}

// DepositHandler moves funds into a vault.
type DepositHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ timevault.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	msg, _, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Vault(db, msg.Owner); err != nil {
		return nil, err
	}
	return &timevault.CheckResult{GasAllocated: depositCost}, nil
}

func (h DepositHandler) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	msg, source, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	v, err := h.ctrl.Deposit(ctx, db, h.auth, msg.Owner, source, msg.Amount)
	if err != nil {
		return nil, err
	}
	return &timevault.DeliverResult{
		Log:  fmt.Sprintf("vault amount %d", v.Amount),
		Tags: []common.KVPair{ownerTag(msg.Owner)},
	}, nil
}

func (h DepositHandler) validate(ctx timevault.Context, tx timevault.Tx) (*DepositMsg, timevault.Address, error) {
	var msg DepositMsg
	if err := timevault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	source, err := x.AnySigner(ctx, h.auth, msg.Source)
	if err != nil {
		return nil, nil, err
	}
	return &msg, source, nil
}

// TriggerRecoveryHandler arms the recovery of a vault.
type TriggerRecoveryHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ timevault.Handler = TriggerRecoveryHandler{}

func (h TriggerRecoveryHandler) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	v, err := h.ctrl.Vault(db, msg.Owner)
	if err != nil {
		return nil, err
	}
	if !caller.Equals(v.Backup) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "not the backup identity")
	}
	return &timevault.CheckResult{GasAllocated: triggerRecoveryCost}, nil
}

func (h TriggerRecoveryHandler) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	v, err := h.ctrl.TriggerRecovery(db, caller, msg.Owner, timevault.BlockNow(ctx))
	if err != nil {
		return nil, err
	}
	return &timevault.DeliverResult{
		Log:  fmt.Sprintf("recovery ready at %s", v.RecoveryReadyTime),
		Tags: []common.KVPair{ownerTag(msg.Owner)},
	}, nil
}

func (h TriggerRecoveryHandler) validate(ctx timevault.Context, tx timevault.Tx) (*TriggerRecoveryMsg, timevault.Address, error) {
	var msg TriggerRecoveryMsg
	if err := timevault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.AnySigner(ctx, h.auth, msg.Caller)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}

// WithdrawHandler pays out a vault.
type WithdrawHandler struct {
	auth x.Authenticator
	ctrl *Controller
}

var _ timevault.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.CheckResult, error) {
	msg, _, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Vault(db, msg.Owner); err != nil {
		return nil, err
	}
	return &timevault.CheckResult{GasAllocated: withdrawCost}, nil
}

// Deliver returns the paid out amount as an 8 byte big endian number.
func (h WithdrawHandler) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx) (*timevault.DeliverResult, error) {
	msg, caller, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	dest := msg.Destination
	if len(dest) == 0 {
		dest = caller
	}
	payout, err := h.ctrl.Withdraw(ctx, db, caller, msg.Owner, dest, timevault.BlockNow(ctx))
	if err != nil {
		return nil, err
	}
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, payout)
	return &timevault.DeliverResult{
		Data: data,
		Log:  fmt.Sprintf("paid out %d to %s", payout, dest),
		Tags: []common.KVPair{ownerTag(msg.Owner)},
	}, nil
}

func (h WithdrawHandler) validate(ctx timevault.Context, tx timevault.Tx) (*WithdrawMsg, timevault.Address, error) {
	var msg WithdrawMsg
	if err := timevault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	caller, err := x.AnySigner(ctx, h.auth, msg.Caller)
	if err != nil {
		return nil, nil, err
	}
	return &msg, caller, nil
}
