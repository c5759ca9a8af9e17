package vault

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
)

var (
	_ timevault.Msg = (*CreateVaultMsg)(nil)
	_ timevault.Msg = (*DepositMsg)(nil)
	_ timevault.Msg = (*TriggerRecoveryMsg)(nil)
	_ timevault.Msg = (*WithdrawMsg)(nil)
)

// CreateVaultMsg initializes a vault owned by the signer.
type CreateVaultMsg struct {
	Metadata *timevault.Metadata
	// Owner defaults to the main signer.
	Owner      timevault.Address
	Backup     timevault.Address
	UnlockTime timevault.UnixTime
}

func (CreateVaultMsg) Path() string {
	return "vault/create"
}

func (m *CreateVaultMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = validateOptional(errs, "Owner", m.Owner)
	errs = errors.AppendField(errs, "Backup", m.Backup.Validate())
	return errs
}

func (m *CreateVaultMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	b.Raw(2, m.Owner)
	b.Raw(3, m.Backup)
	b.Int64(4, int64(m.UnlockTime))
	return b.Bytes(), nil
}

func (m *CreateVaultMsg) Unmarshal(raw []byte) error {
	*m = CreateVaultMsg{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Metadata = &timevault.Metadata{}
			err = f.Message(m.Metadata)
		case 2:
			m.Owner, err = f.Raw()
		case 3:
			m.Backup, err = f.Raw()
		case 4:
			var t int64
			t, err = f.Int64()
			m.UnlockTime = timevault.UnixTime(t)
		}
		return err
	})
}

// DepositMsg moves funds from the source into a vault.
type DepositMsg struct {
	Metadata *timevault.Metadata
	// Owner selects the vault.
	Owner timevault.Address
	// Source defaults to the main signer.
	Source timevault.Address
	// Amount may be zero.
	Amount uint64
}

func (DepositMsg) Path() string {
	return "vault/deposit"
}

func (m *DepositMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = validateOptional(errs, "Source", m.Source)
	return errs
}

func (m *DepositMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	b.Raw(2, m.Owner)
	b.Raw(3, m.Source)
	b.Uint64(4, m.Amount)
	return b.Bytes(), nil
}

func (m *DepositMsg) Unmarshal(raw []byte) error {
	*m = DepositMsg{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Metadata = &timevault.Metadata{}
			err = f.Message(m.Metadata)
		case 2:
			m.Owner, err = f.Raw()
		case 3:
			m.Source, err = f.Raw()
		case 4:
			m.Amount, err = f.Uint64()
		}
		return err
	})
}

// TriggerRecoveryMsg arms the recovery of a vault. It must be signed by
// the backup identity.
type TriggerRecoveryMsg struct {
	Metadata *timevault.Metadata
	Owner    timevault.Address
	// Caller defaults to the main signer.
	Caller timevault.Address
}

func (TriggerRecoveryMsg) Path() string {
	return "vault/trigger_recovery"
}

func (m *TriggerRecoveryMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = validateOptional(errs, "Caller", m.Caller)
	return errs
}

func (m *TriggerRecoveryMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	b.Raw(2, m.Owner)
	b.Raw(3, m.Caller)
	return b.Bytes(), nil
}

func (m *TriggerRecoveryMsg) Unmarshal(raw []byte) error {
	*m = TriggerRecoveryMsg{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Metadata = &timevault.Metadata{}
			err = f.Message(m.Metadata)
		case 2:
			m.Owner, err = f.Raw()
		case 3:
			m.Caller, err = f.Raw()
		}
		return err
	})
}

// WithdrawMsg pays out the funds of a vault.
type WithdrawMsg struct {
	Metadata *timevault.Metadata
	Owner    timevault.Address
	// Caller defaults to the main signer.
	Caller timevault.Address
	// Destination defaults to the caller.
	Destination timevault.Address
}

func (WithdrawMsg) Path() string {
	return "vault/withdraw"
}

func (m *WithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = validateOptional(errs, "Caller", m.Caller)
	errs = validateOptional(errs, "Destination", m.Destination)
	return errs
}

func (m *WithdrawMsg) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, m.Metadata); err != nil {
		return nil, err
	}
	b.Raw(2, m.Owner)
	b.Raw(3, m.Caller)
	b.Raw(4, m.Destination)
	return b.Bytes(), nil
}

func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	*m = WithdrawMsg{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			m.Metadata = &timevault.Metadata{}
			err = f.Message(m.Metadata)
		case 2:
			m.Owner, err = f.Raw()
		case 3:
			m.Caller, err = f.Raw()
		case 4:
			m.Destination, err = f.Raw()
		}
		return err
	})
}

// validateOptional validates an address only if it was provided.
func validateOptional(errs error, field string, a timevault.Address) error {
	if len(a) == 0 {
		return errs
	}
	return errors.AppendField(errs, field, a.Validate())
}
