package vault

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/orm"
)

// BucketName is where we store the vaults
const BucketName = "vaults"

// Vault is the state of a single owner's vault.
type Vault struct {
	Metadata *timevault.Metadata
	// Owner created the vault and can withdraw after UnlockTime.
	Owner timevault.Address
	// Backup can arm recovery and withdraw after RecoveryReadyTime.
	Backup timevault.Address
	// Amount is the balance held in the custody account on behalf of
	// this vault.
	Amount uint64
	// UnlockTime is stored as given, any value is accepted.
	UnlockTime timevault.UnixTime
	// RecoveryEnabled is never reset once set.
	RecoveryEnabled bool
	// RecoveryReadyTime is meaningful only when RecoveryEnabled is true.
	RecoveryReadyTime timevault.UnixTime
	// DerivationNonce selects the custody condition of this vault.
	DerivationNonce uint8
}

var _ orm.Model = (*Vault)(nil)

// Validate ensures the vault is in a valid state.
func (v *Vault) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", v.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", v.Owner.Validate())
	errs = errors.AppendField(errs, "Backup", v.Backup.Validate())
	errs = errors.AppendField(errs, "RecoveryReadyTime", v.RecoveryReadyTime.Validate())
	if !v.RecoveryEnabled && v.RecoveryReadyTime != 0 {
		errs = errors.AppendField(errs, "RecoveryReadyTime",
			errors.Wrap(errors.ErrState, "set while recovery is disabled"))
	}
	return errs
}

// Copy makes a deep copy of the vault.
func (v *Vault) Copy() orm.CloneableData {
	return &Vault{
		Metadata:          v.Metadata.Copy(),
		Owner:             copyAddress(v.Owner),
		Backup:            copyAddress(v.Backup),
		Amount:            v.Amount,
		UnlockTime:        v.UnlockTime,
		RecoveryEnabled:   v.RecoveryEnabled,
		RecoveryReadyTime: v.RecoveryReadyTime,
		DerivationNonce:   v.DerivationNonce,
	}
}

func copyAddress(a timevault.Address) timevault.Address {
	if a == nil {
		return nil
	}
	return append(timevault.Address(nil), a...)
}

// CustodyCondition returns the condition controlling the funds of this
// vault.
func (v *Vault) CustodyCondition() timevault.Condition {
	return CustodyCondition(RecordKey(v.Owner), v.DerivationNonce)
}

// CustodyAddress returns the address of the account holding the funds of
// this vault.
func (v *Vault) CustodyAddress() timevault.Address {
	return v.CustodyCondition().Address()
}

func (v *Vault) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, v.Metadata); err != nil {
		return nil, err
	}
	b.Raw(2, v.Owner)
	b.Raw(3, v.Backup)
	b.Uint64(4, v.Amount)
	b.Int64(5, int64(v.UnlockTime))
	b.Bool(6, v.RecoveryEnabled)
	b.Int64(7, int64(v.RecoveryReadyTime))
	b.Uint64(8, uint64(v.DerivationNonce))
	return b.Bytes(), nil
}

func (v *Vault) Unmarshal(raw []byte) error {
	*v = Vault{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			v.Metadata = &timevault.Metadata{}
			err = f.Message(v.Metadata)
		case 2:
			v.Owner, err = f.Raw()
		case 3:
			v.Backup, err = f.Raw()
		case 4:
			v.Amount, err = f.Uint64()
		case 5:
			var t int64
			t, err = f.Int64()
			v.UnlockTime = timevault.UnixTime(t)
		case 6:
			v.RecoveryEnabled, err = f.Bool()
		case 7:
			var t int64
			t, err = f.Int64()
			v.RecoveryReadyTime = timevault.UnixTime(t)
		case 8:
			var n uint64
			n, err = f.Uint64()
			if err == nil && n > 255 {
				err = errors.Wrapf(errors.ErrInput, "derivation nonce %d", n)
			}
			v.DerivationNonce = uint8(n)
		}
		return err
	})
}

func ownerIndexer(obj orm.Object) ([]byte, error) {
	v, err := asVault(obj)
	if err != nil || v == nil {
		return nil, err
	}
	return v.Owner, nil
}

func backupIndexer(obj orm.Object) ([]byte, error) {
	v, err := asVault(obj)
	if err != nil || v == nil {
		return nil, err
	}
	return v.Backup, nil
}

func asVault(obj orm.Object) (*Vault, error) {
	if obj == nil || obj.Value() == nil {
		return nil, nil
	}
	v, ok := obj.Value().(*Vault)
	if !ok {
		return nil, errors.WithType(errors.ErrModel, obj.Value())
	}
	return v, nil
}

// NewBucket returns a bucket of vaults keyed by RecordKey and indexed by
// owner and backup addresses.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Vault{},
		orm.WithIndex("owner", ownerIndexer, true),
		orm.WithIndex("backup", backupIndexer, false),
	)
}

// RegisterQuery will register this bucket as "/vaults"
func RegisterQuery(qr timevault.QueryRouter) {
	NewBucket().Register("vaults", qr)
}
