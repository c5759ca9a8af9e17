package sigs

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

// maxSequenceValue is the greatest nonce a javascript client can represent
// without loss (Number.MAX_SAFE_INTEGER).
const maxSequenceValue = (1 << 53) - 1

// UserData keeps the replay protection state of one public key.
type UserData struct {
	Metadata *timevault.Metadata
	Pubkey   PublicKey
	Sequence int64
}

var _ orm.Model = (*UserData)(nil)

// Validate checks the stored state.
func (u *UserData) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", u.Metadata.Validate())
	if err := u.Pubkey.Validate(); err != nil {
		errs = errors.AppendField(errs, "Pubkey", err)
	}
	if u.Sequence < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	}
	return errs
}

// Copy makes a new UserData with the same state.
func (u *UserData) Copy() orm.CloneableData {
	return &UserData{
		Metadata: u.Metadata.Copy(),
		Pubkey:   append(PublicKey(nil), u.Pubkey...),
		Sequence: u.Sequence,
	}
}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	next := u.Sequence + 1
	if next <= 0 || next > maxSequenceValue {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

// Marshal serializes the user data.
func (u *UserData) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, u.Metadata); err != nil {
		return nil, err
	}
	b.Raw(2, u.Pubkey)
	b.Int64(3, u.Sequence)
	return b.Bytes(), nil
}

// Unmarshal loads the user data from its serialized form.
func (u *UserData) Unmarshal(raw []byte) error {
	*u = UserData{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			u.Metadata = &timevault.Metadata{}
			err = f.Message(u.Metadata)
		case 2:
			u.Pubkey, err = f.Raw()
		case 3:
			u.Sequence, err = f.Int64()
		}
		return err
	})
}

// NewBucket returns the bucket of all users, keyed by the address of their
// public key.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &UserData{})
}

// RegisterQuery will register the users bucket as "/auth"
func RegisterQuery(qr timevault.QueryRouter) {
	NewBucket().Register("auth", qr)
}
