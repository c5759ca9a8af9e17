package ledger

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/codec"
	"github.com/iov-one/timevault/orm"
)

// BucketName is where we store the balances
const BucketName = "wallets"

// Wallet holds the token balance of one address.
type Wallet struct {
	Metadata *timevault.Metadata
	Balance  uint64
}

var _ orm.Model = (*Wallet)(nil)

// Validate requires metadata to be set. Any balance is valid.
func (w *Wallet) Validate() error {
	return w.Metadata.Validate()
}

// Copy makes a new wallet with the same balance.
func (w *Wallet) Copy() orm.CloneableData {
	return &Wallet{
		Metadata: w.Metadata.Copy(),
		Balance:  w.Balance,
	}
}

func (w *Wallet) Marshal() ([]byte, error) {
	var b codec.Buffer
	if err := b.Message(1, w.Metadata); err != nil {
		return nil, err
	}
	b.Uint64(2, w.Balance)
	return b.Bytes(), nil
}

func (w *Wallet) Unmarshal(raw []byte) error {
	*w = Wallet{}
	return codec.Decode(raw, func(num int, f *codec.Field) error {
		var err error
		switch num {
		case 1:
			w.Metadata = &timevault.Metadata{}
			err = f.Message(w.Metadata)
		case 2:
			w.Balance, err = f.Uint64()
		}
		return err
	})
}

// NewBucket returns a bucket of wallets keyed by their owner's address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Wallet{})
}

// RegisterQuery will register this bucket as "/wallets"
func RegisterQuery(qr timevault.QueryRouter) {
	NewBucket().Register("wallets", qr)
}
