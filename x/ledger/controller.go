package ledger

import (
	"math"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/orm"
	"github.com/iov-one/timevault/x"
)

// Mover moves funds between two addresses.
type Mover interface {
	Transfer(ctx timevault.Context, db timevault.KVStore, auth x.Authenticator, src, dest timevault.Address, amount uint64) error
	Balance(db timevault.ReadOnlyKVStore, addr timevault.Address) (uint64, error)
}

// Minter creates new funds.
type Minter interface {
	Mint(db timevault.KVStore, dest timevault.Address, amount uint64) error
}

// Controller is the full set of operations the ledger provides.
type Controller interface {
	Mover
	Minter
	// Exists returns true if a wallet was ever created for the address.
	Exists(db timevault.ReadOnlyKVStore, addr timevault.Address) (bool, error)
}

// BaseController is a Controller backed by the wallets bucket.
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the default wallets
// bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

// Transfer moves amount from src to dest. The src address must be
// authorized by auth. Transfer is all or nothing: on error no wallet is
// modified.
//
// A zero amount is allowed. It still requires authorization and creates
// the recipient wallet if it does not exist yet.
func (c BaseController) Transfer(ctx timevault.Context, db timevault.KVStore, auth x.Authenticator, src, dest timevault.Address, amount uint64) error {
	if err := src.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if !auth.HasAddress(ctx, src) {
		return errors.Wrapf(errors.ErrUnauthorized, "cannot move funds from %s", src)
	}

	sender, err := c.load(db, src)
	if err != nil {
		return err
	}
	if sender.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, required %d", sender.Balance, amount)
	}
	if src.Equals(dest) {
		return c.bucket.Put(db, src, sender)
	}
	recipient, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if recipient.Balance > math.MaxUint64-amount {
		return errors.Wrapf(errors.ErrOverflow, "recipient %s balance", dest)
	}

	sender.Balance -= amount
	recipient.Balance += amount
	if err := c.bucket.Put(db, src, sender); err != nil {
		return errors.Wrap(err, "cannot save sender")
	}
	if err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "cannot save recipient")
	}

	timevault.GetLogger(ctx).Debug("transfer", "src", src, "dest", dest, "amount", amount)
	return nil
}

// Balance returns the funds held by the address. An address without a
// wallet has zero balance.
func (c BaseController) Balance(db timevault.ReadOnlyKVStore, addr timevault.Address) (uint64, error) {
	w, err := c.load(db, addr)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// Exists returns true if the address owns a wallet, even an empty one.
func (c BaseController) Exists(db timevault.ReadOnlyKVStore, addr timevault.Address) (bool, error) {
	switch err := c.bucket.Has(db, addr); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// Mint adds new funds to the destination wallet. It fails with
// ErrOverflow if the balance would not fit.
func (c BaseController) Mint(db timevault.KVStore, dest timevault.Address, amount uint64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	w, err := c.load(db, dest)
	if err != nil {
		return err
	}
	if w.Balance > math.MaxUint64-amount {
		return errors.Wrapf(errors.ErrOverflow, "wallet %s balance", dest)
	}
	w.Balance += amount
	return c.bucket.Put(db, dest, w)
}

// load returns the wallet of given address or a new empty one.
func (c BaseController) load(db timevault.ReadOnlyKVStore, addr timevault.Address) (*Wallet, error) {
	var w Wallet
	switch err := c.bucket.One(db, addr, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{Metadata: &timevault.Metadata{Schema: 1}}, nil
	default:
		return nil, errors.Wrap(err, "cannot load wallet")
	}
}
