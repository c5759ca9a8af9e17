package vault

import (
	"math"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/orm"
	"github.com/iov-one/timevault/x"
)

const (
	// RecoveryDelay is the number of seconds between arming the recovery
	// and the moment the backup identity is allowed to withdraw.
	RecoveryDelay int64 = 10

	// FeePercent is the part of every withdrawal that is not paid out.
	FeePercent uint64 = 10
)

// Ledger is the funds ledger used to move vault funds.
type Ledger interface {
	Transfer(ctx timevault.Context, db timevault.KVStore, auth x.Authenticator, src, dest timevault.Address, amount uint64) error
	Balance(db timevault.ReadOnlyKVStore, addr timevault.Address) (uint64, error)
}

// Controller implements all vault operations. Each operation either
// applies all of its changes or returns an error.
//
// The controller never reads the clock. The current time is always passed
// by the caller.
type Controller struct {
	bucket orm.ModelBucket
	ledger Ledger
}

// NewController returns a controller storing vaults in the default bucket.
func NewController(ledger Ledger) *Controller {
	return &Controller{
		bucket: NewBucket(),
		ledger: ledger,
	}
}

// Fee returns the part of amount that is kept on withdrawal:
// floor(amount * FeePercent / 100), computed without overflow.
func Fee(amount uint64) uint64 {
	return amount/100*FeePercent + amount%100*FeePercent/100
}

// Vault returns the vault of given owner or ErrNotFound.
func (c *Controller) Vault(db timevault.ReadOnlyKVStore, owner timevault.Address) (*Vault, error) {
	var v Vault
	if err := c.bucket.One(db, RecordKey(owner), &v); err != nil {
		return nil, errors.Wrapf(err, "vault of %s", owner)
	}
	return &v, nil
}

// Initialize creates a new, empty vault for the owner. Any unlock time
// is accepted. It fails with ErrAlreadyInitialized if the owner has a
// vault already.
func (c *Controller) Initialize(db timevault.KVStore, owner, backup timevault.Address, unlockTime timevault.UnixTime) (*Vault, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if err := backup.Validate(); err != nil {
		return nil, errors.Wrap(err, "backup")
	}

	key := RecordKey(owner)
	switch err := c.bucket.Has(db, key); {
	case err == nil:
		return nil, errors.Wrapf(ErrAlreadyInitialized, "owner %s", owner)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}

	v := &Vault{
		Metadata:        &timevault.Metadata{Schema: 1},
		Owner:           owner,
		Backup:          backup,
		UnlockTime:      unlockTime,
		DerivationNonce: CustodyNonce,
	}
	if err := c.bucket.Put(db, key, v); err != nil {
		return nil, errors.Wrap(err, "cannot store vault")
	}
	return v, nil
}

// Deposit moves amount from source to the custody account of owner's
// vault. The source must be authorized by auth. Anybody can deposit into
// any vault.
func (c *Controller) Deposit(ctx timevault.Context, db timevault.KVStore, auth x.Authenticator, owner, source timevault.Address, amount uint64) (*Vault, error) {
	v, err := c.Vault(db, owner)
	if err != nil {
		return nil, err
	}
	if v.Amount > math.MaxUint64-amount {
		return nil, errors.Wrapf(errors.ErrOverflow, "vault amount %d + %d", v.Amount, amount)
	}
	if err := c.ledger.Transfer(ctx, db, auth, source, v.CustodyAddress(), amount); err != nil {
		return nil, errors.Wrap(err, "deposit transfer")
	}
	v.Amount += amount
	if err := c.bucket.Put(db, RecordKey(owner), v); err != nil {
		return nil, errors.Wrap(err, "cannot store vault")
	}
	return v, nil
}

// TriggerRecovery arms the recovery of owner's vault. Only the backup
// identity can do it. Triggering again moves the ready time forward.
func (c *Controller) TriggerRecovery(db timevault.KVStore, caller, owner timevault.Address, now timevault.UnixTime) (*Vault, error) {
	v, err := c.Vault(db, owner)
	if err != nil {
		return nil, err
	}
	if !caller.Equals(v.Backup) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not the backup identity", caller)
	}
	ready, err := now.CheckedAdd(RecoveryDelay)
	if err != nil {
		return nil, errors.Wrap(err, "recovery ready time")
	}
	v.RecoveryEnabled = true
	v.RecoveryReadyTime = ready
	if err := c.bucket.Put(db, RecordKey(owner), v); err != nil {
		return nil, errors.Wrap(err, "cannot store vault")
	}
	return v, nil
}

// Withdraw pays out the vault balance, minus the fee, to destination. It
// returns the amount paid out.
//
// The owner can withdraw once the unlock time is reached. The backup
// identity can withdraw once the recovery was triggered and the recovery
// delay has passed. Nobody else can withdraw.
//
// Zeroing the vault amount and moving the funds happen on a cache of db,
// written only if every step succeeded.
func (c *Controller) Withdraw(ctx timevault.Context, db timevault.KVStore, caller, owner, destination timevault.Address, now timevault.UnixTime) (uint64, error) {
	if err := destination.Validate(); err != nil {
		return 0, errors.Wrap(err, "destination")
	}
	v, err := c.Vault(db, owner)
	if err != nil {
		return 0, err
	}
	if !owner.Equals(v.Owner) {
		return 0, errors.Wrap(errors.ErrUnauthorized, "owner does not match")
	}
	if destination.Equals(v.CustodyAddress()) {
		return 0, errors.Wrap(errors.ErrInput, "destination is the vault custody")
	}

	switch {
	case caller.Equals(v.Owner):
		if now < v.UnlockTime {
			return 0, errors.Wrapf(ErrUnlockTimeNotReached, "unlocks at %s", v.UnlockTime)
		}
	case caller.Equals(v.Backup):
		if !v.RecoveryEnabled {
			return 0, ErrRecoveryNotTriggered
		}
		if now < v.RecoveryReadyTime {
			return 0, errors.Wrapf(ErrRecoveryNotFinished, "ready at %s", v.RecoveryReadyTime)
		}
	default:
		return 0, errors.Wrapf(errors.ErrUnauthorized, "%s cannot withdraw", caller)
	}

	custody := v.CustodyCondition()
	balance, err := c.ledger.Balance(db, custody.Address())
	if err != nil {
		return 0, errors.Wrap(err, "custody balance")
	}
	if balance < v.Amount {
		return 0, errors.Wrapf(ErrNotAbleToRecover, "custody holds %d, vault amount %d", balance, v.Amount)
	}
	treasury, err := loadTreasury(db)
	if err != nil {
		return 0, err
	}

	amount := v.Amount
	fee := Fee(amount)
	payout := amount - fee

	kv, commit, discard := atomic(db)
	v.Amount = 0
	if err := c.bucket.Put(kv, RecordKey(owner), v); err != nil {
		discard()
		return 0, errors.Wrap(err, "cannot store vault")
	}
	auth := custodyAuth{cond: custody}
	if err := c.ledger.Transfer(ctx, kv, auth, custody.Address(), destination, payout); err != nil {
		discard()
		return 0, errors.Wrap(err, "payout transfer")
	}
	if len(treasury) != 0 && fee > 0 {
		if err := c.ledger.Transfer(ctx, kv, auth, custody.Address(), treasury, fee); err != nil {
			discard()
			return 0, errors.Wrap(err, "fee transfer")
		}
	}
	if err := commit(); err != nil {
		return 0, errors.Wrap(err, "cannot write withdrawal")
	}

	timevault.GetLogger(ctx).Info("vault withdrawal",
		"owner", owner, "caller", caller, "payout", payout, "fee", fee)
	return payout, nil
}

// atomic returns a cache of db when db supports it. Otherwise db is used
// directly and the enclosing transaction is responsible for rollback.
func atomic(db timevault.KVStore) (kv timevault.KVStore, commit func() error, discard func()) {
	cstore, ok := db.(timevault.CacheableKVStore)
	if !ok {
		return db, func() error { return nil }, func() {}
	}
	cache := cstore.CacheWrap()
	return cache, cache.Write, cache.Discard
}
