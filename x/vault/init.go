package vault

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/gconf"
	"github.com/iov-one/timevault/x/ledger"
)

// GenesisVault is a single entry of the "vaults" genesis section. The
// amount is minted into the vault custody account.
type GenesisVault struct {
	Owner      timevault.Address  `json:"owner"`
	Backup     timevault.Address  `json:"backup"`
	UnlockTime timevault.UnixTime `json:"unlock_time"`
	Amount     uint64             `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct {
	Ledger ledger.Controller
}

var _ timevault.Initializer = (*Initializer)(nil)

// FromGenesis stores the vault configuration, if present, and creates all
// listed vaults.
func (i *Initializer) FromGenesis(opts timevault.Options, db timevault.KVStore) error {
	switch err := gconf.InitConfig(db, opts, configPkg, &Configuration{}); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "vault configuration")
	}

	var vaults []GenesisVault
	if err := opts.ReadOptions("vaults", &vaults); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := NewController(i.Ledger)
	bucket := NewBucket()
	for n, g := range vaults {
		v, err := ctrl.Initialize(db, g.Owner, g.Backup, g.UnlockTime)
		if err != nil {
			return errors.Wrapf(err, "vault #%d", n)
		}
		if g.Amount == 0 {
			continue
		}
		if err := i.Ledger.Mint(db, v.CustodyAddress(), g.Amount); err != nil {
			return errors.Wrapf(err, "vault #%d funds", n)
		}
		v.Amount = g.Amount
		if err := bucket.Put(db, RecordKey(g.Owner), v); err != nil {
			return errors.Wrapf(err, "vault #%d", n)
		}
	}
	return nil
}
