package ledger

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// GenesisWallet is a single entry of the "wallets" genesis section.
type GenesisWallet struct {
	Address timevault.Address `json:"address"`
	Balance uint64            `json:"balance"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file
type Initializer struct{}

var _ timevault.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial account info from genesis and save it to
// the database
func (*Initializer) FromGenesis(opts timevault.Options, db timevault.KVStore) error {
	var wallets []GenesisWallet
	if err := opts.ReadOptions("wallets", &wallets); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	ctrl := NewController()
	for i, w := range wallets {
		if err := ctrl.Mint(db, w.Address, w.Balance); err != nil {
			return errors.Wrapf(err, "wallet #%d", i)
		}
	}
	return nil
}
