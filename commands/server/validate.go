package server

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/store"
)

// ValidateGenesis loads the app_state of every given genesis file into a
// throwaway store, so that a broken genesis is caught before the chain is
// started.
func ValidateGenesis(ini timevault.Initializer, genesisPaths []string) error {
	if len(genesisPaths) == 0 {
		return errors.Wrap(errors.ErrInput, "no genesis file given")
	}
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini timevault.Initializer, genesisPath string) error {
	doc, err := readGenesis(genesisPath)
	if err != nil {
		return err
	}
	raw, ok := doc[appStateKey]
	if !ok {
		return errors.Wrap(errors.ErrNotFound, "no app_state in genesis")
	}
	var state timevault.Options
	if err := timevault.Options(doc).ReadOptions(appStateKey, &state); err != nil || len(raw) == 0 {
		return errors.Wrap(errors.ErrInput, "cannot decode app_state")
	}

	// Use in memory store because we want to discard the result.
	db := store.MemStore()
	if err := ini.FromGenesis(state, db); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
