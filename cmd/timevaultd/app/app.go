/*
Package app links together all the various components
to construct the timevault application.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/app"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/store/iavl"
	"github.com/iov-one/timevault/x"
	"github.com/iov-one/timevault/x/ledger"
	"github.com/iov-one/timevault/x/sigs"
	"github.com/iov-one/timevault/x/utils"
	"github.com/iov-one/timevault/x/vault"
	"github.com/prometheus/client_golang/prometheus"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, metrics and recovery. Metrics are only collected when a
// registerer is given.
func Chain(reg prometheus.Registerer) (app.Decorators, error) {
	var metrics timevault.Decorator
	if reg != nil {
		m, err := utils.NewMetrics(reg)
		if err != nil {
			return app.Decorators{}, err
		}
		metrics = m
	}
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
	), nil
}

// Router returns a router dispatching the ledger and vault messages.
func Router(authFn x.Authenticator, ctrl ledger.Controller) *app.Router {
	r := app.NewRouter()
	ledger.RegisterRoutes(r, authFn, ctrl)
	vault.RegisterRoutes(r, authFn, ctrl)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/auth", "/wallets" and "/vaults"
func QueryRouter() timevault.QueryRouter {
	r := timevault.NewQueryRouter()
	r.RegisterAll(
		sigs.RegisterQuery,
		ledger.RegisterQuery,
		vault.RegisterQuery,
	)
	return r
}

// Initializers returns the genesis loaders of all extensions.
func Initializers(ctrl ledger.Controller) timevault.Initializer {
	return timevault.ChainInitializers(
		&ledger.Initializer{},
		&vault.Initializer{Ledger: ctrl},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(reg prometheus.Registerer) (timevault.Handler, error) {
	chain, err := Chain(reg)
	if err != nil {
		return nil, err
	}
	return chain.WithHandler(Router(Authenticator(), ledger.NewController())), nil
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h timevault.Handler,
	tx timevault.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {

	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store, err := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	if err != nil {
		return app.BaseApp{}, err
	}
	store.WithInit(Initializers(ledger.NewController()))
	return app.NewBaseApp(store, tx, h, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (timevault.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
