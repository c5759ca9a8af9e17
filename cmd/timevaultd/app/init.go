package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/commands/server"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/x/ledger"
	"github.com/iov-one/timevault/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
)

// defaultBalance is what the dev account receives when no amount is given.
const defaultBalance uint64 = 123456789

type genesisState struct {
	Wallets []ledger.GenesisWallet `json:"wallets"`
	Conf    map[string]interface{} `json:"conf"`
}

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode.
//
// Arguments are an optional hex address and an optional balance. When no
// address is given, a new key is generated and printed out.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var addr timevault.Address
	if len(args) > 0 {
		a, err := timevault.ParseAddress(args[0])
		if err != nil {
			return nil, err
		}
		addr = a
	} else {
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Println(keys)
	}

	balance := defaultBalance
	if len(args) > 1 {
		n, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrAmount, "invalid balance %q", args[1])
		}
		balance = n
	}

	state := genesisState{
		Wallets: []ledger.GenesisWallet{{Address: addr, Balance: balance}},
		Conf: map[string]interface{}{
			"vault": map[string]interface{}{
				"metadata": map[string]int{"schema": 1},
				"treasury": addr,
			},
		},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "timevault.db")
	}

	stack, err := Stack(options.Registerer)
	if err != nil {
		return nil, err
	}
	application, err := Application("timevault", stack, TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	application.WithLogger(options.Logger)
	return application, nil
}

type output struct {
	Address timevault.Address `json:"address"`
	Pubkey  string            `json:"pub_key"`
	Secret  string            `json:"secret"`
}

// GenerateCoinKey returns the address of a public key,
// along with a json representation of the keys.
// You can give funds to this address and
// import the keys in a client to use them
func GenerateCoinKey() (timevault.Address, string, error) {
	privKey := sigs.GenPrivKey()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{
		Address: addr,
		Pubkey:  hex.EncodeToString(pubKey),
		Secret:  hex.EncodeToString(privKey),
	}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return addr, string(keys), nil
}
