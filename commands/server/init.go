package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"path/filepath"

	"github.com/iov-one/timevault/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagForce   = "f"
	appStateKey = "app_state"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

// InitCmd adds the app_state produced by gen to the genesis file that
// `tendermint init` created in the home directory.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	force := flags.Bool(flagForce, false, "overwrite existing app_state")
	if err := flags.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	genFile := GenesisPath(home)
	if gen == nil {
		logger.Info("No app_state generator, genesis left untouched", "path", genFile)
		return nil
	}
	options, err := gen(flags.Args())
	if err != nil {
		return err
	}
	if err := addGenesisOptions(genFile, options, *force); err != nil {
		return err
	}
	logger.Info("App state written to genesis file", "path", genFile)
	return nil
}

// GenesisPath returns the location of the genesis file for given home
// directory, following the tendermint layout.
func GenesisPath(home string) string {
	return filepath.Join(home, "config", "genesis.json")
}

func addGenesisOptions(filename string, options json.RawMessage, force bool) error {
	doc, err := readGenesis(filename)
	if err != nil {
		return err
	}

	if state, ok := doc[appStateKey]; ok && len(state) > 0 && string(state) != "null" && !force {
		return errors.Wrap(errors.ErrState, "app_state already set, use -f to overwrite")
	}
	doc[appStateKey] = options

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(filename, out, 0600); err != nil {
		return errors.Wrap(err, "cannot write genesis file")
	}
	return nil
}

func readGenesis(filename string) (GenesisDoc, error) {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read genesis file, did you run tendermint init?")
	}
	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return doc, nil
}
