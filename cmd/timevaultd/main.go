package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/timevault/cmd/timevaultd/app"
	"github.com/iov-one/timevault/commands"
	"github.com/iov-one/timevault/commands/server"
	"github.com/iov-one/timevault/x/ledger"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".timevault")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("timevaultd")
	fmt.Println("          Custodial time-lock vault node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("validate  Check the app_state of given genesis files")
	fmt.Println("testgen   Write example encodings to a directory")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.timevault")

start flags:
  -bind string     address server listens on (default "tcp://localhost:26658")
  -debug           call stack returned on error
  -metrics string  address to expose prometheus metrics on`)
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "timevault")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(app.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(app.GenerateApp, logger, *varHome, rest)
	case "validate":
		if len(rest) == 0 {
			rest = []string{server.GenesisPath(*varHome)}
		}
		err = server.ValidateGenesis(app.Initializers(ledger.NewController()), rest)
	case "testgen":
		err = commands.TestGenCmd(app.Examples(), rest)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
