package server

import (
	"flag"
	"net/http"

	"github.com/iov-one/timevault/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
)

// Options are passed to the AppGenerator.
type Options struct {
	Home   string
	Logger log.Logger
	Debug  bool
	// Registerer is set when metrics are exposed. Nil otherwise.
	Registerer prometheus.Registerer
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(*Options) (abci.Application, error)

type startArgs struct {
	bind    string
	debug   bool
	metrics string
}

func parseFlags(args []string) (startArgs, error) {
	var a startArgs
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&a.bind, flagBind, "tcp://localhost:26658", "address server listens on")
	startFlags.BoolVar(&a.debug, flagDebug, false, "call stack returned on error")
	startFlags.StringVar(&a.metrics, flagMetrics, "", "address to expose prometheus metrics on, disabled when empty")
	if err := startFlags.Parse(args); err != nil {
		return a, errors.Wrap(errors.ErrInput, err.Error())
	}
	return a, nil
}

// StartCmd initializes the application and serves it over the ABCI socket
// until the process is terminated.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	svr, err := newServer(gen, logger, home, args)
	if err != nil {
		return err
	}
	if err := svr.Start(); err != nil {
		return errors.Wrap(err, "cannot start abci server")
	}

	cmn.TrapSignal(logger, func() {
		if err := svr.Stop(); err != nil {
			logger.Error("Cannot stop abci server", "err", err)
		}
	})

	// run forever
	select {}
}

func newServer(gen AppGenerator, logger log.Logger, home string, args []string) (cmn.Service, error) {
	a, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	opts := &Options{
		Home:   home,
		Logger: logger,
		Debug:  a.debug,
	}
	if a.metrics != "" {
		reg := prometheus.NewRegistry()
		opts.Registerer = reg
		go serveMetrics(logger, a.metrics, reg)
	}

	app, err := gen(opts)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting ABCI app", "bind", a.bind)
	svr, err := server.NewServer(a.bind, "socket", app)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create listener")
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	return svr, nil
}

func serveMetrics(logger log.Logger, addr string, g prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	logger.Info("Serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "err", err)
	}
}
