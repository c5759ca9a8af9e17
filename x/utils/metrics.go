package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed transactions and measures
// their duration. Observations are labeled with the message path and the
// processing phase (check or deliver). Counters carry the ABCI result code.
type Metrics struct {
	count    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ timevault.Decorator = Metrics{}

// NewMetrics creates a Metrics decorator and registers its collectors
// with given registerer. Registration fails when collectors with the same
// names are already registered.
func NewMetrics(reg prometheus.Registerer) (Metrics, error) {
	m := Metrics{
		count: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timevault",
			Name:      "tx_total",
			Help:      "Number of processed transactions.",
		}, []string{"path", "phase", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "timevault",
			Name:      "tx_duration_seconds",
			Help:      "Transaction processing time.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"path", "phase"}),
	}
	if err := reg.Register(m.count); err != nil {
		return m, errors.Wrap(errors.ErrHuman, err.Error())
	}
	if err := reg.Register(m.duration); err != nil {
		return m, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return m, nil
}

// Check observes the check phase.
func (m Metrics) Check(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx, next timevault.Checker) (*timevault.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	m.observe(tx, "check", start, err)
	return res, err
}

// Deliver observes the deliver phase.
func (m Metrics) Deliver(ctx timevault.Context, db timevault.KVStore, tx timevault.Tx, next timevault.Deliverer) (*timevault.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	m.observe(tx, "deliver", start, err)
	return res, err
}

func (m Metrics) observe(tx timevault.Tx, phase string, start time.Time, err error) {
	path := timevault.GetPath(tx)
	code, _ := errors.ABCIInfo(err, false)
	m.count.WithLabelValues(path, phase, strconv.FormatUint(uint64(code), 10)).Inc()
	m.duration.WithLabelValues(path, phase).Observe(time.Since(start).Seconds())
}
