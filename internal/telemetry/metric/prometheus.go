package metric

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nbdb"

// Label values.
const (
	OpSet    = "set"
	OpDelete = "delete"

	ResultOK    = "ok"
	ResultError = "error"

	TriggerManual     = "manual"
	TriggerBackground = "background"
	TriggerClose      = "close"
)

// Registry holds the engine metrics.
type Registry struct {
	Sets              *prometheus.CounterVec
	LogAppends        *prometheus.CounterVec
	Writes            *prometheus.CounterVec
	WriteDuration     prometheus.Histogram
	SnapshotBytes     prometheus.Gauge
	ReplayedRecords   prometheus.Counter
	RecoveredFromTemp prometheus.Counter

	registerer prometheus.Registerer
}

// NewRegistry creates the engine metrics and registers them with reg. A nil
// reg leaves them unregistered but usable.
func NewRegistry(reg prometheus.Registerer) (*Registry, error) {
	r := &Registry{
		Sets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sets_total",
			Help:      "Accepted mutations by operation.",
		}, []string{"op"}),
		LogAppends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_appends_total",
			Help:      "Mutation log appends by result.",
		}, []string{"result"}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Snapshot writes by result and trigger.",
		}, []string{"result", "trigger"}),
		WriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_seconds",
			Help:      "Snapshot write latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		SnapshotBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes",
			Help:      "Size of the last snapshot written or loaded.",
		}),
		ReplayedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replayed_records_total",
			Help:      "Log records replayed during recovery.",
		}),
		RecoveredFromTemp: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovered_from_temp_total",
			Help:      "Startups that loaded the temp copy of the snapshot.",
		}),
		registerer: reg,
	}

	if reg == nil {
		return r, nil
	}

	var err error
	if r.Sets, err = register(reg, r.Sets); err != nil {
		return nil, err
	}
	if r.LogAppends, err = register(reg, r.LogAppends); err != nil {
		return nil, err
	}
	if r.Writes, err = register(reg, r.Writes); err != nil {
		return nil, err
	}
	if r.WriteDuration, err = register(reg, r.WriteDuration); err != nil {
		return nil, err
	}
	if r.SnapshotBytes, err = register(reg, r.SnapshotBytes); err != nil {
		return nil, err
	}
	if r.ReplayedRecords, err = register(reg, r.ReplayedRecords); err != nil {
		return nil, err
	}
	if r.RecoveredFromTemp, err = register(reg, r.RecoveredFromTemp); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds an extra collector to the registry's registerer, if any.
// It reports whether c itself was registered; false means there is no
// registerer or an equal collector was already present, and the caller
// must not Unregister c.
func (r *Registry) Register(c prometheus.Collector) (bool, error) {
	if r.registerer == nil {
		return false, nil
	}
	got, err := register(r.registerer, c)
	if err != nil {
		return false, err
	}
	return got == c, nil
}

// Unregister removes a collector added through Register.
func (r *Registry) Unregister(c prometheus.Collector) {
	if r.registerer != nil {
		r.registerer.Unregister(c)
	}
}

// register registers c, reusing an identical collector that is already
// registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewProcessRegistry returns a fresh registry preloaded with Go runtime and
// process collectors.
func NewProcessRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns an HTTP handler exposing g in Prometheus format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
