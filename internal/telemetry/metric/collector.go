package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is the live view a Collector reads at scrape time.
type StatsSource interface {
	Path() string
	Len() int
	LogSize() (int64, error)
}

// Collector reports store gauges that are cheaper to read on demand than
// to keep updated on every mutation.
type Collector struct {
	src StatsSource

	keys     *prometheus.Desc
	logBytes *prometheus.Desc
}

// NewCollector creates a collector reading from src. Its series carry a
// constant path label, so stores sharing a registerer do not collide.
func NewCollector(src StatsSource) *Collector {
	labels := prometheus.Labels{"path": src.Path()}
	return &Collector{
		src: src,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Keys currently held in memory.",
			nil, labels),
		logBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "log_bytes"),
			"Size of the pending mutation log.",
			nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.logBytes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.src.Len()))

	size, err := c.src.LogSize()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.logBytes, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.logBytes, prometheus.GaugeValue, float64(size))
}
