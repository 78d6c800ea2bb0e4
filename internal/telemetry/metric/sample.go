package metric

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Sample is one flattened metric value.
type Sample struct {
	Name   string            `json:"name" yaml:"name"`
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Value  float64           `json:"value" yaml:"value"`
}

// LabelString renders labels as k=v pairs sorted by key.
func (s Sample) LabelString() string {
	if len(s.Labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+s.Labels[k])
	}
	return strings.Join(parts, ",")
}

// Gather collects g and flattens families whose name starts with prefix.
// Histograms are reported as <name>_count and <name>_sum.
func Gather(g prometheus.Gatherer, prefix string) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out = append(out, Sample{Name: name, Labels: labels, Value: m.GetCounter().GetValue()})
			case dto.MetricType_GAUGE:
				out = append(out, Sample{Name: name, Labels: labels, Value: m.GetGauge().GetValue()})
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				out = append(out,
					Sample{Name: name + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: name + "_sum", Labels: labels, Value: h.GetSampleSum()})
			case dto.MetricType_UNTYPED:
				out = append(out, Sample{Name: name, Labels: labels, Value: m.GetUntyped().GetValue()})
			}
		}
	}
	return out, nil
}
