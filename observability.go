package goevo

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the optional Prometheus instrumentation surface: an
// evaluation counter, a generation-duration histogram, and an
// archive-size gauge. A nil *Metrics is valid everywhere it is accepted;
// callers that don't want metrics simply never construct one.
type Metrics struct {
	evaluations    prometheus.Counter
	generationTime prometheus.Histogram
	archiveSize    prometheus.Gauge
}

// NewMetrics registers the engine's instrumentation with reg and returns
// a ready Metrics. Pass prometheus.NewRegistry() for an isolated registry
// in tests, or prometheus.DefaultRegisterer in a long-running process.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goevo",
			Name:      "evaluations_total",
			Help:      "Total number of fitness function evaluations performed.",
		}),
		generationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "goevo",
			Name:      "generation_duration_seconds",
			Help:      "Wall-clock duration of one completed generation.",
			Buckets:   prometheus.DefBuckets,
		}),
		archiveSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goevo",
			Name:      "archive_size",
			Help:      "Current number of non-dominated candidates in the archive.",
		}),
	}
	for _, c := range []prometheus.Collector{m.evaluations, m.generationTime, m.archiveSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveGeneration records one completed generation's archive size.
// Evaluation counting happens via AddEvaluations since the engine knows
// the incremental count, not Metrics.
func (m *Metrics) ObserveGeneration(archiveSize int) {
	if m == nil {
		return
	}
	m.archiveSize.Set(float64(archiveSize))
}

// AddEvaluations increments the evaluation counter by n.
func (m *Metrics) AddEvaluations(n int) {
	if m == nil {
		return
	}
	m.evaluations.Add(float64(n))
}

// ObserveGenerationDuration records how long one generation took, in
// seconds.
func (m *Metrics) ObserveGenerationDuration(seconds float64) {
	if m == nil {
		return
	}
	m.generationTime.Observe(seconds)
}
