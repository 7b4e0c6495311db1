package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/psantana5/pidwait/internal/outcome"
)

// Metrics are boring counters derived from Results only.
// Every value must be explainable by looking at a single Result.
type Metrics struct {
	registry *prometheus.Registry

	waits       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastOutcome prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		waits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pidwait_waits_total",
				Help: "Total waits by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pidwait_wait_duration_seconds",
				Help:    "Time from start until the outcome was known",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			},
			[]string{"method"},
		),
		lastOutcome: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pidwait_last_outcome_timestamp_seconds",
				Help: "Unix time the last outcome was recorded",
			},
		),
	}

	m.registry.MustRegister(m.waits, m.duration, m.lastOutcome)

	// Pre-create every outcome a wait can report. Usage errors stop before
	// any wait starts and are never recorded.
	for _, o := range []outcome.Outcome{outcome.Terminated, outcome.NotFound, outcome.Unsupported, outcome.OSFailure} {
		m.waits.WithLabelValues(o.String())
	}

	return m
}

// Registry exposes the registry for promhttp and textfile export
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordResult updates all collectors from a single immutable Result.
// This is the ONLY way to update metrics.
func (m *Metrics) RecordResult(r *Result) {
	m.waits.WithLabelValues(r.Status.String()).Inc()

	method := r.Method
	if method == "" {
		method = "none"
	}
	m.duration.WithLabelValues(method).Observe(r.Duration.Seconds())
	m.lastOutcome.Set(float64(r.EndTime.Unix()))
}
