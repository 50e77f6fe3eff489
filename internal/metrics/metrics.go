// Package metrics records portal activity as Prometheus metrics and can
// export them to a node_exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for download workflows.
type Metrics struct {
	registry *prometheus.Registry

	// Location captures by source ("fresh", "cached")
	Captures *prometheus.CounterVec

	// Workflow terminal states by variant and outcome
	Outcomes *prometheus.CounterVec

	// Time from trigger to terminal state
	RunDuration prometheus.Histogram

	// Entries currently in the audit log
	AuditEntries prometheus.Gauge
}

// New creates a Metrics instance on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Captures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geogate_location_captures_total",
			Help: "Location captures appended to the audit log by source",
		}, []string{"source"}),

		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geogate_workflow_outcomes_total",
			Help: "Workflow terminal states by variant and outcome",
		}, []string{"variant", "outcome"}),

		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "geogate_workflow_run_duration_seconds",
			Help:    "Duration from trigger to terminal state",
			Buckets: []float64{0.5, 1, 1.5, 2, 3, 5, 10, 30},
		}),

		AuditEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "geogate_audit_log_entries",
			Help: "Number of entries in the audit log",
		}),
	}
}

// Registry returns the registry holding all geogate metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncrementCapture records a location capture.
func (m *Metrics) IncrementCapture(cached bool) {
	if m == nil {
		return
	}
	source := "fresh"
	if cached {
		source = "cached"
	}
	m.Captures.WithLabelValues(source).Inc()
}

// IncrementOutcome records a workflow reaching a terminal state.
func (m *Metrics) IncrementOutcome(variant, outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(variant, outcome).Inc()
	}
}

// ObserveRun records the duration of one workflow run.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m != nil {
		m.RunDuration.Observe(d.Seconds())
	}
}

// SetAuditEntries records the audit log length.
func (m *Metrics) SetAuditEntries(n int) {
	if m != nil {
		m.AuditEntries.Set(float64(n))
	}
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
