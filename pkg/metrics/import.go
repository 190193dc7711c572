package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records outcomes for CSV bulk imports.
type ImportMetrics struct {
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
	groups   prometheus.Counter
	failures *prometheus.CounterVec
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "csv_import_duration_seconds",
		Help:    "Duration of CSV imports in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csv_import_rows_total",
		Help: "CSV rows seen per import outcome.",
	}, []string{"outcome"})
	groups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "csv_import_transfers_created_total",
		Help: "Transfers created by CSV imports.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "csv_import_failures_total",
		Help: "Failed CSV imports by reason.",
	}, []string{"reason"})
	reg.MustRegister(duration, rows, groups, failures)
	return &ImportMetrics{
		duration: duration,
		rows:     rows,
		groups:   groups,
		failures: failures,
	}
}

// ObserveDuration records how long an import took for the given outcome.
func (m *ImportMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// AddRows counts data rows processed for the given outcome.
func (m *ImportMetrics) AddRows(outcome string, n int) {
	if m == nil || m.rows == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

// AddTransfersCreated counts transfer aggregates persisted by imports.
func (m *ImportMetrics) AddTransfersCreated(n int) {
	if m == nil || m.groups == nil || n <= 0 {
		return
	}
	m.groups.Add(float64(n))
}

// IncFailure increments the failure counter for the given reason.
func (m *ImportMetrics) IncFailure(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
