package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records throughput and latency for ledger operations
// (purchase, refund, withdrawal, delivery and listing mutations).
type LedgerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	units    *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_operation_duration_seconds",
		Help:    "Duration of ledger operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operation_success",
		Help: "Successful ledger operations.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_operation_failure",
		Help: "Failed ledger operations.",
	}, []string{"operation", "code"})
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_units_moved",
		Help: "Inventory units moved by operation (purchased, refunded).",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure, units)
	return &LedgerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		units:    units,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *LedgerMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *LedgerMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation and error code.
func (m *LedgerMetrics) IncFailure(operation, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

// AddUnits counts inventory units moved by the named operation.
func (m *LedgerMetrics) AddUnits(operation string, qty int) {
	if m == nil || m.units == nil || qty <= 0 {
		return
	}
	m.units.WithLabelValues(normalizeLabel(operation)).Add(float64(qty))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
