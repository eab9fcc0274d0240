package breaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the circuit breaker.
type Metrics struct {
	admissionChecks *prometheus.CounterVec
	crossings       *prometheus.CounterVec
	suspendedScopes prometheus.Gauge
	dispatchPanics  prometheus.Counter
	checkDuration   *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered with the default
// Prometheus registry. Create at most one per process.
func NewMetrics() *Metrics {
	return &Metrics{
		admissionChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendguard_breaker_admission_checks_total",
				Help: "Total number of admission decisions by result",
			},
			[]string{"result"},
		),

		crossings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendguard_breaker_threshold_crossings_total",
				Help: "Total number of threshold crossings by rule action",
			},
			[]string{"action"},
		),

		suspendedScopes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "spendguard_breaker_suspended_scopes",
				Help: "Current number of suspended billing scopes",
			},
		),

		dispatchPanics: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "spendguard_breaker_alert_dispatch_panics_total",
				Help: "Total number of recovered alert subscriber panics",
			},
		),

		checkDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spendguard_breaker_check_duration_seconds",
				Help:    "Duration of breaker operations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"operation"},
		),
	}
}

// RecordAdmission records one admission decision.
func (m *Metrics) RecordAdmission(allowed bool) {
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	m.admissionChecks.WithLabelValues(result).Inc()
}

// RecordCrossing records one threshold crossing.
func (m *Metrics) RecordCrossing(action string) {
	m.crossings.WithLabelValues(action).Inc()
}

// SetSuspendedScopes updates the suspended scope gauge.
func (m *Metrics) SetSuspendedScopes(count int) {
	m.suspendedScopes.Set(float64(count))
}

// RecordDispatchPanic counts a recovered alert subscriber panic.
func (m *Metrics) RecordDispatchPanic() {
	m.dispatchPanics.Inc()
}

// RecordCheckDuration records the duration of a breaker operation.
func (m *Metrics) RecordCheckDuration(operation string, seconds float64) {
	m.checkDuration.WithLabelValues(operation).Observe(seconds)
}
