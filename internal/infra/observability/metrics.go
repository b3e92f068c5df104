package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	leadOps         *prometheus.CounterVec
	authAttempts    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zenthra_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenthra_external_errors_total",
				Help: "Total errors from the Supabase backend.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenthra_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenthra_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		leadOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenthra_lead_operations_total",
				Help: "Total lead store operations by kind and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		authAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zenthra_auth_attempts_total",
				Help: "Total sign-in/sign-up attempts by outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrLeadOp counts one lead store operation.
func (m *Metrics) IncrLeadOp(operation, outcome string) {
	m.leadOps.WithLabelValues(operation, outcome).Inc()
}

// IncrAuthAttempt counts one auth operation.
func (m *Metrics) IncrAuthAttempt(operation, outcome string) {
	m.authAttempts.WithLabelValues(operation, outcome).Inc()
}

// LeadOpCount returns the cumulative count for a lead operation/outcome
// pair. Used by the operational snapshot endpoint.
func (m *Metrics) LeadOpCount(operation, outcome string) float64 {
	return getCounterValue(m.leadOps, operation, outcome)
}

// AuthAttemptCount returns the cumulative count for an auth
// operation/outcome pair.
func (m *Metrics) AuthAttemptCount(operation, outcome string) float64 {
	return getCounterValue(m.authAttempts, operation, outcome)
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
