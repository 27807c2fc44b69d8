package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the admin service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Ledger Metrics
	MutationsTotal            *prometheus.CounterVec
	MutationDuration          *prometheus.HistogramVec
	StaleFlagsTotal           prometheus.Counter
	InvalidationFailuresTotal prometheus.Counter
}

// NewMetricsRegistry registers every metric on reg. Pass prometheus.DefaultRegisterer
// in the server binary and a fresh prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admin_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "admin_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Ledger Metrics
		MutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_mutations_total",
				Help: "Admin mutations by operation and outcome (committed, aborted, failed)",
			},
			[]string{"operation", "outcome"},
		),
		MutationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admin_mutation_duration_seconds",
				Help:    "Time from Begin to Commit or Abort",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"operation"},
		),
		StaleFlagsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "admin_stale_flags_total",
				Help: "Authorization snapshots flagged stale",
			},
		),
		InvalidationFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "admin_invalidation_failures_total",
				Help: "Stale flag signals that could not be delivered",
			},
		),
	}
}
