// Package metrics provides Prometheus metrics for the tax calculation paths:
// remote calls, the request cache and local fallbacks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all tax calculation metrics.
type Metrics struct {
	// Remote client
	RemoteRequestsTotal   *prometheus.CounterVec   // Completed Invoke calls by endpoint and outcome
	RemoteAttemptsTotal   *prometheus.CounterVec   // Individual HTTP attempts by endpoint and result category
	RemoteDurationSeconds *prometheus.HistogramVec // Per-attempt latency by endpoint

	// Request cache
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheEntries     prometheus.Gauge
	CacheSweptTotal  prometheus.Counter

	// Orchestrators
	CalculationsTotal *prometheus.CounterVec // Calculations by kind and source (remote, local, exempt)
}

// New registers the metrics with the default Prometheus registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RemoteRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxcalc_remote_requests_total",
			Help: "Total remote calculation requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),

		RemoteAttemptsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxcalc_remote_attempts_total",
			Help: "Total HTTP attempts against the remote service by endpoint and result",
		}, []string{"endpoint", "result"}),

		RemoteDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taxcalc_remote_attempt_duration_seconds",
			Help:    "Duration of single remote attempts by endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		CacheHitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxcalc_cache_hits_total",
			Help: "Total request cache hits by endpoint",
		}, []string{"endpoint"}),

		CacheMissesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxcalc_cache_misses_total",
			Help: "Total request cache misses by endpoint",
		}, []string{"endpoint"}),

		CacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "taxcalc_cache_entries",
			Help: "Entries held by the in-memory request cache after the last sweep",
		}),

		CacheSweptTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "taxcalc_cache_swept_total",
			Help: "Total expired cache entries removed by the sweeper",
		}),

		CalculationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxcalc_calculations_total",
			Help: "Total calculations by kind and the path that produced them",
		}, []string{"kind", "source"}),
	}
}

// Outcome and source label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeCached  = "cached"

	SourceRemote = "remote"
	SourceLocal  = "local"
	SourceExempt = "exempt"
)

func (m *Metrics) RecordRemoteRequest(endpoint, outcome string) {
	m.RemoteRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveAttempt records one HTTP attempt and its latency.
func (m *Metrics) ObserveAttempt(endpoint, result string, durationSeconds float64) {
	m.RemoteAttemptsTotal.WithLabelValues(endpoint, result).Inc()
	m.RemoteDurationSeconds.WithLabelValues(endpoint).Observe(durationSeconds)
}

func (m *Metrics) RecordCacheHit(endpoint string) {
	m.CacheHitsTotal.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) RecordCacheMiss(endpoint string) {
	m.CacheMissesTotal.WithLabelValues(endpoint).Inc()
}

// RecordSweep records the result of a cache sweep.
func (m *Metrics) RecordSweep(removed, remaining int) {
	m.CacheSweptTotal.Add(float64(removed))
	m.CacheEntries.Set(float64(remaining))
}

func (m *Metrics) RecordCalculation(kind, source string) {
	m.CalculationsTotal.WithLabelValues(kind, source).Inc()
}

// CacheHitRate is a test helper; use Prometheus queries in production.
func CacheHitRate(hits, misses float64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return hits / total
}
