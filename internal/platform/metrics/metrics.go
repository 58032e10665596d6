// Package metrics holds the HTTP-level Prometheus metrics shared by the
// middleware chain. Calculation metrics live with the tax packages.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	EndpointLatency *prometheus.HistogramVec
	InFlight        prometheus.Gauge
}

// New registers the metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxcalc_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taxcalc_http_request_duration_seconds",
			Help:    "Latency of HTTP endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "taxcalc_http_requests_in_flight",
			Help: "HTTP requests currently being served",
		}),
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.EndpointLatency.WithLabelValues(route).Observe(durationSeconds)
}
