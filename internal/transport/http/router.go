package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taxcalc/internal/platform/health"
	"taxcalc/internal/platform/metrics"
	"taxcalc/internal/platform/middleware"
	dErrors "taxcalc/pkg/domain-errors"
	"taxcalc/pkg/platform/httputil"
)

// DefaultRequestTimeout must exceed the worst case of a calculation: three
// remote attempts of 10s each plus 3s of backoff.
const DefaultRequestTimeout = 45 * time.Second

// RouteRegistrar is implemented by every feature handler.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// RouterConfig holds what NewRouter mounts.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Health         *health.Handler
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	Handlers       []RouteRegistrar
}

// NewRouter wires the middleware chain, probes, metrics and feature routes.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if cfg.MaxBodyBytes > 0 {
			r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
		}
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(middleware.ContentTypeJSON)
		for _, h := range cfg.Handlers {
			h.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	return r
}
