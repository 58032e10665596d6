package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"taxcalc/internal/platform/config"
	"taxcalc/internal/platform/health"
	"taxcalc/internal/platform/httpserver"
	"taxcalc/internal/platform/logger"
	"taxcalc/internal/platform/metrics"
	redisclient "taxcalc/internal/platform/redis"
	"taxcalc/internal/tax/cache"
	"taxcalc/internal/tax/handler"
	taxmetrics "taxcalc/internal/tax/metrics"
	"taxcalc/internal/tax/orchestrator"
	"taxcalc/internal/tax/ratetable"
	"taxcalc/internal/tax/remote"
	"taxcalc/internal/tax/service"
	"taxcalc/internal/tax/tracer"
	"taxcalc/internal/tax/workers/cleanup"
	httptransport "taxcalc/internal/transport/http"
	"taxcalc/pkg/platform/circuit"
)

const poolStatsInterval = 15 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/tax.
func main() {
	if err := run(); err != nil {
		slog.Error("taxcalc exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Server.Environment)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	taxMetrics := taxmetrics.NewWithRegistry(reg)

	rates, err := ratetable.Load(cfg.Tax.TaxYear, cfg.Tax.RateTablePath)
	if err != nil {
		return fmt.Errorf("load rate tables: %w", err)
	}

	log.Info("initializing taxcalc",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"tax_years", rates.Years(),
		"default_tax_year", rates.DefaultYear(),
		"nota_base_url", cfg.NOTA.BaseURL,
	)

	healthHandler := health.New(cfg.Server.Environment)
	g, gctx := errgroup.WithContext(ctx)

	store, err := buildCache(gctx, g, cfg, reg, taxMetrics, healthHandler, log)
	if err != nil {
		return err
	}

	clientOpts := []remote.Option{
		remote.WithCache(store),
		remote.WithMetrics(taxMetrics),
		remote.WithTracer(tracer.NewOTel()),
		remote.WithLogger(log),
	}
	if cfg.NOTA.BreakerFailures > 0 {
		breaker := circuit.New("nota",
			circuit.WithFailureThreshold(cfg.NOTA.BreakerFailures),
			circuit.WithSuccessThreshold(cfg.NOTA.BreakerSuccesses),
			circuit.WithStateChangeHook(func(name string, to circuit.State) {
				log.Info("circuit_state_changed", "breaker", name, "state", to.String())
			}),
		)
		clientOpts = append(clientOpts, remote.WithBreaker(breaker))
		healthHandler.RegisterInfo("remote_circuit", func() any { return breaker.Snapshot() })
	}

	retries := cfg.NOTA.Retries
	if retries == 0 {
		retries = -1 // zero in the client config means "use the default"
	}
	client := remote.New(remote.Config{
		BaseURL:     cfg.NOTA.BaseURL,
		Timeout:     cfg.NOTA.Timeout,
		Retries:     retries,
		BackoffBase: cfg.NOTA.BackoffBase,
		CacheTTL:    cfg.Cache.TTL,
	}, clientOpts...)
	nota := remote.NewNOTA(client)

	orchestratorOpts := []orchestrator.Option{
		orchestrator.WithLogger(log),
		orchestrator.WithTracer(tracer.NewOTel()),
		orchestrator.WithMetrics(taxMetrics),
	}
	svc := service.New(
		orchestrator.NewPIT(rates, nota, orchestratorOpts...),
		orchestrator.NewBusiness(rates, nota, orchestratorOpts...),
		rates,
		service.WithLogger(log),
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:       log,
		Metrics:      metrics.NewWithRegistry(reg),
		Gatherer:     reg,
		Health:       healthHandler,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Handlers:     []httptransport.RouteRegistrar{handler.New(svc, log)},
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		return httpserver.Run(gctx, srv)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

// buildCache selects Redis when REDIS_URL is set and the in-process store
// otherwise. Only the in-process store needs the sweep worker.
func buildCache(ctx context.Context, g *errgroup.Group, cfg config.Config, reg prometheus.Registerer,
	m *taxmetrics.Metrics, h *health.Handler, log *slog.Logger,
) (cache.Store, error) {
	rc, err := redisclient.New(ctx, cfg.Cache.Redis, reg)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		log.Info("using redis response cache")
		h.RegisterCheck("redis", rc.Health)
		g.Go(func() error {
			defer rc.Close() //nolint:errcheck // process is exiting
			return rc.RunPoolStats(ctx, poolStatsInterval)
		})
		return cache.NewRedis(rc.Client, cfg.Cache.TTL), nil
	}

	mem := cache.NewMemory(cache.WithDefaultTTL(cfg.Cache.TTL))
	h.RegisterInfo("cache_entries", func() any { return mem.Len() })
	sweeper := cleanup.New(mem,
		cleanup.WithInterval(cfg.Cache.SweepInterval),
		cleanup.WithLogger(log),
		cleanup.WithMetrics(m),
	)
	g.Go(func() error {
		if err := sweeper.Start(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	return mem, nil
}
