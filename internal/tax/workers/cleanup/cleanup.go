// Package cleanup runs the periodic sweep that evicts expired request cache
// entries.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"taxcalc/internal/tax/cache"
	"taxcalc/internal/tax/metrics"
)

// DefaultInterval is the sweep period when none is configured.
const DefaultInterval = 5 * time.Minute

// Result contains the outcome of a single sweep.
type Result struct {
	Removed   int
	Remaining int
	Duration  time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service sweeps a cache.Sweeper on a fixed interval.
type Service struct {
	store    cache.Sweeper
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
}

func New(store cache.Sweeper, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   slog.Default(),
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval reports the configured sweep period.
func (s *Service) Interval() time.Duration {
	return s.interval
}

// Start sweeps until ctx is cancelled and then returns ctx.Err().
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.Error("cache_sweep_failed",
					"error", err,
					"removed", res.Removed,
					"duration_ms", res.Duration.Milliseconds(),
				)
				continue
			}
			s.logger.Debug("cache_sweep_completed",
				"removed", res.Removed,
				"remaining", res.Remaining,
				"duration_ms", res.Duration.Milliseconds(),
			)

		case <-ctx.Done():
			s.logger.Info("cache sweep worker stopping", "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce performs a single sweep. Logging is left to the caller.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	start := time.Now()
	removed, err := s.store.Cleanup(ctx)
	res := Result{
		Removed:   removed,
		Remaining: s.store.Len(),
		Duration:  time.Since(start),
	}
	if s.metrics != nil {
		s.metrics.RecordSweep(removed, res.Remaining)
	}
	return res, err
}
