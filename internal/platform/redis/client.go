// Package redis builds the go-redis client backing the shared response cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"taxcalc/internal/platform/config"
)

type poolMetrics struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	timeouts   prometheus.Counter
	totalConns prometheus.Gauge
	idleConns  prometheus.Gauge
	staleConns prometheus.Counter
}

func newPoolMetrics(reg prometheus.Registerer) *poolMetrics {
	f := promauto.With(reg)
	return &poolMetrics{
		hits: f.NewCounter(prometheus.CounterOpts{
			Name: "taxcalc_redis_pool_hits_total",
			Help: "Number of times a connection was found in the pool",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name: "taxcalc_redis_pool_misses_total",
			Help: "Number of times a connection was not found in the pool",
		}),
		timeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "taxcalc_redis_pool_timeouts_total",
			Help: "Number of times a connection was not obtained due to timeout",
		}),
		totalConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "taxcalc_redis_pool_total_conns",
			Help: "Number of total connections in the pool",
		}),
		idleConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "taxcalc_redis_pool_idle_conns",
			Help: "Number of idle connections in the pool",
		}),
		staleConns: f.NewCounter(prometheus.CounterOpts{
			Name: "taxcalc_redis_pool_stale_conns_total",
			Help: "Number of stale connections removed from the pool",
		}),
	}
}

// Client wraps the go-redis client with health checking and pool metrics.
type Client struct {
	*redis.Client
	metrics   *poolMetrics
	lastStats *redis.PoolStats
}

// New connects to Redis. It returns nil, nil when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig, reg prometheus.Registerer) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client, metrics: newPoolMetrics(reg)}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RecordPoolStats publishes the pool statistics. Counters advance by the
// delta since the previous call.
func (c *Client) RecordPoolStats() {
	stats := c.PoolStats()
	m := c.metrics

	m.totalConns.Set(float64(stats.TotalConns))
	m.idleConns.Set(float64(stats.IdleConns))

	prev := c.lastStats
	if prev == nil {
		prev = &redis.PoolStats{}
	}
	addDelta(m.hits, stats.Hits, prev.Hits)
	addDelta(m.misses, stats.Misses, prev.Misses)
	addDelta(m.timeouts, stats.Timeouts, prev.Timeouts)
	addDelta(m.staleConns, stats.StaleConns, prev.StaleConns)

	c.lastStats = stats
}

func addDelta(c prometheus.Counter, now, before uint32) {
	if now > before {
		c.Add(float64(now - before))
	}
}

// RunPoolStats records pool statistics every interval until ctx is done.
func (c *Client) RunPoolStats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}
