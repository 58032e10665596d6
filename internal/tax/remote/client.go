// Package remote is the resilient client for the authoritative tax
// calculation service. Calls are cached, retried with exponential backoff on
// transient failures, and optionally guarded by a circuit breaker.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"taxcalc/internal/tax/cache"
	"taxcalc/internal/tax/metrics"
	"taxcalc/internal/tax/tracer"
	"taxcalc/pkg/platform/circuit"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultRetries     = 2
	DefaultBackoffBase = time.Second

	maxResponseBytes = 1 << 20
	maxErrorSnippet  = 256

	headerRequestID = "X-Request-ID"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the client. Zero values take the defaults above; a
// negative Retries disables retries.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	Retries     int
	BackoffBase time.Duration
	CacheTTL    time.Duration
}

// Client invokes remote endpoints. Safe for concurrent use.
type Client struct {
	baseURL     string
	timeout     time.Duration
	retries     int
	backoffBase time.Duration
	cacheTTL    time.Duration

	http    HTTPDoer
	cache   cache.Store
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
	flights singleflight.Group
	sleep   func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithCache enables response caching. Without it every call hits the network.
func WithCache(store cache.Store) Option {
	return func(c *Client) {
		c.cache = store
	}
}

// WithBreaker guards calls with a circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the service rooted at cfg.BaseURL.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch {
	case cfg.Retries == 0:
		cfg.Retries = DefaultRetries
	case cfg.Retries < 0:
		cfg.Retries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		timeout:     cfg.Timeout,
		retries:     cfg.Retries,
		backoffBase: cfg.BackoffBase,
		cacheTTL:    cfg.CacheTTL,
		http:        &http.Client{},
		tracer:      tracer.NewNoop(),
		logger:      slog.Default(),
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type callOptions struct {
	retries  int
	useCache bool
	validate func([]byte) error
}

// CallOption adjusts a single Invoke.
type CallOption func(*callOptions)

// WithRetries overrides the number of retries after the first attempt.
func WithRetries(n int) CallOption {
	return func(o *callOptions) {
		if n >= 0 {
			o.retries = n
		}
	}
}

// WithoutCache bypasses both cache lookup and cache write.
func WithoutCache() CallOption {
	return func(o *callOptions) {
		o.useCache = false
	}
}

// WithValidator rejects 2xx payloads that fail fn. Rejected payloads are
// reported as CategoryBadData and never cached.
func WithValidator(fn func([]byte) error) CallOption {
	return func(o *callOptions) {
		o.validate = fn
	}
}

// Invoke POSTs body as JSON to endpoint and returns the raw response payload.
//
// A cached payload for the same endpoint and body is returned without a
// network call. Timeouts, network errors and 5xx responses are retried with
// delays of base, 2×base, 4×base... A 4xx response or an unusable 2xx body
// is returned immediately. Only successful payloads are cached.
//
// Errors: always *Error.
func (c *Client) Invoke(ctx context.Context, endpoint string, body any, opts ...CallOption) ([]byte, error) {
	o := callOptions{retries: c.retries, useCache: true}
	for _, opt := range opts {
		opt(&o)
	}
	if c.cache == nil {
		o.useCache = false
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, NewError(CategoryInternal, endpoint, "encode request", err)
	}
	key := cache.RawKey(endpoint, raw)

	ctx, span := c.tracer.Start(ctx, tracer.SpanRemoteInvoke,
		tracer.String(tracer.AttrEndpoint, endpoint),
		tracer.String(tracer.AttrRequestKey, tracer.HashKey(key)),
	)

	if !o.useCache {
		payload, err := c.fetch(ctx, endpoint, key, raw, o)
		span.End(err)
		return payload, err
	}

	if payload, ok := c.lookup(ctx, endpoint, key); ok {
		span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
		span.End(nil)
		return payload, nil
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))

	// Identical concurrent requests share one flight. The flight outlives an
	// impatient caller so its result can still be cached for the others.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(key, func() (any, error) {
		return c.fetch(flightCtx, endpoint, key, raw, o)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			span.End(res.Err)
			return nil, res.Err
		}
		span.End(nil)
		return res.Val.([]byte), nil
	case <-ctx.Done():
		err := NewError(CategoryCanceled, endpoint, "caller abandoned request", ctx.Err())
		span.End(err)
		return nil, err
	}
}

func (c *Client) lookup(ctx context.Context, endpoint, key string) ([]byte, bool) {
	payload, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		if c.metrics != nil {
			c.metrics.RecordCacheHit(endpoint)
			c.metrics.RecordRemoteRequest(endpoint, metrics.OutcomeCached)
		}
		c.logger.DebugContext(ctx, "remote_cache_hit", "endpoint", endpoint)
		return payload, true
	case !errors.Is(err, cache.ErrNotFound):
		c.logger.WarnContext(ctx, "remote_cache_read_failed", "endpoint", endpoint, "error", err)
	}
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(endpoint)
	}
	return nil, false
}

// fetch runs the attempt loop for one logical request.
func (c *Client) fetch(ctx context.Context, endpoint, key string, raw []byte, o callOptions) ([]byte, error) {
	retries := o.retries
	probing := false
	if c.breaker != nil {
		probe, release, ok := c.breaker.Acquire()
		if !ok {
			err := NewError(CategoryCircuitOpen, endpoint, "circuit open, probe in flight", nil)
			if c.metrics != nil {
				c.metrics.RecordRemoteRequest(endpoint, metrics.OutcomeFailure)
			}
			c.logger.DebugContext(ctx, "remote_call_short_circuited", "endpoint", endpoint)
			return nil, err
		}
		defer release()
		probing = probe
	}
	if probing {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := c.backoffBase << (attempt - 1)
			c.logger.WarnContext(ctx, "remote_retry_scheduled",
				"endpoint", endpoint,
				"attempt", attempt+1,
				"delay_ms", delay.Milliseconds(),
				"error", lastErr,
			)
			if err := c.sleep(ctx, delay); err != nil {
				lastErr = NewError(CategoryCanceled, endpoint, "abandoned during backoff", err)
				break
			}
		}

		payload, err := c.attempt(ctx, endpoint, raw, attempt+1)
		if err == nil && o.validate != nil {
			if verr := o.validate(payload); verr != nil {
				err = NewError(CategoryBadData, endpoint, "response failed validation", verr)
			}
		}
		if err == nil {
			c.recordSuccess(ctx, endpoint)
			if o.useCache {
				if serr := c.cache.Set(ctx, key, payload, c.cacheTTL); serr != nil {
					c.logger.WarnContext(ctx, "remote_cache_write_failed", "endpoint", endpoint, "error", serr)
				}
			}
			return payload, nil
		}

		lastErr = err
		switch GetCategory(err) {
		case CategoryClientRejected, CategoryCanceled:
		default:
			c.recordFailure(ctx, endpoint)
		}
		if !IsRetryable(err) {
			break
		}
	}

	if probing && GetCategory(lastErr) != CategoryCanceled {
		lastErr = NewError(CategoryCircuitOpen, endpoint, "circuit open, probe failed", lastErr)
	}
	if c.metrics != nil {
		c.metrics.RecordRemoteRequest(endpoint, metrics.OutcomeFailure)
	}
	c.logger.WarnContext(ctx, "remote_call_failed",
		"endpoint", endpoint,
		"category", string(GetCategory(lastErr)),
		"error", lastErr,
	)
	return nil, lastErr
}

// attempt performs one HTTP exchange under its own timeout.
func (c *Client) attempt(ctx context.Context, endpoint string, raw []byte, n int) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanRemoteAttempt,
		tracer.String(tracer.AttrEndpoint, endpoint),
		tracer.Int64(tracer.AttrAttempt, int64(n)),
	)
	start := time.Now()

	payload, status, err := c.do(ctx, endpoint, raw)

	result := metrics.OutcomeSuccess
	if err != nil {
		result = string(GetCategory(err))
		span.SetAttributes(tracer.String(tracer.AttrErrorCategory, result))
	}
	if status != 0 {
		span.SetAttributes(tracer.Int64(tracer.AttrStatusCode, int64(status)))
	}
	if c.metrics != nil {
		c.metrics.ObserveAttempt(endpoint, result, time.Since(start).Seconds())
	}
	c.logger.DebugContext(ctx, "remote_attempt",
		"endpoint", endpoint,
		"attempt", n,
		"status", status,
		"result", result,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	span.End(err)
	return payload, err
}

func (c *Client) do(parent context.Context, endpoint string, raw []byte) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, 0, NewError(CategoryInternal, endpoint, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, classifyTransportError(parent, ctx, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, classifyTransportError(parent, ctx, endpoint, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if !json.Valid(body) {
			return nil, resp.StatusCode, newStatusError(CategoryBadData, endpoint, resp.StatusCode, "response is not JSON")
		}
		return body, resp.StatusCode, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, resp.StatusCode, newStatusError(CategoryClientRejected, endpoint, resp.StatusCode,
			fmt.Sprintf("rejected (%d): %s", resp.StatusCode, snippet(body)))
	default:
		return nil, resp.StatusCode, newStatusError(CategoryServerError, endpoint, resp.StatusCode,
			fmt.Sprintf("unexpected status (%d): %s", resp.StatusCode, snippet(body)))
	}
}

func classifyTransportError(parent, attemptCtx context.Context, endpoint string, err error) *Error {
	if parent.Err() != nil {
		return NewError(CategoryCanceled, endpoint, "caller abandoned request", err)
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(CategoryTimeout, endpoint, "request timeout", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return NewError(CategoryTimeout, endpoint, "request timeout", err)
	}
	return NewError(CategoryNetwork, endpoint, "request failed", err)
}

func (c *Client) recordSuccess(ctx context.Context, endpoint string) {
	if c.metrics != nil {
		c.metrics.RecordRemoteRequest(endpoint, metrics.OutcomeSuccess)
	}
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "remote_circuit_closed", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordFailure(ctx context.Context, endpoint string) {
	if c.breaker == nil {
		return
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "remote_circuit_opened", "breaker", c.breaker.Name(), "endpoint", endpoint)
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		return s[:maxErrorSnippet]
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
