// Package tracer provides the tracing abstraction used by the tax
// orchestrators and the remote client.
//
// Callers depend on the Tracer interface only. Two implementations exist:
//   - NoopTracer: for tests and when tracing is disabled
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span; the returned context carries it to child
	// operations.
	//
	//   ctx, span := tr.Start(ctx, tracer.SpanPIT,
	//       tracer.Int64(tracer.AttrTaxYear, 2026),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashKey shortens a request key for span attributes. Request keys embed the
// full request body, which is too large and too revealing to attach verbatim.
func HashKey(key string) string {
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// Span names.
const (
	SpanPIT           = "tax.pit"
	SpanBusiness      = "tax.business"
	SpanRemoteInvoke  = "tax.remote.invoke"
	SpanRemoteAttempt = "tax.remote.attempt"
)

// Attribute keys.
const (
	AttrTaxYear       = "tax.year"
	AttrEndpoint      = "remote.endpoint"
	AttrRequestKey    = "remote.request_key"
	AttrAttempt       = "remote.attempt"
	AttrStatusCode    = "http.status_code"
	AttrCacheHit      = "cache.hit"
	AttrErrorCategory = "error.category"
	AttrUsingFallback = "tax.using_fallback"
	AttrExempt        = "tax.exempt"
)

// Event names.
const (
	EventStateTransition = "state.transition"
	EventRetryScheduled  = "retry.scheduled"
)
