package tracer

import "context"

// NoopTracer discards all spans.
type NoopTracer struct{}

func NewNoop() *NoopTracer {
	return &NoopTracer{}
}

// Start returns the context unchanged and a no-op span.
func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(_ error)                       {}
func (noopSpan) SetAttributes(_ ...Attribute)      {}
func (noopSpan) AddEvent(_ string, _ ...Attribute) {}

var (
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = noopSpan{}
)
