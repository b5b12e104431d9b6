package tracer

import "context"

// NoopTracer is a tracer that does nothing.
type NoopTracer struct{}

func NewNoop() *NoopTracer {
	return &NoopTracer{}
}

// Start returns the context unchanged and a no-op span.
func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                    {}
func (noopSpan) SetAttributes(...Attribute)   {}
func (noopSpan) AddEvent(string, ...Attribute) {}

var (
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = noopSpan{}
)
