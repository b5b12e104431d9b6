// Package tracer provides a lightweight tracing abstraction for protocol operations.
//
// Services depend on the Tracer interface rather than on OpenTelemetry directly.
// Implementations:
//   - NoopTracer: for tests
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
//
// Example:
//
//	ctx, span := s.tracer.Start(ctx, "verification.fulfill",
//	    tracer.String("correlation_id", id.String()),
//	)
//	defer func() { span.End(err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
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

// Stringer records addresses, hashes and IDs by their canonical string form.
func Stringer(key string, value fmt.Stringer) Attribute {
	return Attribute{Key: key, Value: value}
}

// HashDID returns a short stable digest of a DID so spans can be correlated
// without exporting the identifier itself.
func HashDID(did string) string {
	if did == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(did))
	return hex.EncodeToString(sum[:8])
}
