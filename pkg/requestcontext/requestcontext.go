// Package requestcontext carries per-request values set by middleware.
package requestcontext

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	callerKey    contextKey = "caller"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID or "" when none was set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithCaller stores the authenticated account address acting on this request.
func WithCaller(ctx context.Context, caller common.Address) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// Caller returns the authenticated account address, if any.
func Caller(ctx context.Context) (common.Address, bool) {
	v, ok := ctx.Value(callerKey).(common.Address)
	return v, ok
}
