// Package requestctx carries request-scoped values through context.Context
// so services can tag their logs without depending on gin.
package requestctx

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	connIDKey
)

// WithRequestID returns ctx carrying the HTTP request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request id, or "".
func RequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}

// WithConnID returns ctx carrying the realtime connection id.
func WithConnID(ctx context.Context, connID string) context.Context {
	return context.WithValue(ctx, connIDKey, connID)
}

// ConnID returns the realtime connection id, or "".
func ConnID(ctx context.Context) string {
	s, _ := ctx.Value(connIDKey).(string)
	return s
}
