// Package requestctx carries per-request identity through context.
package requestctx

import "context"

// callerAddressContextKey is the context key for the caller's address.
type callerAddressContextKey struct{}

// requestIDContextKey is the context key for the request identifier.
type requestIDContextKey struct{}

// WithCallerAddress stores the caller's address in context.
func WithCallerAddress(ctx context.Context, address string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerAddressContextKey{}, address)
}

// CallerAddressFromContext returns the caller's address stored in context.
func CallerAddressFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(callerAddressContextKey{}).(string)
	return value
}

// WithRequestID stores a request identifier in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request identifier stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}
