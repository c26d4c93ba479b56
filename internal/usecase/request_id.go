package usecase

import "context"

type requestIDKey struct{}

// WithRequestID stores the id of the HTTP request driving an operation
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the stored request id, or ""
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
