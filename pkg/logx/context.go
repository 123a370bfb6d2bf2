package logx

import "context"

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying requestID, which the zerolog logger adds to every entry.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	id, ok := ctx.Value(requestIDKey{}).(string)

	return id, ok && id != ""
}
