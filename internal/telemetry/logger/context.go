package logger

import "context"

type (
	loggerCtxKey    struct{}
	requestIDCtxKey struct{}
)

// WithLogger returns a copy of ctx that carries l as the request logger.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, l)
}

// FromContext returns the logger stored by WithLogger, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID returns a copy of ctx that carries the HTTP request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, requestID)
}

// RequestIDFromContext returns the id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// L returns the request logger of ctx with a request_id attribute when
// ctx carries one. HTTP middleware and handlers log through it so every
// line of a request can be correlated with the X-Request-ID header.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := RequestIDFromContext(ctx); id != "" {
		return l.With("request_id", id)
	}
	return l
}
