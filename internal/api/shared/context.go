package shared

import "context"

// contextKey is a private type for context keys defined in this package.
type contextKey int

// traceIDKey is the context key under which the request trace ID is
// stored.
const traceIDKey contextKey = iota

// WithTraceID returns a new context carrying the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID stored in the context, or an empty
// string when there is none.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}
