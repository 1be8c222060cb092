// Package middleware contains HTTP middleware for the API layer.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hanzideck/hanzideck-api/internal/api/shared"
	"github.com/hanzideck/hanzideck-api/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that assigns every request a
// trace ID and stores a request-scoped logger annotated with it in the
// context, so logs across the call stack correlate to one request.
func NewTraceMiddleware(baseLogger *slog.Logger) func(http.Handler) http.Handler {
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = uuid.New().String()
			}

			ctx := shared.WithTraceID(r.Context(), traceID)
			requestLogger := baseLogger.With(slog.String("trace_id", traceID))
			ctx = logger.WithContext(ctx, requestLogger)

			w.Header().Set("X-Trace-ID", traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
