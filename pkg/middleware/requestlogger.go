package middleware

import (
	"log/slog"
	"net/http"

	"github.com/summerbooks/backend/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation_id, user_id, trace_id, and span_id. Handlers fetch it with
// logger.FromContext(ctx).
//
// Mount after RequestLogging (correlation ID) and Tracing (span context) so
// both are available for enrichment. The caller identity is taken from the
// X-User-ID header, falling back to the X-Session-ID guest session header.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				userID = r.Header.Get("X-Session-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			enriched := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, enriched)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
