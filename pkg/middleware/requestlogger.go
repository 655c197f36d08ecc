package middleware

import (
	"log/slog"
	"net/http"

	"github.com/satjeet/ClinePythonDividis/pkg/logger"
)

// RequestLogger returns middleware that builds a request-scoped logger
// enriched with correlation_id, session_id, trace_id and span_id and stores it
// in context via logger.NewContext. Downstream handlers retrieve it with
// logger.FromContext(ctx).
//
// The session id is taken from the context when an earlier middleware set it,
// otherwise from the sessionCookie cookie. Mount after RequestLogging and
// Tracing.
func RequestLogger(base *slog.Logger, sessionCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logger.SessionIDFromContext(ctx) == "" && sessionCookie != "" {
				if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
					ctx = logger.WithSessionID(ctx, c.Value)
				}
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
