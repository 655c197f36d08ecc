package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/satjeet/ClinePythonDividis/pkg/logger"
)

const correlationHeader = "X-Correlation-ID"

// RequestLogging tags every request with a correlation ID and logs one line
// per response. Paths in quiet (probes, scrapes) get the ID but no log line.
func RequestLogging(l *slog.Logger, quiet ...string) func(http.Handler) http.Handler {
	skip := newPathSet(quiet)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(correlationHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(correlationHeader, id)
			ctx := logger.WithCorrelationID(r.Context(), id)

			sw := wrapWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if skip.has(r.URL.Path) {
				return
			}
			level := slog.LevelInfo
			if sw.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.WithContext(ctx, l).Log(ctx, level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("surface", surface(r)),
				slog.Int("status", sw.Status()),
				slog.Int("bytes", sw.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
