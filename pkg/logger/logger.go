package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

type ctxKey int

const (
	idsKey ctxKey = iota
	loggerKey
)

// ids are the request identifiers attached to every log line. They travel
// together so setting one never drops the other.
type ids struct {
	correlation string
	session     string
}

func idsFrom(ctx context.Context) ids {
	v, _ := ctx.Value(idsKey).(ids)
	return v
}

// New returns the service logger: JSON lines on stdout tagged with service.
func New(service, level string) *slog.Logger {
	return NewWithWriter(service, level, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(service, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl <= slog.LevelDebug}
	return slog.New(slog.NewJSONHandler(w, opts)).With(slog.String("service", service))
}

// NewText returns a key=value logger for the terminal client. It writes to w
// (stderr in practice) so diagnostics never interleave with command output.
func NewText(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel accepts the slog level names in any case. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	v := idsFrom(ctx)
	v.correlation = id
	return context.WithValue(ctx, idsKey, v)
}

func CorrelationIDFromContext(ctx context.Context) string {
	return idsFrom(ctx).correlation
}

// WithSessionID tags the context with the browser session that owns the
// workspace being served.
func WithSessionID(ctx context.Context, id string) context.Context {
	v := idsFrom(ctx)
	v.session = id
	return context.WithValue(ctx, idsKey, v)
}

func SessionIDFromContext(ctx context.Context) string {
	return idsFrom(ctx).session
}

// NewContext stores a request-scoped logger for FromContext.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext falls back to slog.Default when no logger was stored.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext decorates l with whatever identifiers ctx carries: correlation
// and session IDs plus the active trace and span.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	var attrs []any
	v := idsFrom(ctx)
	if v.correlation != "" {
		attrs = append(attrs, slog.String("correlation_id", v.correlation))
	}
	if v.session != "" {
		attrs = append(attrs, slog.String("session_id", v.session))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()))
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
