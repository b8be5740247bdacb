package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"sales-dashboard/internal/config"
)

// NewLogger builds the process logger. Output goes to w so tests can capture it.
func NewLogger(cfg config.LoggerConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(cfg.Level),
		AddSource: cfg.Level == "debug",
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With("service", "sales-dashboard")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type contextKey string

const RequestIDKey contextKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// RequestLogger tags base with the request ID carried by ctx, if any.
func RequestLogger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if id := GetRequestID(ctx); id != "" {
		return base.With("request_id", id)
	}
	return base
}
