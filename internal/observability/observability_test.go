package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/config"
)

func TestNewLogger_JSONWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(config.LoggerConfig{Level: "info", Format: "json"}, &buf)

	ctx := WithRequestID(context.Background(), "abc123")
	RequestLogger(ctx, base).Info("summary computed", "rows", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "summary computed", line["msg"])
	assert.Equal(t, "abc123", line["request_id"])
	assert.Equal(t, "sales-dashboard", line["service"])
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("unknown"))
}

func TestRequestLogger_NoID(t *testing.T) {
	base := slog.Default()
	assert.Same(t, base, RequestLogger(context.Background(), base))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(config.TelemetryConfig{TracingEnabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "noop")
	defer span.End()
	assert.NotNil(t, ctx)
}
