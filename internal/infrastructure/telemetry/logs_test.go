package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	cfg := LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "test-service",
	}

	lp, err := NewLoggerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, lp)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewLoggerProvider_Enabled(t *testing.T) {
	// The OTLP gRPC exporter connects lazily, so creation and shutdown
	// succeed without a reachable collector.
	ctx := context.Background()

	cfg := LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "test-service",
		Insecure:          true,
	}

	lp, err := NewLoggerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewZapOTELCore_NilProvider(t *testing.T) {
	core := NewZapOTELCore("test-service", nil, zapcore.InfoLevel)
	require.NotNil(t, core)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCore_DisabledProvider(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	core := NewZapOTELCore("test-service", lp, zapcore.InfoLevel)
	require.NotNil(t, core)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestBridgeLogger_DisabledReturnsBase(t *testing.T) {
	base := zap.NewNop()

	assert.Same(t, base, BridgeLogger(base, nil, "test-service", zapcore.InfoLevel))

	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.Same(t, base, BridgeLogger(base, lp, "test-service", zapcore.InfoLevel))
}

func TestLevelFilterCore(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}

	logger := zap.New(filtered)
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn message", entries[0].Message)
	assert.Equal(t, "error message", entries[1].Message)
}

func TestLevelFilterCore_With(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.InfoLevel}

	child := filtered.With([]zapcore.Field{zap.String("component", "poller")})

	// The child keeps the level filter
	wrapped, ok := child.(*levelFilterCore)
	require.True(t, ok)
	assert.Equal(t, zapcore.InfoLevel, wrapped.minLevel)

	zap.New(child).Info("with fields")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "poller", entries[0].ContextMap()["component"])
}
