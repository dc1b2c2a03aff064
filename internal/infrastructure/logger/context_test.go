package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newCaptureLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestWithContext(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)
	assert.NotNil(t, FromContext(ctx))
}

func TestFromContext(t *testing.T) {
	t.Run("missing logger falls back to no-op", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)
		assert.NotPanics(t, func() {
			logger.Info("test")
		})
	})

	t.Run("wrong value type falls back to no-op", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		logger := FromContext(ctx)
		require.NotNil(t, logger)
		assert.NotPanics(t, func() {
			logger.Info("test")
		})
	})
}

func TestWithRequestID(t *testing.T) {
	logger, buf := newCaptureLogger()

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))

	enriched.Info("test")
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)

	t.Run("second call overrides", func(t *testing.T) {
		ctx, _ = WithRequestID(ctx, logger, "req-456")
		assert.Equal(t, "req-456", GetRequestID(ctx))
	})
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

// ---------------------------------------------------------------------------
// Trace Correlation
// ---------------------------------------------------------------------------

func TestTraceCorrelation_NoSpan(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))

	base := zap.NewNop()
	assert.Equal(t, base, WithTraceContext(ctx, base))
}

func TestTraceCorrelation_InvalidSpanContext(t *testing.T) {
	// The noop tracer produces spans with invalid span contexts, which the
	// helpers must treat like no span at all.
	tracer := noop.NewTracerProvider().Tracer("test")
	ctx, span := tracer.Start(context.Background(), "test-span")
	defer span.End()

	require.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))

	base := zap.NewNop()
	assert.Equal(t, base, WithTraceContext(ctx, base))
}

// ---------------------------------------------------------------------------
// ContextLogger
// ---------------------------------------------------------------------------

func TestL(t *testing.T) {
	t.Run("uses the context logger when present", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		ctx := WithContext(context.Background(), logger)

		L(ctx).Info("from context")
		assert.Contains(t, buf.String(), `"msg":"from context"`)
	})

	t.Run("empty context does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			L(context.Background()).Info("test")
		})
	})
}

func TestContextLogger_EnrichesWithRequestID(t *testing.T) {
	logger, buf := newCaptureLogger()

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, logger, "req-123")
	ctx = WithContext(ctx, logger)

	L(ctx).Info("test message", zap.String("extra", "value"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"extra":"value"`)
}

func TestContextLogger_EmptyFieldsOmitted(t *testing.T) {
	logger, buf := newCaptureLogger()

	WithLogger(context.Background(), logger).Info("test")

	output := buf.String()
	assert.Contains(t, output, `"msg":"test"`)
	assert.NotContains(t, output, `"request_id"`)
	assert.NotContains(t, output, `"trace_id"`)
}

func TestContextLogger_With(t *testing.T) {
	logger, buf := newCaptureLogger()

	WithLogger(context.Background(), logger).
		With(zap.String("field1", "value1")).
		With(zap.String("field2", "value2")).
		Info("chained")

	output := buf.String()
	assert.Contains(t, output, `"field1":"value1"`)
	assert.Contains(t, output, `"field2":"value2"`)
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() {
		cl.Info("test")
	})
}

func TestContextLogger_LogLevels(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())
	assert.NotPanics(t, func() {
		cl.Debug("debug")
		cl.Info("info")
		cl.Warn("warn")
		cl.Error("error")
	})
}

func TestContextLogger_Zap(t *testing.T) {
	zapLogger := WithLogger(context.Background(), zap.NewNop()).Zap()
	require.NotNil(t, zapLogger)
	assert.NotPanics(t, func() {
		zapLogger.Info("test")
	})
}
