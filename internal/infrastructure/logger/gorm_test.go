package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func checkpointQuery() (string, int64) {
	return "SELECT * FROM checkpoints WHERE job_id = ?", 1
}

func TestGormLogger_TraceQuery(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Info)

	gormLog.Trace(context.Background(), time.Now(), checkpointQuery, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "SQL query", entry.Message)
	assert.Equal(t, zapcore.DebugLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "SELECT * FROM checkpoints WHERE job_id = ?", fields["sql"])
	assert.Equal(t, int64(1), fields["rows"])
	assert.Contains(t, fields, "elapsed")
}

func TestGormLogger_TraceError(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Error)

	gormLog.Trace(context.Background(), time.Now(), checkpointQuery, assert.AnError)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "SQL error", entry.Message)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)

	loggedErr, ok := entry.ContextMap()["error"].(error)
	require.True(t, ok)
	assert.EqualError(t, loggedErr, assert.AnError.Error())
}

func TestGormLogger_RecordNotFound(t *testing.T) {
	t.Run("ignored by default", func(t *testing.T) {
		log, logs := newObservedLogger()
		gormLog := NewGormLogger(log, gormlogger.Error)

		gormLog.Trace(context.Background(), time.Now(), checkpointQuery, gorm.ErrRecordNotFound)
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("logged when not ignored", func(t *testing.T) {
		log, logs := newObservedLogger()
		gormLog := NewGormLogger(log, gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		gormLog.Trace(context.Background(), time.Now(), checkpointQuery, gorm.ErrRecordNotFound)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "SQL error", logs.All()[0].Message)
	})
}

func TestGormLogger_SlowQuery(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

	gormLog.Trace(context.Background(), time.Now().Add(-time.Millisecond), checkpointQuery, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "Slow SQL")
}

func TestGormLogger_Silent(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Silent)

	gormLog.Trace(context.Background(), time.Now(), checkpointQuery, assert.AnError)
	gormLog.Info(context.Background(), "migration done")
	assert.Equal(t, 0, logs.Len())
}

func TestGormLogger_LogMode(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Info)

	silenced := gormLog.LogMode(gormlogger.Silent)
	silenced.Trace(context.Background(), time.Now(), checkpointQuery, nil)
	assert.Equal(t, 0, logs.Len())

	// the original keeps its level
	gormLog.Trace(context.Background(), time.Now(), checkpointQuery, nil)
	assert.Equal(t, 1, logs.Len())
}

func TestGormLogger_MessageLevels(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Warn)

	gormLog.Info(context.Background(), "applying migration %s", "checkpoints")
	assert.Equal(t, 0, logs.Len())

	gormLog.Warn(context.Background(), "connection pool at %d", 10)
	gormLog.Error(context.Background(), "migration failed: %v", assert.AnError)
	assert.Equal(t, 2, logs.Len())
}

func TestGormLogger_RequestCorrelation(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-99")
	gormLog.Trace(ctx, time.Now(), checkpointQuery, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-99", logs.All()[0].ContextMap()["request_id"])
}

func TestGormLogger_TraceCorrelation(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Info)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "poll-cycle")
	defer span.End()

	gormLog.Trace(ctx, time.Now(), checkpointQuery, nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
}

func TestGormLogger_NamedGorm(t *testing.T) {
	log, logs := newObservedLogger()
	gormLog := NewGormLogger(log, gormlogger.Info)

	gormLog.Trace(context.Background(), time.Now(), checkpointQuery, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm", logs.All()[0].LoggerName)
}
