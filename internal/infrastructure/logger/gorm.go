package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts zap to GORM's logger interface so checkpoint SQL shows up
// in the service log with request and trace correlation.
type GormLogger struct {
	logger               *zap.Logger
	logLevel             gormlogger.LogLevel
	slowThreshold        time.Duration
	ignoreRecordNotFound bool
}

// GormLoggerOption customizes a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides the slow-query threshold
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = threshold
	}
}

// WithIgnoreRecordNotFoundError controls whether gorm.ErrRecordNotFound is
// logged as an error. Checkpoint lookups for fresh jobs miss by design, so the
// default is to ignore it.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.ignoreRecordNotFound = ignore
	}
}

// NewGormLogger creates a new GORM logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		logger:               zapLogger.Named("gorm"),
		logLevel:             level,
		slowThreshold:        200 * time.Millisecond,
		ignoreRecordNotFound: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy of the logger with the given level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

// Info logs informational messages
func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, args...)
	}
}

// Warn logs warning messages
func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, args...)
	}
}

// Error logs error messages
func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, args...)
	}
}

// Trace logs completed SQL statements with timing, correlated to the request
// and trace that issued them
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}

	switch {
	case err != nil && l.logLevel >= gormlogger.Error &&
		(!errors.Is(err, gorm.ErrRecordNotFound) || !l.ignoreRecordNotFound):
		l.logger.Error("SQL error", append(fields, zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.logLevel >= gormlogger.Warn:
		l.logger.Warn(fmt.Sprintf("Slow SQL >= %v", l.slowThreshold), fields...)
	case l.logLevel >= gormlogger.Info:
		l.logger.Debug("SQL query", fields...)
	}
}
