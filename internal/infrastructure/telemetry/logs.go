// Zap -> OpenTelemetry log bridge.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig holds logs bridge configuration.
type LogsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
}

// LoggerProvider wraps the OpenTelemetry LoggerProvider with lifecycle management.
type LoggerProvider struct {
	provider *sdklog.LoggerProvider
	logger   *zap.Logger
	config   LogsConfig
}

// NewLoggerProvider creates and configures a new OpenTelemetry LoggerProvider.
// If logs are disabled, it returns a provider that wraps the no-op global logger.
func NewLoggerProvider(ctx context.Context, cfg LogsConfig, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("OTEL Logs disabled, using no-op logger provider")
		return lp, nil
	}

	exporterOpts := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlploggrpc.WithInsecure())
	}

	exporter, err := otlploggrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}

	res, err := serviceResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	lp.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(
			sdklog.NewBatchProcessor(exporter),
		),
	)

	global.SetLoggerProvider(lp.provider)

	logger.Info("OpenTelemetry LoggerProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
	)

	return lp, nil
}

// Shutdown gracefully shuts down the logger provider, flushing pending logs
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := lp.provider.Shutdown(shutdownCtx); err != nil {
		lp.logger.Error("Error shutting down logger provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown logger provider: %w", err)
	}
	return nil
}

// IsEnabled returns whether OTEL logs are enabled
func (lp *LoggerProvider) IsEnabled() bool {
	return lp.config.Enabled && lp.provider != nil
}

// ForceFlush immediately exports all logs not yet exported
func (lp *LoggerProvider) ForceFlush(ctx context.Context) error {
	if lp.provider == nil {
		return nil
	}
	return lp.provider.ForceFlush(ctx)
}

// NewZapOTELCore creates a zapcore.Core that bridges Zap logs to
// OpenTelemetry. Combine it with an existing core using zapcore.NewTee for
// dual output to both stdout and the collector.
func NewZapOTELCore(serviceName string, lp *LoggerProvider, level zapcore.Level) zapcore.Core {
	if lp == nil || !lp.IsEnabled() {
		return zapcore.NewNopCore()
	}

	core := otelzap.NewCore(serviceName,
		otelzap.WithLoggerProvider(lp.provider),
	)

	// The otelzap core has no minimum level of its own
	if level != zapcore.DebugLevel {
		return &levelFilterCore{Core: core, minLevel: level}
	}
	return core
}

// BridgeLogger rebuilds a zap logger so its output also flows to the OTEL
// collector. Returns the original logger when the bridge is disabled.
func BridgeLogger(base *zap.Logger, lp *LoggerProvider, serviceName string, level zapcore.Level) *zap.Logger {
	otelCore := NewZapOTELCore(serviceName, lp, level)
	if lp == nil || !lp.IsEnabled() {
		return base
	}
	return zap.New(
		zapcore.NewTee(base.Core(), otelCore),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

// levelFilterCore wraps a zapcore.Core with level filtering.
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

// Enabled implements zapcore.Core.
func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.minLevel && c.Core.Enabled(lvl)
}

// Check implements zapcore.Core.
func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

// With implements zapcore.Core.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:     c.Core.With(fields),
		minLevel: c.minLevel,
	}
}
