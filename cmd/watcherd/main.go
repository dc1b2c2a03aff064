package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stockwatch/backend/internal/application/poller"
	"github.com/stockwatch/backend/internal/domain/watch"
	"github.com/stockwatch/backend/internal/infrastructure/checkpoint"
	"github.com/stockwatch/backend/internal/infrastructure/config"
	"github.com/stockwatch/backend/internal/infrastructure/logger"
	"github.com/stockwatch/backend/internal/infrastructure/remoteapi"
	"github.com/stockwatch/backend/internal/infrastructure/scheduler"
	"github.com/stockwatch/backend/internal/infrastructure/telemetry"
	"github.com/stockwatch/backend/internal/interfaces/http/handler"
	"github.com/stockwatch/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stockwatch service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("checkpoint_backend", cfg.Checkpoint.Backend),
	)

	ctx := context.Background()

	// Continuous profiling must start before span profiles are enabled
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiler.Enabled,
		ServerAddress:   cfg.Profiler.ServerAddress,
		ApplicationName: cfg.Profiler.ApplicationName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Failed to stop profiler", zap.Error(err))
		}
	}()

	// Distributed tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	if cfg.Profiler.Enabled && cfg.Profiler.SpanProfiles {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shutdown meter provider", zap.Error(err))
		}
	}()

	// OTLP log export: bridge zap onto the collector alongside stdout
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shutdown logger provider", zap.Error(err))
		}
	}()
	log = telemetry.BridgeLogger(log, loggerProvider, cfg.Telemetry.ServiceName, zapcore.InfoLevel)

	// Checkpoint store
	storeFactory := checkpoint.NewStoreFactory(cfg.Checkpoint, cfg.Redis, cfg.Storage,
		checkpoint.WithLogger(log))
	store, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create checkpoint store", zap.Error(err))
	}
	defer closeStore(store, log)

	if gs, ok := store.(*checkpoint.GormStore); ok {
		if err := telemetry.RegisterOtelGorm(gs.DB(), telemetry.DBTracingConfig{
			Enabled:  cfg.Telemetry.Enabled,
			DBSystem: cfg.Checkpoint.Backend,
		}, log); err != nil {
			log.Warn("Failed to register GORM tracing", zap.Error(err))
		}
	}

	// Remote inventory API client
	remoteCfg := remoteapi.NewConfig(cfg.Remote.BaseURL, cfg.Remote.APIKey, cfg.Remote.CompanyID)
	remoteCfg.TimeoutSeconds = cfg.Remote.TimeoutSeconds
	client, err := remoteapi.NewHTTPClient(remoteCfg)
	if err != nil {
		log.Fatal("Failed to create remote API client", zap.Error(err))
	}

	// Change detection pipeline
	pollMetrics, err := telemetry.NewPollMetrics(meterProvider.Meter("stockwatch.poller"))
	if err != nil {
		log.Fatal("Failed to create poll metrics", zap.Error(err))
	}
	fetcher := poller.NewClientFetcher(client, cfg.Poller.PageSize)
	detector := poller.NewDetector(fetcher, store, log, poller.WithMetrics(pollMetrics))

	schedConfig := scheduler.DefaultPollSchedulerConfig()
	schedConfig.DefaultInterval = cfg.Poller.DefaultInterval
	schedConfig.MinInterval = cfg.Poller.MinInterval
	schedConfig.MaxInterval = cfg.Poller.MaxInterval
	schedConfig.MaxHistory = cfg.Poller.HistorySize

	sched, err := scheduler.NewPollScheduler(schedConfig, detector, nil, log)
	if err != nil {
		log.Fatal("Failed to create poll scheduler", zap.Error(err))
	}

	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start poll scheduler", zap.Error(err))
	}

	// Jobs declared in configuration
	for _, jobCfg := range cfg.Jobs {
		event, err := watch.ParseWatchedEvent(jobCfg.Event)
		if err != nil {
			log.Fatal("Invalid watched event in config",
				zap.String("event", jobCfg.Event), zap.Error(err))
		}
		job, err := sched.RegisterJob(event, poller.Options{
			LocationID: jobCfg.LocationID,
			CategoryID: jobCfg.CategoryID,
		}, jobCfg.Interval)
		if err != nil {
			log.Fatal("Failed to register configured job",
				zap.String("event", jobCfg.Event), zap.Error(err))
		}
		log.Info("Registered polling job",
			zap.String("job_id", job.ID.String()),
			zap.String("event", event.Name()),
		)
	}

	// Admin HTTP API
	engine, err := router.New(router.Config{
		Env:            cfg.App.Env,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log,
		handler.NewSystemHandler(cfg.App.Name, cfg.App.Env),
		handler.NewJobsHandler(sched),
		handler.NewLookupHandler(client),
	)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// closeStore closes checkpoint backends that hold connections
func closeStore(store watch.CheckpointStore, log *zap.Logger) {
	type closer interface {
		Close() error
	}
	if c, ok := store.(closer); ok {
		if err := c.Close(); err != nil {
			log.Warn("Failed to close checkpoint store", zap.Error(err))
		}
	}
}
