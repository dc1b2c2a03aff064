package checkpoint

import (
	"fmt"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stockwatch/backend/internal/domain/watch"
	"github.com/stockwatch/backend/internal/infrastructure/config"
	applog "github.com/stockwatch/backend/internal/infrastructure/logger"
)

// StoreFactory creates checkpoint stores based on configuration
type StoreFactory struct {
	cfg           config.CheckpointConfig
	redisConfig   config.RedisConfig
	storageConfig config.StorageConfig
	logger        *zap.Logger
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.CheckpointConfig, redisCfg config.RedisConfig, storageCfg config.StorageConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		cfg:           cfg,
		redisConfig:   redisCfg,
		storageConfig: storageCfg,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates the checkpoint store the configuration names. When the
// configured backend is unavailable and the fallback is allowed, it falls
// back to the in-memory store with a warning; the jobs then re-bootstrap
// after every restart.
func (f *StoreFactory) CreateStore() (watch.CheckpointStore, error) {
	store, err := f.createBackend()
	if err == nil {
		f.logger.Info("using checkpoint store", zap.String("backend", f.cfg.Backend))
		return store, nil
	}

	if !f.cfg.AllowMemoryFallback {
		return nil, fmt.Errorf("checkpoint backend %q required but unavailable: %w", f.cfg.Backend, err)
	}

	f.logger.Warn("checkpoint backend unavailable, falling back to in-memory store. "+
		"Checkpoints will not survive restarts and every job will re-bootstrap.",
		zap.String("backend", f.cfg.Backend),
		zap.Error(err),
	)
	return NewInMemoryStore(), nil
}

// gormLogger routes GORM's SQL logging through the application logger
func (f *StoreFactory) gormLogger() gormlogger.Interface {
	return applog.NewGormLogger(f.logger, gormlogger.Warn)
}

func (f *StoreFactory) createBackend() (watch.CheckpointStore, error) {
	switch f.cfg.Backend {
	case "memory":
		return NewInMemoryStore(), nil
	case "redis":
		return NewRedisStore(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		})
	case "sqlite":
		return OpenSQLite(f.cfg.SQLitePath, f.gormLogger())
	case "postgres":
		return OpenPostgres(f.cfg.PostgresDSN, f.gormLogger())
	case "s3":
		return NewS3Store(&f.storageConfig)
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", f.cfg.Backend)
	}
}
