// Database tracing for the GORM-backed checkpoint store.
package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled    bool   // Enable database tracing
	LogFullSQL bool   // Include query variables in spans (dev only)
	DBSystem   string // Database system name (default: "postgresql")
}

// DefaultDBTracingConfig returns default configuration for database tracing.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:    false,
		LogFullSQL: false,
		DBSystem:   "postgresql",
	}
}

// RegisterOtelGorm registers the otelgorm plugin with the given GORM DB
// instance, so checkpoint loads and saves show up as spans under the poll
// cycle trace.
func RegisterOtelGorm(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBSystem),
	}
	if !cfg.LogFullSQL {
		// Don't include query parameters in spans
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.String("db_system", cfg.DBSystem),
	)
	return nil
}
