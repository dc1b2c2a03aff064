// Package config loads application configuration from TOML and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	Remote     RemoteConfig
	Poller     PollerConfig
	Checkpoint CheckpointConfig
	Redis      RedisConfig
	Storage    StorageConfig
	HTTP       HTTPConfig
	Telemetry  TelemetryConfig
	Profiler   ProfilerConfig
	Jobs       []JobConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// RemoteConfig holds credentials and connection settings for the remote
// inventory service
type RemoteConfig struct {
	BaseURL        string
	APIKey         string
	CompanyID      string
	TimeoutSeconds int
}

// PollerConfig holds poll cycle settings
type PollerConfig struct {
	PageSize        int           // snapshot page bound, the detector sees one page
	DefaultInterval time.Duration // poll interval for jobs that don't set one
	MinInterval     time.Duration // lowest interval a job may configure
	MaxInterval     time.Duration // highest interval a job may configure
	HistorySize     int           // delivered events kept per job for inspection
}

// CheckpointConfig selects and configures the checkpoint store backend
type CheckpointConfig struct {
	// Backend is one of: memory, redis, sqlite, postgres, s3
	Backend     string
	SQLitePath  string
	PostgresDSN string
	// AllowMemoryFallback falls back to the in-memory store when the
	// configured backend is unavailable at startup
	AllowMemoryFallback bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig holds S3-compatible object storage settings for the s3
// checkpoint backend
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	KeyPrefix    string
	UseSSL       bool
	UsePathStyle bool
}

// HTTPConfig holds admin HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	TrustedProxies []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool    // Export metrics via OTLP
	LogsEnabled       bool    // Bridge zap logs to OTLP
}

// ProfilerConfig holds Pyroscope continuous profiling configuration
type ProfilerConfig struct {
	Enabled         bool
	ServerAddress   string
	ApplicationName string
	SpanProfiles    bool // Associate CPU profiles with trace spans
}

// JobConfig declares one polling job in configuration
type JobConfig struct {
	// Event is the canonical watched event name, e.g. "salesOrder.fulfilled"
	Event string `mapstructure:"event"`
	// Interval overrides the default poll interval when positive
	Interval time.Duration `mapstructure:"interval"`
	// LocationID restricts snapshots to one location
	LocationID string `mapstructure:"location_id"`
	// CategoryID restricts snapshots to one category
	CategoryID string `mapstructure:"category_id"`
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOCKWATCH_ prefix (e.g., STOCKWATCH_REMOTE_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOCKWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Remote: RemoteConfig{
			BaseURL:        v.GetString("remote.base_url"),
			APIKey:         v.GetString("remote.api_key"),
			CompanyID:      v.GetString("remote.company_id"),
			TimeoutSeconds: v.GetInt("remote.timeout_seconds"),
		},
		Poller: PollerConfig{
			PageSize:        v.GetInt("poller.page_size"),
			DefaultInterval: v.GetDuration("poller.default_interval"),
			MinInterval:     v.GetDuration("poller.min_interval"),
			MaxInterval:     v.GetDuration("poller.max_interval"),
			HistorySize:     v.GetInt("poller.history_size"),
		},
		Checkpoint: CheckpointConfig{
			Backend:             v.GetString("checkpoint.backend"),
			SQLitePath:          v.GetString("checkpoint.sqlite_path"),
			PostgresDSN:         v.GetString("checkpoint.postgres_dsn"),
			AllowMemoryFallback: v.GetBool("checkpoint.allow_memory_fallback"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Storage: StorageConfig{
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			KeyPrefix:    v.GetString("storage.key_prefix"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
		},
		Profiler: ProfilerConfig{
			Enabled:         v.GetBool("profiler.enabled"),
			ServerAddress:   v.GetString("profiler.server_address"),
			ApplicationName: v.GetString("profiler.application_name"),
			SpanProfiles:    v.GetBool("profiler.span_profiles"),
		},
	}

	if err := v.UnmarshalKey("jobs", &cfg.Jobs); err != nil {
		return nil, fmt.Errorf("error parsing job configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field configuration consistency
func (c *Config) Validate() error {
	if c.Poller.PageSize <= 0 {
		return fmt.Errorf("poller.page_size must be positive, got %d", c.Poller.PageSize)
	}
	if c.Poller.MinInterval <= 0 {
		return fmt.Errorf("poller.min_interval must be positive, got %s", c.Poller.MinInterval)
	}
	if c.Poller.MaxInterval < c.Poller.MinInterval {
		return fmt.Errorf("poller.max_interval %s is below poller.min_interval %s",
			c.Poller.MaxInterval, c.Poller.MinInterval)
	}
	if c.Poller.DefaultInterval < c.Poller.MinInterval || c.Poller.DefaultInterval > c.Poller.MaxInterval {
		return fmt.Errorf("poller.default_interval %s outside [%s, %s]",
			c.Poller.DefaultInterval, c.Poller.MinInterval, c.Poller.MaxInterval)
	}
	switch c.Checkpoint.Backend {
	case "memory", "redis", "sqlite", "postgres", "s3":
	default:
		return fmt.Errorf("unknown checkpoint backend %q", c.Checkpoint.Backend)
	}
	if c.Telemetry.Enabled && c.Telemetry.CollectorEndpoint == "" {
		return fmt.Errorf("telemetry.collector_endpoint is required when telemetry is enabled")
	}
	return nil
}

// setDefaults registers built-in defaults
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stockwatch")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("remote.timeout_seconds", 30)

	v.SetDefault("poller.page_size", 50)
	v.SetDefault("poller.default_interval", 1*time.Minute)
	v.SetDefault("poller.min_interval", 10*time.Second)
	v.SetDefault("poller.max_interval", 1*time.Hour)
	v.SetDefault("poller.history_size", 100)

	v.SetDefault("checkpoint.backend", "memory")
	v.SetDefault("checkpoint.sqlite_path", "stockwatch.db")
	v.SetDefault("checkpoint.allow_memory_fallback", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.key_prefix", "checkpoints/")
	v.SetDefault("storage.use_path_style", true)

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_header_bytes", 1<<20)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.service_name", "stockwatch")

	v.SetDefault("profiler.enabled", false)
	v.SetDefault("profiler.application_name", "stockwatch")
}
