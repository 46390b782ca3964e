package config

import "time"

// Config is the root configuration structure for Callisto. It contains
// all configuration sections for admission control, caching, the
// provider registry, audit logging, the admin server, and telemetry.
type Config struct {
	// Governance contains rate limiting and budget configuration.
	Governance GovernanceConfig `yaml:"governance"`

	// Cache contains configuration for the provider-config cache.
	Cache CacheConfig `yaml:"cache"`

	// Registry contains configuration for the provider registry store.
	Registry RegistryConfig `yaml:"registry"`

	// Audit contains configuration for the audit queue, sink, and
	// retention.
	Audit AuditConfig `yaml:"audit"`

	// Pricing contains configuration for the model pricing table.
	Pricing PricingConfig `yaml:"pricing"`

	// Server contains configuration for the admin HTTP server.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// GovernanceConfig contains admission control configuration.
type GovernanceConfig struct {
	// RateLimit configures the per-account token bucket.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Budget configures the per-account budget windows.
	Budget BudgetConfig `yaml:"budget"`
}

// RateLimitConfig contains per-account rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained refill rate per account.
	// Default: 10
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// BurstCapacity is the bucket capacity per account.
	// Default: 50
	BurstCapacity float64 `yaml:"burst_capacity"`

	// SweepInterval is how often idle buckets are checked for
	// eviction.
	// Default: 5m
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// IdleEviction is how long a bucket may sit unused before the
	// sweep evicts it.
	// Default: 1h
	IdleEviction time.Duration `yaml:"idle_eviction"`
}

// BudgetConfig contains per-account budget configuration.
type BudgetConfig struct {
	// DailyBudget is the per-account daily spend limit in USD.
	// Zero disables the daily window.
	// Default: 100.0
	DailyBudget float64 `yaml:"daily_budget"`

	// MonthlyBudget is the per-account monthly spend limit in USD.
	// Zero disables the monthly window.
	// Default: 1000.0
	MonthlyBudget float64 `yaml:"monthly_budget"`

	// AlertThreshold is the usage percentage (0-100) at which advisory
	// alerts appear in budget status.
	// Default: 80
	AlertThreshold float64 `yaml:"alert_threshold"`
}

// CacheConfig contains provider-config cache configuration.
type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// TTL is how long cached provider lists stay fresh.
	// Default: 5m
	TTL time.Duration `yaml:"ttl"`

	// CleanupInterval is how often the in-process cache removes
	// expired entries. Ignored by the redis backend.
	// Default: 60s
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// Redis configures the redis backend. Ignored by the memory
	// backend.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains redis connection configuration.
type RedisConfig struct {
	// Address is the redis server address.
	// Default: "127.0.0.1:6379"
	Address string `yaml:"address"`

	// Password is the redis password. Empty disables authentication.
	Password string `yaml:"password"`

	// DB is the redis database number.
	// Default: 0
	DB int `yaml:"db"`

	// KeyPrefix is prepended to every cache key.
	// Default: "llm:cache:"
	KeyPrefix string `yaml:"key_prefix"`
}

// RegistryConfig contains provider registry store configuration.
type RegistryConfig struct {
	// SQLitePath is the provider database file path.
	// Default: "data/providers.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// AuditConfig contains audit queue and sink configuration.
type AuditConfig struct {
	// Enabled controls whether audit logging runs at all.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// SQLitePath is the audit database file path.
	// Default: "data/audit.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BatchSize is the number of events per bulk write.
	// Default: 100
	BatchSize int `yaml:"batch_size"`

	// FlushInterval is the periodic flush cadence.
	// Default: 5s
	FlushInterval time.Duration `yaml:"flush_interval"`

	// MaxQueueSize bounds the in-memory event buffer.
	// Default: 1000
	MaxQueueSize int `yaml:"max_queue_size"`

	// Retention configures pruning of persisted records.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig contains audit retention configuration.
type RetentionConfig struct {
	// Days is the number of days to retain audit records. Zero keeps
	// records forever.
	// Default: 90
	Days int `yaml:"days"`

	// Schedule is a cron expression for scheduled pruning. Empty
	// disables the scheduler.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// PricingConfig contains model pricing table configuration.
type PricingConfig struct {
	// FilePath is an optional YAML file of per-model rates overriding
	// the built-in table. Empty uses the built-ins only.
	FilePath string `yaml:"file_path"`

	// Watch enables hot-reloading the pricing file on change.
	// Default: false
	Watch bool `yaml:"watch"`
}

// ServerConfig contains admin HTTP server configuration.
type ServerConfig struct {
	// ListenAddress is the address and port for the admin server.
	// Format: "host:port".
	// Default: "127.0.0.1:8081"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics exposure.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn",
	// "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json", "text", or "console".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
