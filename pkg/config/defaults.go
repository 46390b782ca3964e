package config

import "time"

// Default values for configuration fields.
const (
	// Governance defaults
	DefaultRequestsPerSecond = 10.0
	DefaultBurstCapacity     = 50.0
	DefaultSweepInterval     = 5 * time.Minute
	DefaultIdleEviction      = time.Hour
	DefaultDailyBudget       = 100.0
	DefaultMonthlyBudget     = 1000.0
	DefaultAlertThreshold    = 80.0

	// Cache defaults
	DefaultCacheBackend    = "memory"
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCleanupInterval = 60 * time.Second
	DefaultRedisAddress    = "127.0.0.1:6379"
	DefaultRedisKeyPrefix  = "llm:cache:"

	// Registry defaults
	DefaultRegistrySQLitePath  = "data/providers.db"
	DefaultRegistryBusyTimeout = 5 * time.Second

	// Audit defaults
	DefaultAuditEnabled       = true
	DefaultAuditSQLitePath    = "data/audit.db"
	DefaultAuditBatchSize     = 100
	DefaultAuditFlushInterval = 5 * time.Second
	DefaultAuditMaxQueueSize  = 1000
	DefaultRetentionDays      = 90
	DefaultRetentionSchedule  = "0 3 * * *"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8081"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel   = "info"
	DefaultLoggingFormat  = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// NewDefaultConfig returns a fully defaulted configuration. LoadConfig
// unmarshals the YAML file over this value, so an explicit false in the
// file still disables the enabled-by-default sections.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Audit.Enabled = DefaultAuditEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct. It sets
// defaults for any fields that have zero values. This function is
// idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Governance defaults
	if cfg.Governance.RateLimit.RequestsPerSecond == 0 {
		cfg.Governance.RateLimit.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Governance.RateLimit.BurstCapacity == 0 {
		cfg.Governance.RateLimit.BurstCapacity = DefaultBurstCapacity
	}
	if cfg.Governance.RateLimit.SweepInterval == 0 {
		cfg.Governance.RateLimit.SweepInterval = DefaultSweepInterval
	}
	if cfg.Governance.RateLimit.IdleEviction == 0 {
		cfg.Governance.RateLimit.IdleEviction = DefaultIdleEviction
	}
	if cfg.Governance.Budget.DailyBudget == 0 {
		cfg.Governance.Budget.DailyBudget = DefaultDailyBudget
	}
	if cfg.Governance.Budget.MonthlyBudget == 0 {
		cfg.Governance.Budget.MonthlyBudget = DefaultMonthlyBudget
	}
	if cfg.Governance.Budget.AlertThreshold == 0 {
		cfg.Governance.Budget.AlertThreshold = DefaultAlertThreshold
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.CleanupInterval == 0 {
		cfg.Cache.CleanupInterval = DefaultCleanupInterval
	}
	if cfg.Cache.Redis.Address == "" {
		cfg.Cache.Redis.Address = DefaultRedisAddress
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// Registry defaults
	if cfg.Registry.SQLitePath == "" {
		cfg.Registry.SQLitePath = DefaultRegistrySQLitePath
	}
	if cfg.Registry.BusyTimeout == 0 {
		cfg.Registry.BusyTimeout = DefaultRegistryBusyTimeout
	}

	// Audit defaults
	if cfg.Audit.SQLitePath == "" {
		cfg.Audit.SQLitePath = DefaultAuditSQLitePath
	}
	if cfg.Audit.BatchSize == 0 {
		cfg.Audit.BatchSize = DefaultAuditBatchSize
	}
	if cfg.Audit.FlushInterval == 0 {
		cfg.Audit.FlushInterval = DefaultAuditFlushInterval
	}
	if cfg.Audit.MaxQueueSize == 0 {
		cfg.Audit.MaxQueueSize = DefaultAuditMaxQueueSize
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultRetentionDays
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultRetentionSchedule
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
