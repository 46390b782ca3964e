package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
governance:
  rate_limit:
    requests_per_second: 20
    burst_capacity: 100
  budget:
    daily_budget: 50.0

cache:
  backend: "redis"
  ttl: 10m
  redis:
    address: "redis.internal:6379"

telemetry:
  logging:
    level: "debug"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Governance.RateLimit.RequestsPerSecond != 20 {
		t.Errorf("Expected rps 20, got %f", cfg.Governance.RateLimit.RequestsPerSecond)
	}
	if cfg.Governance.Budget.DailyBudget != 50 {
		t.Errorf("Expected daily budget 50, got %f", cfg.Governance.Budget.DailyBudget)
	}
	// Unset fields fall back to defaults.
	if cfg.Governance.Budget.MonthlyBudget != DefaultMonthlyBudget {
		t.Errorf("Expected default monthly budget, got %f", cfg.Governance.Budget.MonthlyBudget)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Expected redis backend, got %s", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Expected 10m TTL, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.Redis.Address != "redis.internal:6379" {
		t.Errorf("Expected redis address, got %s", cfg.Cache.Redis.Address)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %s", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "governance: [not a mapping")

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  backend: "memcached"
`)

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected validation error for unknown backend")
	}
}

func TestLoadConfigExplicitDisable(t *testing.T) {
	path := writeConfigFile(t, `
audit:
  enabled: false
telemetry:
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Audit.Enabled {
		t.Error("Expected explicit audit disable to be respected")
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Expected explicit metrics disable to be respected")
	}
}

func TestLoadConfigZeroBudgetDisablesWindow(t *testing.T) {
	path := writeConfigFile(t, `
governance:
  budget:
    daily_budget: 0
    monthly_budget: 0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Governance.Budget.DailyBudget != 0 {
		t.Errorf("Expected explicit zero daily budget to survive, got %f", cfg.Governance.Budget.DailyBudget)
	}
	if cfg.Governance.Budget.MonthlyBudget != 0 {
		t.Errorf("Expected explicit zero monthly budget to survive, got %f", cfg.Governance.Budget.MonthlyBudget)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
governance:
  budget:
    daily_budget: 50.0
`)

	t.Setenv("CALLISTO_GOVERNANCE_DAILY_BUDGET", "200")
	t.Setenv("CALLISTO_CACHE_BACKEND", "redis")
	t.Setenv("CALLISTO_CACHE_REDIS_ADDRESS", "10.0.0.5:6380")
	t.Setenv("CALLISTO_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Governance.Budget.DailyBudget != 200 {
		t.Errorf("Expected env override 200, got %f", cfg.Governance.Budget.DailyBudget)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Expected env backend redis, got %s", cfg.Cache.Backend)
	}
	if cfg.Cache.Redis.Address != "10.0.0.5:6380" {
		t.Errorf("Expected env redis address, got %s", cfg.Cache.Redis.Address)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Expected env level warn, got %s", cfg.Telemetry.Logging.Level)
	}
}

func TestEnvOverrideInvalidValueIgnored(t *testing.T) {
	path := writeConfigFile(t, `
governance:
  budget:
    daily_budget: 50.0
`)

	t.Setenv("CALLISTO_GOVERNANCE_DAILY_BUDGET", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Governance.Budget.DailyBudget != 50 {
		t.Errorf("Expected file value kept for unparseable override, got %f", cfg.Governance.Budget.DailyBudget)
	}
}

func TestEnvOverrideValidationFailure(t *testing.T) {
	path := writeConfigFile(t, "")

	t.Setenv("CALLISTO_CACHE_BACKEND", "memcached")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("Expected validation failure after env overrides")
	}
}
