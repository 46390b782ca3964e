package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	return NewDefaultConfig()
}

func TestValidateValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Expected valid config to pass: %v", err)
	}
}

func TestValidateRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Governance.RateLimit.RequestsPerSecond = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "requests_per_second") {
		t.Errorf("Expected field path in error, got %v", err)
	}
}

func TestValidateBurstBelowRate(t *testing.T) {
	cfg := validConfig()
	cfg.Governance.RateLimit.RequestsPerSecond = 100
	cfg.Governance.RateLimit.BurstCapacity = 10

	if err := Validate(cfg); err == nil {
		t.Error("Expected error when burst is below sustained rate")
	}
}

func TestValidateCacheBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "memcached"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "cache.backend") {
		t.Errorf("Expected cache.backend in error, got %v", err)
	}
}

func TestValidateRedisAddressOnlyWhenSelected(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "memory"
	cfg.Cache.Redis.Address = "garbage"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected redis address ignored for memory backend: %v", err)
	}

	cfg.Cache.Backend = "redis"
	if err := Validate(cfg); err == nil {
		t.Error("Expected invalid redis address to fail for redis backend")
	}
}

func TestValidateAuditDisabledSkipsChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Audit.Enabled = false
	cfg.Audit.BatchSize = -1
	cfg.Audit.SQLitePath = ""

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected disabled audit to skip validation: %v", err)
	}
}

func TestValidateAuditQueueBelowBatch(t *testing.T) {
	cfg := validConfig()
	cfg.Audit.BatchSize = 500
	cfg.Audit.MaxQueueSize = 100

	if err := Validate(cfg); err == nil {
		t.Error("Expected error when queue capacity is below batch size")
	}
}

func TestValidateRetentionSchedule(t *testing.T) {
	cfg := validConfig()
	cfg.Audit.Retention.Schedule = "every day at three"

	if err := Validate(cfg); err == nil {
		t.Error("Expected invalid cron expression to fail")
	}
}

func TestValidateListenAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ListenAddress = "no-port"

	if err := Validate(cfg); err == nil {
		t.Error("Expected invalid listen address to fail")
	}
}

func TestValidateLoggingLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Logging.Level = "verbose"

	if err := Validate(cfg); err == nil {
		t.Error("Expected unknown logging level to fail")
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Governance.RateLimit.RequestsPerSecond = -1
	cfg.Cache.Backend = "memcached"
	cfg.Telemetry.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation errors")
	}

	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if len(vErr.Errors) < 3 {
		t.Errorf("Expected at least 3 collected errors, got %d", len(vErr.Errors))
	}
}
