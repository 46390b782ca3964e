package budget

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePricingFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "pricing.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write pricing file: %v", err)
	}
	return path
}

func TestLoadRates(t *testing.T) {
	path := writePricingFile(t, t.TempDir(), `
gpt-4o:
  input: 0.0025
  output: 0.010
custom-model:
  input: 0.001
  output: 0.002
`)

	rates, err := LoadRates(path)
	if err != nil {
		t.Fatalf("LoadRates failed: %v", err)
	}

	if len(rates) != 2 {
		t.Fatalf("Expected 2 rates, got %d", len(rates))
	}
	if rates["gpt-4o"].Input != 0.0025 {
		t.Errorf("Expected input rate 0.0025, got %f", rates["gpt-4o"].Input)
	}
	if rates["custom-model"].Output != 0.002 {
		t.Errorf("Expected output rate 0.002, got %f", rates["custom-model"].Output)
	}
}

func TestLoadRatesMissingFile(t *testing.T) {
	if _, err := LoadRates(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadRatesInvalidYAML(t *testing.T) {
	path := writePricingFile(t, t.TempDir(), "not: [valid: yaml")

	if _, err := LoadRates(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadRatesEmpty(t *testing.T) {
	path := writePricingFile(t, t.TempDir(), "")

	if _, err := LoadRates(path); err == nil {
		t.Error("Expected error for empty pricing file")
	}
}

func TestLoadRatesNegative(t *testing.T) {
	path := writePricingFile(t, t.TempDir(), `
bad-model:
  input: -0.001
  output: 0.002
`)

	if _, err := LoadRates(path); err == nil {
		t.Error("Expected error for negative rate")
	}
}

func TestRateWatcherAppliesInitialRates(t *testing.T) {
	path := writePricingFile(t, t.TempDir(), `
custom-model:
  input: 0.001
  output: 0.002
`)

	estimator := NewEstimator(nil)
	watcher, err := NewRateWatcher(path, estimator)
	if err != nil {
		t.Fatalf("NewRateWatcher failed: %v", err)
	}
	defer watcher.Stop()

	// 1000 in at 0.001 + 1000 out at 0.002.
	cost := estimator.EstimateCost("custom-model", 1000, 1000)
	if cost != 0.003 {
		t.Errorf("Expected cost 0.003 from file rates, got %f", cost)
	}
}

func TestRateWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writePricingFile(t, dir, `
custom-model:
  input: 0.001
  output: 0.002
`)

	estimator := NewEstimator(nil)
	watcher, err := NewRateWatcher(path, estimator)
	if err != nil {
		t.Fatalf("NewRateWatcher failed: %v", err)
	}
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	// Give the watch loop a moment before rewriting.
	time.Sleep(50 * time.Millisecond)

	writePricingFile(t, dir, `
custom-model:
  input: 0.010
  output: 0.020
`)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if estimator.EstimateCost("custom-model", 1000, 0) == 0.010 {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Errorf("Expected reloaded rate 0.010, got %f", estimator.EstimateCost("custom-model", 1000, 0))
}

func TestRateWatcherKeepsRatesOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := writePricingFile(t, dir, `
custom-model:
  input: 0.001
  output: 0.002
`)

	estimator := NewEstimator(nil)
	watcher, err := NewRateWatcher(path, estimator)
	if err != nil {
		t.Fatalf("NewRateWatcher failed: %v", err)
	}
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	writePricingFile(t, dir, "not: [valid: yaml")
	time.Sleep(300 * time.Millisecond)

	cost := estimator.EstimateCost("custom-model", 1000, 0)
	if cost != 0.001 {
		t.Errorf("Expected previous rate kept after bad reload, got %f", cost)
	}
}
