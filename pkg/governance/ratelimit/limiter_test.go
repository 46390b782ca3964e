package ratelimit

import (
	"errors"
	"testing"
	"time"
)

func TestLimiter_Defaults(t *testing.T) {
	limiter := NewLimiter(Config{})
	defer limiter.Close()

	status := limiter.Status("acct-1")
	if status.TokensCapacity != 50 {
		t.Errorf("Expected default burst capacity 50, got %g", status.TokensCapacity)
	}
	if status.RequestsPerSecond != 10 {
		t.Errorf("Expected default rate 10, got %g", status.RequestsPerSecond)
	}
}

func TestLimiter_BurstThenThrottle(t *testing.T) {
	limiter := NewLimiter(Config{
		RequestsPerSecond: 10,
		BurstCapacity:     50,
	})
	defer limiter.Close()

	// A cold account may fire the full burst immediately.
	for i := 0; i < 50; i++ {
		if err := limiter.CheckLimit("acct-1"); err != nil {
			t.Fatalf("Request %d unexpectedly rejected: %v", i+1, err)
		}
	}

	// The 51st is rejected with a ~100ms retry hint.
	err := limiter.CheckLimit("acct-1")
	if err == nil {
		t.Fatal("Expected 51st request to be rejected")
	}

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("Expected *RateLimitError, got %T", err)
	}
	if rle.Status != 429 {
		t.Errorf("Expected status 429, got %d", rle.Status)
	}
	if rle.Code != "RATE_LIMIT_EXCEEDED" {
		t.Errorf("Expected code RATE_LIMIT_EXCEEDED, got %q", rle.Code)
	}
	if rle.RetryAfter < 90*time.Millisecond || rle.RetryAfter > 110*time.Millisecond {
		t.Errorf("Expected retry hint ~100ms, got %v", rle.RetryAfter)
	}
}

func TestLimiter_StatusDoesNotConsume(t *testing.T) {
	limiter := NewLimiter(Config{
		RequestsPerSecond: 1,
		BurstCapacity:     5,
	})
	defer limiter.Close()

	first := limiter.Status("acct-1")
	second := limiter.Status("acct-1")

	if second.RequestsRemaining < first.RequestsRemaining {
		t.Errorf("Status consumed tokens: first %d, second %d",
			first.RequestsRemaining, second.RequestsRemaining)
	}
	if first.RequestsRemaining != 5 {
		t.Errorf("Expected 5 requests remaining, got %d", first.RequestsRemaining)
	}
}

func TestLimiter_ResetRestoresBurst(t *testing.T) {
	limiter := NewLimiter(Config{
		RequestsPerSecond: 1,
		BurstCapacity:     2,
	})
	defer limiter.Close()

	limiter.CheckLimit("acct-1")
	limiter.CheckLimit("acct-1")
	if err := limiter.CheckLimit("acct-1"); err == nil {
		t.Fatal("Expected rejection after burst exhausted")
	}

	limiter.Reset("acct-1")

	if err := limiter.CheckLimit("acct-1"); err != nil {
		t.Errorf("Expected request to pass after reset, got %v", err)
	}
}
