package ratelimit

import (
	"fmt"
	"time"
)

// Config contains rate limiter configuration for the governance layer.
type Config struct {
	// RequestsPerSecond is the sustained request rate per account.
	// Default: 10.
	RequestsPerSecond float64

	// BurstCapacity is the number of requests a cold account may fire
	// immediately before steady-state throttling applies. Default: 50.
	BurstCapacity float64

	// SweepInterval is how often idle buckets are evicted. Default: 5m.
	SweepInterval time.Duration

	// IdleEviction is the idle duration after which a bucket is evicted.
	// Default: 1h.
	IdleEviction time.Duration
}

// DefaultConfig returns the default rate limiter configuration.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstCapacity:     50,
		SweepInterval:     5 * time.Minute,
		IdleEviction:      time.Hour,
	}
}

// RateLimitError is returned by CheckLimit when an account has exhausted
// its request budget. It carries the machine-actionable retry hint the
// caller needs for client-side backoff.
type RateLimitError struct {
	// Status is the HTTP status code for this rejection (429).
	Status int

	// Code is the stable error code ("RATE_LIMIT_EXCEEDED").
	Code string

	// Message is a human-readable description.
	Message string

	// RetryAfter is how long the caller should wait before retrying.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
}

// Status is an observability snapshot of an account's rate limit state.
type Status struct {
	// TokensAvailable is the current token count after lazy refill.
	TokensAvailable float64 `json:"tokens_available"`

	// TokensCapacity is the maximum bucket capacity.
	TokensCapacity float64 `json:"tokens_capacity"`

	// RequestsPerSecond is the sustained refill rate.
	RequestsPerSecond float64 `json:"requests_per_second"`

	// RequestsRemaining is the number of whole requests the account can
	// make right now.
	RequestsRemaining int `json:"requests_remaining"`
}
