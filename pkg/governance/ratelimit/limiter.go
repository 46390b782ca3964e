package ratelimit

import (
	"fmt"
	"math"
)

// Limiter enforces per-account request rate limits using a token bucket.
//
// Each governed request costs one token. CheckLimit is the admission
// entry point for the request path; Status is the read-mostly
// observability entry point.
type Limiter struct {
	bucket *TokenBucket
	config Config
}

// NewLimiter creates a rate limiter with the given configuration.
// Zero-valued fields fall back to defaults (10 req/s, 50 burst).
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.BurstCapacity <= 0 {
		cfg.BurstCapacity = def.BurstCapacity
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.IdleEviction <= 0 {
		cfg.IdleEviction = def.IdleEviction
	}

	return &Limiter{
		bucket: NewTokenBucket(BucketConfig{
			Capacity:      cfg.BurstCapacity,
			RefillRate:    cfg.RequestsPerSecond,
			SweepInterval: cfg.SweepInterval,
			IdleEviction:  cfg.IdleEviction,
		}),
		config: cfg,
	}
}

// CheckLimit checks whether accountID may issue one request right now.
// Returns nil when the request is admitted, or a *RateLimitError with
// status 429 and a retry hint when the account is throttled.
func (l *Limiter) CheckLimit(accountID string) error {
	if l.bucket.TryConsume(accountID, 1) {
		return nil
	}

	retryAfter := l.bucket.TimeUntilNextToken(accountID)

	return &RateLimitError{
		Status: 429,
		Code:   "RATE_LIMIT_EXCEEDED",
		Message: fmt.Sprintf("rate limit exceeded: maximum %g requests/second, retry in %s",
			l.config.RequestsPerSecond, retryAfter),
		RetryAfter: retryAfter,
	}
}

// Status returns the current rate limit status for an account.
// It performs the lazy refill but consumes nothing.
func (l *Limiter) Status(accountID string) Status {
	tokens := l.bucket.Tokens(accountID)

	return Status{
		TokensAvailable:   tokens,
		TokensCapacity:    l.bucket.Capacity(),
		RequestsPerSecond: l.config.RequestsPerSecond,
		RequestsRemaining: int(math.Floor(tokens)),
	}
}

// Reset clears the rate limit state for an account.
func (l *Limiter) Reset(accountID string) {
	l.bucket.Reset(accountID)
}

// ResetAll clears all rate limit state.
func (l *Limiter) ResetAll() {
	l.bucket.ResetAll()
}

// Close stops the background eviction sweep and releases all buckets.
func (l *Limiter) Close() {
	l.bucket.Stop()
}
