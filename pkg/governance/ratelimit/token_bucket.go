package ratelimit

import (
	"math"
	"sync"
	"time"
)

// bucketState holds the per-key token accounting.
//
// Invariants: tokens is never negative and never exceeds the configured
// capacity. lastRefill is advanced on every access, which also makes it
// the idle marker used by the sweep.
type bucketState struct {
	tokens     float64
	lastRefill time.Time
}

// BucketConfig configures a keyed token bucket.
type BucketConfig struct {
	// Capacity is the maximum number of tokens a bucket can hold
	// (the burst size).
	Capacity float64

	// RefillRate is the number of tokens added per second.
	RefillRate float64

	// InitialTokens is the token count for newly created buckets.
	// Zero means start at full capacity.
	InitialTokens float64

	// SweepInterval is how often idle buckets are evicted.
	// Default: 5 minutes.
	SweepInterval time.Duration

	// IdleEviction is how long a bucket may remain untouched before the
	// sweep removes it. Default: 1 hour.
	IdleEviction time.Duration
}

// TokenBucket tracks one token bucket per account key.
//
// Buckets are created on first use and refilled lazily on each access
// using elapsed wall-clock time. A background sweep bounds memory by
// evicting buckets that have been idle longer than IdleEviction.
type TokenBucket struct {
	capacity      float64
	refillRate    float64
	initialTokens float64
	idleEviction  time.Duration

	buckets map[string]*bucketState
	mu      sync.Mutex

	sweepDone chan struct{}
	stopOnce  sync.Once
}

// NewTokenBucket creates a keyed token bucket and starts its eviction sweep.
// Call Stop when the bucket set is no longer needed.
func NewTokenBucket(cfg BucketConfig) *TokenBucket {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.IdleEviction <= 0 {
		cfg.IdleEviction = time.Hour
	}
	if cfg.InitialTokens <= 0 {
		cfg.InitialTokens = cfg.Capacity
	}

	tb := &TokenBucket{
		capacity:      cfg.Capacity,
		refillRate:    cfg.RefillRate,
		initialTokens: cfg.InitialTokens,
		idleEviction:  cfg.IdleEviction,
		buckets:       make(map[string]*bucketState),
		sweepDone:     make(chan struct{}),
	}

	go tb.sweep(cfg.SweepInterval)

	return tb
}

// TryConsume attempts to consume n tokens from the bucket for key.
// The bucket is refilled for elapsed time first. Returns true if the
// tokens were available and consumed; on false the bucket is unchanged
// apart from the refill.
func (tb *TokenBucket) TryConsume(key string, n float64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	b := tb.getOrCreateLocked(key)
	tb.refillLocked(b)

	if b.tokens >= n {
		b.tokens -= n
		return true
	}

	return false
}

// Tokens returns the current token count for key after a lazy refill.
func (tb *TokenBucket) Tokens(key string) float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	b := tb.getOrCreateLocked(key)
	tb.refillLocked(b)
	return b.tokens
}

// Capacity returns the configured bucket capacity.
func (tb *TokenBucket) Capacity() float64 {
	return tb.capacity
}

// RefillRate returns the configured refill rate in tokens per second.
func (tb *TokenBucket) RefillRate() float64 {
	return tb.refillRate
}

// TimeUntilNextToken returns how long the caller should wait before one
// token becomes available for key. Returns 0 when a token is already
// available, otherwise the time one token takes to accrue, rounded up
// to the millisecond.
func (tb *TokenBucket) TimeUntilNextToken(key string) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	b := tb.getOrCreateLocked(key)
	tb.refillLocked(b)

	if b.tokens >= 1 {
		return 0
	}

	ms := math.Ceil(1000.0 / tb.refillRate)
	return time.Duration(ms) * time.Millisecond
}

// Reset removes the bucket for key. The next access starts fresh with
// the initial token count.
func (tb *TokenBucket) Reset(key string) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	delete(tb.buckets, key)
}

// ResetAll removes all buckets.
func (tb *TokenBucket) ResetAll() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.buckets = make(map[string]*bucketState)
}

// Size returns the number of tracked buckets.
func (tb *TokenBucket) Size() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

// Stop cancels the eviction sweep and clears all buckets.
// The bucket set should not be used after Stop.
func (tb *TokenBucket) Stop() {
	tb.stopOnce.Do(func() {
		close(tb.sweepDone)
	})

	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.buckets = make(map[string]*bucketState)
}

// getOrCreateLocked returns the bucket for key, creating it at the
// initial token count if absent. Caller must hold the lock.
func (tb *TokenBucket) getOrCreateLocked(key string) *bucketState {
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucketState{
			tokens:     tb.initialTokens,
			lastRefill: time.Now(),
		}
		tb.buckets[key] = b
	}
	return b
}

// refillLocked adds tokens for the time elapsed since the last refill,
// capped at capacity. Caller must hold the lock.
func (tb *TokenBucket) refillLocked(b *bucketState) {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()

	b.tokens = math.Min(tb.capacity, b.tokens+elapsed*tb.refillRate)
	b.lastRefill = now
}

// sweep periodically evicts buckets that have not been touched within
// the idle eviction window.
func (tb *TokenBucket) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tb.evictIdle()
		case <-tb.sweepDone:
			return
		}
	}
}

// evictIdle removes buckets idle longer than the eviction window.
func (tb *TokenBucket) evictIdle() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	cutoff := time.Now().Add(-tb.idleEviction)
	for key, b := range tb.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}
