// Package ratelimit provides per-account request rate limiting for the
// governance layer.
//
// # Overview
//
// The package implements the token bucket algorithm with one bucket per
// account key. Buckets refill lazily on access based on elapsed wall-clock
// time, so idle accounts cost nothing: there is no timer per key, only a
// single background sweep that evicts buckets left untouched for an hour.
//
// # Usage
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    RequestsPerSecond: 10,
//	    BurstCapacity:     50,
//	})
//	defer limiter.Close()
//
//	if err := limiter.CheckLimit(accountID); err != nil {
//	    var rle *ratelimit.RateLimitError
//	    if errors.As(err, &rle) {
//	        // reject with HTTP 429 and rle.RetryAfter
//	    }
//	}
//
// # Thread Safety
//
// All operations are thread-safe. The bucket map is protected by a single
// mutex; each check performs one refill and one consume under that lock.
package ratelimit
