// Package cache provides the pluggable caching strategy used by the
// governance layer's read paths.
//
// # Overview
//
// Strategy is a small get/set/delete/clear interface over opaque byte
// values with per-entry TTL. Two interchangeable backends implement it:
//
//   - Memory: an in-process table with absolute expiry per entry, a
//     periodic cleanup sweep, and hit/miss statistics. Suitable for
//     single-instance deployments and tests.
//   - Redis: a distributed backend that delegates TTL to Redis's native
//     expiring SET. A failed Get degrades to a miss so the caller falls
//     back to the source of truth; Set and Delete propagate errors.
//
// Values are opaque []byte; callers serialize their own types (the
// provider repository uses JSON).
package cache
