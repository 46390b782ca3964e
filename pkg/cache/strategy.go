package cache

import (
	"context"
	"time"
)

// Strategy is the pluggable cache interface. Implementations must be
// safe for concurrent use.
//
// An entry observed after its TTL has elapsed behaves as absent on Get,
// regardless of backend.
type Strategy interface {
	// Get returns the cached value for key. The second return is false
	// on a miss (absent or expired). Backend read failures degrade to a
	// miss on implementations that cannot distinguish them safely; see
	// the individual backends.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries and resets hit/miss counters.
	Clear(ctx context.Context) error

	// Stats returns cache statistics.
	Stats(ctx context.Context) (Stats, error)
}

// Stats contains cache performance counters.
type Stats struct {
	// Size is the current number of entries (including not-yet-swept
	// expired entries on the in-process backend).
	Size int64 `json:"size"`

	// Hits is the number of Get calls that returned a value.
	Hits int64 `json:"hits"`

	// Misses is the number of Get calls that returned nothing.
	Misses int64 `json:"misses"`

	// HitRate is Hits / (Hits + Misses), or 0 with no traffic.
	HitRate float64 `json:"hit_rate"`
}

// hitRate computes the hit ratio for the given counters.
func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
