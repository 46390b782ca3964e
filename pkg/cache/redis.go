package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of go-redis commands the Redis backend
// needs. *redis.Client and *redis.ClusterClient both satisfy it; tests
// substitute a stub.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	FlushDB(ctx context.Context) *redis.StatusCmd
	DBSize(ctx context.Context) *redis.IntCmd
}

// Redis is the distributed Strategy implementation. TTL enforcement is
// delegated to Redis's native expiring SET.
//
// Error contract: Get degrades to a miss on any backend failure so the
// caller falls back to the source of truth; Set and Delete propagate
// errors so the caller can decide.
type Redis struct {
	client    RedisClient
	keyPrefix string
	logger    *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis creates a Redis-backed cache. keyPrefix defaults to
// "llm:cache:" when empty.
func NewRedis(client RedisClient, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = "llm:cache:"
	}

	return &Redis{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    slog.Default().With("component", "cache.redis"),
	}
}

// Get returns the value for key. Backend failures are logged and
// reported as misses, never as errors.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache get failed, degrading to miss",
				"key", key,
				"error", err,
			)
		}
		r.misses.Add(1)
		return nil, false, nil
	}

	r.hits.Add(1)
	return value, true, nil
}

// Set stores value under key using Redis's native TTL. Errors are
// returned to the caller.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.keyPrefix+key, value, ttl).Err()
}

// Delete removes the entry for key. Errors are returned to the caller.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.keyPrefix+key).Err()
}

// Clear flushes the backing database and resets hit/miss counters.
//
// This flushes the whole Redis logical database, not only prefixed
// keys; use a dedicated database number for this cache.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return err
	}

	r.hits.Store(0)
	r.misses.Store(0)
	return nil
}

// Stats returns cache statistics. Size reflects the whole backing
// database. A DBSIZE failure yields size 0 with local counters intact.
func (r *Redis) Stats(ctx context.Context) (Stats, error) {
	hits := r.hits.Load()
	misses := r.misses.Load()

	size, err := r.client.DBSize(ctx).Result()
	if err != nil {
		r.logger.Warn("cache stats dbsize failed", "error", err)
		size = 0
	}

	return Stats{
		Size:    size,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate(hits, misses),
	}, nil
}
