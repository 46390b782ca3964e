package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"fieldstack/callisto/pkg/cache"
)

// cacheKeyPrefix namespaces provider entries in the shared cache.
const cacheKeyPrefix = "llm:providers"

// DefaultCacheTTL bounds provider-config staleness between explicit
// invalidations.
const DefaultCacheTTL = 5 * time.Minute

// CachedRepository is the cache-aside read path over a provider Store.
//
// Reads check the cache first and query the store only on a miss. The
// freshly loaded list is written back best-effort: a cache-write failure
// is logged and never fails the read. Derived lookups filter the cached
// list client-side rather than issuing separate queries, so one cache
// key per account serves every lookup shape.
type CachedRepository struct {
	store  Store
	cache  cache.Strategy
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedRepository creates the cached read path. ttl defaults to
// 5 minutes when zero.
func NewCachedRepository(store Store, strategy cache.Strategy, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &CachedRepository{
		store:  store,
		cache:  strategy,
		ttl:    ttl,
		logger: slog.Default().With("component", "registry.repository"),
	}
}

// Providers returns the active configurations visible to accountID
// (account-specific plus global; empty accountID means global only).
func (r *CachedRepository) Providers(ctx context.Context, accountID string) ([]ProviderConfig, error) {
	key := cacheKey(accountID)

	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var configs []ProviderConfig
		if err := json.Unmarshal(data, &configs); err == nil {
			return configs, nil
		}
		// Undecodable entry: drop it and fall through to the store.
		r.logger.Warn("discarding corrupt provider cache entry", "key", key)
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Warn("failed to delete corrupt cache entry", "key", key, "error", err)
		}
	}

	configs, err := r.store.ListActive(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("provider lookup failed: %w", err)
	}

	// Best-effort write-back: a cache failure must never fail the read.
	if data, err := json.Marshal(configs); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn("provider cache write failed", "key", key, "error", err)
		}
	}

	return configs, nil
}

// ProviderByName returns the named configuration, or nil if absent.
func (r *CachedRepository) ProviderByName(ctx context.Context, name, accountID string) (*ProviderConfig, error) {
	configs, err := r.Providers(ctx, accountID)
	if err != nil {
		return nil, err
	}

	for i := range configs {
		if configs[i].Name == name {
			return &configs[i], nil
		}
	}
	return nil, nil
}

// DefaultProvider returns the configuration marked as default, or nil.
func (r *CachedRepository) DefaultProvider(ctx context.Context, accountID string) (*ProviderConfig, error) {
	configs, err := r.Providers(ctx, accountID)
	if err != nil {
		return nil, err
	}

	for i := range configs {
		if configs[i].IsDefault {
			return &configs[i], nil
		}
	}
	return nil, nil
}

// ProvidersByUseCase returns the configurations tagged with useCase.
func (r *CachedRepository) ProvidersByUseCase(ctx context.Context, useCase, accountID string) ([]ProviderConfig, error) {
	configs, err := r.Providers(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var matched []ProviderConfig
	for _, cfg := range configs {
		if slices.Contains(cfg.UseCases, useCase) {
			matched = append(matched, cfg)
		}
	}
	return matched, nil
}

// CreateProvider inserts a configuration through the store and
// invalidates the affected cache entry so the next read sees it.
func (r *CachedRepository) CreateProvider(ctx context.Context, cfg ProviderConfig) error {
	if err := r.store.Create(ctx, cfg); err != nil {
		return err
	}
	r.invalidateAfterMutation(ctx, cfg.AccountID)
	return nil
}

// UpdateProvider replaces the configuration with cfg.ID through the
// store. An update can move the configuration between scopes and the
// previous scope is not derivable from the payload, so every cached
// list is dropped.
func (r *CachedRepository) UpdateProvider(ctx context.Context, cfg ProviderConfig) error {
	if err := r.store.Update(ctx, cfg); err != nil {
		return err
	}
	if err := r.ClearAll(ctx); err != nil {
		r.logger.Warn("provider cache clear after update failed", "error", err)
	}
	return nil
}

// DeleteProvider removes a configuration through the store. The mutated
// scope is unknown from the id alone, so every cached list is dropped.
func (r *CachedRepository) DeleteProvider(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.ClearAll(ctx); err != nil {
		r.logger.Warn("provider cache clear after delete failed", "error", err)
	}
	return nil
}

// invalidateAfterMutation drops the mutated scope. Global entries are
// visible to every account, so a global mutation clears everything.
func (r *CachedRepository) invalidateAfterMutation(ctx context.Context, accountID string) {
	if accountID == "" {
		if err := r.ClearAll(ctx); err != nil {
			r.logger.Warn("provider cache clear after mutation failed", "error", err)
		}
		return
	}
	// Best effort: a missed invalidation is bounded by the TTL.
	_ = r.InvalidateCache(ctx, accountID)
}

// InvalidateCache drops the cached list for accountID. The
// administrative surface must call this after any provider mutation;
// until it does, or the TTL lapses, reads may serve the previous list.
func (r *CachedRepository) InvalidateCache(ctx context.Context, accountID string) error {
	key := cacheKey(accountID)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("provider cache invalidation failed", "key", key, "error", err)
		return err
	}
	return nil
}

// ClearAll drops every cached provider list across all accounts.
func (r *CachedRepository) ClearAll(ctx context.Context) error {
	return r.cache.Clear(ctx)
}

// CacheStats exposes the underlying cache statistics.
func (r *CachedRepository) CacheStats(ctx context.Context) (cache.Stats, error) {
	return r.cache.Stats(ctx)
}

// cacheKey derives the per-account cache key, with a shared sentinel
// for the global scope.
func cacheKey(accountID string) string {
	if accountID == "" {
		accountID = "global"
	}
	return fmt.Sprintf("%s:%s", cacheKeyPrefix, accountID)
}
