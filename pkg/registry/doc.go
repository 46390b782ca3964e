// Package registry manages model-provider configurations and their
// cache-aside read path.
//
// # Overview
//
// A ProviderConfig names an enabled (provider, model) pairing together
// with its account scope: an empty account ID means the configuration
// is global and shared by every account. Configurations are created and
// edited by the administrative surface and read-mostly at request time.
//
// The Store interface is the source of truth (SQLite in production);
// CachedRepository fronts it with a cache.Strategy using the cache-aside
// pattern: reads check the cache first, query the store only on a miss,
// and write the loaded list back best-effort. Derived lookups (by name,
// default, by use case) filter the cached list client-side so one cache
// key serves them all.
//
// Staleness is bounded by the 5-minute TTL and by InvalidateCache, which
// the administrative surface must call after any mutation.
package registry
