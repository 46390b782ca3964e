package cache

import (
	"context"
	"sync"
	"time"
)

// memoryEntry holds a cached value with its absolute expiry instant.
type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the in-process Strategy implementation.
//
// Entries carry an absolute expiry instant. A periodic sweep purges
// expired entries; a Get that observes an expired-but-unswept entry
// treats it as a miss and removes it.
type Memory struct {
	entries map[string]memoryEntry
	mu      sync.Mutex

	hits   int64
	misses int64

	cleanupDone chan struct{}
	stopOnce    sync.Once
}

// NewMemory creates an in-process cache and starts its cleanup sweep.
// cleanupInterval defaults to 60 seconds when zero. Call Close when the
// cache is no longer needed.
func NewMemory(cleanupInterval time.Duration) *Memory {
	if cleanupInterval <= 0 {
		cleanupInterval = 60 * time.Second
	}

	m := &Memory{
		entries:     make(map[string]memoryEntry),
		cleanupDone: make(chan struct{}),
	}

	go m.cleanupLoop(cleanupInterval)

	return m
}

// Get returns the value for key, treating expired entries as misses.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		m.misses++
		return nil, false, nil
	}

	m.hits++
	return entry.value, true, nil
}

// Set stores value under key with the given TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes the entry for key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Clear removes all entries and resets the hit/miss counters.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
	m.hits = 0
	m.misses = 0
	return nil
}

// Stats returns the current cache statistics.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Size:    int64(len(m.entries)),
		Hits:    m.hits,
		Misses:  m.misses,
		HitRate: hitRate(m.hits, m.misses),
	}, nil
}

// Size returns the number of entries, including expired entries the
// sweep has not reached yet.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close stops the cleanup sweep. The cache should not be used after
// Close.
func (m *Memory) Close() {
	m.stopOnce.Do(func() {
		close(m.cleanupDone)
	})
}

// cleanupLoop purges expired entries on a fixed interval until Close.
func (m *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.purgeExpired()
		case <-m.cleanupDone:
			return
		}
	}
}

// purgeExpired removes all entries whose expiry instant has passed.
func (m *Memory) purgeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}
