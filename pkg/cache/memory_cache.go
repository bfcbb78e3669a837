package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries caps the in-process cache before it is wiped whole.
const DefaultMaxEntries = 100

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is the in-process search-scope cache. Expiry is lazy: an entry
// past its TTL is deleted on the Get that finds it, there is no background
// sweep. When the entry count exceeds the cap the whole map is cleared before
// the next insert. Full-clear is a deliberately blunt policy, not a bug:
// entries are route-level memoizations and the worst outcome of losing them
// is a duplicate upstream fetch.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
	}
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) > m.maxEntries {
		m.entries = make(map[string]memoryEntry)
	}
	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return "", nil
	}
	return entry.value, nil
}

func (m *MemoryCache) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Len reports the current entry count, expired entries included until a Get
// touches them.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
