package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store backed by a map. Suitable for tests and
// single-instance deployments; multi-instance deployments should use
// RedisStore so plan caches are shared.
type MemoryStore struct {
	mu          sync.RWMutex
	entries     map[string]memoryEntry
	lastCleanup time.Time

	// cleanupInterval bounds how often expired entries are swept on write.
	cleanupInterval time.Duration
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:         make(map[string]memoryEntry),
		cleanupInterval: 5 * time.Minute,
	}
}

// Get returns the value for key if present and not expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key with the given TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}

	s.cleanupIfNeeded()
	return nil
}

// Delete removes key from the store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len returns the number of entries, including any not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// cleanupIfNeeded sweeps expired entries. Caller must hold the write lock.
func (s *MemoryStore) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	for key, entry := range s.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}
