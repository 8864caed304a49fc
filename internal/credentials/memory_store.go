package credentials

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is an in-memory Store used by tests and single-process
// development setups.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func key(platform Platform, storeName string, kind Kind) string {
	return string(platform) + ":" + string(kind) + ":" + storeName
}

func (s *MemoryStore) Put(ctx context.Context, platform Platform, storeName string, kind Kind, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key(platform, storeName, kind)] = entry
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, platform Platform, storeName string, kind Kind) (string, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key(platform, storeName, kind)]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key(platform, storeName, kind))
		s.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, platform Platform, storeName string, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(platform, storeName, kind))
	return nil
}
