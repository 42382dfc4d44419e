package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/hospitalcare/backend/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter is a process-local CacheProvider used when Redis is disabled
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// NewMemoryAdapter creates an empty in-memory cache
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (a *MemoryAdapter) lookup(key string) ([]byte, bool) {
	entry, ok := a.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !a.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (a *MemoryAdapter) store(key string, value []byte, expirationSeconds int) {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if expirationSeconds > 0 {
		entry.expiresAt = a.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	a.entries[key] = entry
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if value, ok := a.lookup(key); ok {
		return value, nil
	}
	return nil, providers.ErrCacheMiss
}

// Set stores a value; a non-positive expiration keeps it until deleted
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store(key, value, expirationSeconds)
	return nil
}

// GetMulti retrieves several keys at once
func (a *MemoryAdapter) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, ok := a.lookup(key); ok {
			result[key] = value
		}
	}
	return result, nil
}

// SetMulti stores several values
func (a *MemoryAdapter) SetMulti(ctx context.Context, items map[string][]byte, expirationSeconds int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, value := range items {
		a.store(key, value, expirationSeconds)
	}
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, key)
	return nil
}

// DeletePattern removes keys matching a glob pattern
func (a *MemoryAdapter) DeletePattern(ctx context.Context, pattern string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key := range a.entries {
		if matched, err := path.Match(pattern, key); err != nil {
			return err
		} else if matched {
			delete(a.entries, key)
		}
	}
	return nil
}

// Exists checks if a live key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.lookup(key)
	return ok, nil
}
