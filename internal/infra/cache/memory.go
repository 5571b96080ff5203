// Package cache - memory.go
// In-process RedisClient for single-node deployments. The arena server runs
// fine without an external Redis; swapping in a real client is a one-line
// change in main.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // Zero means no expiry
}

// MemoryClient is a thread-safe in-process implementation of RedisClient.
type MemoryClient struct {
	mu     sync.Mutex
	kv     map[string]memoryEntry
	hashes map[string]map[string]string
}

// NewMemoryClient creates an empty in-process cache backend.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		kv:     make(map[string]memoryEntry),
		hashes: make(map[string]map[string]string),
	}
}

func (m *MemoryClient) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.kv[key]
	if !ok {
		return "", fmt.Errorf("cache miss: %s", key)
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.kv, key)
		return "", fmt.Errorf("cache miss: %s", key)
	}
	return entry.value, nil
}

func (m *MemoryClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		str = fmt.Sprint(v)
	}

	entry := memoryEntry{value: str}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = entry
	return nil
}

func (m *MemoryClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.kv, k)
		delete(m.hashes, k)
	}
	return nil
}

func (m *MemoryClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func (m *MemoryClient) HSet(ctx context.Context, key string, values ...interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string]string)
	}
	for i := 0; i+1 < len(values); i += 2 {
		m.hashes[key][fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	return nil
}
