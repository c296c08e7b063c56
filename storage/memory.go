package storage

import (
	"context"
	"sync"

	authsync "github.com/mr-hec24/expo-supabase-auth-starter"
)

// Memory is an in-process implementation of [authsync.LocalStorage]. It is
// safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

var _ authsync.LocalStorage = (*Memory)(nil)

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string]string),
	}
}

// GetItem returns the value stored under key.
func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok, nil
}

// SetItem stores value under key, replacing any previous value.
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// GetAllKeys returns every stored key in unspecified order.
func (m *Memory) GetAllKeys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for key := range m.items {
		keys = append(keys, key)
	}
	return keys, nil
}

// MultiRemove deletes every key in keys.
func (m *Memory) MultiRemove(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}
