package storage

import (
	"context"
	"sync"
)

// MemStore is an in-memory store, used by tests and as the session-scoped
// store (state that should not outlive the process).
type MemStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{entries: map[string][]byte{}}
}

func (ms *MemStore) Set(ctx context.Context, key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	buf := make([]byte, len(value))
	copy(buf, value)
	ms.entries[keyPrefix+key] = buf
	return nil
}

func (ms *MemStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	raw, ok := ms.entries[keyPrefix+key]
	return raw, ok, nil
}

func (ms *MemStore) Remove(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.entries, keyPrefix+key)
	return nil
}
