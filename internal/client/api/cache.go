package api

import (
	"strings"
	"sync"
)

// Cache is the explicit query-result cache. The original relied on a query
// framework's dependency tracking; making the capability explicit lets the
// invalidation ordering be tested directly.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Invalidate(key string)
	InvalidatePrefix(prefix string)
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

func NewMemoryCache() Cache {
	return &memoryCache{entries: map[string]interface{}{}}
}

func (mc *memoryCache) Get(key string) (interface{}, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	v, ok := mc.entries[key]
	return v, ok
}

func (mc *memoryCache) Set(key string, value interface{}) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries[key] = value
}

func (mc *memoryCache) Invalidate(key string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	delete(mc.entries, key)
}

func (mc *memoryCache) InvalidatePrefix(prefix string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for k := range mc.entries {
		if strings.HasPrefix(k, prefix) {
			delete(mc.entries, k)
		}
	}
}
