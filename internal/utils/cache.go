package utils

import (
	"os"
	"sync"
	"time"
)

// cacheEntry is a cached value plus the file stamp it was read at
type cacheEntry[V any] struct {
	value   V
	modTime time.Time
	size    int64
}

// Cache holds values derived from files and drops them once the file changes on disk
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]cacheEntry[V]
}

// NewCache creates an empty cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]cacheEntry[V])}
}

// Get returns the value for key if the file at path still matches the stamp it was cached with
func (c *Cache[K, V]) Get(key K, path string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if stat, err := os.Stat(path); err == nil && stat.ModTime().Equal(entry.modTime) && stat.Size() == entry.size {
		return entry.value, true
	}

	c.Delete(key)
	return zero, false
}

// Set caches value for key, stamped with the current state of the file at path
func (c *Cache[K, V]) Set(key K, value V, path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheEntry[V]{value: value, modTime: stat.ModTime(), size: stat.Size()}
	return nil
}

// Delete drops key
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear drops every entry
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]cacheEntry[V])
}

// Size returns the number of cached entries
func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
