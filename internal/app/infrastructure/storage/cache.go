package storage

import (
	"github.com/maypok86/otter/v2"
	"sync"
	"time"
)

// Cache is a bounded in-memory map whose entries expire ttl after they were
// last written.
type Cache[T any] struct {
	mu    sync.Mutex
	outer *otter.Cache[string, T]
}

func NewCache[T any](capacity int, ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		outer: otter.Must(&otter.Options[string, T]{
			MaximumSize:      capacity,
			ExpiryCalculator: otter.ExpiryWriting[string, T](ttl),
		}),
	}
}

func (c *Cache[T]) Set(key string, val T) {
	c.outer.Set(key, val)
}

func (c *Cache[T]) Get(key string) (T, bool) {
	return c.outer.GetIfPresent(key)
}

// SetIfAbsent stores val unless key is present and reports whether it did.
func (c *Cache[T]) SetIfAbsent(key string, val T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.outer.GetIfPresent(key); ok {
		return false
	}
	c.outer.Set(key, val)
	return true
}

func (c *Cache[T]) ClearKey(key string) {
	c.outer.Invalidate(key)
}

func (c *Cache[T]) ClearAll() {
	c.outer.InvalidateAll()
}

func (c *Cache[T]) Len() int {
	return c.outer.EstimatedSize()
}
