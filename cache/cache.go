package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a size bounded, thread-safe LRU.
type Cache[K comparable, V any] struct {
	cache *lru.Cache[K, V]
}

func New[K comparable, V any](maxSize int) *Cache[K, V] {
	c, err := lru.New[K, V](maxSize)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize LRU cache: %s", err.Error()))
	}
	return &Cache[K, V]{cache: c}
}

// NewWithEvict is like New but calls onEvict whenever an entry is pushed out
// by the size bound or removed explicitly.
func NewWithEvict[K comparable, V any](maxSize int, onEvict func(K, V)) *Cache[K, V] {
	c, err := lru.NewWithEvict[K, V](maxSize, onEvict)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize LRU cache: %s", err.Error()))
	}
	return &Cache[K, V]{cache: c}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.cache.Get(key)
}

// Peek reads a value without updating its recency.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	return c.cache.Peek(key)
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.cache.Add(key, value)
}

func (c *Cache[K, V]) Remove(key K) bool {
	return c.cache.Remove(key)
}

// Keys returns the keys from oldest to newest.
func (c *Cache[K, V]) Keys() []K {
	return c.cache.Keys()
}

func (c *Cache[K, V]) Len() int {
	return c.cache.Len()
}

func (c *Cache[K, V]) Purge() {
	c.cache.Purge()
}
