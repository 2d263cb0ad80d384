package symbol

import (
	"container/list"
	"sync"
)

// lruCache is a simple LRU (Least Recently Used) cache with a fixed capacity.
type lruCache[K comparable, V any] struct {
	capacity int
	mu       sync.Mutex
	items    map[K]*list.Element
	lruList  *list.List
}

// lruEntry represents a key-value pair in the cache.
type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// newLRUCache creates a new LRU cache with the specified capacity.
func newLRUCache[K comparable, V any](capacity int) *lruCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &lruCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		lruList:  list.New(),
	}
}

// Get retrieves a value from the cache and marks it as recently used.
func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.lruList.MoveToFront(elem)
		return elem.Value.(*lruEntry[K, V]).value, true
	}

	var zero V
	return zero, false
}

// Put adds or updates a value in the cache.
func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*lruEntry[K, V]).value = value
		return
	}

	elem := c.lruList.PushFront(&lruEntry[K, V]{key: key, value: value})
	c.items[key] = elem

	if c.lruList.Len() > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used item from the cache.
func (c *lruCache[K, V]) evictOldest() {
	elem := c.lruList.Back()
	if elem != nil {
		c.lruList.Remove(elem)
		delete(c.items, elem.Value.(*lruEntry[K, V]).key)
	}
}

// Len returns the current number of items in the cache.
func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}
