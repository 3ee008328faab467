// Package cache provides a thread-safe LRU cache keyed by expression source.
//
// The Parser uses it when WithCache is set so that parsing the same source
// twice returns the same Expression handle, keeping the handle's warm-up
// and any compiled form it has installed.
//
// # Example
//
//	c := cache.New[*flowexpr.Expression](256)
//	expr, err := c.GetOrCreate("#a or #b", parse)
package cache

import (
	"container/list"
	"sync"
)

// DefaultCapacity is used when New is given a capacity <= 0.
const DefaultCapacity = 256

type entry[V any] struct {
	key   string
	value V
}

// Cache is a thread-safe LRU cache. Once the capacity is reached, the least
// recently accessed entry is evicted.
type Cache[V any] struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates a cache holding at most capacity entries.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	var value V
	if ok && c.ll.Front() == el {
		value = el.Value.(*entry[V]).value
		c.mu.RUnlock()
		return value, true
	}
	c.mu.RUnlock()
	if !ok {
		return value, false
	}

	// Re-check under the write lock in case of a concurrent eviction.
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok = c.items[key]
	if !ok {
		return value, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry[V]).value, true
}

// Set inserts or replaces the value for key.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = value
		c.ll.MoveToFront(el)
		return
	}
	c.insertLocked(key, value)
}

// GetOrCreate returns the cached value for key, or calls create and caches
// its result. When two callers race on the same key, both receive the value
// stored first. Errors are not cached.
func (c *Cache[V]) GetOrCreate(key string, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*entry[V]).value, nil
	}
	c.insertLocked(key, v)
	return v, nil
}

// Range calls fn for each entry from most to least recently used until fn
// returns false. The cache is locked for reading while Range runs, so fn
// must not call back into the cache.
func (c *Cache[V]) Range(fn func(key string, value V) bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for el := c.ll.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[V])
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Invalidate removes key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// insertLocked must be called with c.mu held for writing.
func (c *Cache[V]) insertLocked(key string, value V) {
	if c.ll.Len() >= c.capacity {
		if back := c.ll.Back(); back != nil {
			c.ll.Remove(back)
			delete(c.items, back.Value.(*entry[V]).key)
		}
	}
	c.items[key] = c.ll.PushFront(&entry[V]{key: key, value: value})
}
