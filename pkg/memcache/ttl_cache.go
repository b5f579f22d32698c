package mem

import (
	"sync"
	"time"
)

// TTLCache is a small in-process map whose entries expire after a fixed
// lifetime. Expired entries are dropped lazily on read and swept on write
// once the map grows past maxEntries.
type TTLCache[V any] struct {
	mu         sync.RWMutex
	data       map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func NewTTLCache[V any](ttl time.Duration, maxEntries int) *TTLCache[V] {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &TTLCache[V]{
		data:       make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.data[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl)}

	if len(c.data) > c.maxEntries {
		for k, e := range c.data {
			if now.After(e.expiresAt) {
				delete(c.data, k)
			}
		}
	}
}

func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.data[key]; ok && cur.expiresAt == e.expiresAt {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
