package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a bounded, thread-safe LRU map. With a positive ttl every entry
// also expires that long after it was last written.
type LRUCache[V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	items   map[string]*list.Element
	lruList *list.List
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

func NewLRUCache[V any](capacity int, ttl time.Duration) *LRUCache[V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, found := c.items[key]
	if !found {
		return zero, false
	}

	e := elem.Value.(*entry[V])
	if c.expired(e) {
		c.removeElement(elem)
		return zero, false
	}

	c.lruList.MoveToFront(elem)
	return e.value, true
}

func (c *LRUCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.expiry()

	if elem, found := c.items[key]; found {
		c.lruList.MoveToFront(elem)
		e := elem.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		return
	}

	elem := c.lruList.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = elem

	if c.lruList.Len() > c.capacity {
		c.removeElement(c.lruList.Back())
	}
}

func (c *LRUCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, found := c.items[key]; found {
		c.removeElement(elem)
	}
}

func (c *LRUCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

func (c *LRUCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lruList = list.New()
}

func (c *LRUCache[V]) expiry() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *LRUCache[V]) expired(e *entry[V]) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

func (c *LRUCache[V]) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	c.lruList.Remove(elem)
	delete(c.items, elem.Value.(*entry[V]).key)
}
