// Package cache provides a small in-process LRU with per-entry TTL. The HTTP
// layer uses it to memoize computed stats between mutations.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[T any] struct {
	key      string
	value    T
	deadline time.Time
}

// LRU evicts the least recently used entry once maxEntries is exceeded and
// treats entries older than ttl as absent.
type LRU[T any] struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	index      map[string]*list.Element
	order      *list.List

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

func NewLRU[T any](maxEntries int, ttl time.Duration) *LRU[T] {
	return &LRU[T]{
		maxEntries: maxEntries,
		ttl:        ttl,
		index:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	el, ok := c.index[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*entry[T])
	if time.Now().After(ent.deadline) {
		c.drop(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return ent.value, true
}

func (c *LRU[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := &entry[T]{key: key, value: value, deadline: time.Now().Add(c.ttl)}
	if el, ok := c.index[key]; ok {
		el.Value = ent
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(ent)
	if c.order.Len() > c.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.drop(oldest)
		}
	}
}

func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.drop(el)
	}
}

// Purge discards every entry. Mutating handlers call this so reads never see
// stats computed from a stale cache snapshot.
func (c *LRU[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[string]*list.Element)
	c.order.Init()
}

func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CleanExpired removes entries past their deadline and reports how many.
func (c *LRU[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if now.After(el.Value.(*entry[T]).deadline) {
			c.drop(el)
			removed++
		}
		el = next
	}
	return removed
}

// StartJanitor runs CleanExpired on interval until Stop is called.
func (c *LRU[T]) StartJanitor(interval time.Duration) {
	c.stopJanitor = make(chan struct{})
	c.janitorDone = make(chan struct{})
	go func() {
		defer close(c.janitorDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CleanExpired()
			case <-c.stopJanitor:
				return
			}
		}
	}()
}

// Stop halts the janitor, if one was started.
func (c *LRU[T]) Stop() {
	if c.stopJanitor == nil {
		return
	}
	close(c.stopJanitor)
	<-c.janitorDone
}

func (c *LRU[T]) drop(el *list.Element) {
	delete(c.index, el.Value.(*entry[T]).key)
	c.order.Remove(el)
}
