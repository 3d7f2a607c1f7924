package satellite

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/observability"
)

// CachedSource wraps a VegetationSource with an in-memory LRU cache keyed by
// (location, hour). Indices move slowly; one upstream call per location per
// hour is plenty.
type CachedSource struct {
	inner   domain.VegetationSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a vegetation source.
func NewCachedSource(inner domain.VegetationSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) Indices(ctx context.Context, location string) (domain.VegetationIndices, error) {
	key := fmt.Sprintf("%s|%s", location, domain.Now().Truncate(time.Hour).Format(time.RFC3339))
	if idx, ok := c.cache.get(key); ok {
		c.metrics.SatelliteCache.WithLabelValues("hit").Inc()
		return idx, nil
	}
	c.metrics.SatelliteCache.WithLabelValues("miss").Inc()

	idx, err := c.inner.Indices(ctx, location)
	if err != nil {
		// Failures stay uncached so the next request can retry upstream.
		return idx, err
	}
	c.cache.put(key, idx)
	return idx, nil
}

// lruCache is a thread-safe LRU cache for vegetation indices.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.VegetationIndices
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.VegetationIndices, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.VegetationIndices{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.VegetationIndices) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
