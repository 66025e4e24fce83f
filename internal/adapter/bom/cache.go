package bom

import (
	"context"
	"sync"

	"github.com/ausclim/heatgrid/internal/domain"
	"github.com/ausclim/heatgrid/internal/observability"
)

// Source produces a station's daily series. Implemented by Client and by
// CachedSource.
type Source interface {
	FetchDailySeries(ctx context.Context, stationID string, typ domain.ObsType) (*domain.Dataset, error)
}

// CachedSource wraps a Source with an in-memory LRU cache of datasets.
// Datasets are immutable once built, so cached values are shared safely
// across concurrent grid builds.
type CachedSource struct {
	inner   Source
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a station source.
func NewCachedSource(inner Source, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) FetchDailySeries(ctx context.Context, stationID string, typ domain.ObsType) (*domain.Dataset, error) {
	key := stationID + "|" + string(typ)
	if ds, ok := c.cache.get(key); ok {
		return ds, nil
	}
	ds, err := c.inner.FetchDailySeries(ctx, stationID, typ)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, ds)
	c.metrics.DatasetsCached.Set(float64(c.cache.len()))
	return ds, nil
}

// lruCache is a simple thread-safe LRU cache for station datasets.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *domain.Dataset
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) get(key string) (*domain.Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *domain.Dataset) {
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
