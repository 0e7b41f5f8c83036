package wunderground

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/station-digest-service/internal/domain"
)

// CachedHistory wraps a DayHistory with an in-memory LRU cache. Past days
// never change once recorded, so entries do not expire.
type CachedHistory struct {
	inner   DayHistory
	cache   *lruCache
	lookups *prometheus.CounterVec
}

// NewCachedHistory creates a cache decorator around a DayHistory. lookups,
// when non-nil, is incremented with result=hit or result=miss.
func NewCachedHistory(inner DayHistory, maxEntries int, lookups *prometheus.CounterVec) *CachedHistory {
	return &CachedHistory{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		lookups: lookups,
	}
}

// Day implements DayHistory.
func (c *CachedHistory) Day(ctx context.Context, date string) ([]domain.WeeklyObservation, error) {
	if obs, ok := c.cache.get(date); ok {
		c.count("hit")
		return obs, nil
	}
	c.count("miss")
	obs, err := c.inner.Day(ctx, date)
	if err != nil {
		return nil, err
	}
	// Empty days are retried; the station may still be uploading.
	if len(obs) > 0 {
		c.cache.put(date, obs)
	}
	return obs, nil
}

func (c *CachedHistory) count(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

// lruCache is a simple thread-safe LRU cache of day observations keyed by date.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.WeeklyObservation
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) ([]domain.WeeklyObservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value []domain.WeeklyObservation) {
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

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
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
