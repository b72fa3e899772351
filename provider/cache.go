/*
cache.go - Caching holiday provider

PURPOSE:
  Wraps any provider with a (zone, year) keyed in-memory cache. The school
  calendar changes at most a few times a year; computations run every few
  minutes. Errors are never cached: a failed fetch retries on the next call.
*/
package provider

import (
	"context"
	"sync"

	"github.com/coparent/custody-engine/engine"
)

// Cache memoizes successful ListHolidays results per (zone, year).
type Cache struct {
	inner engine.HolidayProvider

	mu      sync.RWMutex
	entries map[cacheKey][]engine.SchoolHoliday
}

type cacheKey struct {
	zone string
	year int
}

// NewCache wraps a provider with an empty cache.
func NewCache(inner engine.HolidayProvider) *Cache {
	return &Cache{
		inner:   inner,
		entries: make(map[cacheKey][]engine.SchoolHoliday),
	}
}

// ListHolidays serves from cache, falling through to the wrapped provider.
func (c *Cache) ListHolidays(ctx context.Context, zone string, year int) ([]engine.SchoolHoliday, error) {
	key := cacheKey{zone: zone, year: year}

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	holidays, err := c.inner.ListHolidays(ctx, zone, year)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = holidays
	c.mu.Unlock()
	return holidays, nil
}

// Clear drops every cached entry. The refresh endpoint calls this so the
// next computation refetches the calendar.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey][]engine.SchoolHoliday)
}
