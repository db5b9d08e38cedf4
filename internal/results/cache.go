package results

import (
	"sync"
	"time"
)

const DefaultTTL = time.Second

// Cache memoizes computed Stats per poll for a short window so nearby reads
// within one request burst don't recompute the aggregation.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	stats    Stats
	storedAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached stats for pollID if still fresh, otherwise calls
// compute and stores the result.
func (c *Cache) Get(pollID string, compute func() Stats) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[pollID]; ok && c.now().Sub(entry.storedAt) < c.ttl {
		return entry.stats
	}

	stats := compute()
	c.entries[pollID] = cacheEntry{stats: stats, storedAt: c.now()}
	return stats
}

// Invalidate drops the entry for pollID; called after a vote is recorded.
func (c *Cache) Invalidate(pollID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, pollID)
}
