// Package cache is the in-memory lookup cache that bounds load on the
// durable store. It remembers both resolved targets and confirmed
// absences, so unknown hostnames cannot hammer the store either.
package cache

import (
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hostbounce/hostbounce/pkg/models"
)

// Entry is one cached lookup result. Either Target is set (a validated
// base URL) or Negative is true (the store confirmed no mapping).
type Entry struct {
	Target   *url.URL
	Negative bool
}

type record struct {
	entry     Entry
	expiresAt time.Time
}

// Cache maps canonical hostnames to lookup results with a uniform TTL.
// Safe for concurrent use; last write wins on races for the same key.
type Cache struct {
	mu      sync.RWMutex
	records map[string]record

	ttl time.Duration
	now func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Cache with the given TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{
		records: make(map[string]record),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the entry for a hostname. Expired entries are treated as
// absent; removal is left to Sweep so the read path stays on the read
// lock.
func (c *Cache) Get(hostname string) (Entry, bool) {
	c.mu.RLock()
	rec, ok := c.records[hostname]
	c.mu.RUnlock()

	if !ok || c.now().After(rec.expiresAt) {
		c.misses.Add(1)
		return Entry{}, false
	}

	c.hits.Add(1)
	return rec.entry, true
}

// PutPositive caches a validated target for a hostname with a fresh TTL.
func (c *Cache) PutPositive(hostname string, target *url.URL) {
	c.put(hostname, Entry{Target: target})
}

// PutNegative caches the confirmed absence of a mapping for a hostname.
func (c *Cache) PutNegative(hostname string) {
	c.put(hostname, Entry{Negative: true})
}

func (c *Cache) put(hostname string, e Entry) {
	rec := record{entry: e, expiresAt: c.now().Add(c.ttl)}
	c.mu.Lock()
	c.records[hostname] = rec
	c.mu.Unlock()
}

// Sweep removes expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	for hostname, rec := range c.records {
		if now.After(rec.expiresAt) {
			delete(c.records, hostname)
			removed++
		}
	}
	c.mu.Unlock()

	return removed
}

// Purge removes all entries.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.records = make(map[string]record)
	c.mu.Unlock()
}

// Stats returns entry count and hit/miss counters.
func (c *Cache) Stats() models.CacheStats {
	c.mu.RLock()
	entries := int64(len(c.records))
	c.mu.RUnlock()

	return models.CacheStats{
		Entries: entries,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
