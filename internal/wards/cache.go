package wards

import (
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ward-notes-server/internal/pdfparse"
)

// ParseFunc turns a ward PDF path into its extracted records.
type ParseFunc func(path string) (map[string]pdfparse.Record, error)

type cacheEntry struct {
	mtime   time.Time
	records map[string]pdfparse.Record
	addedAt time.Time
}

// Cache memoizes ward PDF extraction keyed by (path, mtime). A changed file
// is re-parsed automatically, so no call site ever needs to clear the cache
// by hand. Concurrent requests for the same path share one parse via a
// per-key lock.
type Cache struct {
	parse    ParseFunc
	maxEntry int

	mu      sync.Mutex
	entries map[string]*cacheEntry
	inWork  map[string]*sync.Mutex

	// Optional counters; nil when metrics are not wired.
	Hits   prometheus.Counter
	Misses prometheus.Counter
}

// NewCache creates a Cache holding at most maxEntries parsed files.
func NewCache(parse ParseFunc, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 32
	}
	return &Cache{
		parse:    parse,
		maxEntry: maxEntries,
		entries:  make(map[string]*cacheEntry),
		inWork:   make(map[string]*sync.Mutex),
	}
}

// Get returns the extraction result for path, parsing at most once per
// (path, mtime) even under concurrent callers.
func (c *Cache) Get(path string) (map[string]pdfparse.Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	mtime := info.ModTime()

	c.mu.Lock()
	if e, ok := c.entries[path]; ok && e.mtime.Equal(mtime) {
		c.mu.Unlock()
		c.count(c.Hits)
		return e.records, nil
	}
	keyLock, ok := c.inWork[path]
	if !ok {
		keyLock = &sync.Mutex{}
		c.inWork[path] = keyLock
	}
	c.mu.Unlock()

	keyLock.Lock()
	defer keyLock.Unlock()
	// Waiters queued on this lock still hold their pointer; dropping the map
	// entry only stops the map growing with every distinct path ever seen.
	defer func() {
		c.mu.Lock()
		delete(c.inWork, path)
		c.mu.Unlock()
	}()

	// A concurrent caller may have filled the entry while we waited.
	c.mu.Lock()
	if e, ok := c.entries[path]; ok && e.mtime.Equal(mtime) {
		c.mu.Unlock()
		c.count(c.Hits)
		return e.records, nil
	}
	c.mu.Unlock()

	c.count(c.Misses)
	records, err := c.parse(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = &cacheEntry{mtime: mtime, records: records, addedAt: time.Now()}
	c.evictLocked()
	c.mu.Unlock()

	return records, nil
}

// Invalidate drops the entry for path, forcing a re-parse on next access
// even when the file's mtime has not moved.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// evictLocked removes the oldest entries beyond the size bound. Caller holds
// c.mu.
func (c *Cache) evictLocked() {
	for len(c.entries) > c.maxEntry {
		oldestKey := ""
		var oldest time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.addedAt.Before(oldest) {
				oldestKey = k
				oldest = e.addedAt
			}
		}
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) count(counter prometheus.Counter) {
	if counter != nil {
		counter.Inc()
	}
}
