package respcache

import (
	"fmt"
	"sync"
	"time"
)

type entry struct {
	body     []byte
	storedAt time.Time
	isError  bool
}

// Cache is a bounded in-memory store of prior upstream responses keyed by
// request signature. Freshness is the caller's call (tier-aware maxAge);
// the cache itself only enforces the bound and an absolute staleness ceiling.
type Cache struct {
	mu      sync.Mutex
	m       map[string]*entry
	order   []string // insertion order, oldest first
	max     int
	ceiling time.Duration

	sweepTicker *time.Ticker
	done        chan struct{}
}

// New creates a response cache holding at most max entries. Entries older
// than ceiling are purged by a background sweep regardless of caller maxAge.
func New(max int, ceiling, sweepInterval time.Duration) *Cache {
	if max <= 0 {
		max = 500
	}
	c := &Cache{
		m:       make(map[string]*entry),
		max:     max,
		ceiling: ceiling,
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 && ceiling > 0 {
		c.sweepTicker = time.NewTicker(sweepInterval)
		go c.sweepLoop()
	}
	return c
}

// Key builds the deterministic request signature for a windowed feed query.
func Key(queryType string, start, end time.Time, limit, batch int) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d",
		queryType, start.UTC().Format("20060102"), end.UTC().Format("20060102"), limit, batch)
}

// Get returns the cached body when it is younger than maxAge.
func (c *Cache) Get(key string, maxAge time.Duration) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) > maxAge {
		return nil, false
	}
	return e.body, true
}

// GetAny returns the cached body regardless of age. Used for
// stale-while-error fallback when a fresh fetch is rate limited.
func (c *Cache) GetAny(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || e.isError {
		return nil, false
	}
	return e.body, true
}

// Put stores a response. Eviction of the oldest entry happens under the same
// lock as insertion so the bound holds under concurrent callers.
func (c *Cache) Put(key string, body []byte, isError bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[key]; !exists {
		for len(c.m) >= c.max && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.m, oldest)
		}
		c.order = append(c.order, key)
	}
	c.m[key] = &entry{body: body, storedAt: time.Now(), isError: isError}
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *Cache) sweepLoop() {
	for {
		select {
		case <-c.sweepTicker.C:
			c.sweep(time.Now())
		case <-c.done:
			return
		}
	}
}

func (c *Cache) sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.order[:0]
	for _, k := range c.order {
		e, ok := c.m[k]
		if !ok {
			continue
		}
		if now.Sub(e.storedAt) > c.ceiling {
			delete(c.m, k)
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
}

// Close stops the background sweep.
func (c *Cache) Close() {
	if c.sweepTicker != nil {
		c.sweepTicker.Stop()
		close(c.done)
	}
}
