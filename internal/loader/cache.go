package loader

import (
	"context"
	"sync"
	"time"
)

// CachedFetcher caches the bytes of a successful fetch for a TTL.
// Unlike a config cache it never serves stale data after a failed fetch:
// a failing source must render an empty timeline.
type CachedFetcher struct {
	next Fetcher
	ttl  time.Duration

	mu          sync.RWMutex
	data        []byte
	lastFetched time.Time
}

// Cached wraps next. A non-positive ttl returns next unchanged.
func Cached(next Fetcher, ttl time.Duration) Fetcher {
	if ttl <= 0 {
		return next
	}
	return &CachedFetcher{next: next, ttl: ttl}
}

// Source returns the wrapped source.
func (c *CachedFetcher) Source() string {
	return c.next.Source()
}

// Fetch returns cached bytes while fresh, otherwise fetches again.
func (c *CachedFetcher) Fetch(ctx context.Context) ([]byte, error) {
	c.mu.RLock()
	if c.data != nil && time.Since(c.lastFetched) < c.ttl {
		data := c.data
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.data != nil && time.Since(c.lastFetched) < c.ttl {
		return c.data, nil
	}

	data, err := c.next.Fetch(ctx)
	if err != nil {
		c.data = nil
		c.lastFetched = time.Time{}
		return nil, err
	}

	c.data = data
	c.lastFetched = time.Now()
	return data, nil
}

// Invalidate clears the cache, forcing a fetch on next access.
func (c *CachedFetcher) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.lastFetched = time.Time{}
}

// Invalidator is implemented by fetchers that cache.
type Invalidator interface {
	Invalidate()
}
