// Package routecache provides a bounded TTL cache for route assessments.
// It is constructor-injected into the router rather than living as a
// module-level singleton, and supports concurrent read/insert.
package routecache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kektech/cardbot/internal/models"
)

// Cache wraps go-cache with a hard entry bound. TTL eviction is handled by
// the underlying janitor; the bound is enforced on insert so the cache can
// never grow without limit between sweeps.
type Cache struct {
	inner      *gocache.Cache
	maxEntries int
}

// New creates a cache whose entries expire after ttl, purged every
// ttl/2, holding at most maxEntries items.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 512
	}
	return &Cache{
		inner:      gocache.New(ttl, ttl/2),
		maxEntries: maxEntries,
	}
}

// Key builds the cache key for a query within a scope.
func Key(scope models.SearchScope, query string) string {
	return scope.RoomID + "\x00" + query
}

// Get returns the cached route result for key if present and unexpired.
func (c *Cache) Get(key string) (*models.RouteResult, bool) {
	v, ok := c.inner.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*models.RouteResult), true
}

// Set stores a route result. When the cache is at capacity the insert is
// skipped; expired entries free capacity on the next janitor sweep, and a
// skipped insert only costs a recomputation.
func (c *Cache) Set(key string, result *models.RouteResult) {
	if c.inner.ItemCount() >= c.maxEntries {
		if _, exists := c.inner.Get(key); !exists {
			c.inner.DeleteExpired()
			if c.inner.ItemCount() >= c.maxEntries {
				return
			}
		}
	}
	c.inner.Set(key, result, gocache.DefaultExpiration)
}

// Len reports the current entry count, expired items included.
func (c *Cache) Len() int {
	return c.inner.ItemCount()
}
