package cache

import (
	"context"
	"time"
)

// IndexKey is the single key the home feed is cached under. It does not vary
// by page: while the entry lives, every page request gets the cached value.
const IndexKey = "feed:index"

// DefaultIndexTTL is how long the home feed stays cached by default.
const DefaultIndexTTL = 20 * time.Second

// IndexCache caches the rendered home feed. New posts do not invalidate it;
// they appear once the entry expires or Clear is called.
type IndexCache struct {
	store Store
	ttl   time.Duration
}

// NewIndexCache returns an IndexCache on store. A non-positive ttl falls back
// to DefaultIndexTTL.
func NewIndexCache(store Store, ttl time.Duration) *IndexCache {
	if ttl <= 0 {
		ttl = DefaultIndexTTL
	}
	return &IndexCache{store: store, ttl: ttl}
}

// TTL returns the entry lifetime.
func (c *IndexCache) TTL() time.Duration {
	return c.ttl
}

// Fetch serves dest from the cache, or runs load to fill dest and caches it.
func (c *IndexCache) Fetch(ctx context.Context, dest any, load func() error) error {
	return Aside(ctx, c.store, IndexKey, dest, c.ttl, load)
}

// Cached reports whether an entry is currently stored.
func (c *IndexCache) Cached(ctx context.Context) (bool, error) {
	_, found, err := c.store.Get(ctx, IndexKey)
	return found, err
}

// Invalidate drops the home feed entry only.
func (c *IndexCache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, IndexKey)
}

// Clear empties the whole backing store.
func (c *IndexCache) Clear(ctx context.Context) error {
	return c.store.Clear(ctx)
}
