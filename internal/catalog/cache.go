package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumora-academy/backend/internal/models"
)

// Cached is a read-through in-memory cache over a Catalog. Assets are
// immutable once published, so entries are only re-fetched after the refresh
// TTL to pick up deletions. Safe for concurrent use without locking on the
// hot path beyond an RWMutex read.
type Cached struct {
	inner Catalog
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[uuid.UUID]cacheEntry
}

type cacheEntry struct {
	asset     *models.VideoAsset
	fetchedAt time.Time
}

// NewCached wraps a catalog with a refresh-TTL read-through cache.
func NewCached(inner Catalog, ttl time.Duration) *Cached {
	return &Cached{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uuid.UUID]cacheEntry),
	}
}

// Lookup returns the cached asset when fresh, falling through to the inner
// catalog otherwise. Lookup failures are not cached; ErrVideoNotFound
// propagates untouched.
func (c *Cached) Lookup(ctx context.Context, videoID uuid.UUID) (*models.VideoAsset, error) {
	c.mu.RLock()
	e, ok := c.entries[videoID]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.asset, nil
	}

	asset, err := c.inner.Lookup(ctx, videoID)
	if err != nil {
		if err == ErrVideoNotFound && ok {
			// Asset was removed; drop the stale entry.
			c.mu.Lock()
			delete(c.entries, videoID)
			c.mu.Unlock()
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[videoID] = cacheEntry{asset: asset, fetchedAt: c.now()}
	c.mu.Unlock()
	return asset, nil
}

// Warm preloads assets into the cache (called once at startup).
func (c *Cached) Warm(assets []models.VideoAsset) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range assets {
		a := assets[i]
		c.entries[a.ID] = cacheEntry{asset: &a, fetchedAt: now}
	}
}
