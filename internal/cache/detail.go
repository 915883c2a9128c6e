package cache

import (
	"context"
	"time"
)

// Source tells the caller where a representation came from, so freshness
// behavior is observable (X-Source header, tests).
type Source string

const (
	SourceCache Source = "cache"
	SourceStore Source = "store"
)

// DetailCache memoizes the full representation of a single entity (event or
// ticket) keyed by kind and id. Invalidation is synchronous with the
// mutating request: after an update or delete of entity E, a retrieve of E
// never sees the pre-mutation representation.
type DetailCache struct {
	store Store
	ttl   time.Duration
}

func NewDetailCache(store Store, ttl time.Duration) *DetailCache {
	if ttl <= 0 {
		ttl = 3600 * time.Second
	}

	return &DetailCache{store: store, ttl: ttl}
}

func key(kind, id string) string {
	return "detail:" + kind + ":" + id
}

// Get returns the cached representation, or a miss. Store errors degrade to
// a miss; the cache must never fail a read path.
func (c *DetailCache) Get(ctx context.Context, kind, id string) ([]byte, bool) {
	b, ok, err := c.store.Get(ctx, key(kind, id))

	if err != nil || !ok {
		return nil, false
	}

	return b, true
}

func (c *DetailCache) Put(ctx context.Context, kind, id string, representation []byte) {
	_ = c.store.SetTTL(ctx, key(kind, id), representation, c.ttl)
}

// Invalidate removes the entry. Invalidating an absent entry is a no-op.
func (c *DetailCache) Invalidate(ctx context.Context, kind, id string) {
	_ = c.store.Delete(ctx, key(kind, id))
}
