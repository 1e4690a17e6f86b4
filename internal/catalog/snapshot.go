package catalog

import (
	"context"
	"sync"
	"time"
)

// DefaultSnapshotTTL bounds how long a fetched library snapshot is reused
// before the next pass refreshes it from the media server.
const DefaultSnapshotTTL = 30 * time.Minute

// FetchFunc loads the full audio library from the media server.
type FetchFunc func(ctx context.Context) ([]Track, error)

// Snapshot is one cached view of the library.
type Snapshot struct {
	Tracks    []Track
	FetchedAt time.Time
}

// SnapshotCache serializes library fetches and reuses the result for a fixed
// TTL. A failed fetch is never cached.
type SnapshotCache struct {
	mu    sync.Mutex
	fetch FetchFunc
	ttl   time.Duration
	now   func() time.Time
	last  *Snapshot
}

// NewSnapshotCache builds a cache around fetch. A non-positive ttl falls back
// to DefaultSnapshotTTL.
func NewSnapshotCache(fetch FetchFunc, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{fetch: fetch, ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot when it is still fresh, otherwise fetches a
// new one. Concurrent callers share a single fetch.
func (c *SnapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil && c.now().Sub(c.last.FetchedAt) < c.ttl {
		return c.last, nil
	}
	tracks, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Tracks: tracks, FetchedAt: c.now()}
	c.last = snap
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Get refetches.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.last = nil
	c.mu.Unlock()
}
