package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
)

// Loader fetches the category lists the cache serves.
type Loader interface {
	ListRoots(ctx context.Context) ([]domain.Category, error)
	ListSubcategories(ctx context.Context) ([]domain.Category, error)
}

// Snapshot is one consistent read of both category lists.
type Snapshot struct {
	Categories    []domain.Category
	Subcategories []domain.Category
	LoadedAt      time.Time
}

// Cache keeps the category lists in memory for at most TTL. A zero TTL
// reloads on every call.
type Cache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time

	mu   sync.Mutex
	snap *Snapshot
}

func NewCache(loader Loader, ttl time.Duration) *Cache {
	return &Cache{loader: loader, ttl: ttl, now: time.Now}
}

// SetClock replaces the time source; tests use it to move past the TTL.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Snapshot returns the cached lists, reloading them when stale.
func (c *Cache) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snap != nil && c.ttl > 0 && c.now().Sub(c.snap.LoadedAt) < c.ttl {
		return *c.snap, nil
	}

	var s Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s.Categories, err = c.loader.ListRoots(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		s.Subcategories, err = c.loader.ListSubcategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	s.LoadedAt = c.now()
	c.snap = &s
	return s, nil
}

// Invalidate drops the cached lists so the next Snapshot reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}
