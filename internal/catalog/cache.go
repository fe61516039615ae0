package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is how long a loaded catalog snapshot stays fresh.
const DefaultTTL = 5 * time.Minute

// Cache holds the current catalog snapshot with a time-based expiry.
//
// Get returns an immutable *Catalog; readers keep using the snapshot they were
// handed even if Invalidate or a reload happens mid-parse. When the store is
// unavailable the compiled-in fallback subset is served and degraded mode is
// logged.
type Cache struct {
	mu       sync.RWMutex
	store    Store
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time
	snapshot *Catalog
	expiry   time.Time
	degraded bool
}

// NewCache creates a catalog cache over the given store. A nil store means the
// fallback subset is always used. ttl <= 0 uses DefaultTTL.
func NewCache(store Store, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  store,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Get returns the current catalog snapshot, reloading from the store when the
// snapshot is missing or expired. It never fails: on store errors the fallback
// subset is returned.
func (c *Cache) Get(ctx context.Context) *Catalog {
	c.mu.RLock()
	if c.snapshot != nil && c.now().Before(c.expiry) {
		snap := c.snapshot
		c.mu.RUnlock()
		return snap
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have reloaded while we waited for the lock.
	if c.snapshot != nil && c.now().Before(c.expiry) {
		return c.snapshot
	}

	snap, degraded := c.load(ctx)
	c.snapshot = snap
	c.expiry = c.now().Add(c.ttl)
	c.degraded = degraded
	return snap
}

// load fetches from the store, falling back to the compiled-in subset.
func (c *Cache) load(ctx context.Context) (snap *Catalog, degraded bool) {
	if c.store == nil {
		c.logger.Info("catalog store not configured, using built-in fallback")
		return Fallback(), true
	}

	codes, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("catalog load failed, running degraded on built-in fallback", "error", err)
		return Fallback(), true
	}
	if len(codes) == 0 {
		c.logger.Warn("catalog table is empty, running degraded on built-in fallback")
		return Fallback(), true
	}

	c.logger.Info("catalog loaded", "codes", len(codes))
	return New(codes), false
}

// Invalidate forces the next Get to reload. Safe to call concurrently with
// in-flight reads; they complete on their existing snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.expiry = time.Time{}
	c.mu.Unlock()
}

// Degraded reports whether the current snapshot is the fallback subset.
func (c *Cache) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.degraded
}
