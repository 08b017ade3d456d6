// Package cache provides field catalog caches: an in-process TTL cache and a
// Redis-backed cache shared between instances.
package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/commhub/backend/internal/domain/communication"
)

// DefaultTTL is used when no TTL is configured
const DefaultTTL = 5 * time.Minute

// InMemoryCatalogCache keeps one catalog snapshot in process memory
type InMemoryCatalogCache struct {
	mu        sync.RWMutex
	catalog   communication.FieldCatalog
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// InMemoryOption configures an InMemoryCatalogCache
type InMemoryOption func(*InMemoryCatalogCache)

// WithClock replaces time.Now
func WithClock(now func() time.Time) InMemoryOption {
	return func(c *InMemoryCatalogCache) {
		c.now = now
	}
}

// NewInMemoryCatalogCache creates an in-process cache
func NewInMemoryCatalogCache(ttl time.Duration, opts ...InMemoryOption) *InMemoryCatalogCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &InMemoryCatalogCache{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached catalog while it is fresh
func (c *InMemoryCatalogCache) Get(_ context.Context) (communication.FieldCatalog, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	return slices.Clone(c.catalog), true, nil
}

// Set stores a copy of catalog
func (c *InMemoryCatalogCache) Set(_ context.Context, catalog communication.FieldCatalog) error {
	snapshot := slices.Clone(catalog)
	if snapshot == nil {
		snapshot = communication.FieldCatalog{}
	}
	c.mu.Lock()
	c.catalog = snapshot
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
	return nil
}

// Invalidate drops the snapshot
func (c *InMemoryCatalogCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.catalog = nil
	c.mu.Unlock()
	return nil
}

var _ communication.CatalogCache = (*InMemoryCatalogCache)(nil)
