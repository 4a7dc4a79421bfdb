// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

/*
Package cache provides caching functionality for the descriptor bus.

This package implements various caching strategies to improve performance
by storing and reusing descriptor values, avoiding repeat fetches from a
durable store backend.

Features:
  - In-memory cache backend (MemoryCache); no Redis or distributed backend
  - TTL-based expiration
  - LRU, LFU, FIFO and TTL eviction policies
  - Cache key generation from descriptors
  - Cache invalidation strategies

Example:

	import "github.com/dev-pro-jma/rebus/cache"

	// Create cache
	cache := cache.NewMemoryCache(cache.CacheConfig{
	    MaxSize:    1000,
	    DefaultTTL: 5 * time.Minute,
	})

	// Set cache entry
	cache.Set(ctx, "key", value, 5*time.Minute)

	// Get cache entry
	if value, found := cache.Get(ctx, "key"); found {
	    // Use cached value
	}

	// Delete cache entry
	cache.Delete(ctx, "key")
*/
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

// Cache defines the interface for caching implementations
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all entries from cache
	Clear(ctx context.Context) error

	// Stats returns cache statistics
	Stats() CacheStats

	// Close closes the cache
	Close() error
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	// MaxSize is the maximum number of entries
	MaxSize int

	// DefaultTTL is the default time-to-live
	DefaultTTL time.Duration

	// EvictionPolicy determines how entries are evicted
	EvictionPolicy EvictionPolicy

	// EnableMetrics enables cache metrics collection
	EnableMetrics bool
}

// EvictionPolicy determines how cache entries are evicted
type EvictionPolicy string

const (
	// EvictionPolicyLRU evicts least recently used entries
	EvictionPolicyLRU EvictionPolicy = "lru"

	// EvictionPolicyLFU evicts least frequently used entries
	EvictionPolicyLFU EvictionPolicy = "lfu"

	// EvictionPolicyFIFO evicts oldest entries first
	EvictionPolicyFIFO EvictionPolicy = "fifo"

	// EvictionPolicyTTL evicts based on TTL only
	EvictionPolicyTTL EvictionPolicy = "ttl"
)

// CacheStats holds cache statistics
type CacheStats struct {
	Hits          int64
	Misses        int64
	Sets          int64
	Deletes       int64
	Evictions     int64
	Size          int
	MaxSize       int
	HitRate       float64
	MemoryUsageKB int64
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize:        1000,
		DefaultTTL:     5 * time.Minute,
		EvictionPolicy: EvictionPolicyLRU,
		EnableMetrics:  true,
	}
}

// DescriptorCache is a specialized cache in front of a descriptor store's
// value lookups: it lets a repeated store.Store.Get for the same
// (domain, selector) pair skip the backing storage round trip.
type DescriptorCache struct {
	cache  Cache
	config DescriptorCacheConfig
}

// DescriptorCacheConfig holds descriptor cache configuration
type DescriptorCacheConfig struct {
	// Enabled enables/disables caching
	Enabled bool

	// TTL is the default cache TTL
	TTL time.Duration

	// KeyFunc generates cache keys from descriptors
	KeyFunc func(*descriptor.Descriptor) string

	// ShouldCache determines if a descriptor's value should be cached
	ShouldCache func(*descriptor.Descriptor) bool

	// ShouldInvalidate determines if a descriptor update should evict the
	// existing cache entry for its key (e.g. a marker transition that
	// changes the value in place).
	ShouldInvalidate func(*descriptor.Descriptor) bool
}

// DefaultDescriptorCacheConfig returns default descriptor cache configuration
func DefaultDescriptorCacheConfig() DescriptorCacheConfig {
	return DescriptorCacheConfig{
		Enabled:          true,
		TTL:              5 * time.Minute,
		KeyFunc:          DefaultKeyFunc,
		ShouldCache:      DefaultShouldCache,
		ShouldInvalidate: DefaultShouldInvalidate,
	}
}

// NewDescriptorCache creates a new descriptor cache
func NewDescriptorCache(cache Cache, config DescriptorCacheConfig) *DescriptorCache {
	return &DescriptorCache{
		cache:  cache,
		config: config,
	}
}

// Get retrieves a cached descriptor by the key DefaultKeyFunc would derive
// for domain/selector. A custom KeyFunc is not applied here, so entries Set
// under a different key are not found by Get.
func (rc *DescriptorCache) Get(ctx context.Context, domain, selector string) (*descriptor.Descriptor, bool) {
	if !rc.config.Enabled {
		return nil, false
	}

	key := keyFor(domain, selector)
	value, found := rc.cache.Get(ctx, key)
	if !found {
		return nil, false
	}

	d, ok := value.(*descriptor.Descriptor)
	if !ok {
		return nil, false
	}

	return d, true
}

// Set stores a descriptor in cache, keyed by its domain/selector.
func (rc *DescriptorCache) Set(ctx context.Context, d *descriptor.Descriptor) error {
	if !rc.config.Enabled {
		return nil
	}

	if !rc.config.ShouldCache(d) {
		return nil
	}

	key := rc.config.KeyFunc(d)
	return rc.cache.Set(ctx, key, d, rc.config.TTL)
}

// Invalidate evicts the cached entry for d's domain/selector, if the
// configured policy says this update should invalidate it.
func (rc *DescriptorCache) Invalidate(ctx context.Context, d *descriptor.Descriptor) error {
	if !rc.config.Enabled {
		return nil
	}

	if !rc.config.ShouldInvalidate(d) {
		return nil
	}

	key := rc.config.KeyFunc(d)
	return rc.cache.Delete(ctx, key)
}

// Stats returns cache statistics
func (rc *DescriptorCache) Stats() CacheStats {
	return rc.cache.Stats()
}

func keyFor(domain, selector string) string {
	return domain + "\x00" + selector
}

// DefaultKeyFunc generates a cache key from a descriptor's domain and
// selector, the same pair store.Store.Get is addressed by.
func DefaultKeyFunc(d *descriptor.Descriptor) string {
	return keyFor(d.Domain, d.Selector)
}

// DefaultShouldCache caches every descriptor: a Descriptor is immutable
// once stored, so there is no staleness window to guard against.
func DefaultShouldCache(d *descriptor.Descriptor) bool {
	return true
}

// DefaultShouldInvalidate never invalidates proactively; entries expire
// via TTL, and a stored Descriptor's content never changes in place.
func DefaultShouldInvalidate(d *descriptor.Descriptor) bool {
	return false
}

// InvalidatePattern clears every cache entry; pattern is not used to select
// entries.
func (rc *DescriptorCache) InvalidatePattern(ctx context.Context, pattern string) error {
	// This would require cache backend support
	// For now, just clear all
	return rc.cache.Clear(ctx)
}

// Warmup pre-populates the cache with a known set of descriptors, e.g.
// after a store restart to avoid a cold-cache stampede.
func (rc *DescriptorCache) Warmup(ctx context.Context, descriptors []*descriptor.Descriptor) error {
	for _, d := range descriptors {
		if err := rc.Set(ctx, d); err != nil {
			return fmt.Errorf("cache: warmup: %w", err)
		}
	}
	return nil
}
