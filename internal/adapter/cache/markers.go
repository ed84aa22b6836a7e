// Package cache memoizes marker queries for the interactive session.
package cache

import (
	"context"
	"slices"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/observability"
)

// CachedSource wraps a MarkerSource with an in-memory LRU cache keyed by
// language and name. The stored records do not change while a session runs.
type CachedSource struct {
	inner   domain.MarkerSource
	cache   *lruCache[[]domain.Marker]
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a marker source. metrics may be nil.
func NewCachedSource(inner domain.MarkerSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache[[]domain.Marker](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) Markers(ctx context.Context, lang genus.Language, name string) ([]domain.Marker, error) {
	key := string(lang) + "|" + name
	if markers, ok := c.cache.get(key); ok {
		c.record("hit")
		return slices.Clone(markers), nil
	}
	c.record("miss")

	markers, err := c.inner.Markers(ctx, lang, name)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, slices.Clone(markers))
	return markers, nil
}

// Len is the number of cached queries.
func (c *CachedSource) Len() int { return c.cache.len() }

func (c *CachedSource) record(result string) {
	if c.metrics != nil {
		c.metrics.MarkerCache.WithLabelValues(result).Inc()
	}
}
