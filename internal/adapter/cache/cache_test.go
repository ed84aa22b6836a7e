package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/observability"
)

// --- mock for cache tests ---

type countingSource struct {
	calls   int
	markers []domain.Marker
	err     error
}

func (m *countingSource) Markers(_ context.Context, _ genus.Language, _ string) ([]domain.Marker, error) {
	m.calls++
	return m.markers, m.err
}

// --- CachedSource tests ---

func TestCachedSource_Hit(t *testing.T) {
	inner := &countingSource{markers: []domain.Marker{{Latitude: 45.758, Longitude: 4.835}}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedSource(inner, 10, metrics)

	m1, err := cached.Markers(context.Background(), genus.Latin, "Cercis")
	require.NoError(t, err)
	m2, err := cached.Markers(context.Background(), genus.Latin, "Cercis")
	require.NoError(t, err)

	assert.Equal(t, m1, m2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedSource_LanguageIsPartOfKey(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, 10, nil)

	_, _ = cached.Markers(context.Background(), genus.Latin, "Platanus")
	_, _ = cached.Markers(context.Background(), genus.French, "Platanus")

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("database is locked")}
	cached := NewCachedSource(inner, 10, nil)

	_, err := cached.Markers(context.Background(), genus.Latin, "Cercis")
	require.Error(t, err)
	_, err = cached.Markers(context.Background(), genus.Latin, "Cercis")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, cached.Len())
}

func TestCachedSource_CallerCannotMutateCache(t *testing.T) {
	inner := &countingSource{markers: []domain.Marker{{Latitude: 1}}}
	cached := NewCachedSource(inner, 10, nil)

	first, err := cached.Markers(context.Background(), genus.Latin, "Acer")
	require.NoError(t, err)
	first[0].Latitude = 99

	again, err := cached.Markers(context.Background(), genus.Latin, "Acer")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, again[0].Latitude, 0)
}

func TestCachedSource_Disabled(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, 0, nil)

	_, _ = cached.Markers(context.Background(), genus.Latin, "Cercis")
	_, _ = cached.Markers(context.Background(), genus.Latin, "Cercis")

	assert.Equal(t, 2, inner.calls)
}

// --- LRU cache unit tests ---

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.put("c", "C") // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A")
	c.put("b", "B")
	c.get("a")
	c.put("c", "C")

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[string](2)

	c.put("a", "A1")
	c.put("a", "A2")

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", v)
	assert.Equal(t, 1, c.len())
}
