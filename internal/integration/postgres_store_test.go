//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tree-inventory-etl/internal/adapter/postgres"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
)

// TestPostgresStore loads records and the genus table, then queries markers
// in each language.
func TestPostgresStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	url := startPostgres(ctx, t)
	store, err := postgres.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.ReplaceGenus(ctx, []genus.Entry{
		{Latin: "Cercis", French: "Gainier", English: "Redbud"},
		{Latin: "Platanus", French: "Platane", English: "Plane tree"},
	}))
	require.NoError(t, store.Load(ctx, sampleRecords()))

	entries, err := store.GenusEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Cercis", entries[0].Latin)

	t.Run("french", func(t *testing.T) {
		markers, err := store.Markers(ctx, genus.French, "Gainier")
		require.NoError(t, err)
		require.Len(t, markers, 2)
		assert.InDelta(t, 45.758, markers[0].Latitude, 1e-9)
		require.NotNil(t, markers[0].PlantingDate)
		assert.Equal(t, "1985-04-12", markers[0].PlantingDate.Format(time.DateOnly))
		assert.Nil(t, markers[1].PlantingDate)
	})

	t.Run("english", func(t *testing.T) {
		markers, err := store.Markers(ctx, genus.English, "Plane tree")
		require.NoError(t, err)
		assert.Len(t, markers, 1)
	})

	t.Run("unknown name", func(t *testing.T) {
		markers, err := store.Markers(ctx, genus.Latin, "Quercus")
		require.NoError(t, err)
		assert.Empty(t, markers)
	})

	t.Run("measurements beyond 32 bits are stored intact", func(t *testing.T) {
		huge := 3_000_000_000
		records := sampleRecords()
		records[1].Circumference = &huge
		records[1].Height = &huge
		require.NoError(t, store.Load(ctx, records))

		pool, err := pgxpool.New(ctx, url)
		require.NoError(t, err)
		defer pool.Close()

		var circumference, height int64
		require.NoError(t, pool.QueryRow(ctx,
			`SELECT circumference, height FROM trees WHERE identifier = 1`,
		).Scan(&circumference, &height))
		assert.Equal(t, int64(3_000_000_000), circumference)
		assert.Equal(t, int64(3_000_000_000), height)
	})

	t.Run("reload replaces", func(t *testing.T) {
		require.NoError(t, store.Load(ctx, sampleRecords()[:1]))
		markers, err := store.Markers(ctx, genus.Latin, "Cercis")
		require.NoError(t, err)
		assert.Len(t, markers, 1)
	})
}
