package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	table, err := genus.NewTable([]genus.Entry{
		{Latin: "Cercis", French: "Gainier", English: "Redbud"},
		{Latin: "Eriobotrya", French: "Néflier", English: "Loquat"},
		{Latin: "Mespilus", French: "Néflier", English: "Medlar"},
	})
	require.NoError(t, err)

	planted := time.Date(1985, 4, 12, 0, 0, 0, 0, time.UTC)
	return NewIndex(table, []domain.TreeRecord{
		{Identifier: 0, Genus: "Mespilus", Latitude: 1},
		{Identifier: 1, Genus: "Cercis", Latitude: 2, PlantingDate: &planted},
		{Identifier: 2, Genus: "Eriobotrya", Latitude: 3},
		{Identifier: 3, Genus: "Mespilus", Latitude: 4},
		{Identifier: 4, Genus: "Quercus", Latitude: 5},
	})
}

func TestIndex_Markers(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	got, err := idx.Markers(ctx, genus.English, "Redbud")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 2.0, got[0].Latitude, 0)
	require.NotNil(t, got[0].PlantingDate)

	got, err = idx.Markers(ctx, genus.French, "Néflier")
	require.NoError(t, err)
	lats := make([]float64, 0, len(got))
	for _, m := range got {
		lats = append(lats, m.Latitude)
	}
	assert.Equal(t, []float64{1, 3, 4}, lats, "merged in identifier order")

	got, err = idx.Markers(ctx, genus.Latin, "Quercus")
	require.NoError(t, err)
	assert.Empty(t, got, "genera outside the reference are not reachable")

	_, err = idx.Markers(ctx, "Deutsch", "Ahorn")
	assert.ErrorIs(t, err, genus.ErrUnknownLanguage)
}

func TestIndex_Ping(t *testing.T) {
	assert.NoError(t, testIndex(t).Ping(context.Background()))

	table, err := genus.NewTable(nil)
	require.NoError(t, err)
	assert.Error(t, NewIndex(table, nil).Ping(context.Background()))
}
