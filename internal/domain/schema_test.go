package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullHeader = []string{
	"codegenre", "genre", "espece", "variete", "localisation", "commune", "nomvoie",
	"circonference_cm", "hauteurtotale_m", "anneeplantation", "dateplantation", "lon", "lat", "gid",
}

func TestSchemaBind(t *testing.T) {
	t.Run("full header", func(t *testing.T) {
		b, err := InventorySchema.Bind(fullHeader)
		require.NoError(t, err)
		assert.Equal(t, len(fullHeader), b.Width())

		row, err := b.Row(2, []string{"2", testGenus, testSpecies, "", "Alignement", "Lyon 3", "Cours Gambetta",
			"0", "12", "1985", "1985-04-12", "4,835", "45,758", "77"})
		require.NoError(t, err)
		assert.Equal(t, 2, row.Line)
		assert.Equal(t, "2", row.GenusCode)
		assert.Equal(t, "1985", row.PlantingYear)
		assert.Equal(t, "1985-04-12", row.PlantingDate)
		assert.Equal(t, "45,758", row.Latitude)
	})

	t.Run("dateplantation falls back to anneeplantation", func(t *testing.T) {
		header := []string{"lat", "lon", "anneeplantation", "hauteurtotale_m", "circonference_cm",
			"nomvoie", "commune", "localisation", "variete", "espece", "genre", "codegenre"}
		b, err := InventorySchema.Bind(header)
		require.NoError(t, err)

		row, err := b.Row(5, []string{"45,758", "4,835", "1985-04-12", "12", "0",
			"Cours Gambetta", "Lyon 3", "Alignement", "", testSpecies, testGenus, "2"})
		require.NoError(t, err)
		assert.Equal(t, "1985-04-12", row.PlantingYear)
		assert.Equal(t, "1985-04-12", row.PlantingDate)
		assert.Equal(t, testGenus, row.Genus)
	})

	t.Run("missing columns are reported together", func(t *testing.T) {
		_, err := InventorySchema.Bind([]string{"codegenre", "genre"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchemaMismatch)

		var se *SchemaError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Missing, ColLongitude)
		assert.Contains(t, se.Missing, ColPlantingDate)
		assert.NotContains(t, se.Missing, ColGenus)
		assert.True(t, strings.HasPrefix(err.Error(), "schema mismatch"))
	})

	t.Run("short record", func(t *testing.T) {
		b, err := InventorySchema.Bind(fullHeader)
		require.NoError(t, err)
		_, err = b.Row(9, []string{"2", testGenus})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 9")
	})
}

func TestMarkerAgeLabel(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	rec := TreeRecord{Latitude: 45.758, Longitude: 4.835, PlantingDate: datePtr(1985, time.April, 12)}
	m := rec.Marker()
	assert.Equal(t, 45.758, m.Latitude)
	assert.Equal(t, 4.835, m.Longitude)
	assert.Equal(t, "39 years", m.AgeLabel())

	assert.Equal(t, UnknownAge, Marker{}.AgeLabel())
	assert.Equal(t, "0 years", Marker{PlantingDate: datePtr(2024, time.January, 1)}.AgeLabel())
}
