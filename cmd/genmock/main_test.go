package main

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/tabular"
)

var testEntries = []genus.Entry{
	{Latin: "Cercis", French: "Gainier", English: "Redbud"},
	{Latin: "Platanus", French: "Platane", English: "Plane tree"},
}

func TestWriteRaw_NormalizesCleanly(t *testing.T) {
	for _, enc := range []string{"utf-8", "windows-1252"} {
		t.Run(enc, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "trees_data.csv")
			opts := options{rows: 500, seed: 7, unknownShare: 0.1, oldShare: 0.05, encoding: enc}
			require.NoError(t, writeRaw(path, testEntries, opts))

			rows, err := tabular.ReadRaw(path, tabular.Options{Encoding: enc})
			require.NoError(t, err)
			require.Len(t, rows, 500)

			records, report, err := domain.NormalizeWithReport(rows)
			require.NoError(t, err)
			assert.Positive(t, report.Dropped[domain.DropUnknownGenus])
			assert.Positive(t, report.Dropped[domain.DropPlantingYear])
			assert.Equal(t, 500-report.DroppedTotal(), len(records))

			areas := map[string]bool{}
			for i, r := range records {
				assert.Equal(t, i, r.Identifier)
				assert.Contains(t, []string{"Cercis", "Platanus"}, r.Genus)
				areas[r.PlantingArea] = true
			}
			assert.True(t, areas["Cimetière"], "accented values survive the encoding round trip")
		})
	}
}

func TestWriteRaw_Windows1252Bytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trees_data.csv")
	require.NoError(t, writeRaw(path, testEntries, options{rows: 200, seed: 3, encoding: "windows-1252"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cimeti\xe8re", "è is written as a single Windows-1252 byte")
	assert.NotContains(t, string(data), "Cimetière")
	assert.True(t, bytes.HasSuffix(data, []byte("\n")), "encoder output is flushed to the last row")
}

func TestMockRow_Deterministic(t *testing.T) {
	opts := options{unknownShare: 0.05, oldShare: 0.02}
	a := mockRow(rand.New(rand.NewPCG(1, 2)), 0, testEntries, opts)
	b := mockRow(rand.New(rand.NewPCG(1, 2)), 0, testEntries, opts)
	assert.Equal(t, a, b)
	assert.Len(t, a, len(header))
	assert.Contains(t, a[len(a)-1], ",", "latitude uses a decimal comma")
}

func TestPrintStats(t *testing.T) {
	var out bytes.Buffer
	printStats(&out, domain.Report{Read: 3, Kept: 2, Dropped: map[domain.DropReason]int{domain.DropUnknownGenus: 1}},
		[]domain.TreeRecord{{Genus: "Cercis"}, {Identifier: 1, Genus: "Cercis"}})

	assert.Contains(t, out.String(), "Rows: 3, kept: 2")
	assert.Contains(t, out.String(), "Dropped: unknown genus=1")
	assert.Contains(t, out.String(), "Cercis=2")
}
