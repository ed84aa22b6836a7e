// Package memory answers marker queries from cleaned records held in process,
// grouped by Latin genus.
package memory

import (
	"context"
	"errors"
	"slices"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
)

type indexed struct {
	id     int
	marker domain.Marker
}

// Index implements domain.MarkerSource. It is immutable after NewIndex.
type Index struct {
	table   *genus.Table
	byGenus map[string][]indexed
	total   int
}

// NewIndex groups records by their Latin genus.
func NewIndex(table *genus.Table, records []domain.TreeRecord) *Index {
	idx := &Index{
		table:   table,
		byGenus: make(map[string][]indexed),
		total:   len(records),
	}
	for _, r := range records {
		idx.byGenus[r.Genus] = append(idx.byGenus[r.Genus], indexed{id: r.Identifier, marker: r.Marker()})
	}
	return idx
}

// Len is the number of indexed records.
func (idx *Index) Len() int { return idx.total }

// Markers resolves name to every matching Latin genus and merges their
// markers in identifier order.
func (idx *Index) Markers(_ context.Context, lang genus.Language, name string) ([]domain.Marker, error) {
	latins, err := idx.table.Latin(name, lang)
	if errors.Is(err, genus.ErrUnknownGenus) {
		return []domain.Marker{}, nil
	}
	if err != nil {
		return nil, err
	}

	var hits []indexed
	for _, l := range latins {
		hits = append(hits, idx.byGenus[l]...)
	}
	slices.SortFunc(hits, func(a, b indexed) int { return a.id - b.id })

	out := make([]domain.Marker, len(hits))
	for i, h := range hits {
		out[i] = h.marker
	}
	return out, nil
}

// Ping reports whether any records are loaded.
func (idx *Index) Ping(context.Context) error {
	if idx.total == 0 {
		return errors.New("no cleaned records loaded")
	}
	return nil
}
