package domain

import (
	"context"

	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
)

// MarkerSource answers the interactive query: the markers of every tree whose
// genus, named in lang, equals name. Unknown names yield no markers.
type MarkerSource interface {
	Markers(ctx context.Context, lang genus.Language, name string) ([]Marker, error)
}
