package tabular

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
)

// Importer reads the raw inventory file at Path.
// It implements pipeline.Extractor.
type Importer struct {
	Path    string
	Options Options
}

func (i Importer) Extract(ctx context.Context) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadRaw(i.Path, i.Options)
}

// Exporter writes cleaned records to Path.
// It implements pipeline.Loader.
type Exporter struct {
	Path string
}

func (e Exporter) Load(ctx context.Context, records []domain.TreeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Export(e.Path, records)
}

// Format names the file format Path will be written in.
func (e Exporter) Format() string {
	if strings.EqualFold(filepath.Ext(e.Path), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}
