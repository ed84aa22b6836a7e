package pipeline

import (
	"context"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
)

// Normalizer implements Transformer with domain.NormalizeWithReport.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() Normalizer { return Normalizer{} }

func (Normalizer) Transform(ctx context.Context, rows []domain.RawRow) ([]domain.TreeRecord, domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Report{}, err
	}
	return domain.NormalizeWithReport(rows)
}
