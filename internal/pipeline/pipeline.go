package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/observability"
	"github.com/couchcryptid/tree-inventory-etl/internal/tabular"
)

// Extractor reads every raw row of the source.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRow, error)
}

// Transformer cleans raw rows into records.
type Transformer interface {
	Transform(ctx context.Context, rows []domain.RawRow) ([]domain.TreeRecord, domain.Report, error)
}

// Loader writes the cleaned records to one destination.
type Loader interface {
	Load(ctx context.Context, records []domain.TreeRecord) error
}

// Sink is a named Loader; the name labels metrics and log lines.
type Sink struct {
	Name   string
	Loader Loader
}

// Summary describes a completed run.
type Summary struct {
	RunID    string
	Report   domain.Report
	Sinks    []string
	Duration time.Duration
}

// Pipeline runs one extract-transform-load pass over the whole file.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	sinks       []Sink
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline. Sinks are written in order; the first is normally
// the file exporter.
func New(e Extractor, t Transformer, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		sinks:       sinks,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run extracts, normalizes, and loads. Nothing is written unless
// normalization succeeds for every row.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}
	logger := p.logger.With("run", summary.RunID)

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	logger.Info("pipeline started", "sinks", len(p.sinks))

	rows, err := p.extractor.Extract(ctx)
	if err != nil {
		return summary, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RowsRead.Add(float64(len(rows)))

	records, report, err := p.transformer.Transform(ctx, rows)
	summary.Report = report
	if err != nil {
		var fe *domain.FieldError
		if errors.As(err, &fe) {
			logger.Error("normalize failed", "line", fe.Line, "column", fe.Column, "value", fe.Value)
		}
		return summary, fmt.Errorf("normalize: %w", err)
	}
	for reason, n := range report.Dropped {
		p.metrics.RowsDropped.WithLabelValues(string(reason)).Add(float64(n))
	}
	logger.Info("rows normalized",
		"rows", report.Read,
		"kept", report.Kept,
		"dropped", report.DroppedTotal(),
	)

	if len(records) == 0 {
		return summary, tabular.ErrNoRecords
	}

	for _, sink := range p.sinks {
		if err := sink.Loader.Load(ctx, records); err != nil {
			return summary, fmt.Errorf("load %s: %w", sink.Name, err)
		}
		p.metrics.RecordsWritten.WithLabelValues(sink.Name).Add(float64(len(records)))
		summary.Sinks = append(summary.Sinks, sink.Name)
		logger.Info("records written", "sink", sink.Name, "records", len(records))
	}

	summary.Duration = time.Since(start)
	p.metrics.NormalizeDuration.Observe(summary.Duration.Seconds())
	logger.Info("pipeline finished", "duration", summary.Duration)
	return summary, nil
}
