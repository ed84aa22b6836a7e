// Package postgres stores cleaned tree records and the genus reference table
// in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
)

var languageColumns = map[genus.Language]string{
	genus.Latin:   `g.latin`,
	genus.French:  `g."français"`,
	genus.English: `g.english`,
}

const schema = `
CREATE TABLE IF NOT EXISTS genus_names (
  position SERIAL,
  latin TEXT PRIMARY KEY,
  "français" TEXT NOT NULL,
  english TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trees (
  identifier BIGINT PRIMARY KEY,
  circumference BIGINT,
  height BIGINT,
  planting_date DATE,
  genus TEXT NOT NULL,
  species TEXT NOT NULL,
  variety TEXT NOT NULL,
  planting_area TEXT NOT NULL,
  municipality TEXT NOT NULL,
  street_name TEXT NOT NULL,
  longitude DOUBLE PRECISION NOT NULL,
  latitude DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trees_genus ON trees (genus);
`

var treeColumns = []string{
	"identifier", "circumference", "height", "planting_date", "genus", "species", "variety",
	"planting_area", "municipality", "street_name", "longitude", "latitude",
}

// Store implements domain.MarkerSource and pipeline.Loader over PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to databaseURL and ensures the schema exists.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping reports whether the pool can reach the server.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Load replaces the stored trees with records using COPY. Measurements are
// unbounded, so integer columns are 64-bit.
func (s *Store) Load(ctx context.Context, records []domain.TreeRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE trees`); err != nil {
		return err
	}

	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			int64(r.Identifier), nullableInt(r.Circumference), nullableInt(r.Height), nullableDate(r.PlantingDate),
			r.Genus, r.Species, r.Variety, r.PlantingArea, r.Municipality, r.StreetName,
			r.Longitude, r.Latitude,
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"trees"}, treeColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy trees: %w", err)
	}

	return tx.Commit(ctx)
}

// ReplaceGenus overwrites the genus reference table.
func (s *Store) ReplaceGenus(ctx context.Context, entries []genus.Entry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE genus_names RESTART IDENTITY`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`INSERT INTO genus_names (latin, "français", english) VALUES ($1, $2, $3)`,
			e.Latin, e.French, e.English)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert genus names: %w", err)
	}

	return tx.Commit(ctx)
}

// GenusEntries reads the reference table in insertion order.
func (s *Store) GenusEntries(ctx context.Context) ([]genus.Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT latin, "français", english FROM genus_names ORDER BY position`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (genus.Entry, error) {
		var e genus.Entry
		err := row.Scan(&e.Latin, &e.French, &e.English)
		return e, err
	})
}

// Markers joins trees with genus_names and filters on the lang column.
func (s *Store) Markers(ctx context.Context, lang genus.Language, name string) ([]domain.Marker, error) {
	col, ok := languageColumns[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", genus.ErrUnknownLanguage, lang)
	}

	rows, err := s.pool.Query(ctx, `
SELECT t.latitude, t.longitude, t.planting_date
FROM trees t
JOIN genus_names g ON t.genus = g.latin
WHERE `+col+` = $1
ORDER BY t.identifier
`, name)
	if err != nil {
		return nil, err
	}

	markers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Marker, error) {
		var m domain.Marker
		var planted *time.Time
		if err := row.Scan(&m.Latitude, &m.Longitude, &planted); err != nil {
			return m, err
		}
		if planted != nil {
			d := time.Date(planted.Year(), planted.Month(), planted.Day(), 0, 0, 0, 0, time.UTC)
			m.PlantingDate = &d
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	if markers == nil {
		markers = []domain.Marker{}
	}
	return markers, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
