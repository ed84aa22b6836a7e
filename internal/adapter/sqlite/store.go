// Package sqlite persists cleaned tree records and the genus reference table
// in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
)

// languageColumns whitelists the genus_names column queried for each language.
var languageColumns = map[genus.Language]string{
	genus.Latin:   `g.Latin`,
	genus.French:  `g."Français"`,
	genus.English: `g.English`,
}

// Store implements domain.MarkerSource and pipeline.Loader over SQLite.
type Store struct {
	conn *sql.DB
}

// Open creates the database file if needed and ensures the schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS genus_names (
  Latin TEXT PRIMARY KEY,
  "Français" TEXT NOT NULL,
  English TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trees (
  identifier INTEGER PRIMARY KEY,
  circumference INTEGER,
  height INTEGER,
  planting_date TEXT,
  genus TEXT NOT NULL,
  species TEXT NOT NULL,
  variety TEXT NOT NULL,
  planting_area TEXT NOT NULL,
  municipality TEXT NOT NULL,
  street_name TEXT NOT NULL,
  longitude REAL NOT NULL,
  latitude REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trees_genus ON trees(genus);
`
	_, err := s.conn.Exec(schema)
	return err
}

// Load replaces the stored trees with records.
func (s *Store) Load(ctx context.Context, records []domain.TreeRecord) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trees`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO trees (identifier, circumference, height, planting_date, genus, species, variety,
  planting_area, municipality, street_name, longitude, latitude)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Identifier, r.Circumference, r.Height, dateValue(r.PlantingDate),
			r.Genus, r.Species, r.Variety, r.PlantingArea, r.Municipality, r.StreetName,
			r.Longitude, r.Latitude,
		); err != nil {
			return fmt.Errorf("insert tree %d: %w", r.Identifier, err)
		}
	}

	return tx.Commit()
}

// CountTrees returns the number of stored trees.
func (s *Store) CountTrees(ctx context.Context) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM trees`).Scan(&n)
	return n, err
}

// ReplaceGenus overwrites the genus reference table.
func (s *Store) ReplaceGenus(ctx context.Context, entries []genus.Entry) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM genus_names`); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO genus_names (Latin, "Français", English) VALUES (?, ?, ?)`,
			e.Latin, e.French, e.English,
		); err != nil {
			return fmt.Errorf("insert genus %s: %w", e.Latin, err)
		}
	}
	return tx.Commit()
}

// GenusEntries reads the reference table in insertion order.
func (s *Store) GenusEntries(ctx context.Context) ([]genus.Entry, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT Latin, "Français", English FROM genus_names ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []genus.Entry
	for rows.Next() {
		var e genus.Entry
		if err := rows.Scan(&e.Latin, &e.French, &e.English); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Markers joins trees with genus_names and filters on the lang column.
func (s *Store) Markers(ctx context.Context, lang genus.Language, name string) ([]domain.Marker, error) {
	col, ok := languageColumns[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", genus.ErrUnknownLanguage, lang)
	}

	rows, err := s.conn.QueryContext(ctx, `
SELECT t.latitude, t.longitude, t.planting_date
FROM trees t
JOIN genus_names g ON t.genus = g.Latin
WHERE `+col+` = ?
ORDER BY t.identifier
`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Marker, 0)
	for rows.Next() {
		var m domain.Marker
		var planted sql.NullString
		if err := rows.Scan(&m.Latitude, &m.Longitude, &planted); err != nil {
			return nil, err
		}
		if planted.Valid && planted.String != "" {
			t, err := time.Parse(time.DateOnly, planted.String)
			if err != nil {
				return nil, fmt.Errorf("stored planting date %q: %w", planted.String, err)
			}
			m.PlantingDate = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return errors.New("sqlite store closed")
	}
	return s.conn.PingContext(ctx)
}

func dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}
