package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/tree-inventory-etl/internal/adapter/memory"
	"github.com/couchcryptid/tree-inventory-etl/internal/adapter/postgres"
	"github.com/couchcryptid/tree-inventory-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/tree-inventory-etl/internal/config"
	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/tabular"
)

// treeStore is satisfied by the SQL adapters.
type treeStore interface {
	domain.MarkerSource
	Load(ctx context.Context, records []domain.TreeRecord) error
	ReplaceGenus(ctx context.Context, entries []genus.Entry) error
	GenusEntries(ctx context.Context) ([]genus.Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

var errNoStore = errors.New("STORE_DRIVER=memory has no persistent store")

func openStore(ctx context.Context, cfg *config.Config) (treeStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, errNoStore
	}
}

// source is a marker source plus the genus table it is keyed by.
type source struct {
	table  *genus.Table
	source domain.MarkerSource
	health interface{ Ping(context.Context) error }
	close  func() error
}

// openSource prepares the marker source for the map dialog. The SQL stores
// read the genus table they hold and fall back to GENUS_FILE when it is empty;
// the memory driver indexes CLEAN_CSV_PATH against GENUS_FILE.
func openSource(ctx context.Context, cfg *config.Config) (*source, error) {
	if cfg.StoreDriver == config.DriverMemory {
		table, err := genus.LoadYAML(cfg.GenusFile)
		if err != nil {
			return nil, err
		}
		records, err := tabular.ReadCleaned(cfg.CleanCSVPath)
		if err != nil {
			return nil, err
		}
		idx := memory.NewIndex(table, records)
		return &source{table: table, source: idx, health: idx, close: func() error { return nil }}, nil
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	entries, err := store.GenusEntries(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("read genus names: %w", err)
	}

	var table *genus.Table
	if len(entries) == 0 {
		table, err = genus.LoadYAML(cfg.GenusFile)
	} else {
		table, err = genus.NewTable(entries)
	}
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return &source{table: table, source: store, health: store, close: store.Close}, nil
}
