package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/tabular"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	LogLevel        string
	LogFormat       string
	LogFile         string
	HTTPAddr        string
	ServeMaps       bool
	ShutdownTimeout time.Duration

	// Cleaning pass.
	RawCSVPath    string
	CleanCSVPath  string
	InputEncoding string

	// Cleaned-record store.
	StoreDriver string
	SQLitePath  string
	DatabaseURL string
	GenusFile   string

	// Map rendering.
	MapDir      string
	MapFile     string
	MapZoom     int
	MapIconURL  string
	MapboxToken string

	// Interactive session.
	ConfirmThreshold int
	DefaultGenus     string
	DefaultLanguage  genus.Language
	MarkerCacheSize  int
	OpenBrowser      bool

	// Optional record sink. Publishing is disabled when no broker is set.
	KafkaBrokers []string
	KafkaTopic   string
}

// MapPath is the rendered map location.
func (c *Config) MapPath() string {
	return filepath.Join(c.MapDir, c.MapFile)
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	serveMaps, err := parseBool("SERVE_MAPS", true)
	if err != nil {
		return nil, err
	}
	openBrowser, err := parseBool("OPEN_BROWSER", true)
	if err != nil {
		return nil, err
	}

	zoom, err := parseInt("MAP_ZOOM", 12, 0, 19)
	if err != nil {
		return nil, err
	}
	threshold, err := parseInt("CONFIRM_THRESHOLD", 1000, 1, -1)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("MARKER_CACHE_SIZE", 64, 0, -1)
	if err != nil {
		return nil, err
	}

	lang, err := genus.ParseLanguage(sharedcfg.EnvOrDefault("DEFAULT_LANGUAGE", string(genus.Latin)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LANGUAGE: %w", err)
	}

	cfg := &Config{
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", "127.0.0.1:8080"),
		ServeMaps:       serveMaps,
		ShutdownTimeout: shutdownTimeout,

		RawCSVPath:    sharedcfg.EnvOrDefault("RAW_CSV_PATH", "./static/data/trees_data.csv"),
		CleanCSVPath:  sharedcfg.EnvOrDefault("CLEAN_CSV_PATH", "./static/data/trees_data_clean.csv"),
		InputEncoding: sharedcfg.EnvOrDefault("INPUT_ENCODING", "utf-8"),

		StoreDriver: sharedcfg.EnvOrDefault("STORE_DRIVER", DriverSQLite),
		SQLitePath:  sharedcfg.EnvOrDefault("SQLITE_PATH", "./static/data/trees.sqlite3"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		GenusFile:   sharedcfg.EnvOrDefault("GENUS_FILE", "./static/data/genus_names.yaml"),

		MapDir:      sharedcfg.EnvOrDefault("MAP_DIR", "./templates"),
		MapFile:     sharedcfg.EnvOrDefault("MAP_FILE", "map.html"),
		MapZoom:     zoom,
		MapIconURL:  os.Getenv("MAP_ICON_URL"),
		MapboxToken: os.Getenv("MAPBOX_TOKEN"),

		ConfirmThreshold: threshold,
		DefaultGenus:     sharedcfg.EnvOrDefault("DEFAULT_GENUS", "Cercis"),
		DefaultLanguage:  lang,
		MarkerCacheSize:  cacheSize,
		OpenBrowser:      openBrowser,

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "cleaned-tree-records"),
	}

	if err := tabular.ValidateEncoding(cfg.InputEncoding); err != nil {
		return nil, fmt.Errorf("invalid INPUT_ENCODING: %w", err)
	}
	switch cfg.StoreDriver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: must be sqlite, postgres or memory", cfg.StoreDriver)
	}
	if filepath.Base(cfg.MapFile) != cfg.MapFile {
		return nil, errors.New("MAP_FILE must be a file name, not a path")
	}

	return cfg, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}

// parseInt reads an integer in [lo, hi]; a negative hi means unbounded.
func parseInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || (hi >= 0 && n > hi) {
		if hi >= 0 {
			return 0, fmt.Errorf("invalid %s: must be %d-%d", key, lo, hi)
		}
		return 0, fmt.Errorf("invalid %s: must be at least %d", key, lo)
	}
	return n, nil
}
