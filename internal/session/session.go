// Package session holds the state of one interactive map session: the genus
// reference, the current language and genus, and the collaborators used to
// query, render and display a map.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/observability"
)

// DefaultThreshold is the marker count at which confirmation is required.
const DefaultThreshold = 1000

// MapWriter renders markers into a file.
type MapWriter interface {
	RenderFile(path string, markers []domain.Marker) error
}

// Opener displays a rendered map.
type Opener interface {
	Open(target string) error
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires a Session.
type Options struct {
	Table     *genus.Table
	Source    domain.MarkerSource
	Renderer  MapWriter
	Opener    Opener // nil leaves the map on disk
	Health    Pinger // defaults to Source when it implements Pinger
	MapPath   string
	MapURL    string // opened instead of MapPath when set
	Threshold int

	Language genus.Language
	Genus    string

	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Selection is the result of a marker query.
type Selection struct {
	ID       string
	Language genus.Language
	Genus    string
	Markers  []domain.Marker
}

// Session is safe for concurrent use; the UI calls it from bubbletea commands
// while the HTTP server probes readiness.
type Session struct {
	table     *genus.Table
	source    domain.MarkerSource
	renderer  MapWriter
	opener    Opener
	health    Pinger
	mapPath   string
	mapURL    string
	threshold int
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu    sync.Mutex
	lang  genus.Language
	genus string
}

// New validates opts and selects the starting genus. When the requested genus
// is not named in the requested language, the first name in display order is
// selected instead.
func New(opts Options) (*Session, error) {
	if opts.Table == nil || opts.Table.Len() == 0 {
		return nil, errors.New("session: genus reference is empty")
	}
	if opts.Source == nil || opts.Renderer == nil || opts.Metrics == nil {
		return nil, errors.New("session: marker source, renderer and metrics are required")
	}
	if opts.MapPath == "" {
		return nil, errors.New("session: map path is required")
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Language == "" {
		opts.Language = genus.Latin
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Health == nil {
		opts.Health, _ = opts.Source.(Pinger)
	}

	names, err := opts.Table.Names(opts.Language)
	if err != nil {
		return nil, err
	}
	selected := opts.Genus
	if !slices.Contains(names, selected) {
		selected = names[0]
	}

	return &Session{
		table:     opts.Table,
		source:    opts.Source,
		renderer:  opts.Renderer,
		opener:    opts.Opener,
		health:    opts.Health,
		mapPath:   opts.MapPath,
		mapURL:    opts.MapURL,
		threshold: opts.Threshold,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		lang:      opts.Language,
		genus:     selected,
	}, nil
}

// Language is the current language.
func (s *Session) Language() genus.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Genus is the current genus name, in the current language.
func (s *Session) Genus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genus
}

// Languages lists the selectable languages.
func (s *Session) Languages() []genus.Language {
	return s.table.Languages()
}

// Names lists the genus names of the current language in display order.
func (s *Session) Names() []string {
	names, _ := s.table.Names(s.Language())
	return names
}

// Threshold is the marker count at which confirmation is required.
func (s *Session) Threshold() int { return s.threshold }

// SwitchLanguage changes the language and keeps the same genus, renamed.
func (s *Session) SwitchLanguage(lang genus.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lang == s.lang {
		return nil
	}
	name, err := s.table.Translate(s.genus, s.lang, lang)
	if err != nil {
		return fmt.Errorf("switch language: %w", err)
	}
	s.logger.Debug("language switched", "from", s.lang, "language", lang, "genus", name)
	s.lang = lang
	s.genus = name
	return nil
}

// SelectGenus picks a genus by its name in the current language.
func (s *Session) SelectGenus(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.table.Latin(name, s.lang); err != nil {
		return fmt.Errorf("select genus: %w", err)
	}
	s.genus = name
	return nil
}

// Query fetches the markers of the current selection.
func (s *Session) Query(ctx context.Context) (Selection, error) {
	s.mu.Lock()
	lang, name := s.lang, s.genus
	s.mu.Unlock()

	markers, err := s.source.Markers(ctx, lang, name)
	if err != nil {
		s.metrics.MapRenders.WithLabelValues("error").Inc()
		return Selection{}, fmt.Errorf("query markers for %s: %w", name, err)
	}
	s.metrics.MarkerCount.Observe(float64(len(markers)))

	sel := Selection{ID: uuid.NewString(), Language: lang, Genus: name, Markers: markers}
	s.logger.Info("markers queried", "selection", sel.ID, "genus", name, "language", lang, "markers", len(markers))
	return sel, nil
}

// NeedsConfirmation reports whether n markers require the user's consent.
func (s *Session) NeedsConfirmation(n int) bool {
	return n >= s.threshold
}

// Render writes the selection's map and opens it. It returns the target that
// was opened (the map URL or the file path).
func (s *Session) Render(ctx context.Context, sel Selection) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	if err := s.renderer.RenderFile(s.mapPath, sel.Markers); err != nil {
		s.metrics.MapRenders.WithLabelValues("error").Inc()
		return "", err
	}

	target := s.mapURL
	if target == "" {
		abs, err := filepath.Abs(s.mapPath)
		if err != nil {
			return "", err
		}
		target = abs
	}
	if s.opener != nil {
		if err := s.opener.Open(target); err != nil {
			s.metrics.MapRenders.WithLabelValues("error").Inc()
			return "", err
		}
	}

	outcome := "rendered"
	if len(sel.Markers) == 0 {
		outcome = "empty"
	}
	s.metrics.MapRenders.WithLabelValues(outcome).Inc()
	s.logger.Info("map rendered",
		"selection", sel.ID,
		"genus", sel.Genus,
		"markers", len(sel.Markers),
		"path", s.mapPath,
		"duration", time.Since(start),
	)
	return target, nil
}

// Decline records a selection the user chose not to display.
func (s *Session) Decline(sel Selection) {
	s.metrics.MapRenders.WithLabelValues("declined").Inc()
	s.logger.Info("map declined", "selection", sel.ID, "genus", sel.Genus, "markers", len(sel.Markers))
}

// CheckReadiness implements the shared readiness contract.
func (s *Session) CheckReadiness(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	return s.health.Ping(ctx)
}
