// Package render writes the interactive genus map as a self-contained
// Leaflet HTML document.
package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
)

//go:embed map.html.tmpl
var mapTemplate string

// Point is a map coordinate.
type Point struct {
	Latitude  float64
	Longitude float64
}

// DefaultCenter is used when there is nothing to average (Lyon).
var DefaultCenter = Point{Latitude: 45.7578, Longitude: 4.8351}

const (
	DefaultZoom = 12
	attribution = "© Contributors OpenStreetMap"
	osmTiles    = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	mapboxTiles = "https://api.mapbox.com/styles/v1/mapbox/streets-v12/tiles/{z}/{x}/{y}?access_token="
)

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	Zoom        int
	IconURL     string
	MapboxToken string
	Title       string
}

// Renderer turns markers into a map document. It holds no per-render state.
type Renderer struct {
	opts Options
	tmpl *template.Template
}

// New parses the map template.
func New(opts Options) *Renderer {
	if opts.Zoom <= 0 {
		opts.Zoom = DefaultZoom
	}
	if opts.Title == "" {
		opts.Title = "Trees"
	}
	return &Renderer{
		opts: opts,
		tmpl: template.Must(template.New("map").Parse(mapTemplate)),
	}
}

type markerView struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Tooltip string  `json:"tooltip"`
}

type tileLayer struct {
	URL     string
	Options map[string]any
}

type page struct {
	Title   string
	Center  Point
	Zoom    int
	Tiles   tileLayer
	IconURL string
	Markers []markerView
}

// Center is the arithmetic mean of the marker coordinates, or DefaultCenter
// when markers is empty.
func Center(markers []domain.Marker) Point {
	if len(markers) == 0 {
		return DefaultCenter
	}
	var lat, lon float64
	for _, m := range markers {
		lat += m.Latitude
		lon += m.Longitude
	}
	n := float64(len(markers))
	return Point{Latitude: lat / n, Longitude: lon / n}
}

func (r *Renderer) tiles() tileLayer {
	if r.opts.MapboxToken != "" {
		return tileLayer{
			URL: mapboxTiles + r.opts.MapboxToken,
			Options: map[string]any{
				"attribution": "© Mapbox " + attribution,
				"tileSize":    512,
				"zoomOffset":  -1,
				"maxZoom":     19,
			},
		}
	}
	return tileLayer{
		URL:     osmTiles,
		Options: map[string]any{"attribution": attribution, "maxZoom": 19},
	}
}

// Render writes one marker per entry, each with its age tooltip.
func (r *Renderer) Render(w io.Writer, markers []domain.Marker) error {
	views := make([]markerView, len(markers))
	for i, m := range markers {
		views[i] = markerView{Lat: m.Latitude, Lon: m.Longitude, Tooltip: m.AgeLabel()}
	}

	p := page{
		Title:   r.opts.Title,
		Center:  Center(markers),
		Zoom:    r.opts.Zoom,
		Tiles:   r.tiles(),
		IconURL: r.opts.IconURL,
		Markers: views,
	}
	if err := r.tmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

// RenderFile renders into path, replacing any previous map atomically so a
// concurrent reader never sees a partial document.
func (r *Renderer) RenderFile(path string, markers []domain.Marker) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create map dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".map-*.html")
	if err != nil {
		return fmt.Errorf("create map file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := r.Render(tmp, markers); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write map file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write map file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write map file: %w", err)
	}
	return nil
}
