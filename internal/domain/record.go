package domain

import "time"

// RawRow is one unparsed inventory row, bound to named fields by a Schema.
type RawRow struct {
	Line int // 1-based line in the source file, header included

	GenusCode     string
	Genus         string
	Species       string
	Variety       string
	Location      string
	Municipality  string
	StreetName    string
	Circumference string // centimetres
	Height        string // metres
	PlantingYear  string
	PlantingDate  string
	Longitude     string // decimal comma
	Latitude      string // decimal comma
}

// TreeRecord is the cleaned, typed representation of a surviving row.
type TreeRecord struct {
	Identifier    int        `json:"identifier"`
	Circumference *int       `json:"circumference"`
	Height        *int       `json:"height"`
	PlantingDate  *time.Time `json:"planting_date"`
	Genus         string     `json:"genus"`
	Species       string     `json:"species"`
	Variety       string     `json:"variety"`
	PlantingArea  string     `json:"planting_area"`
	Municipality  string     `json:"municipality"`
	StreetName    string     `json:"street_name"`
	Longitude     float64    `json:"longitude"`
	Latitude      float64    `json:"latitude"`
}

// Marker is the projection of a TreeRecord used for map rendering.
type Marker struct {
	Latitude     float64
	Longitude    float64
	PlantingDate *time.Time
}

// Marker projects the record onto its map marker.
func (r TreeRecord) Marker() Marker {
	return Marker{
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		PlantingDate: r.PlantingDate,
	}
}
