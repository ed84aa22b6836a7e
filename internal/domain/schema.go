package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Source column names.
const (
	ColGenusCode     = "codegenre"
	ColGenus         = "genre"
	ColSpecies       = "espece"
	ColVariety       = "variete"
	ColLocation      = "localisation"
	ColMunicipality  = "commune"
	ColStreetName    = "nomvoie"
	ColCircumference = "circonference_cm"
	ColHeight        = "hauteurtotale_m"
	ColPlantingYear  = "anneeplantation"
	ColPlantingDate  = "dateplantation"
	ColLongitude     = "lon"
	ColLatitude      = "lat"
)

// Field binds one source column to a RawRow field.
type Field struct {
	Column string
	// Fallback is read when Column is absent from the header. An empty
	// Fallback makes the column required.
	Fallback string
	Set      func(*RawRow, string)
}

// Schema is the ordered list of columns the cleaning pass reads.
type Schema []Field

// InventorySchema is the column layout of the tree inventory export.
var InventorySchema = Schema{
	{Column: ColGenusCode, Set: func(r *RawRow, v string) { r.GenusCode = v }},
	{Column: ColGenus, Set: func(r *RawRow, v string) { r.Genus = v }},
	{Column: ColSpecies, Set: func(r *RawRow, v string) { r.Species = v }},
	{Column: ColVariety, Set: func(r *RawRow, v string) { r.Variety = v }},
	{Column: ColLocation, Set: func(r *RawRow, v string) { r.Location = v }},
	{Column: ColMunicipality, Set: func(r *RawRow, v string) { r.Municipality = v }},
	{Column: ColStreetName, Set: func(r *RawRow, v string) { r.StreetName = v }},
	{Column: ColCircumference, Set: func(r *RawRow, v string) { r.Circumference = v }},
	{Column: ColHeight, Set: func(r *RawRow, v string) { r.Height = v }},
	{Column: ColPlantingYear, Set: func(r *RawRow, v string) { r.PlantingYear = v }},
	{Column: ColPlantingDate, Fallback: ColPlantingYear, Set: func(r *RawRow, v string) { r.PlantingDate = v }},
	{Column: ColLongitude, Set: func(r *RawRow, v string) { r.Longitude = v }},
	{Column: ColLatitude, Set: func(r *RawRow, v string) { r.Latitude = v }},
}

// ErrSchemaMismatch is matched by every SchemaError.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaError reports the columns a header is missing.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing columns %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaMismatch }

// Binding maps schema fields to header positions. It is produced once per
// file by Schema.Bind.
type Binding struct {
	schema  Schema
	indexes []int
	width   int
}

// Bind resolves every field against header. Missing required columns are
// reported together in a *SchemaError.
func (s Schema) Bind(header []string) (*Binding, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	b := &Binding{schema: s, indexes: make([]int, len(s)), width: len(header)}
	var missing []string
	for i, f := range s {
		idx, ok := pos[f.Column]
		if !ok && f.Fallback != "" {
			idx, ok = pos[f.Fallback]
		}
		if !ok {
			missing = append(missing, f.Column)
			continue
		}
		b.indexes[i] = idx
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return b, nil
}

// Width is the number of columns in the bound header.
func (b *Binding) Width() int { return b.width }

// Row builds a RawRow from one record of the bound file.
func (b *Binding) Row(line int, record []string) (RawRow, error) {
	if len(record) != b.width {
		return RawRow{}, fmt.Errorf("line %d: got %d fields, header has %d", line, len(record), b.width)
	}
	row := RawRow{Line: line}
	for i, f := range b.schema {
		f.Set(&row, record[b.indexes[i]])
	}
	return row, nil
}
