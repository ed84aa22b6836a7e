package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinPlantingYear is the earliest planting year kept by the cleaning pass.
const MinPlantingYear = 1900

// unknownGenusCodes are the codegenre values used for unclassified trees.
var unknownGenusCodes = map[string]struct{}{"0": {}, "1": {}}

// ErrMalformedField is matched by every FieldError.
var ErrMalformedField = errors.New("malformed field")

// FieldError reports a value that could not be coerced to its type.
type FieldError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("line %d: column %s: malformed value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *FieldError) Unwrap() []error { return []error{ErrMalformedField, e.Err} }

// DropReason says why a row was discarded.
type DropReason string

const (
	DropUnknownGenus DropReason = "unknown_genus"
	DropPlantingYear DropReason = "planting_year"
)

// Report summarizes one normalization run.
type Report struct {
	Read    int
	Kept    int
	Dropped map[DropReason]int
}

// DroppedTotal is the number of rows discarded for any reason.
func (r Report) DroppedTotal() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// Normalize filters rows and coerces the survivors into TreeRecords.
// Source order is kept and identifiers are reassigned from 0.
// Any malformed value in a row under evaluation aborts the whole run.
func Normalize(rows []RawRow) ([]TreeRecord, error) {
	records, _, err := NormalizeWithReport(rows)
	return records, err
}

// NormalizeWithReport is Normalize plus per-reason drop counts.
func NormalizeWithReport(rows []RawRow) ([]TreeRecord, Report, error) {
	report := Report{Read: len(rows), Dropped: make(map[DropReason]int)}
	records := make([]TreeRecord, 0, len(rows))

	for _, row := range rows {
		reason, keep, err := Survives(row)
		if err != nil {
			return nil, report, err
		}
		if !keep {
			report.Dropped[reason]++
			continue
		}

		rec, err := cleanRow(row, len(records))
		if err != nil {
			return nil, report, err
		}
		records = append(records, rec)
	}

	report.Kept = len(records)
	return records, report, nil
}

// Survives applies the survival predicate. When keep is false, reason names
// the first failing rule.
func Survives(row RawRow) (reason DropReason, keep bool, err error) {
	if _, unknown := unknownGenusCodes[row.GenusCode]; unknown {
		return DropUnknownGenus, false, nil
	}

	for _, p := range []struct{ column, value string }{
		{ColPlantingYear, row.PlantingYear},
		{ColPlantingDate, row.PlantingDate},
	} {
		if p.value == "" {
			continue
		}
		year, err := yearPrefix(p.value)
		if err != nil {
			return "", false, &FieldError{Line: row.Line, Column: p.column, Value: p.value, Err: err}
		}
		if year < MinPlantingYear {
			return DropPlantingYear, false, nil
		}
	}

	return "", true, nil
}

func cleanRow(row RawRow, id int) (TreeRecord, error) {
	circumference, err := parseMeasure(row.Line, ColCircumference, row.Circumference)
	if err != nil {
		return TreeRecord{}, err
	}
	height, err := parseMeasure(row.Line, ColHeight, row.Height)
	if err != nil {
		return TreeRecord{}, err
	}
	planted, err := parsePlantingDate(row.Line, row.PlantingDate)
	if err != nil {
		return TreeRecord{}, err
	}
	lon, err := parseDecimalComma(row.Line, ColLongitude, row.Longitude)
	if err != nil {
		return TreeRecord{}, err
	}
	lat, err := parseDecimalComma(row.Line, ColLatitude, row.Latitude)
	if err != nil {
		return TreeRecord{}, err
	}

	return TreeRecord{
		Identifier:    id,
		Circumference: circumference,
		Height:        height,
		PlantingDate:  planted,
		Genus:         row.Genus,
		Species:       row.Species,
		Variety:       row.Variety,
		PlantingArea:  row.Location,
		Municipality:  row.Municipality,
		StreetName:    row.StreetName,
		Longitude:     lon,
		Latitude:      lat,
	}, nil
}

// yearPrefix reads the four leading digits of a year or date value.
func yearPrefix(s string) (int, error) {
	if len(s) < 4 {
		return 0, errors.New("shorter than a four-digit year")
	}
	for _, c := range s[:4] {
		if c < '0' || c > '9' {
			return 0, errors.New("year prefix is not numeric")
		}
	}
	return strconv.Atoi(s[:4])
}

// parseMeasure treats "" and "0" as not measured.
func parseMeasure(line int, column, s string) (*int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "0" {
		return nil, nil
	}
	v, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, &FieldError{Line: line, Column: column, Value: s, Err: err}
	}
	return &v, nil
}

func parsePlantingDate(line int, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, &FieldError{Line: line, Column: ColPlantingDate, Value: s, Err: err}
	}
	return &t, nil
}

// parseDecimalComma parses a float written with a decimal comma.
func parseDecimalComma(line int, column, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")), 64)
	if err != nil {
		return 0, &FieldError{Line: line, Column: column, Value: s, Err: err}
	}
	return v, nil
}
