package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
)

// Cleaned record column names, identifier first.
const (
	ColIdentifier    = "identifier"
	ColCircumference = "circumference"
	ColHeight        = "height"
	ColPlantingDate  = "planting_date"
	ColGenus         = "genus"
	ColSpecies       = "species"
	ColVariety       = "variety"
	ColPlantingArea  = "planting_area"
	ColMunicipality  = "municipality"
	ColStreetName    = "street_name"
	ColLongitude     = "longitude"
	ColLatitude      = "latitude"
)

// Columns is the header of an exported file.
var Columns = []string{
	ColIdentifier,
	ColCircumference, ColHeight, ColPlantingDate,
	ColGenus, ColSpecies, ColVariety,
	ColPlantingArea, ColMunicipality, ColStreetName,
	ColLongitude, ColLatitude,
}

// ErrNoRecords is returned when asked to export nothing; there is no header
// to derive from an empty record set.
var ErrNoRecords = errors.New("no records to export")

// Export writes records to path. Paths ending in .xlsx are written as a
// workbook, anything else as comma-separated text. The file is written to a
// temporary sibling and renamed into place, so a failed export leaves any
// previous file untouched and no partial output behind.
func Export(path string, records []domain.TreeRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	write := WriteCSV
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		write = WriteXLSX
	}

	tmp, err := os.CreateTemp(dir, ".export-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp, records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the header and one line per record in input order.
func WriteCSV(w io.Writer, records []domain.TreeRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(recordValues(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes records to the first sheet of a new workbook.
func WriteXLSX(w io.Writer, records []domain.TreeRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, f.GetSheetName(0), records); err != nil {
		return err
	}
	return f.Write(w)
}

// writeSheet fills sheet with the header row and one row per record.
func writeSheet(f *excelize.File, sheet string, records []domain.TreeRecord) error {
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, rec := range records {
		row := []any{
			rec.Identifier,
			derefInt(rec.Circumference),
			derefInt(rec.Height),
			formatDate(rec.PlantingDate),
			rec.Genus,
			rec.Species,
			rec.Variety,
			rec.PlantingArea,
			rec.Municipality,
			rec.StreetName,
			rec.Longitude,
			rec.Latitude,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return fmt.Errorf("identifier %d: %w", rec.Identifier, err)
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func recordValues(rec domain.TreeRecord) []string {
	return []string{
		strconv.Itoa(rec.Identifier),
		formatInt(rec.Circumference),
		formatInt(rec.Height),
		formatDate(rec.PlantingDate),
		rec.Genus,
		rec.Species,
		rec.Variety,
		rec.PlantingArea,
		rec.Municipality,
		rec.StreetName,
		strconv.FormatFloat(rec.Longitude, 'f', -1, 64),
		strconv.FormatFloat(rec.Latitude, 'f', -1, 64),
	}
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
