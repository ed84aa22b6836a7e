package tabular

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
)

// DecodeCleaned reads a file produced by WriteCSV back into TreeRecords.
func DecodeCleaned(r io.Reader) ([]domain.TreeRecord, error) {
	cr, err := newReader(r, Options{Comma: ','})
	if err != nil {
		return nil, err
	}
	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[name] = i
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Missing: missing}
	}

	var records []domain.TreeRecord
	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(values) != len(header) {
			return nil, fmt.Errorf("line %d: got %d fields, header has %d", line, len(values), len(header))
		}

		rec, err := parseCleaned(line, func(col string) string { return values[pos[col]] })
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadCleaned opens path and decodes it with DecodeCleaned.
func ReadCleaned(path string) ([]domain.TreeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cleaned csv %s: %w", path, err)
	}
	defer f.Close()

	records, err := DecodeCleaned(f)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return records, nil
}

func parseCleaned(line int, get func(string) string) (domain.TreeRecord, error) {
	fail := func(col string, err error) (domain.TreeRecord, error) {
		return domain.TreeRecord{}, &domain.FieldError{Line: line, Column: col, Value: get(col), Err: err}
	}

	id, err := strconv.Atoi(get(ColIdentifier))
	if err != nil {
		return fail(ColIdentifier, err)
	}
	circumference, err := optionalInt(get(ColCircumference))
	if err != nil {
		return fail(ColCircumference, err)
	}
	height, err := optionalInt(get(ColHeight))
	if err != nil {
		return fail(ColHeight, err)
	}
	var planted *time.Time
	if s := get(ColPlantingDate); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return fail(ColPlantingDate, err)
		}
		planted = &t
	}
	lon, err := strconv.ParseFloat(get(ColLongitude), 64)
	if err != nil {
		return fail(ColLongitude, err)
	}
	lat, err := strconv.ParseFloat(get(ColLatitude), 64)
	if err != nil {
		return fail(ColLatitude, err)
	}

	return domain.TreeRecord{
		Identifier:    id,
		Circumference: circumference,
		Height:        height,
		PlantingDate:  planted,
		Genus:         get(ColGenus),
		Species:       get(ColSpecies),
		Variety:       get(ColVariety),
		PlantingArea:  get(ColPlantingArea),
		Municipality:  get(ColMunicipality),
		StreetName:    get(ColStreetName),
		Longitude:     lon,
		Latitude:      lat,
	}, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
