// Command validate checks a cleaned tree file against the raw inventory it
// was produced from. It re-runs the cleaning rules on the raw rows and
// verifies survivor counts, identifier density, the planting-year floor, and
// field-by-field parity of every record.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw static/data/trees_data.csv \
//	  -clean static/data/trees_data_clean.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/tabular"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxReported caps the detailed errors printed per phase.
const maxReported = 20

func main() {
	rawPath := flag.String("raw", "./static/data/trees_data.csv", "raw semicolon-delimited inventory")
	cleanPath := flag.String("clean", "./static/data/trees_data_clean.csv", "cleaned CSV produced by treemap clean")
	encoding := flag.String("encoding", "utf-8", "raw file encoding (utf-8, windows-1252, iso-8859-1)")
	flag.Parse()

	if code := run(os.Stdout, *rawPath, *cleanPath, *encoding); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, rawPath, cleanPath, encoding string) int {
	fmt.Fprintln(out, "=== Tree Inventory Integrity Validation ===")
	fmt.Fprintln(out)

	rows, err := tabular.ReadRaw(rawPath, tabular.Options{Encoding: encoding})
	if err != nil {
		fmt.Fprintf(out, "FATAL: load raw file: %v\n", err)
		return 1
	}
	cleaned, err := tabular.ReadCleaned(cleanPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load cleaned file: %v\n", err)
		return 1
	}
	expected, report, err := domain.NormalizeWithReport(rows)
	if err != nil {
		fmt.Fprintf(out, "FATAL: raw file does not normalize: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateCounts(report, cleaned),
		validateIdentifiers(cleaned),
		validatePlantingFloor(cleaned),
		validateParity(expected, cleaned),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d raw, %d kept, %d dropped (%d unknown genus, %d planted before %d); %d cleaned\n",
		report.Read, report.Kept, report.DroppedTotal(),
		report.Dropped[domain.DropUnknownGenus], report.Dropped[domain.DropPlantingYear], domain.MinPlantingYear,
		len(cleaned))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Fprintf(out, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateCounts(report domain.Report, cleaned []domain.TreeRecord) *phase {
	p := &phase{name: "Survivor count"}
	if report.Kept != len(cleaned) {
		p.errorf("raw file keeps %d rows, cleaned file has %d", report.Kept, len(cleaned))
	}
	return p
}

func validateIdentifiers(cleaned []domain.TreeRecord) *phase {
	p := &phase{name: "Identifier density"}
	for i, r := range cleaned {
		if r.Identifier != i {
			p.errorf("record %d has identifier %d", i, r.Identifier)
		}
	}
	return p
}

func validatePlantingFloor(cleaned []domain.TreeRecord) *phase {
	p := &phase{name: "Planting year floor"}
	for _, r := range cleaned {
		if r.PlantingDate != nil && r.PlantingDate.Year() < domain.MinPlantingYear {
			p.errorf("identifier %d planted %s", r.Identifier, r.PlantingDate.Format(time.DateOnly))
		}
	}
	return p
}

func validateParity(expected, cleaned []domain.TreeRecord) *phase {
	p := &phase{name: "Record parity"}
	n := min(len(expected), len(cleaned))
	for i := 0; i < n; i++ {
		compareRecords(p, expected[i], cleaned[i])
	}
	return p
}

func compareRecords(p *phase, want, got domain.TreeRecord) {
	id := want.Identifier
	textFields := []struct {
		name      string
		want, got string
	}{
		{"genus", want.Genus, got.Genus},
		{"species", want.Species, got.Species},
		{"variety", want.Variety, got.Variety},
		{"planting_area", want.PlantingArea, got.PlantingArea},
		{"municipality", want.Municipality, got.Municipality},
		{"street_name", want.StreetName, got.StreetName},
	}
	for _, f := range textFields {
		if f.want != f.got {
			p.errorf("identifier %d: %s = %q, want %q", id, f.name, f.got, f.want)
		}
	}
	if !ptrIntEq(want.Circumference, got.Circumference) {
		p.errorf("identifier %d: circumference = %s, want %s", id, ptrInt(got.Circumference), ptrInt(want.Circumference))
	}
	if !ptrIntEq(want.Height, got.Height) {
		p.errorf("identifier %d: height = %s, want %s", id, ptrInt(got.Height), ptrInt(want.Height))
	}
	if !ptrDateEq(want.PlantingDate, got.PlantingDate) {
		p.errorf("identifier %d: planting_date = %s, want %s", id, ptrDate(got.PlantingDate), ptrDate(want.PlantingDate))
	}
	if !floatEq(want.Longitude, got.Longitude) || !floatEq(want.Latitude, got.Latitude) {
		p.errorf("identifier %d: position = (%v, %v), want (%v, %v)", id, got.Longitude, got.Latitude, want.Longitude, want.Latitude)
	}
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptrIntEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func ptrInt(v *int) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprint(*v)
}

func ptrDateEq(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func ptrDate(t *time.Time) string {
	if t == nil {
		return "<nil>"
	}
	return t.Format(time.DateOnly)
}
