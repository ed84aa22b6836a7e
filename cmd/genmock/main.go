// Command genmock writes a synthetic tree inventory export for local runs and
// load tests. Rows follow the layout of the open-data file (semicolon
// delimiter, decimal commas, separate year and date columns) and include
// unclassified trees and pre-1900 plantings so the cleaning pass has
// something to drop. It runs the real normalizer over the result to print the
// counts tests and demos rely on.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -rows 20000 \
//	  -genus static/data/genus_names.yaml \
//	  -raw-out static/data/trees_data.csv \
//	  -clean-out static/data/trees_data_clean.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
	"github.com/couchcryptid/tree-inventory-etl/internal/genus"
	"github.com/couchcryptid/tree-inventory-etl/internal/session"
	"github.com/couchcryptid/tree-inventory-etl/internal/tabular"
)

// header is the raw column order, including columns the cleaner ignores.
var header = []string{
	"gid", domain.ColGenusCode, domain.ColGenus, domain.ColSpecies, domain.ColVariety,
	domain.ColLocation, domain.ColMunicipality, domain.ColStreetName,
	domain.ColCircumference, domain.ColHeight, domain.ColPlantingYear, domain.ColPlantingDate,
	domain.ColLongitude, domain.ColLatitude,
}

var (
	species      = []string{"platanoides", "campestre", "x hispanica", "cordata", "siliquastrum", "robur", "avium", "excelsior"}
	areas        = []string{"Alignement", "Parc", "Square", "Cimetière", "École", "Jardin"}
	municipality = []string{"Lyon 1", "Lyon 2", "Lyon 3", "Lyon 4", "Lyon 5", "Lyon 6", "Lyon 7", "Lyon 8", "Lyon 9", "Villeurbanne", "Bron"}
	streets      = []string{"Cours Gambetta", "Avenue Jean Jaurès", "Quai Fulchiron", "Boulevard des Belges", "Rue de la République", "Place Bellecour", "Cours Lafayette"}
)

// Bounding box of the generated positions.
const (
	minLon, spanLon = 4.77, 0.15
	minLat, spanLat = 45.70, 0.11
)

type options struct {
	rows         int
	seed         uint64
	unknownShare float64
	oldShare     float64
	encoding     string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var opts options
	genusPath := flag.String("genus", "./static/data/genus_names.yaml", "genus seed file")
	rawOut := flag.String("raw-out", "", "output path for the raw inventory")
	cleanOut := flag.String("clean-out", "", "optional output path for the cleaned table (.csv or .xlsx)")
	flag.IntVar(&opts.rows, "rows", 5000, "number of rows to generate")
	flag.Uint64Var(&opts.seed, "seed", 1, "random seed")
	flag.Float64Var(&opts.unknownShare, "unknown", 0.05, "share of unclassified trees (genus code 0 or 1)")
	flag.Float64Var(&opts.oldShare, "old", 0.02, "share of trees planted before 1900")
	flag.StringVar(&opts.encoding, "encoding", "utf-8", "raw file encoding (utf-8 or windows-1252)")
	flag.Parse()

	if *rawOut == "" || opts.rows <= 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -rows > 0")
	}

	table, err := genus.LoadYAML(*genusPath)
	if err != nil {
		return err
	}

	if err := writeRaw(*rawOut, table.Entries(), opts); err != nil {
		return fmt.Errorf("writing raw inventory: %w", err)
	}
	log.Printf("wrote raw inventory: %s (%d rows)", *rawOut, opts.rows)

	rows, err := tabular.ReadRaw(*rawOut, tabular.Options{Encoding: opts.encoding})
	if err != nil {
		return err
	}
	records, report, err := domain.NormalizeWithReport(rows)
	if err != nil {
		return fmt.Errorf("normalize generated rows: %w", err)
	}

	if *cleanOut != "" {
		if err := tabular.Export(*cleanOut, records); err != nil {
			return fmt.Errorf("writing cleaned table: %w", err)
		}
		log.Printf("wrote cleaned table: %s", *cleanOut)
	}

	printStats(os.Stdout, report, records)
	return nil
}

func writeRaw(path string, entries []genus.Entry, opts options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.WriteCloser = nopCloser{f}
	if strings.EqualFold(opts.encoding, "windows-1252") {
		w = transform.NewWriter(f, charmap.Windows1252.NewEncoder())
	}

	cw := csv.NewWriter(w)
	cw.Comma = tabular.RawComma
	if err := cw.Write(header); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	for i := range opts.rows {
		if err := cw.Write(mockRow(rng, i, entries, opts)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func mockRow(rng *rand.Rand, i int, entries []genus.Entry, opts options) []string {
	code, name := "", ""
	if rng.Float64() < opts.unknownShare {
		code, name = strconv.Itoa(rng.IntN(2)), "Inconnu"
	} else {
		k := rng.IntN(len(entries))
		code, name = strconv.Itoa(k+2), entries[k].Latin
	}

	circumference := "0"
	if rng.Float64() > 0.1 {
		circumference = strconv.Itoa(20 + rng.IntN(380))
	}

	year, date := "", ""
	switch p := rng.Float64(); {
	case p < opts.oldShare:
		year = strconv.Itoa(1850 + rng.IntN(50))
	case p < opts.oldShare+0.15:
		// Planting date unknown.
	default:
		year = strconv.Itoa(1900 + rng.IntN(124))
	}
	if year != "" {
		date = fmt.Sprintf("%s-%02d-%02d", year, 1+rng.IntN(12), 1+rng.IntN(28))
	}

	variety := ""
	if rng.Float64() < 0.1 {
		variety = "'Globosum'"
	}

	return []string{
		strconv.Itoa(i + 1),
		code,
		name,
		species[rng.IntN(len(species))],
		variety,
		areas[rng.IntN(len(areas))],
		municipality[rng.IntN(len(municipality))],
		streets[rng.IntN(len(streets))],
		circumference,
		strconv.Itoa(1 + rng.IntN(35)),
		year,
		date,
		decimalComma(minLon + rng.Float64()*spanLon),
		decimalComma(minLat + rng.Float64()*spanLat),
	}
}

func decimalComma(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 6, 64), ".", ",", 1)
}

type genusCount struct {
	genus string
	count int
}

func printStats(w io.Writer, report domain.Report, records []domain.TreeRecord) {
	fmt.Fprintln(w, "\n=== Stats for updating test assertions ===")
	fmt.Fprintf(w, "Rows: %d, kept: %d\n", report.Read, report.Kept)
	fmt.Fprintf(w, "Dropped: unknown genus=%d, planted before %d=%d\n",
		report.Dropped[domain.DropUnknownGenus], domain.MinPlantingYear, report.Dropped[domain.DropPlantingYear])

	counts := map[string]int{}
	var undated int
	for _, r := range records {
		counts[r.Genus]++
		if r.PlantingDate == nil {
			undated++
		}
	}
	fmt.Fprintf(w, "Without planting date: %d\n", undated)

	gc := make([]genusCount, 0, len(counts))
	for g, c := range counts {
		gc = append(gc, genusCount{g, c})
	}
	sort.Slice(gc, func(i, j int) bool {
		if gc[i].count != gc[j].count {
			return gc[i].count > gc[j].count
		}
		return gc[i].genus < gc[j].genus
	})

	fmt.Fprintf(w, "\nGenera (%d), top 10:\n", len(gc))
	for _, g := range gc[:min(10, len(gc))] {
		marker := ""
		if g.count >= session.DefaultThreshold {
			marker = " (needs confirmation)"
		}
		fmt.Fprintf(w, "  %s=%d%s\n", g.genus, g.count, marker)
	}

	if len(records) > 0 {
		first := records[0]
		fmt.Fprintf(w, "\nFirst record:\n")
		fmt.Fprintf(w, "  Genus: %s %s\n", first.Genus, first.Species)
		fmt.Fprintf(w, "  Lat: %g, Lon: %g\n", first.Latitude, first.Longitude)
		if first.PlantingDate != nil {
			fmt.Fprintf(w, "  Planted: %s (%s)\n", first.PlantingDate.Format(time.DateOnly), first.Marker().AgeLabel())
		}
	}
}
