// Package tabular reads the raw inventory export and writes cleaned records
// as CSV or XLSX.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
)

// RawComma is the delimiter of the open-data export.
const RawComma = ';'

// Options controls how a delimited file is decoded.
type Options struct {
	Comma    rune
	Encoding string // utf-8 (default), windows-1252, iso-8859-1
}

// ErrUnsupportedEncoding is returned for an unknown Options.Encoding.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// ValidateEncoding reports whether name is accepted by Options.Encoding.
func ValidateEncoding(name string) error {
	_, err := lookupEncoding(name)
	return err
}

// newReader wraps r with the configured decoder and returns a csv reader
// positioned before the header.
func newReader(r io.Reader, opts Options) (*csv.Reader, error) {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	if cr.Comma == 0 {
		cr.Comma = RawComma
	}
	cr.FieldsPerRecord = -1
	return cr, nil
}

func readHeader(cr *csv.Reader) ([]string, error) {
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("read header: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	return header, nil
}

// DecodeRaw reads a header-driven inventory export into RawRows in file
// order. The header is bound against domain.InventorySchema before any row
// is read.
func DecodeRaw(r io.Reader, opts Options) ([]domain.RawRow, error) {
	cr, err := newReader(r, opts)
	if err != nil {
		return nil, err
	}
	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	binding, err := domain.InventorySchema.Bind(header)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.RawRow, 0, 1024)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		row, err := binding.Row(line, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadRaw opens path and decodes it with DecodeRaw.
func ReadRaw(path string, opts Options) ([]domain.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw csv %s: %w", path, err)
	}
	defer f.Close()

	rows, err := DecodeRaw(f, opts)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return rows, nil
}
