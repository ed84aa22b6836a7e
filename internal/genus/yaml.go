package genus

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// seedFile is the on-disk layout of the reference data.
type seedFile struct {
	Genera []Entry `yaml:"genera"`
}

// DecodeYAML reads entries from a seed document:
//
//	genera:
//	  - latin: Cercis
//	    french: Gainier
//	    english: Redbud
func DecodeYAML(r io.Reader) ([]Entry, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode genus seed: %w", err)
	}
	return f.Genera, nil
}

// LoadYAML reads a seed file and builds a Table from it.
func LoadYAML(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genus seed %s: %w", path, err)
	}
	defer f.Close()

	entries, err := DecodeYAML(f)
	if err != nil {
		return nil, err
	}
	return NewTable(entries)
}
