// Package genus holds the read-only cross-language genus name reference.
package genus

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Language is one of the three name columns of the reference table.
type Language string

const (
	Latin   Language = "Latin"
	French  Language = "Français"
	English Language = "English"
)

// Languages lists the reference columns in table order.
var Languages = []Language{Latin, French, English}

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownGenus    = errors.New("unknown genus")
)

// ParseLanguage validates a language name.
func ParseLanguage(s string) (Language, error) {
	l := Language(s)
	if !slices.Contains(Languages, l) {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
	return l, nil
}

// collationTag picks the sort order used for each column. Latin names are
// sorted with root collation.
func (l Language) collationTag() language.Tag {
	switch l {
	case French:
		return language.French
	case English:
		return language.English
	default:
		return language.Und
	}
}

// Entry is one genus named in every language.
type Entry struct {
	Latin   string `yaml:"latin"`
	French  string `yaml:"french"`
	English string `yaml:"english"`
}

// Name returns the entry's name in lang.
func (e Entry) Name(lang Language) (string, error) {
	switch lang {
	case Latin:
		return e.Latin, nil
	case French:
		return e.French, nil
	case English:
		return e.English, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
}

// Table is the loaded reference. It is not modified after NewTable.
type Table struct {
	entries []Entry
	sorted  map[Language][]string
}

// NewTable builds a Table and precomputes the per-language name lists.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: slices.Clone(entries),
		sorted:  make(map[Language][]string, len(Languages)),
	}
	for i, e := range t.entries {
		if e.Latin == "" {
			return nil, fmt.Errorf("genus entry %d: empty latin name", i)
		}
	}
	for _, lang := range Languages {
		names := make([]string, 0, len(t.entries))
		for _, e := range t.entries {
			n, _ := e.Name(lang)
			names = append(names, n)
		}
		collate.New(lang.collationTag()).SortStrings(names)
		t.sorted[lang] = names
	}
	return t, nil
}

// Languages lists the languages the table can be queried in.
func (t *Table) Languages() []Language { return slices.Clone(Languages) }

// Len is the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the entries in table order.
func (t *Table) Entries() []Entry { return slices.Clone(t.entries) }

// Names lists every name in lang, sorted for display.
func (t *Table) Names(lang Language) ([]string, error) {
	names, ok := t.sorted[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return slices.Clone(names), nil
}

// Translate returns the to-language name of the first entry whose
// from-language name is name.
func (t *Table) Translate(name string, from, to Language) (string, error) {
	if _, ok := t.sorted[to]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, to)
	}
	e, err := t.find(name, from)
	if err != nil {
		return "", err
	}
	return e.Name(to)
}

// Latin returns every Latin name whose lang name is name, in table order.
func (t *Table) Latin(name string, lang Language) ([]string, error) {
	if _, ok := t.sorted[lang]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	var out []string
	for _, e := range t.entries {
		if n, _ := e.Name(lang); n == name {
			out = append(out, e.Latin)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrUnknownGenus, name, lang)
	}
	return out, nil
}

func (t *Table) find(name string, lang Language) (Entry, error) {
	if _, ok := t.sorted[lang]; !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	for _, e := range t.entries {
		if n, _ := e.Name(lang); n == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q in %s", ErrUnknownGenus, name, lang)
}
