// internal/words/words.go
//
// Word catalogs consumed by the round generator.
//
// Responsibilities:
//   - TargetEntry / Catalog: ranked "target" words with an eligibility flag.
//   - Dictionary: the larger set of legal words used for subset formation.
//   - Normalization helpers shared by the parsers and the guess path.
//
// Word rules:
//   • Words are uppercase ASCII letters A–Z, length ≥ 3.
//   • Catalog lookup tolerates duplicate words; the last entry shadows earlier ones.
//   • Catalogs are immutable once built and safe to share between sessions.

package words

import (
	"errors"
	"strings"
)

// MinWordLen is the shortest word either list accepts.
const MinWordLen = 3

// ErrEmptyCatalog is returned when loading produced no usable target or dictionary words.
var ErrEmptyCatalog = errors.New("words: catalog is empty")

// TargetEntry is one ranked word from the target list.
type TargetEntry struct {
	Word     string `json:"word"`
	Rank     int    `json:"rank"`     // position in the source list; lower = more common
	Eligible bool   `json:"eligible"` // common enough to gate a round
}

// Catalog is an ordered list of target entries with a word index.
type Catalog struct {
	entries []TargetEntry
	index   map[string]TargetEntry
}

// NewCatalog builds a catalog from entries, preserving their order.
func NewCatalog(entries []TargetEntry) *Catalog {
	c := &Catalog{
		entries: append([]TargetEntry(nil), entries...),
		index:   make(map[string]TargetEntry, len(entries)),
	}
	for _, e := range c.entries {
		c.index[e.Word] = e
	}
	return c
}

// Entries returns the catalog in source order. Callers must not modify the slice.
func (c *Catalog) Entries() []TargetEntry {
	if c == nil {
		return nil
	}
	return c.entries
}

// Lookup finds the entry for w.
func (c *Catalog) Lookup(w string) (TargetEntry, bool) {
	if c == nil {
		return TargetEntry{}, false
	}
	e, ok := c.index[w]
	return e, ok
}

// Len reports the number of entries, duplicates included.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Dictionary is the set of legal words.
type Dictionary map[string]struct{}

// NewDictionary builds a set from a word list.
func NewDictionary(list []string) Dictionary {
	d := make(Dictionary, len(list))
	for _, w := range list {
		d[w] = struct{}{}
	}
	return d
}

// Has reports whether w is a legal word.
func (d Dictionary) Has(w string) bool {
	_, ok := d[w]
	return ok
}

// Normalize trims and uppercases s. It does not validate.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsWord reports whether s is an uppercase A–Z word of at least MinWordLen letters.
func IsWord(s string) bool {
	if len(s) < MinWordLen {
		return false
	}
	return isUpperAlpha(s)
}

// isUpperAlpha reports whether s is all uppercase ASCII letters.
func isUpperAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
