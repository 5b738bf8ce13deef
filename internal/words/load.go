// internal/words/load.go
//
// Loading catalogs from files or the embedded defaults.
//
// Load behavior:
//   1. Targets come from Sources.TargetsFile when set, else the embedded targets.txt.
//   2. The dictionary comes from Sources.DictionaryFile when set, else the embedded dictionary.txt.
//   3. Every target word is also added to the dictionary (targets ⊆ dictionary).
//   4. ErrEmptyCatalog is returned when either list ends up empty; callers may
//      fall back to Fallback().

package words

import (
	"fmt"
	"io"
	"os"

	"github.com/robalobadob/anagram-server/assets"
)

// Sources names optional word list files. Empty paths select embedded defaults.
type Sources struct {
	TargetsFile    string
	DictionaryFile string
}

// Load reads both lists and returns the catalog and dictionary.
func Load(src Sources) (*Catalog, Dictionary, error) {
	targets, dict, err := Read(src)
	if err != nil {
		return nil, nil, err
	}
	return Build(targets, dict)
}

// Read parses both lists without building indexes.
func Read(src Sources) ([]TargetEntry, []string, error) {
	targets, err := readTargets(src.TargetsFile)
	if err != nil {
		return nil, nil, err
	}
	dict, err := readDictionary(src.DictionaryFile)
	if err != nil {
		return nil, nil, err
	}
	return targets, dict, nil
}

// Build assembles a catalog and dictionary from parsed lists, merging target
// words into the dictionary.
func Build(targets []TargetEntry, dict []string) (*Catalog, Dictionary, error) {
	if len(targets) == 0 {
		return nil, nil, ErrEmptyCatalog
	}
	d := NewDictionary(dict)
	for _, t := range targets {
		d[t.Word] = struct{}{}
	}
	return NewCatalog(targets), d, nil
}

// Fallback returns a tiny built-in catalog that keeps the server playable when
// no lists could be loaded.
func Fallback() (*Catalog, Dictionary) {
	entries := []TargetEntry{
		{Word: "STREAM", Rank: 0, Eligible: true},
		{Word: "MASTER", Rank: 1, Eligible: true},
		{Word: "GAMING", Rank: 2, Eligible: true},
		{Word: "PLAYER", Rank: 3, Eligible: true},
	}
	d := make(Dictionary, len(entries))
	for _, e := range entries {
		d[e.Word] = struct{}{}
	}
	return NewCatalog(entries), d
}

func readTargets(path string) ([]TargetEntry, error) {
	rc, err := open(path, assets.Targets)
	if err != nil {
		return nil, fmt.Errorf("open targets: %w", err)
	}
	defer rc.Close()
	out, err := ParseTargets(rc)
	if err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	return out, nil
}

func readDictionary(path string) ([]string, error) {
	rc, err := open(path, assets.Dictionary)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer rc.Close()
	out, err := ParseDictionary(rc)
	if err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	return out, nil
}

// open returns the file at path, or the embedded default when path is empty.
func open(path string, embedded func() (io.ReadCloser, error)) (io.ReadCloser, error) {
	if path == "" {
		return embedded()
	}
	return os.Open(path)
}
