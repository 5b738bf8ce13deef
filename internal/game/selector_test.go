package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/robalobadob/anagram-server/internal/words"
)

func testCatalog(entries ...words.TargetEntry) *words.Catalog {
	return words.NewCatalog(entries)
}

func entry(w string, rank int, eligible bool) words.TargetEntry {
	return words.TargetEntry{Word: w, Rank: rank, Eligible: eligible}
}

// genWords returns n distinct uppercase words of the given length.
func genWords(n, length int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		b := make([]byte, length)
		v := i
		for j := length - 1; j >= 0; j-- {
			b[j] = byte('A' + v%26)
			v /= 26
		}
		out = append(out, string(b))
	}
	return out
}

func contains(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}

func TestSelectMultisetSubset(t *testing.T) {
	cat := testCatalog(entry("STREAM", 0, true))
	dict := words.NewDictionary([]string{"MASTER", "STREAM", "STEAM", "TEAM", "MATTER", "TREES"})
	cfg := RoundConfig{RootLength: 6, MinTargetLen: 3, MaxTargetLen: 6, Duration: 100}

	sel, err := Select(cat, dict, cfg, nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Root != "STREAM" {
		t.Fatalf("root = %s, want STREAM", sel.Root)
	}
	all := append(append([]string{}, sel.Targets...), sel.Bonuses...)
	for _, w := range []string{"STEAM", "TEAM", "MASTER", "STREAM"} {
		if !contains(all, w) {
			t.Errorf("%s should be formable from STREAM", w)
		}
	}
	// MATTER needs two Ts, TREES two Es.
	for _, w := range []string{"MATTER", "TREES"} {
		if contains(all, w) {
			t.Errorf("%s should not be formable from STREAM", w)
		}
	}
	if len(sel.Targets) != 1 || sel.Targets[0] != "STREAM" {
		t.Errorf("targets = %v, want only the eligible catalog word STREAM", sel.Targets)
	}
}

func TestSelectPriorityWords(t *testing.T) {
	cat := testCatalog(entry("STREAM", 0, true))
	dict := words.NewDictionary([]string{"STREAM", "STEAM", "TEAM"})
	cfg := RoundConfig{RootLength: 6, MinTargetLen: 5, MaxTargetLen: 6, Duration: 100,
		LengthCaps: map[int]int{4: 0}}

	prio := []string{" team", "steam", "Steam", "mare", "zzz", "matter", "ok"}
	sel, err := Select(cat, dict, cfg, prio, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	want := []string{"TEAM", "STEAM", "MARE", "STREAM"}
	if len(sel.Targets) != len(want) {
		t.Fatalf("targets = %v, want %v", sel.Targets, want)
	}
	for i := range want {
		if sel.Targets[i] != want[i] {
			t.Errorf("targets[%d] = %s, want %s", i, sel.Targets[i], want[i])
		}
	}
	if len(sel.Bonuses) != 0 {
		t.Errorf("bonuses = %v, want none", sel.Bonuses)
	}
}

func TestSelectCapsAndRange(t *testing.T) {
	cat := testCatalog(
		entry("STREAM", 0, true),
		entry("TEAM", 1, true),
		entry("MEAT", 2, true),
		entry("MATE", 3, true),
		entry("ARM", 4, true),
		entry("MAST", 9000, false),
	)
	dict := words.NewDictionary([]string{"STREAM", "TEAM", "MEAT", "MATE", "ARM", "MAST", "RAM"})

	tests := []struct {
		name    string
		cfg     RoundConfig
		targets []string
	}{
		{
			name:    "uncapped",
			cfg:     RoundConfig{RootLength: 6, MinTargetLen: 3, MaxTargetLen: 6},
			targets: []string{"STREAM", "TEAM", "MEAT", "MATE", "ARM"},
		},
		{
			name:    "four letters capped at one",
			cfg:     RoundConfig{RootLength: 6, MinTargetLen: 3, MaxTargetLen: 6, LengthCaps: map[int]int{4: 1}},
			targets: []string{"STREAM", "TEAM", "ARM"},
		},
		{
			name:    "short words out of range",
			cfg:     RoundConfig{RootLength: 6, MinTargetLen: 5, MaxTargetLen: 6},
			targets: []string{"STREAM"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Select(cat, dict, tt.cfg, nil, rand.New(rand.NewSource(3)))
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if len(sel.Targets) != len(tt.targets) {
				t.Fatalf("targets = %v, want %v", sel.Targets, tt.targets)
			}
			for i, w := range tt.targets {
				if sel.Targets[i] != w {
					t.Errorf("targets[%d] = %s, want %s", i, sel.Targets[i], w)
				}
			}
			// Ineligible MAST and unknown RAM are always bonuses.
			for _, w := range []string{"MAST", "RAM"} {
				if !contains(sel.Bonuses, w) {
					t.Errorf("%s should be a bonus, bonuses = %v", w, sel.Bonuses)
				}
			}
			if got := len(sel.Targets) + len(sel.Bonuses); got != 7 {
				t.Errorf("classified %d words, want 7", got)
			}
		})
	}
}

func TestSelectProperties(t *testing.T) {
	cat, dict, err := words.Load(words.Sources{})
	if err != nil {
		t.Fatalf("load embedded words: %v", err)
	}
	prio := []string{"team", "rate", "stone"}
	for seed := int64(1); seed <= 20; seed++ {
		cfg := ConfigFor(int(seed%6) + 1)
		sel, err := Select(cat, dict, cfg, prio, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("seed %d: Select: %v", seed, err)
		}
		src := words.CountLetters(sel.Root)
		seen := make(map[string]bool)
		for _, w := range append(append([]string{}, sel.Targets...), sel.Bonuses...) {
			if !words.CanForm(w, src) {
				t.Errorf("seed %d: %s not formable from %s", seed, w, sel.Root)
			}
			if seen[w] {
				t.Errorf("seed %d: %s classified twice", seed, w)
			}
			seen[w] = true
		}
		for _, p := range prio {
			p = words.Normalize(p)
			if words.CanForm(p, src) && !contains(sel.Targets, p) {
				t.Errorf("seed %d: formable priority word %s missing from targets of %s", seed, p, sel.Root)
			}
		}
	}
}

func TestSelectNoCandidates(t *testing.T) {
	cat := testCatalog(entry("CAT", 0, true), entry("ACT", 1, true))
	dict := words.NewDictionary([]string{"CAT", "ACT"})
	_, err := Select(cat, dict, ConfigFor(1), nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("err = %v, want ErrNoCandidates", err)
	}
	if _, err := Select(nil, dict, ConfigFor(1), nil, rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("nil catalog: err = %v, want ErrNoCandidates", err)
	}
}

func TestSelectBestEffort(t *testing.T) {
	cat, dict := words.Fallback()
	sel, err := Select(cat, dict, ConfigFor(1), nil, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(sel.Targets) == 0 || len(sel.Targets) >= targetQuota {
		t.Errorf("targets = %v, want a below-quota best effort", sel.Targets)
	}
}

func TestCandidatePool(t *testing.T) {
	eligible := genWords(poolFloor, 6)
	var entries []words.TargetEntry
	for i, w := range eligible {
		entries = append(entries, entry(w, i, true))
	}
	entries = append(entries, entry("ZZZZZZ", 99, false), entry("ZZZZZZZ", 100, true))

	t.Run("enough eligible", func(t *testing.T) {
		pool := candidatePool(testCatalog(entries...), 6)
		if len(pool) != poolFloor || contains(pool, "ZZZZZZ") {
			t.Errorf("pool size %d, want %d eligible words only", len(pool), poolFloor)
		}
	})
	t.Run("enough exact length", func(t *testing.T) {
		mixed := append([]words.TargetEntry{}, entries...)
		mixed[0].Eligible = false
		pool := candidatePool(testCatalog(mixed...), 6)
		if len(pool) != poolFloor+1 || !contains(pool, "ZZZZZZ") || contains(pool, "ZZZZZZZ") {
			t.Errorf("pool size %d, want all %d exact-length words", len(pool), poolFloor+1)
		}
	})
	t.Run("widened", func(t *testing.T) {
		pool := candidatePool(testCatalog(entry("STREAM", 0, true), entry("STREAMS", 1, true), entry("TEAM", 2, true)), 6)
		if len(pool) != 2 || !contains(pool, "STREAMS") {
			t.Errorf("pool = %v, want STREAM and STREAMS", pool)
		}
	})
}

func TestSortByCommonness(t *testing.T) {
	cat := testCatalog(entry("TEAM", 5, true), entry("MEAT", 1, true), entry("MATE", 0, false), entry("TAME", 1, true))
	list := []string{"ZETA", "MATE", "TEAM", "TAME", "META", "MEAT"}
	sortByCommonness(list, cat)
	want := []string{"MEAT", "TAME", "TEAM", "MATE", "META", "ZETA"}
	for i := range want {
		if list[i] != want[i] {
			t.Fatalf("order = %v, want %v", list, want)
		}
	}
}
