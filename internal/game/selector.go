// internal/game/selector.go
//
// Root selection: pick a root word and classify everything formable from it.
//
// Algorithm:
//   1. Candidate pool: catalog words of exactly cfg.RootLength letters (eligible words only
//      when there are enough of them), widened to ≥ RootLength when the pool is thin.
//   2. Up to maxAttempts random trial roots are drawn from the pool.
//   3. For each trial, every dictionary word that is a letter multiset-subset of the
//      root is formable.
//   4. Formable priority words become targets unconditionally. The remaining words are
//      ordered common-first and fill targets subject to the length range, eligibility
//      and per-length caps; everything else is a bonus.
//   5. The first trial reaching targetQuota wins; otherwise the trial with the most
//      targets is returned. Falling short of the quota is not an error.

package game

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/robalobadob/anagram-server/internal/words"
)

const (
	poolFloor   = 50 // below this many exact-length roots, widen the pool
	maxAttempts = 30
	targetQuota = 12
)

// ErrNoCandidates is returned when the catalog has no word long enough to be a root.
var ErrNoCandidates = errors.New("game: no playable root words")

// Select chooses a root for cfg and classifies its formable words.
// priority words that can be formed from the chosen root are always targets.
func Select(cat *words.Catalog, dict words.Dictionary, cfg RoundConfig, priority []string, rng *rand.Rand) (Selection, error) {
	pool := candidatePool(cat, cfg.RootLength)
	if len(pool) == 0 {
		return Selection{}, ErrNoCandidates
	}
	prio := normalizePriority(priority)

	var best Selection
	found := false
	for attempt := 0; attempt < maxAttempts; attempt++ {
		root := pool[rng.Intn(len(pool))]
		trial := classify(root, cat, dict, cfg, prio)
		if len(trial.Targets) >= targetQuota {
			return trial, nil
		}
		if !found || len(trial.Targets) > len(best.Targets) {
			best, found = trial, true
		}
	}
	return best, nil
}

// candidatePool returns the words a root may be drawn from.
func candidatePool(cat *words.Catalog, rootLen int) []string {
	var exact, eligible []string
	for _, e := range cat.Entries() {
		if len(e.Word) != rootLen {
			continue
		}
		exact = append(exact, e.Word)
		if e.Eligible {
			eligible = append(eligible, e.Word)
		}
	}
	if len(eligible) >= poolFloor {
		return eligible
	}
	if len(exact) >= poolFloor {
		return exact
	}
	var wide []string
	for _, e := range cat.Entries() {
		if len(e.Word) >= rootLen {
			wide = append(wide, e.Word)
		}
	}
	return wide
}

// classify splits the words formable from root into targets and bonuses.
func classify(root string, cat *words.Catalog, dict words.Dictionary, cfg RoundConfig, prio []string) Selection {
	src := words.CountLetters(root)
	sel := Selection{Root: root, Targets: []string{}, Bonuses: []string{}}
	taken := make(map[string]struct{})

	for _, p := range prio {
		if !words.CanForm(p, src) {
			continue
		}
		if _, dup := taken[p]; dup {
			continue
		}
		taken[p] = struct{}{}
		sel.Targets = append(sel.Targets, p)
	}

	var formable []string
	for w := range dict {
		if len(w) > len(root) {
			continue
		}
		if _, dup := taken[w]; dup {
			continue
		}
		if words.CanForm(w, src) {
			formable = append(formable, w)
		}
	}
	sortByCommonness(formable, cat)

	perLen := make(map[int]int)
	for _, w := range formable {
		n := len(w)
		e, known := cat.Lookup(w)
		if !cfg.inRange(n) || !known || !e.Eligible {
			sel.Bonuses = append(sel.Bonuses, w)
			continue
		}
		if limit, capped := cfg.capFor(n); capped && perLen[n] >= limit {
			sel.Bonuses = append(sel.Bonuses, w)
			continue
		}
		perLen[n]++
		sel.Targets = append(sel.Targets, w)
	}
	return sel
}

// sortByCommonness orders words eligible catalog words first, then other catalog
// words, then unknown words; within a group lower rank first, then alphabetically.
func sortByCommonness(list []string, cat *words.Catalog) {
	type key struct {
		group int
		rank  int
	}
	keys := make(map[string]key, len(list))
	for _, w := range list {
		e, ok := cat.Lookup(w)
		switch {
		case ok && e.Eligible:
			keys[w] = key{0, e.Rank}
		case ok:
			keys[w] = key{1, e.Rank}
		default:
			keys[w] = key{2, 0}
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := keys[list[i]], keys[list[j]]
		if a.group != b.group {
			return a.group < b.group
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return list[i] < list[j]
	})
}

// normalizePriority uppercases and filters requested words, dropping duplicates.
func normalizePriority(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, p := range in {
		w := words.Normalize(p)
		if !words.IsWord(w) {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
