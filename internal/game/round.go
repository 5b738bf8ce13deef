// internal/game/round.go
//
// Round state for a single level.
// Responsibilities:
//   - Build the word map from a Selection (points precomputed, nothing revealed).
//   - Track the countdown and recent activity.
//   - Answer the clear condition: every target word found.
//
// A Round is owned by one session and replaced wholesale when the level changes.

package game

import (
	"math/rand"
	"sort"

	"github.com/robalobadob/anagram-server/internal/words"
)

// recentWindow is how many accepted finds the activity list keeps.
const recentWindow = 8

// Round holds the state of one level.
type Round struct {
	Level     int
	Root      string
	Scrambled string
	Words     map[string]*WordStatus
	Remaining int
	Config    RoundConfig

	recent []ActivityEntry
	nextID int
}

// NewRound creates the round for level from a selection.
func NewRound(level int, cfg RoundConfig, sel Selection, rng *rand.Rand) *Round {
	r := &Round{
		Level:     level,
		Root:      sel.Root,
		Scrambled: words.Shuffle(sel.Root, rng),
		Words:     make(map[string]*WordStatus, len(sel.Targets)+len(sel.Bonuses)),
		Remaining: cfg.Duration,
		Config:    cfg,
		nextID:    1,
	}
	for _, w := range sel.Targets {
		r.Words[w] = newStatus(w, true)
	}
	for _, w := range sel.Bonuses {
		if _, ok := r.Words[w]; ok {
			continue
		}
		r.Words[w] = newStatus(w, false)
	}
	return r
}

func newStatus(w string, target bool) *WordStatus {
	return &WordStatus{Word: w, IsTarget: target, Points: words.Score(w), Revealed: []int{}}
}

// Cleared reports whether every target word has been found.
// A round without targets is never cleared.
func (r *Round) Cleared() bool {
	targets := 0
	for _, ws := range r.Words {
		if !ws.IsTarget {
			continue
		}
		targets++
		if !ws.Found {
			return false
		}
	}
	return targets > 0
}

// Progress returns (found targets, total targets).
func (r *Round) Progress() (found, total int) {
	for _, ws := range r.Words {
		if ws.IsTarget {
			total++
			if ws.Found {
				found++
			}
		}
	}
	return found, total
}

// Recent returns a copy of the trailing activity window, oldest first.
func (r *Round) Recent() []ActivityEntry {
	return append([]ActivityEntry{}, r.recent...)
}

// Reshuffle draws a new scrambled display for the root.
func (r *Round) Reshuffle(rng *rand.Rand) {
	r.Scrambled = words.Shuffle(r.Root, rng)
}

// AdjustTime moves the countdown by delta seconds, never below zero.
func (r *Round) AdjustTime(delta int) {
	r.Remaining += delta
	if r.Remaining < 0 {
		r.Remaining = 0
	}
}

// record appends an accepted find to the activity window.
func (r *Round) record(o Outcome) {
	r.recent = append(r.recent, ActivityEntry{
		ID:       r.nextID,
		Word:     o.Word,
		Username: o.Username,
		Points:   o.Points,
		IsBonus:  o.IsBonus,
	})
	r.nextID++
	if len(r.recent) > recentWindow {
		r.recent = append([]ActivityEntry(nil), r.recent[len(r.recent)-recentWindow:]...)
	}
}

// sortedWords returns the word keys in alphabetical order, for deterministic passes.
func (r *Round) sortedWords() []string {
	keys := make([]string, 0, len(r.Words))
	for w := range r.Words {
		keys = append(keys, w)
	}
	sort.Strings(keys)
	return keys
}
