// internal/game/types.go
//
// Core type definitions for the anagram round engine.
// Defines:
//   - RoundConfig: per-level generation and timing parameters.
//   - Selection: the output of root selection (root + classified words).
//   - WordStatus: per-word progress within a round.
//   - Round: state for a single in-progress round.
//   - ActivityEntry / Outcome: results of accepted guesses.

package game

// RoundConfig parameterizes one level. It is produced by ConfigFor and never mutated.
type RoundConfig struct {
	RootLength   int         `json:"rootLength"`
	MinTargetLen int         `json:"minTargetLen"`
	MaxTargetLen int         `json:"maxTargetLen"`
	LengthCaps   map[int]int `json:"lengthCaps,omitempty"` // length → max targets; absent = unbounded
	Duration     int         `json:"durationSeconds"`
}

// capFor returns the target cap for words of length n and whether one applies.
func (c RoundConfig) capFor(n int) (int, bool) {
	v, ok := c.LengthCaps[n]
	return v, ok
}

// inRange reports whether a word of length n may be a target at all.
func (c RoundConfig) inRange(n int) bool {
	return n >= c.MinTargetLen && n <= c.MaxTargetLen
}

// Selection is a chosen root with its formable words split into targets and bonuses.
type Selection struct {
	Root    string   `json:"root"`
	Targets []string `json:"targets"`
	Bonuses []string `json:"bonuses"`
}

// WordStatus tracks one formable word in a round.
type WordStatus struct {
	Word     string `json:"word"`
	IsTarget bool   `json:"isTarget"`
	Found    bool   `json:"found"`
	FoundBy  string `json:"foundBy,omitempty"`
	Points   int    `json:"points"`
	Revealed []int  `json:"revealed"` // letter indices shown as hints; only grows
}

// revealed reports whether index i is already shown.
func (w *WordStatus) revealed(i int) bool {
	for _, x := range w.Revealed {
		if x == i {
			return true
		}
	}
	return false
}

// ActivityEntry is one accepted find, kept for display.
type ActivityEntry struct {
	ID       int    `json:"id"`
	Word     string `json:"word"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	IsBonus  bool   `json:"isBonus"`
}

// Outcome describes an accepted guess.
type Outcome struct {
	Word     string `json:"word"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	IsBonus  bool   `json:"isBonus"`
	Cleared  bool   `json:"cleared"` // every target word is now found
}
