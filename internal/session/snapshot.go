package session

import (
	"sort"
	"strings"

	"github.com/robalobadob/anagram-server/internal/game"
)

// View selects how much of the round a snapshot exposes.
type View int

const (
	// ViewPublic masks unfound words and hides unfound bonus words.
	ViewPublic View = iota
	// ViewAdmin shows every word in full.
	ViewAdmin
)

// WordView is a word as presented to a client.
type WordView struct {
	Text     string `json:"text"` // full word, or a mask like "S_E__" when hidden
	Length   int    `json:"length"`
	IsTarget bool   `json:"isTarget"`
	Found    bool   `json:"found"`
	FoundBy  string `json:"foundBy,omitempty"`
	Points   int    `json:"points"`
	Revealed []int  `json:"revealed"`
}

// Snapshot is a read-only copy of session state for rendering.
type Snapshot struct {
	Phase        Phase                   `json:"phase"`
	Level        int                     `json:"level"`
	Score        int                     `json:"score"`
	Remaining    int                     `json:"remaining"`
	Duration     int                     `json:"duration"`
	TimerRunning bool                    `json:"timerRunning"`
	Scrambled    string                  `json:"scrambled"`
	Root         string                  `json:"root,omitempty"`
	TargetsFound int                     `json:"targetsFound"`
	TargetsTotal int                     `json:"targetsTotal"`
	Words        []WordView              `json:"words"`
	Leaderboard  []game.LeaderboardEntry `json:"leaderboard"`
	Recent       []game.ActivityEntry    `json:"recent"`
	Cues         []Cue                   `json:"cues,omitempty"`
}

// Snapshot copies the current state. The root is only disclosed to admins or
// once the game is over.
func (s *Session) Snapshot(v View) Snapshot {
	snap := Snapshot{
		Phase:        s.phase,
		Score:        s.score,
		TimerRunning: s.TimerRunning(),
		Words:        []WordView{},
		Leaderboard:  s.board.Entries(),
		Recent:       []game.ActivityEntry{},
	}
	r := s.round
	if r == nil {
		return snap
	}
	snap.Level = r.Level
	snap.Remaining = r.Remaining
	snap.Duration = r.Config.Duration
	snap.Scrambled = r.Scrambled
	snap.TargetsFound, snap.TargetsTotal = r.Progress()
	snap.Recent = r.Recent()
	if v == ViewAdmin || s.phase == PhaseGameOver {
		snap.Root = r.Root
	}
	// Sorted on the real word so masked tiles keep their place between snapshots.
	type entry struct {
		word string
		view WordView
	}
	entries := make([]entry, 0, len(r.Words))
	for _, ws := range r.Words {
		hidden := v == ViewPublic && !ws.Found && s.phase != PhaseGameOver
		if hidden && !ws.IsTarget {
			continue
		}
		wv := WordView{
			Text:     ws.Word,
			Length:   len(ws.Word),
			IsTarget: ws.IsTarget,
			Found:    ws.Found,
			FoundBy:  ws.FoundBy,
			Points:   ws.Points,
			Revealed: append([]int{}, ws.Revealed...),
		}
		if hidden {
			wv.Text = mask(ws.Word, ws.Revealed)
		}
		entries = append(entries, entry{word: ws.Word, view: wv})
	}
	// Targets first, grouped by length, then alphabetically.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.view.IsTarget != b.view.IsTarget {
			return a.view.IsTarget
		}
		if a.view.Length != b.view.Length {
			return a.view.Length < b.view.Length
		}
		return a.word < b.word
	})
	for _, e := range entries {
		snap.Words = append(snap.Words, e.view)
	}
	return snap
}

// mask replaces every letter not in revealed with '_'.
func mask(w string, revealed []int) string {
	var b strings.Builder
	b.Grow(len(w))
	for i := 0; i < len(w); i++ {
		shown := false
		for _, x := range revealed {
			if x == i {
				shown = true
				break
			}
		}
		if shown {
			b.WriteByte(w[i])
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
