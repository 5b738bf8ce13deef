package game

import "sort"

// LeaderboardEntry is one user's cumulative score.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Leaderboard keeps per-user scores sorted by score, highest first.
// Ties keep the order in which users first scored.
type Leaderboard struct {
	entries []LeaderboardEntry
}

// Add credits pts to user, creating the entry on first score. Non-positive
// amounts are ignored so scores never decrease.
func (l *Leaderboard) Add(user string, pts int) {
	if pts <= 0 {
		return
	}
	found := false
	for i := range l.entries {
		if l.entries[i].Username == user {
			l.entries[i].Score += pts
			found = true
			break
		}
	}
	if !found {
		l.entries = append(l.entries, LeaderboardEntry{Username: user, Score: pts})
	}
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Score > l.entries[j].Score
	})
}

// Score returns the user's total, or 0.
func (l *Leaderboard) Score(user string) int {
	for _, e := range l.entries {
		if e.Username == user {
			return e.Score
		}
	}
	return 0
}

// Entries returns a sorted copy of the board.
func (l *Leaderboard) Entries() []LeaderboardEntry {
	return append([]LeaderboardEntry{}, l.entries...)
}

// Len reports how many users have scored.
func (l *Leaderboard) Len() int { return len(l.entries) }

// Reset empties the board.
func (l *Leaderboard) Reset() { l.entries = nil }
