package game

import "github.com/robalobadob/anagram-server/internal/words"

// ProcessGuess resolves one guess against the round.
//
// The text is trimmed and uppercased; empty, unknown and already-found words are
// ignored (ok == false) so duplicate delivery never scores twice. On a first find
// the word is credited to user with override points when given, else its own
// score. Positive points are added to lb. Outcome.Cleared is set when a target
// find completes the round.
func ProcessGuess(r *Round, lb *Leaderboard, text, user string, override *int) (Outcome, bool) {
	if r == nil {
		return Outcome{}, false
	}
	w := words.Normalize(text)
	if w == "" {
		return Outcome{}, false
	}
	ws, ok := r.Words[w]
	if !ok || ws.Found {
		return Outcome{}, false
	}

	pts := ws.Points
	if override != nil {
		pts = *override
	}
	ws.Found = true
	ws.FoundBy = user
	ws.Points = pts

	o := Outcome{Word: w, Username: user, Points: pts, IsBonus: !ws.IsTarget}
	r.record(o)
	if pts > 0 && lb != nil {
		lb.Add(user, pts)
	}
	if ws.IsTarget {
		o.Cleared = r.Cleared()
	}
	return o, true
}
