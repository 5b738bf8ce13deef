package game

import "math/rand"

// Checkpoint flags what the countdown triggers at a given remaining time.
type Checkpoint uint8

const (
	HalfwayHint Checkpoint = 1 << iota // remaining == duration/2
	LateHint                           // remaining == LateHintAt
	Countdown                          // 0 < remaining <= CountdownFrom
)

const (
	LateHintAt    = 16
	CountdownFrom = 10
)

// Has reports whether flag f is set.
func (c Checkpoint) Has(f Checkpoint) bool { return c&f != 0 }

// Checkpoints returns the triggers for a countdown value. Offsets are relative
// to the configured duration, so they scale with longer rounds.
func Checkpoints(remaining, duration int) Checkpoint {
	var c Checkpoint
	if remaining <= 0 {
		return c
	}
	if remaining == duration/2 {
		c |= HalfwayHint
	}
	if remaining == LateHintAt {
		c |= LateHint
	}
	if remaining <= CountdownFrom {
		c |= Countdown
	}
	return c
}

// RevealPass shows one more random letter of every unfound target word.
// Words with nothing left to reveal are skipped. It returns how many words changed.
func (r *Round) RevealPass(rng *rand.Rand) int {
	changed := 0
	for _, w := range r.sortedWords() {
		ws := r.Words[w]
		if !ws.IsTarget || ws.Found {
			continue
		}
		hidden := make([]int, 0, len(w))
		for i := 0; i < len(w); i++ {
			if !ws.revealed(i) {
				hidden = append(hidden, i)
			}
		}
		if len(hidden) == 0 {
			continue
		}
		ws.Revealed = append(ws.Revealed, hidden[rng.Intn(len(hidden))])
		changed++
	}
	return changed
}

// Tick advances the countdown by one second. Hint passes fire on the value
// shown before the decrement; expired is true once the countdown hits zero.
func (r *Round) Tick(rng *rand.Rand) (hit Checkpoint, expired bool) {
	hit = Checkpoints(r.Remaining, r.Config.Duration)
	if hit.Has(HalfwayHint) {
		r.RevealPass(rng)
	}
	if hit.Has(LateHint) {
		r.RevealPass(rng)
	}
	if r.Remaining <= 1 {
		r.Remaining = 0
		return hit, true
	}
	r.Remaining--
	return hit, false
}
