// internal/session/session.go
//
// Session is the round state machine for one game: phases, level transitions,
// scoring across rounds and admin overrides.
//
// Phases:
//   SETUP ──catalogs attached──▶ MENU ──transport connected──▶ PLAYING ──timeout/end──▶ GAMEOVER
//   PLAYING ──round cleared──▶ (pause) ──▶ PLAYING at level+1
//   any ──stop──▶ MENU (score and leaderboard cleared)
//   GAMEOVER ──restart──▶ PLAYING at level 1
//
// Session is not safe for concurrent use. Machine owns one and applies events to
// it one at a time; tests drive it directly. Delayed work (the pause after a clear
// or a skip) is handed back as a Continuation that carries the session generation;
// Resume drops it if any transition happened in between.

package session

import (
	"errors"
	"math/rand"
	"time"

	"github.com/robalobadob/anagram-server/internal/game"
	"github.com/robalobadob/anagram-server/internal/words"
)

// Phase is the coarse session state.
type Phase string

const (
	PhaseSetup    Phase = "SETUP"
	PhaseMenu     Phase = "MENU"
	PhasePlaying  Phase = "PLAYING"
	PhaseGameOver Phase = "GAMEOVER"
)

// Cue is a feedback signal for the presentation/audio layer.
type Cue string

const (
	CueCorrect  Cue = "correct"
	CueLevelUp  Cue = "levelUp"
	CueGameOver Cue = "gameOver"
	CueTick     Cue = "tick"
)

// AdminUser is credited for zero-point admin word clicks.
const AdminUser = "Admin"

const (
	DefaultClearDelay = 2 * time.Second
	DefaultSkipDelay  = 500 * time.Millisecond
)

var (
	ErrNotPlaying = errors.New("session: not playing")
	ErrBadLevel   = errors.New("session: level must be >= 1")
	ErrWrongPhase = errors.New("session: not allowed in this phase")
)

// Options tunes a session. Zero values select defaults.
type Options struct {
	ClearDelay time.Duration
	SkipDelay  time.Duration
	Priority   []string // words forced into targets whenever formable
}

// Continuation is a delayed level start.
type Continuation struct {
	Level int
	Delay time.Duration
	gen   uint64
}

// Session is one game's mutable state.
type Session struct {
	phase Phase
	cat   *words.Catalog
	dict  words.Dictionary
	rng   *rand.Rand
	opts  Options

	round   *game.Round
	board   game.Leaderboard
	score   int
	running bool

	gen     uint64
	pending *Continuation
	cues    []Cue
}

// New creates a session. With a non-empty catalog it starts in MENU, else in SETUP.
func New(cat *words.Catalog, dict words.Dictionary, rng *rand.Rand, opts Options) *Session {
	if opts.ClearDelay <= 0 {
		opts.ClearDelay = DefaultClearDelay
	}
	if opts.SkipDelay <= 0 {
		opts.SkipDelay = DefaultSkipDelay
	}
	s := &Session{phase: PhaseSetup, rng: rng, opts: opts}
	_ = s.Attach(cat, dict)
	return s
}

// Attach sets the word catalogs. It moves SETUP to MENU when both are non-empty.
func (s *Session) Attach(cat *words.Catalog, dict words.Dictionary) error {
	if cat.Len() == 0 || len(dict) == 0 {
		return words.ErrEmptyCatalog
	}
	s.cat, s.dict = cat, dict
	if s.phase == PhaseSetup {
		s.phase = PhaseMenu
	}
	return nil
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Level returns the current level, or 0 before the first round.
func (s *Session) Level() int {
	if s.round == nil {
		return 0
	}
	return s.round.Level
}

// Score returns the session total.
func (s *Session) Score() int { return s.score }

// Round exposes the active round for read-only inspection.
func (s *Session) Round() *game.Round { return s.round }

// Leaderboard returns the sorted board.
func (s *Session) Leaderboard() []game.LeaderboardEntry { return s.board.Entries() }

// TimerRunning reports whether ticks currently count down.
func (s *Session) TimerRunning() bool { return s.running && s.phase == PhasePlaying }

// Generation changes on every transition that invalidates pending continuations.
func (s *Session) Generation() uint64 { return s.gen }

// Connected handles the transport coming up: MENU starts level 1.
func (s *Session) Connected() error {
	if s.phase != PhaseMenu {
		return nil
	}
	return s.startLevel(1)
}

// Tick advances the countdown by one second.
func (s *Session) Tick() {
	if !s.TimerRunning() || s.round == nil {
		return
	}
	hit, expired := s.round.Tick(s.rng)
	if hit.Has(game.Countdown) {
		s.cue(CueTick)
	}
	if expired {
		s.gameOver()
	}
}

// Guess applies a guess from the transport.
func (s *Session) Guess(text, user string) (game.Outcome, bool) {
	return s.guess(text, user, nil)
}

func (s *Session) guess(text, user string, override *int) (game.Outcome, bool) {
	if s.phase != PhasePlaying {
		return game.Outcome{}, false
	}
	o, ok := game.ProcessGuess(s.round, &s.board, text, user, override)
	if !ok {
		return o, false
	}
	s.score += o.Points
	s.cue(CueCorrect)
	if o.Cleared {
		s.cue(CueLevelUp)
		s.schedule(s.round.Level+1, s.opts.ClearDelay)
	}
	return o, true
}

// Resume runs a continuation if nothing superseded it. It reports whether the
// level was started.
func (s *Session) Resume(c Continuation) (bool, error) {
	if c.gen != s.gen || s.phase != PhasePlaying {
		return false, nil
	}
	if err := s.startLevel(c.Level); err != nil {
		return false, err
	}
	return true, nil
}

// TakeContinuation returns and clears the pending delayed level start.
func (s *Session) TakeContinuation() (Continuation, bool) {
	if s.pending == nil {
		return Continuation{}, false
	}
	c := *s.pending
	s.pending = nil
	return c, true
}

// TakeCues returns and clears the cues raised since the last call.
func (s *Session) TakeCues() []Cue {
	c := s.cues
	s.cues = nil
	return c
}

// Stop exits to MENU, dropping the round, score and leaderboard.
func (s *Session) Stop() {
	if s.phase == PhaseSetup {
		return
	}
	s.invalidate()
	s.phase = PhaseMenu
	s.round = nil
	s.resetScores()
}

// Restart begins again at level 1 from GAMEOVER.
func (s *Session) Restart() error {
	if s.phase != PhaseGameOver {
		return ErrWrongPhase
	}
	s.resetScores()
	return s.startLevel(1)
}

// startLevel generates a round for level and starts its timer. On failure the
// current state is left as it was.
func (s *Session) startLevel(level int) error {
	if level < 1 {
		return ErrBadLevel
	}
	cfg := game.ConfigFor(level)
	sel, err := game.Select(s.cat, s.dict, cfg, s.opts.Priority, s.rng)
	if err != nil {
		return err
	}
	s.invalidate()
	s.round = game.NewRound(level, cfg, sel, s.rng)
	s.phase = PhasePlaying
	s.running = true
	return nil
}

// schedule stops the timer and queues a delayed start of level.
func (s *Session) schedule(level int, delay time.Duration) {
	s.invalidate()
	s.pending = &Continuation{Level: level, Delay: delay, gen: s.gen}
}

// gameOver freezes the round.
func (s *Session) gameOver() {
	s.invalidate()
	s.phase = PhaseGameOver
	s.cue(CueGameOver)
}

// invalidate stops the timer and orphans any pending continuation.
func (s *Session) invalidate() {
	s.gen++
	s.running = false
	s.pending = nil
}

func (s *Session) resetScores() {
	s.score = 0
	s.board.Reset()
}

func (s *Session) cue(c Cue) { s.cues = append(s.cues, c) }
