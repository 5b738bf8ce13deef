// internal/session/machine.go
//
// Machine runs a Session on a single goroutine.
// Responsibilities:
//   - Serialize the three event sources (timer ticks, transport guesses, admin
//     commands) plus delayed continuations through one channel.
//   - Own the 1-second ticker and start/stop it with the session timer.
//   - Schedule continuations with time.AfterFunc; the session re-validates them.
//   - Publish a public snapshot to subscribers after every event.
//
// Notes:
//   - Handlers never block and never let a panic escape the loop.
//   - Posting after Run has returned is a no-op.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned when the machine loop is not running.
var ErrClosed = errors.New("session: machine closed")

const eventBuffer = 256

type eventKind int

const (
	evTick eventKind = iota
	evGuess
	evAdmin
	evConnected
	evStop
	evRestart
	evResume
	evQuery
)

func (k eventKind) String() string {
	switch k {
	case evTick:
		return "tick"
	case evGuess:
		return "guess"
	case evAdmin:
		return "admin"
	case evConnected:
		return "connected"
	case evStop:
		return "stop"
	case evRestart:
		return "restart"
	case evResume:
		return "resume"
	case evQuery:
		return "query"
	}
	return "unknown"
}

type event struct {
	kind  eventKind
	text  string
	user  string
	cmd   Command
	cont  Continuation
	view  View
	bind  uint64 // transport binding for evConnected; 0 is unchecked
	reply chan result
}

type result struct {
	snap Snapshot
	err  error
}

// Machine owns a Session and applies events to it in order.
type Machine struct {
	ID string

	s         *Session
	log       zerolog.Logger
	tickEvery time.Duration
	events    chan event
	done      chan struct{}

	mu      sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
	detach  func()
	binding uint64
}

// NewMachine wraps s. Run must be called to start processing.
func NewMachine(id string, s *Session) *Machine {
	m := &Machine{
		ID:        id,
		s:         s,
		log:       log.With().Str("session", id).Logger(),
		tickEvery: time.Second,
		events:    make(chan event, eventBuffer),
		done:      make(chan struct{}),
		subs:      make(map[int]chan Snapshot),
	}
	if s.Phase() == PhaseSetup {
		m.log.Warn().Msg("session has no word lists, staying in SETUP")
	}
	return m
}

// Run processes events until ctx is cancelled.
func (m *Machine) Run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.tickEvery)
	ticker.Stop()
	defer ticker.Stop()
	var tickC <-chan time.Time
	lastGen := m.s.Generation()

	m.log.Info().Str("phase", string(m.s.Phase())).Msg("session loop started")
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("session loop stopped")
			m.unbind()
			return
		case <-tickC:
			m.handle(event{kind: evTick})
		case ev := <-m.events:
			m.handle(ev)
		}

		// Keep the ticker aligned with the session timer; a new generation
		// means a new round, so restart the one-second cadence.
		switch gen := m.s.Generation(); {
		case !m.s.TimerRunning():
			ticker.Stop()
			tickC = nil
		case tickC == nil || gen != lastGen:
			select {
			case <-ticker.C:
			default:
			}
			ticker.Reset(m.tickEvery)
			tickC = ticker.C
		}
		lastGen = m.s.Generation()

		if c, ok := m.s.TakeContinuation(); ok {
			m.log.Debug().Int("level", c.Level).Dur("delay", c.Delay).Msg("level start scheduled")
			time.AfterFunc(c.Delay, func() { m.post(event{kind: evResume, cont: c}) })
		}
		m.publish()
	}
}

// handle applies one event, recovering from panics so the loop survives.
func (m *Machine) handle(ev event) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Str("event", ev.kind.String()).Msg("event handler panicked")
			if ev.reply != nil {
				ev.reply <- result{err: errors.New("session: internal error")}
			}
		}
	}()

	var err error
	switch ev.kind {
	case evTick:
		m.s.Tick()
		if m.s.Phase() == PhaseGameOver {
			m.log.Info().Int("level", m.s.Level()).Int("score", m.s.Score()).Msg("time up")
		}
	case evGuess:
		if o, ok := m.s.Guess(ev.text, ev.user); ok {
			m.log.Debug().Str("word", o.Word).Str("user", o.Username).Int("points", o.Points).Msg("word found")
			if o.Cleared {
				m.log.Info().Int("level", m.s.Level()).Msg("round cleared")
			}
		}
	case evAdmin:
		err = m.s.Apply(ev.cmd)
		m.log.Info().Str("cmd", string(ev.cmd.Kind)).AnErr("result", err).Msg("admin command")
	case evConnected:
		if ev.bind != 0 && ev.bind != m.currentBinding() {
			m.log.Debug().Uint64("binding", ev.bind).Msg("stale transport status dropped")
			break
		}
		err = m.s.Connected()
		m.logLevelStart(err)
	case evStop:
		m.s.Stop()
		m.unbind()
	case evRestart:
		err = m.s.Restart()
		m.logLevelStart(err)
	case evResume:
		var started bool
		started, err = m.s.Resume(ev.cont)
		if started || err != nil {
			m.logLevelStart(err)
		}
	case evQuery:
	}
	if ev.reply != nil {
		ev.reply <- result{snap: m.s.Snapshot(ev.view), err: err}
	}
}

func (m *Machine) logLevelStart(err error) {
	if err != nil {
		m.log.Error().Err(err).Msg("level start failed")
		return
	}
	if r := m.s.Round(); r != nil && m.s.Phase() == PhasePlaying {
		found, total := r.Progress()
		m.log.Info().Int("level", r.Level).Int("targets", total-found).Int("words", len(r.Words)).Msg("level started")
	}
}

// post enqueues ev unless the loop has exited.
func (m *Machine) post(ev event) bool {
	select {
	case m.events <- ev:
		return true
	case <-m.done:
		return false
	}
}

// call posts ev and waits for its result.
func (m *Machine) call(ctx context.Context, ev event) (Snapshot, error) {
	ev.reply = make(chan result, 1)
	select {
	case m.events <- ev:
	case <-m.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case res := <-ev.reply:
		return res.snap, res.err
	case <-m.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Guess submits a chat guess. It never waits for processing.
func (m *Machine) Guess(text, user string) {
	m.post(event{kind: evGuess, text: text, user: user})
}

// Connected reports the transport is up.
func (m *Machine) Connected() {
	m.post(event{kind: evConnected})
}

// ConnectedVia reports that the transport registered under binding is up.
// It is ignored once that transport has been replaced or detached.
func (m *Machine) ConnectedVia(binding uint64) {
	m.post(event{kind: evConnected, bind: binding})
}

// Admin applies an admin command and returns the resulting admin snapshot.
func (m *Machine) Admin(ctx context.Context, cmd Command) (Snapshot, error) {
	return m.call(ctx, event{kind: evAdmin, cmd: cmd, view: ViewAdmin})
}

// Stop exits to the menu and detaches the transport.
func (m *Machine) Stop(ctx context.Context) (Snapshot, error) {
	return m.call(ctx, event{kind: evStop})
}

// Restart starts over from level 1 after a game over.
func (m *Machine) Restart(ctx context.Context) (Snapshot, error) {
	return m.call(ctx, event{kind: evRestart})
}

// Snapshot returns the current state.
func (m *Machine) Snapshot(ctx context.Context, v View) (Snapshot, error) {
	return m.call(ctx, event{kind: evQuery, view: v})
}

// Bind registers the cancel function of the transport feeding this machine
// and returns its binding token for ConnectedVia. detach is called on Stop,
// on the next Bind and when the loop exits.
func (m *Machine) Bind(detach func()) uint64 {
	m.mu.Lock()
	prev := m.detach
	m.detach = detach
	m.binding++
	b := m.binding
	m.mu.Unlock()
	if prev != nil {
		prev()
	}
	return b
}

func (m *Machine) currentBinding() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.binding
}

func (m *Machine) unbind() {
	m.mu.Lock()
	d := m.detach
	m.detach = nil
	m.binding++
	m.mu.Unlock()
	if d != nil {
		d()
	}
}

// Subscribe returns a channel of public snapshots. Slow readers only see the
// latest state. Call cancel to unsubscribe.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.mu.Unlock()

	m.post(event{kind: evQuery})
	return ch, func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Done is closed when Run returns.
func (m *Machine) Done() <-chan struct{} { return m.done }

// publish fans the public snapshot out to subscribers.
func (m *Machine) publish() {
	cues := m.s.TakeCues()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.subs) == 0 {
		return
	}
	snap := m.s.Snapshot(ViewPublic)
	snap.Cues = cues
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
