// internal/session/commands.go
//
// Operator commands. They bypass guess validation and are trusted: the caller
// decides whether the sender is allowed to issue them.

package session

import (
	"errors"
	"fmt"

	"github.com/robalobadob/anagram-server/internal/words"
)

// CommandKind names an admin action.
type CommandKind string

const (
	CmdSimulate CommandKind = "simulate" // inject a guess as if from chat
	CmdClick    CommandKind = "click"    // credit a word to Admin for zero points
	CmdSkip     CommandKind = "skip"     // next level after a short pause
	CmdJump     CommandKind = "jump"     // start an arbitrary level now
	CmdTime     CommandKind = "time"     // adjust remaining seconds by Delta
	CmdEnd      CommandKind = "end"      // force game over
	CmdHint     CommandKind = "hint"     // out-of-cycle reveal pass
	CmdPriority CommandKind = "priority" // replace the priority word list
)

// Command is one admin action with its arguments.
type Command struct {
	Kind  CommandKind `json:"kind"`
	User  string      `json:"user,omitempty"`
	Text  string      `json:"text,omitempty"`
	Level int         `json:"level,omitempty"`
	Delta int         `json:"delta,omitempty"`
	Words []string    `json:"words,omitempty"`
}

// ErrUnknownCommand is returned for an unrecognized Kind.
var ErrUnknownCommand = errors.New("session: unknown command")

// Apply executes an admin command.
func (s *Session) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdSimulate:
		user := cmd.User
		if user == "" {
			user = AdminUser
		}
		s.Guess(cmd.Text, user)
		return nil
	case CmdClick:
		zero := 0
		s.guess(cmd.Text, AdminUser, &zero)
		return nil
	case CmdSkip:
		return s.skip()
	case CmdJump:
		return s.jump(cmd.Level)
	case CmdTime:
		return s.adjustTime(cmd.Delta)
	case CmdEnd:
		return s.end()
	case CmdHint:
		return s.hint()
	case CmdPriority:
		s.setPriority(cmd.Words)
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}

func (s *Session) skip() error {
	if s.phase != PhasePlaying || s.round == nil {
		return ErrNotPlaying
	}
	s.cue(CueLevelUp)
	s.schedule(s.round.Level+1, s.opts.SkipDelay)
	return nil
}

func (s *Session) jump(level int) error {
	if level < 1 {
		return ErrBadLevel
	}
	if s.phase == PhaseSetup {
		return ErrWrongPhase
	}
	return s.startLevel(level)
}

func (s *Session) adjustTime(delta int) error {
	if s.phase != PhasePlaying || s.round == nil {
		return ErrNotPlaying
	}
	s.round.AdjustTime(delta)
	return nil
}

func (s *Session) end() error {
	if s.phase != PhasePlaying {
		return ErrNotPlaying
	}
	s.gameOver()
	return nil
}

func (s *Session) hint() error {
	if s.phase != PhasePlaying || s.round == nil {
		return ErrNotPlaying
	}
	s.round.RevealPass(s.rng)
	return nil
}

func (s *Session) setPriority(list []string) {
	out := make([]string, 0, len(list))
	for _, w := range list {
		if w = words.Normalize(w); words.IsWord(w) {
			out = append(out, w)
		}
	}
	s.opts.Priority = out
}
