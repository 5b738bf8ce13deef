// internal/httpserver/routes_sessions.go
//
// Session lifecycle and admin command routes.
//   - POST   /sessions               → create a session (optionally connect a chatroom)
//   - GET    /sessions               → list session IDs
//   - GET    /sessions/{id}          → public snapshot
//   - GET    /sessions/{id}/admin    → admin snapshot (root and all words visible)
//   - POST   /sessions/{id}/admin    → apply an admin command
//   - POST   /sessions/{id}/connect  → attach (or replace) the chat transport
//   - POST   /sessions/{id}/stop     → exit to menu and detach the transport
//   - POST   /sessions/{id}/restart  → start over after game over
//   - DELETE /sessions/{id}          → stop the machine and forget it
//
// Each session has its own RNG: time-seeded, or seeded from the date when
// SEED_MODE=daily so every session on a given day draws the same roots.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/anagram-server/internal/config"
	"github.com/robalobadob/anagram-server/internal/daily"
	"github.com/robalobadob/anagram-server/internal/game"
	"github.com/robalobadob/anagram-server/internal/session"
	"github.com/robalobadob/anagram-server/internal/store"
	"github.com/robalobadob/anagram-server/internal/transport"
)

type createReq struct {
	ChatroomID string   `json:"chatroomId"` // empty leaves the session in MENU
	Priority   []string `json:"priority"`   // overrides PRIORITY_WORDS when set
}

type createRes struct {
	ID       string           `json:"id"`
	Snapshot session.Snapshot `json:"snapshot"`
}

type connectReq struct {
	ChatroomID string `json:"chatroomId"`
}

// handleCreateSession builds a session machine, registers it and starts its loop.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid_json")
			return
		}
	}
	priority := s.cfg.Priority
	if len(req.Priority) > 0 {
		priority = req.Priority
	}

	sess := session.New(s.cat, s.dict, s.newRand(), session.Options{
		ClearDelay: s.cfg.ClearDelay,
		SkipDelay:  s.cfg.SkipDelay,
		Priority:   priority,
	})
	m := session.NewMachine(uuid.NewString(), sess)
	if err := s.store.Save(r.Context(), m); err != nil {
		log.Error().Err(err).Msg("save session")
		jsonError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	ctx, cancel := context.WithCancel(s.base)
	s.mu.Lock()
	s.stops[m.ID] = cancel
	s.mu.Unlock()
	go m.Run(ctx)
	log.Info().Str("session", m.ID).Str("chatroom", req.ChatroomID).Msg("session created")

	if id := strings.TrimSpace(req.ChatroomID); id != "" {
		s.attach(m, id)
	}
	snap, err := m.Snapshot(r.Context(), session.ViewPublic)
	if err != nil {
		machineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createRes{ID: m.ID, Snapshot: snap})
}

// newRand returns the RNG for a new session according to SEED_MODE.
func (s *Server) newRand() *rand.Rand {
	if s.cfg.SeedMode == config.SeedDaily {
		return rand.New(rand.NewSource(daily.Seed(time.Now(), s.cfg.DailySalt)))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// attach starts the transport for chatroomID and binds it to m. A previous
// transport is cancelled by Bind.
func (s *Server) attach(m *session.Machine, chatroomID string) {
	ctx, cancel := context.WithCancel(s.base)
	binding := m.Bind(cancel)
	go func() {
		err := s.src.Listen(ctx, chatroomID, m.Guess, func(st transport.Status) {
			log.Debug().Str("session", m.ID).Str("status", string(st)).Msg("transport status")
			if st == transport.StatusConnected && ctx.Err() == nil {
				m.ConnectedVia(binding)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("session", m.ID).Msg("transport exited")
		}
	}()
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.IDs(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "list_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, r, session.ViewPublic)
}

func (s *Server) handleAdminSnapshot(w http.ResponseWriter, r *http.Request) {
	s.snapshot(w, r, session.ViewAdmin)
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request, v session.View) {
	m, ok := s.machine(w, r)
	if !ok {
		return
	}
	snap, err := m.Snapshot(r.Context(), v)
	if err != nil {
		machineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleAdminCommand decodes a session.Command and applies it.
func (s *Server) handleAdminCommand(w http.ResponseWriter, r *http.Request) {
	m, ok := s.machine(w, r)
	if !ok {
		return
	}
	var cmd session.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if cmd.Kind == session.CmdSimulate && cmd.User == "" {
		cmd.User, _ = r.Context().Value(ctxAdminKey{}).(string)
	}
	snap, err := m.Admin(r.Context(), cmd)
	if err != nil {
		machineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	m, ok := s.machine(w, r)
	if !ok {
		return
	}
	var req connectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ChatroomID) == "" {
		jsonError(w, http.StatusBadRequest, "chatroomId required")
		return
	}
	s.attach(m, strings.TrimSpace(req.ChatroomID))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": string(transport.StatusConnecting)})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	m, ok := s.machine(w, r)
	if !ok {
		return
	}
	snap, err := m.Stop(r.Context())
	if err != nil {
		machineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	m, ok := s.machine(w, r)
	if !ok {
		return
	}
	snap, err := m.Restart(r.Context())
	if err != nil {
		machineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleDeleteSession cancels the machine loop (which detaches the transport)
// and removes it from the registry.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	cancel, ok := s.stops[id]
	delete(s.stops, id)
	s.mu.Unlock()
	if !ok {
		jsonError(w, http.StatusNotFound, "not_found")
		return
	}
	cancel()
	_ = s.store.Delete(r.Context(), id)
	log.Info().Str("session", id).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

// machine loads the session named in the URL, writing 404 when missing.
func (s *Server) machine(w http.ResponseWriter, r *http.Request) (*session.Machine, bool) {
	m, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "not_found")
		} else {
			jsonError(w, http.StatusInternalServerError, "load_failed")
		}
		return nil, false
	}
	return m, true
}

// machineError maps session errors to HTTP statuses.
func machineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownCommand), errors.Is(err, session.ErrBadLevel):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrNotPlaying), errors.Is(err, session.ErrWrongPhase):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrNoCandidates):
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrClosed):
		jsonError(w, http.StatusGone, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		jsonError(w, http.StatusGatewayTimeout, "timeout")
	default:
		jsonError(w, http.StatusInternalServerError, err.Error())
	}
}
