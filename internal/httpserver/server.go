// internal/httpserver/server.go
//
// HTTP server wiring for the anagram round server.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", session snapshots and the live feed.
//   - Operator endpoints (require admin JWT): create/connect/stop/restart/delete
//     sessions and issue admin commands.
//
// Notes:
//   - The feed websocket is mounted outside the timeout group; it lives as long
//     as the client stays connected.
//   - Session machines run on the server's base context, not on request contexts.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/robalobadob/anagram-server/internal/config"
	"github.com/robalobadob/anagram-server/internal/store"
	"github.com/robalobadob/anagram-server/internal/transport"
	"github.com/robalobadob/anagram-server/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Store   store.Store
	Source  transport.Source
	Catalog *words.Catalog
	Dict    words.Dictionary
	Config  config.Config
}

// Server bundles router, session registry and shared word catalogs.
type Server struct {
	r     *chi.Mux
	store store.Store
	src   transport.Source
	cat   *words.Catalog
	dict  words.Dictionary
	cfg   config.Config

	base     context.Context
	upgrader websocket.Upgrader

	mu    sync.Mutex
	stops map[string]context.CancelFunc // machine loop cancel, keyed by session ID
}

// New constructs a Server, installs middleware, and registers routes. Session
// machines stop when base is cancelled.
func New(base context.Context, d Deps) *Server {
	s := &Server{
		r:     chi.NewRouter(),
		store: d.Store,
		src:   d.Source,
		cat:   d.Catalog,
		dict:  d.Dict,
		cfg:   d.Config,
		base:  base,
		stops: make(map[string]context.CancelFunc),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// Long-lived websocket, no handler timeout.
	s.r.Get("/sessions/{id}/feed", s.handleFeed)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"anagram-server","endpoints":["/health","GET /sessions","GET /sessions/{id}","GET /sessions/{id}/feed","POST /auth/login"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]int{"targets": s.cat.Len(), "dictionary": len(s.dict)})
		})

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		// Public read-only views.
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)

		// Operator surface.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/sessions", s.handleCreateSession)
			r.Get("/sessions/{id}/admin", s.handleAdminSnapshot)
			r.Post("/sessions/{id}/admin", s.handleAdminCommand)
			r.Post("/sessions/{id}/connect", s.handleConnect)
			r.Post("/sessions/{id}/stop", s.handleStop)
			r.Post("/sessions/{id}/restart", s.handleRestart)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured CLIENT_ORIGIN.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkOrigin accepts same-host clients (no Origin header) and the configured origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	o := r.Header.Get("Origin")
	return o == "" || o == s.cfg.ClientOrigin
}

// ------------------------------ helpers ------------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// jsonError writes {"error": msg}.
func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
