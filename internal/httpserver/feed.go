package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/anagram-server/internal/session"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPingPeriod = 30 * time.Second
)

// handleFeed streams public snapshots over a websocket until the client goes
// away or the session loop stops. Messages from the client are ignored.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	m, ok := s.machine(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("feed: upgrade failed")
		return
	}
	defer conn.Close()

	snaps, cancel := m.Subscribe()
	defer cancel()
	lg := log.With().Str("session", m.ID).Str("remote", r.RemoteAddr).Logger()
	lg.Debug().Msg("feed: connected")

	// Reader only detects close frames and disconnects.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()
	for {
		select {
		case snap := <-snaps:
			if err := writeFeed(conn, snap); err != nil {
				lg.Debug().Err(err).Msg("feed: write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait)); err != nil {
				return
			}
		case <-gone:
			lg.Debug().Msg("feed: client closed")
			return
		case <-m.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
				time.Now().Add(feedWriteWait))
			return
		}
	}
}

func writeFeed(conn *websocket.Conn, snap session.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return conn.WriteJSON(snap)
}
