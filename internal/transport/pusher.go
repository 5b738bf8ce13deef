// internal/transport/pusher.go
//
// Chat transport over the Pusher websocket protocol (v7).
// Responsibilities:
//   - Dial the cluster endpoint and subscribe to the chatroom channel once the
//     connection is established.
//   - Answer server pings and ping the server after activity_timeout of silence.
//   - Decode chat events into (text, username) callbacks.
//   - Report connection state and reconnect with exponential backoff until the
//     context is cancelled.

package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Status is a connection state reported to the StatusFunc.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
	StatusDisconnected Status = "disconnected"
)

// Handler receives each chat message.
type Handler func(text, user string)

// StatusFunc receives connection state changes.
type StatusFunc func(Status)

// Source feeds chat messages for one chatroom until ctx is cancelled.
type Source interface {
	Listen(ctx context.Context, chatroomID string, onMsg Handler, onStatus StatusFunc) error
}

const (
	defaultActivity = 120 * time.Second
	pongWait        = 30 * time.Second
	writeWait       = 10 * time.Second
	minBackoff      = time.Second
	maxBackoff      = 30 * time.Second
)

// Config selects the Pusher application.
type Config struct {
	Key     string
	Cluster string
	Host    string // optional base URL override, e.g. ws://127.0.0.1:8080
}

// Pusher is a Source backed by a Pusher websocket connection.
type Pusher struct {
	cfg    Config
	dialer *websocket.Dialer
	log    zerolog.Logger
}

// NewPusher returns a Pusher client for cfg.
func NewPusher(cfg Config) *Pusher {
	return &Pusher{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    log.With().Str("component", "pusher").Logger(),
	}
}

// URL returns the websocket endpoint for the configured app.
func (p *Pusher) URL() string {
	host := p.cfg.Host
	if host == "" {
		host = "wss://ws-" + p.cfg.Cluster + ".pusher.com"
	}
	return fmt.Sprintf("%s/app/%s?protocol=7&client=go&version=1.0", host, p.cfg.Key)
}

// Listen connects and delivers chat messages until ctx is cancelled.
func (p *Pusher) Listen(ctx context.Context, chatroomID string, onMsg Handler, onStatus StatusFunc) error {
	if onStatus == nil {
		onStatus = func(Status) {}
	}
	lg := p.log.With().Str("channel", ChannelName(chatroomID)).Logger()
	backoff := minBackoff
	for {
		onStatus(StatusConnecting)
		established, err := p.listenOnce(ctx, lg, chatroomID, onMsg, onStatus)
		if ctx.Err() != nil {
			onStatus(StatusDisconnected)
			return ctx.Err()
		}
		if established {
			backoff = minBackoff
		}
		lg.Warn().Err(err).Dur("retry", backoff).Msg("connection lost")
		onStatus(StatusError)

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			onStatus(StatusDisconnected)
			return ctx.Err()
		case <-t.C:
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// listenOnce runs a single connection. It reports whether the server
// acknowledged the connection before it failed.
func (p *Pusher) listenOnce(ctx context.Context, lg zerolog.Logger, chatroomID string, onMsg Handler, onStatus StatusFunc) (bool, error) {
	conn, _, err := p.dialer.DialContext(ctx, p.URL(), nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var wmu sync.Mutex
	send := func(v outFrame) error {
		wmu.Lock()
		defer wmu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	quit := make(chan struct{})
	defer close(quit)

	established := false
	activity := defaultActivity
	for {
		_ = conn.SetReadDeadline(time.Now().Add(activity + pongWait))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return established, err
		}
		f := parseFrame(raw)
		switch f.Event {
		case "pusher:connection_established":
			if established {
				lg.Debug().Msg("duplicate connection_established ignored")
				continue
			}
			if secs := f.Data.Get("activity_timeout").Int(); secs > 0 {
				activity = time.Duration(secs) * time.Second
			}
			established = true
			lg.Info().Str("socket", f.Data.Get("socket_id").String()).Msg("connected")
			onStatus(StatusConnected)
			sub := outFrame{Event: "pusher:subscribe", Data: map[string]string{"channel": ChannelName(chatroomID)}}
			if err := send(sub); err != nil {
				return established, fmt.Errorf("subscribe: %w", err)
			}
			go keepalive(quit, activity, send)
		case "pusher_internal:subscription_succeeded":
			lg.Info().Msg("subscribed")
		case "pusher:ping":
			if err := send(outFrame{Event: "pusher:pong", Data: map[string]any{}}); err != nil {
				return established, fmt.Errorf("pong: %w", err)
			}
		case "pusher:pong":
		case "pusher:error":
			lg.Warn().Int64("code", f.Data.Get("code").Int()).Str("message", f.Data.Get("message").String()).Msg("server error")
		default:
			if !chatEvents[f.Event] {
				lg.Debug().Str("event", f.Event).Msg("ignored event")
				continue
			}
			if text, user, ok := decodeChat(f.Data); ok && onMsg != nil {
				onMsg(text, user)
			}
		}
	}
}

// keepalive pings the server every interval until quit is closed.
func keepalive(quit <-chan struct{}, every time.Duration, send func(outFrame) error) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-quit:
			return
		case <-t.C:
			if err := send(outFrame{Event: "pusher:ping", Data: map[string]any{}}); err != nil {
				return
			}
		}
	}
}
