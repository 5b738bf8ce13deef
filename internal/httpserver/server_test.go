package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/anagram-server/internal/config"
	"github.com/robalobadob/anagram-server/internal/session"
	"github.com/robalobadob/anagram-server/internal/store"
	"github.com/robalobadob/anagram-server/internal/transport"
	"github.com/robalobadob/anagram-server/internal/words"
)

// fakeSource reports connected immediately and then idles until cancelled.
type fakeSource struct {
	chatrooms chan string
}

func (f *fakeSource) Listen(ctx context.Context, chatroomID string, onMsg transport.Handler, onStatus transport.StatusFunc) error {
	f.chatrooms <- chatroomID
	onStatus(transport.StatusConnected)
	<-ctx.Done()
	return ctx.Err()
}

type testEnv struct {
	srv   *httptest.Server
	src   *fakeSource
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cat := words.NewCatalog([]words.TargetEntry{
		{Word: "STREAM", Rank: 1, Eligible: true},
		{Word: "TEAM", Rank: 2, Eligible: true},
		{Word: "STEAM", Rank: 3, Eligible: true},
	})
	dict := words.NewDictionary([]string{"STREAM", "TEAM", "STEAM", "MATES"})
	src := &fakeSource{chatrooms: make(chan string, 4)}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s := New(ctx, Deps{
		Store:   store.NewMemoryStore(),
		Source:  src,
		Catalog: cat,
		Dict:    dict,
		Config: config.Config{
			ClientOrigin:      "http://localhost:5173",
			JWTSecret:         "test-secret",
			JWTExpires:        time.Hour,
			AdminUser:         "admin",
			AdminPasswordHash: string(hash),
			SeedMode:          config.SeedRandom,
		},
	})
	env := &testEnv{srv: httptest.NewServer(s.Router()), src: src}
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, auth bool) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(res.Body)
	return res, buf.Bytes()
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	res, body := e.do(t, http.MethodPost, "/auth/login", `{"username":"admin","password":"hunter22"}`, false)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %s", res.StatusCode, body)
	}
	var lr loginRes
	if err := json.Unmarshal(body, &lr); err != nil || lr.Token == "" {
		t.Fatalf("login body %s: %v", body, err)
	}
	e.token = lr.Token
}

func (e *testEnv) createSession(t *testing.T, body string) string {
	t.Helper()
	res, raw := e.do(t, http.MethodPost, "/sessions", body, true)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", res.StatusCode, raw)
	}
	var cr createRes
	if err := json.Unmarshal(raw, &cr); err != nil || cr.ID == "" {
		t.Fatalf("create body %s: %v", raw, err)
	}
	return cr.ID
}

func (e *testEnv) waitPhase(t *testing.T, id string, want session.Phase) session.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		_, raw := e.do(t, http.MethodGet, "/sessions/"+id, "", false)
		var snap session.Snapshot
		_ = json.Unmarshal(raw, &snap)
		if snap.Phase == want {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("session %s stuck in %s, want %s", id, snap.Phase, want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	res, body := e.do(t, http.MethodGet, "/health", "", false)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), `"ok":true`) {
		t.Errorf("health = %d %s", res.StatusCode, body)
	}
	if res, _ := e.do(t, http.MethodGet, "/nope", "", false); res.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path = %d", res.StatusCode)
	}
	res, body = e.do(t, http.MethodGet, "/debug/words", "", false)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), `"targets":3`) {
		t.Errorf("debug words = %d %s", res.StatusCode, body)
	}
}

func TestAdminGate(t *testing.T) {
	e := newTestEnv(t)

	res, _ := e.do(t, http.MethodPost, "/auth/login", `{"username":"admin","password":"wrong"}`, false)
	if res.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password = %d", res.StatusCode)
	}
	if res, _ := e.do(t, http.MethodPost, "/sessions", "", false); res.StatusCode != http.StatusUnauthorized {
		t.Errorf("create without token = %d", res.StatusCode)
	}

	forged := func(secret, role string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin", "role": role, "exp": time.Now().Add(time.Hour).Unix(),
		})
		s, _ := tok.SignedString([]byte(secret))
		return s
	}
	for name, tok := range map[string]string{
		"wrong secret": forged("other-secret", roleAdmin),
		"wrong role":   forged("test-secret", "viewer"),
		"garbage":      "not.a.token",
	} {
		e.token = tok
		if res, _ := e.do(t, http.MethodPost, "/sessions", "", true); res.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s: create = %d, want 401", name, res.StatusCode)
		}
	}

	e.login(t)
	if res, _ := e.do(t, http.MethodPost, "/sessions", "", true); res.StatusCode != http.StatusCreated {
		t.Errorf("create with token = %d", res.StatusCode)
	}
}

func TestSessionLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	id := e.createSession(t, `{"chatroomId":"42"}`)
	select {
	case room := <-e.src.chatrooms:
		if room != "42" {
			t.Errorf("transport chatroom = %q", room)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("transport not started")
	}
	pub := e.waitPhase(t, id, session.PhasePlaying)
	if pub.Root != "" || pub.Level != 1 {
		t.Errorf("public snapshot root=%q level=%d", pub.Root, pub.Level)
	}

	_, raw := e.do(t, http.MethodGet, "/sessions", "", false)
	if !strings.Contains(string(raw), id) {
		t.Errorf("list = %s", raw)
	}

	res, raw := e.do(t, http.MethodGet, "/sessions/"+id+"/admin", "", true)
	var adm session.Snapshot
	_ = json.Unmarshal(raw, &adm)
	if res.StatusCode != http.StatusOK || adm.Root == "" {
		t.Errorf("admin snapshot = %d root=%q", res.StatusCode, adm.Root)
	}

	res, raw = e.do(t, http.MethodPost, "/sessions/"+id+"/admin", `{"kind":"simulate","text":"team"}`, true)
	_ = json.Unmarshal(raw, &adm)
	if res.StatusCode != http.StatusOK || adm.Score != 60 {
		t.Errorf("simulate = %d score=%d", res.StatusCode, adm.Score)
	}
	if len(adm.Leaderboard) != 1 || adm.Leaderboard[0].Username != "admin" {
		t.Errorf("simulated guess credited to %v", adm.Leaderboard)
	}

	cmdTests := []struct {
		body string
		want int
	}{
		{`{"kind":"time","delta":30}`, http.StatusOK},
		{`{"kind":"hint"}`, http.StatusOK},
		{`{"kind":"explode"}`, http.StatusBadRequest},
		{`{"kind":"jump","level":0}`, http.StatusBadRequest},
		{`{"kind":"jump","level":4}`, http.StatusUnprocessableEntity},
		{`{not json`, http.StatusBadRequest},
	}
	for _, tt := range cmdTests {
		if res, raw := e.do(t, http.MethodPost, "/sessions/"+id+"/admin", tt.body, true); res.StatusCode != tt.want {
			t.Errorf("admin %s = %d %s, want %d", tt.body, res.StatusCode, raw, tt.want)
		}
	}

	if res, _ := e.do(t, http.MethodPost, "/sessions/"+id+"/restart", "", true); res.StatusCode != http.StatusConflict {
		t.Errorf("restart while playing = %d", res.StatusCode)
	}
	res, raw = e.do(t, http.MethodPost, "/sessions/"+id+"/stop", "", true)
	var stopped session.Snapshot
	_ = json.Unmarshal(raw, &stopped)
	if res.StatusCode != http.StatusOK || stopped.Phase != session.PhaseMenu || stopped.Score != 0 {
		t.Errorf("stop = %d phase=%s score=%d", res.StatusCode, stopped.Phase, stopped.Score)
	}

	if res, _ := e.do(t, http.MethodPost, "/sessions/"+id+"/connect", `{}`, true); res.StatusCode != http.StatusBadRequest {
		t.Errorf("connect without chatroom = %d", res.StatusCode)
	}
	if res, _ := e.do(t, http.MethodPost, "/sessions/"+id+"/connect", `{"chatroomId":"43"}`, true); res.StatusCode != http.StatusAccepted {
		t.Errorf("connect = %d", res.StatusCode)
	}
	e.waitPhase(t, id, session.PhasePlaying)

	if res, _ := e.do(t, http.MethodDelete, "/sessions/"+id, "", true); res.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", res.StatusCode)
	}
	if res, _ := e.do(t, http.MethodGet, "/sessions/"+id, "", false); res.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d", res.StatusCode)
	}
	if res, _ := e.do(t, http.MethodDelete, "/sessions/"+id, "", true); res.StatusCode != http.StatusNotFound {
		t.Errorf("second delete = %d", res.StatusCode)
	}
}

func TestFeed(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	id := e.createSession(t, "")

	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/sessions/" + id + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	defer conn.Close()

	var snap session.Snapshot
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if snap.Phase != session.PhaseMenu {
		t.Errorf("initial phase = %s", snap.Phase)
	}

	if res, _ := e.do(t, http.MethodPost, "/sessions/"+id+"/admin", `{"kind":"jump","level":1}`, true); res.StatusCode != http.StatusOK {
		t.Fatalf("jump = %d", res.StatusCode)
	}
	for snap.Phase != session.PhasePlaying {
		if err := conn.ReadJSON(&snap); err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if snap.Root != "" {
		t.Error("feed leaks the root")
	}
	for _, w := range snap.Words {
		if !w.Found && strings.Trim(w.Text, "_") != "" {
			t.Errorf("unfound word %q not masked", w.Text)
		}
	}

	if res, _ := e.do(t, http.MethodGet, "/sessions/missing/feed", "", false); res.StatusCode != http.StatusNotFound {
		t.Errorf("missing feed = %d", res.StatusCode)
	}
}
