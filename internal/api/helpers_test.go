package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"play4peace-server/internal/auth"
	"play4peace-server/internal/core"
	database "play4peace-server/internal/db"
)

const adminName = "Coach"

type testEnv struct {
	t      *testing.T
	server *Server
	http   *httptest.Server
	media  afero.Fs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	games, err := database.NewMemoryGameStore()
	if err != nil {
		t.Fatal(err)
	}
	users, err := core.NewUsers(database.NewUserStore(db), games, 64)
	if err != nil {
		t.Fatal(err)
	}
	users.GrantAdmin(adminName)

	media := afero.NewMemMapFs()
	hub := core.NewHub()
	s := NewServer(Services{
		Roster:        core.NewRoster(games, hub, core.DefaultMaxAttempts),
		Games:         core.NewGames(games),
		Users:         users,
		Announcements: core.NewAnnouncements(database.NewAnnouncementStore(db)),
		Photos:        core.NewPhotos(database.NewPhotoStore(db), media, "/media"),
		Hub:           hub,
		Tokens:        auth.NewTokens("test-secret", time.Hour),
	}, []string{"*"})

	ts := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		ts.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &testEnv{t: t, server: s, http: ts, media: media}
}

// login registers name and returns its token.
func (e *testEnv) login(name string) LoginResponse {
	e.t.Helper()
	var out LoginResponse
	resp := e.do(http.MethodPost, "/login", "", LoginRequest{Name: name})
	expectStatus(e.t, resp, http.StatusOK)
	decodeJSON(e.t, resp, &out)
	return out
}

func (e *testEnv) do(method, path, token string, body interface{}) *http.Response {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.http.URL+path, r)
	if err != nil {
		e.t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(req)
}

func (e *testEnv) send(req *http.Request) *http.Response {
	e.t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// createGame creates a game as the admin and returns it.
func (e *testEnv) createGame(adminToken string, capacity int) GameView {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/admin/games", adminToken, core.NewGame{
		Date:     "2030-05-04",
		Time:     "10:00",
		Location: "Community Football Pitch",
		Capacity: capacity,
	})
	expectStatus(e.t, resp, http.StatusCreated)
	var game GameView
	decodeJSON(e.t, resp, &game)
	return game
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status = %d, want %d (body %s)",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s response: %v", resp.Request.URL.Path, err)
	}
}
