package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	apppublic "hilo-casino/internal/app/public"
	"hilo-casino/internal/fairness"
	"hilo-casino/internal/game"
	"hilo-casino/internal/lobby"
	"hilo-casino/internal/spectatorgateway"
	"hilo-casino/internal/ws"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, checks map[string]Pinger, staticDir string) (*lobby.Registry, *httptest.Server) {
	t.Helper()
	hub := ws.NewHub()
	feed := spectatorgateway.NewFeed()
	reg := lobby.New(lobby.Config{
		Room:         game.Options{Publisher: game.Publishers{hub, feed}},
		TickInterval: time.Hour,
	})
	router := NewRouter(Deps{
		Public:    apppublic.NewService(reg, nil, nil),
		Feed:      feed,
		Rooms:     reg,
		WS:        ws.NewServer(reg, hub).HandleWS,
		Checks:    checks,
		StaticDir: staticDir,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		reg.Close()
	})
	return reg, srv
}

func getJSON(t *testing.T, url string, wantStatus int) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return out
}

func TestPublicRoutes(t *testing.T) {
	reg, srv := newTestRouter(t, nil, "")
	if _, _, err := reg.Join("vip", "conn_1", "Ann", nil); err != nil {
		t.Fatalf("join: %v", err)
	}

	rooms := getJSON(t, srv.URL+"/api/public/rooms", http.StatusOK)
	if items, _ := rooms["items"].([]any); len(items) != 1 {
		t.Fatalf("rooms = %v", rooms)
	}
	room := getJSON(t, srv.URL+"/api/public/rooms/vip", http.StatusOK)
	if room["roomId"] != "vip" || room["state"] != "BETTING" {
		t.Fatalf("room = %v", room)
	}
	lb := getJSON(t, srv.URL+"/api/public/rooms/vip/leaderboard", http.StatusOK)
	if lb["roomId"] != "vip" {
		t.Fatalf("leaderboard = %v", lb)
	}

	missing := getJSON(t, srv.URL+"/api/public/rooms/ghost", http.StatusNotFound)
	if missing["error"] != "room_not_found" {
		t.Fatalf("missing room error = %v", missing)
	}
	rounds := getJSON(t, srv.URL+"/api/public/rooms/vip/rounds?limit=5", http.StatusServiceUnavailable)
	if rounds["error"] != "archive_disabled" {
		t.Fatalf("rounds error = %v", rounds)
	}
}

func TestVerifyRoute(t *testing.T) {
	_, srv := newTestRouter(t, nil, "")
	c, err := fairness.Open(nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ok := getJSON(t, srv.URL+"/api/public/verify?seed="+c.Reveal()+"&commit="+c.Commit, http.StatusOK)
	if ok["valid"] != true || ok["computed"] != c.Commit {
		t.Fatalf("verify = %v", ok)
	}
	bad := getJSON(t, srv.URL+"/api/public/verify?seed=xyz&commit="+c.Commit, http.StatusBadRequest)
	if bad["error"] != "invalid_request" {
		t.Fatalf("verify error = %v", bad)
	}
}

func TestHealthAndDebugVars(t *testing.T) {
	_, srv := newTestRouter(t, map[string]Pinger{"postgres": fakePinger{}}, "")
	health := getJSON(t, srv.URL+"/healthz", http.StatusOK)
	if health["ok"] != true || health["postgres"] != "up" {
		t.Fatalf("health = %v", health)
	}
	vars := getJSON(t, srv.URL+"/api/debug/vars", http.StatusOK)
	if _, ok := vars["rooms_active"]; !ok {
		t.Fatalf("debug vars missing rooms_active: %v", vars)
	}

	_, down := newTestRouter(t, map[string]Pinger{"redis": fakePinger{err: errors.New("refused")}}, "")
	health = getJSON(t, down.URL+"/healthz", http.StatusServiceUnavailable)
	if health["ok"] != false || health["redis"] != "down" {
		t.Fatalf("health = %v", health)
	}
}

func TestStaticCatchAll(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>hilo</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	_, srv := newTestRouter(t, nil, dir)
	resp, err := http.Get(srv.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET index: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("static status = %d", resp.StatusCode)
	}
}

func TestMCPOptions(t *testing.T) {
	_, srv := newTestRouter(t, nil, "")
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/mcp", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS /mcp: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent || resp.Header.Get("Allow") == "" {
		t.Fatalf("OPTIONS /mcp status = %d allow = %q", resp.StatusCode, resp.Header.Get("Allow"))
	}
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 20, 0},
		{"?limit=7&offset=3", 7, 3},
		{"?limit=999&offset=-2", 100, 0},
		{"?limit=abc", 20, 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/public/rooms/lobby/rounds"+tc.query, nil)
		l, o := ParsePagination(r)
		if l != tc.wantLimit || o != tc.wantOffset {
			t.Fatalf("ParsePagination(%q) = %d,%d", tc.query, l, o)
		}
	}
}
