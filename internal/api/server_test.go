package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"

	"github.com/albapepper/league-data/internal/api/handler"
	"github.com/albapepper/league-data/internal/cache"
	"github.com/albapepper/league-data/internal/config"
	"github.com/albapepper/league-data/internal/league"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/store"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops@example.com",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestServer(t *testing.T, cfg *config.Config) (*httptest.Server, *recompute.Dispatcher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := store.NewMemory(store.Dataset{
		Seasons: []league.Season{{ID: "2026", Year: 2026, Active: true}},
		Teams:   []league.Team{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Bravo"}},
		Games: []league.Game{{
			ID: "g1", SeasonID: "2026", HomeTeamID: "a", AwayTeamID: "b", Date: "2026-01-05",
			HomeScore: 60, AwayScore: 58, Status: league.StatusFinished,
		}},
	})
	docs := snapshot.NewMemory()
	orch := recompute.NewOrchestrator(src, docs, logger)
	jobs := recompute.NewMemoryJobStore()
	dispatcher := recompute.NewDispatcher(orch, jobs, 1, 4, logger)
	appCache := cache.New(true)

	h := handler.New(handler.Deps{
		Source:       src,
		Documents:    docs,
		Orchestrator: orch,
		Dispatcher:   dispatcher,
		Jobs:         jobs,
		Cache:        appCache,
		Config:       cfg,
		Logger:       logger,
	})
	srv := httptest.NewServer(NewRouter(h, cfg))
	t.Cleanup(func() {
		srv.Close()
		dispatcher.Close()
		appCache.Close()
	})
	return srv, dispatcher
}

func baseConfig() *config.Config {
	return &config.Config{
		StoreBackend:     config.BackendJSON,
		CacheBackend:     config.BackendMemory,
		JobBackend:       config.BackendMemory,
		CORSAllowOrigins: []string{"http://localhost:3000"},
		AdminJWTSecret:   testSecret,
	}
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t, baseConfig())
	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/health/cache", http.StatusOK},
		{http.MethodGet, "/api/v1/season", http.StatusOK},
		{http.MethodGet, "/api/v1/seasons/2026/standings", http.StatusOK},
		{http.MethodGet, "/api/v1/seasons/2026/leaders/teams", http.StatusOK},
		{http.MethodGet, "/api/v1/seasons/2026/teams/a", http.StatusOK},
		{http.MethodGet, "/api/v1/seasons/2026/nothing", http.StatusNotFound},
		{http.MethodPost, "/api/v1/seasons/2026/standings", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(tt.method, srv.URL+tt.path, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
		}
		if resp.Header.Get("X-Process-Time") == "" {
			t.Errorf("%s %s: missing X-Process-Time", tt.method, tt.path)
		}
	}
}

func TestAdminAuth(t *testing.T) {
	srv, _ := newTestServer(t, baseConfig())
	url := srv.URL + "/api/v1/admin/jobs"

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong secret", signToken(t, "other", "admin"), http.StatusUnauthorized},
		{"wrong role", signToken(t, testSecret, "viewer"), http.StatusForbidden},
		{"admin", signToken(t, testSecret, "admin"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestAdminAuthDisabledWithoutSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.AdminJWTSecret = ""
	srv, _ := newTestServer(t, cfg)
	resp, err := http.Get(srv.URL + "/api/v1/admin/jobs")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestIPLimiterSweepsIdleClients(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newIPLimiter(10, time.Minute)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	l.getLimiter("10.0.0.1")
	l.getLimiter("10.0.0.2")
	now = now.Add(30 * time.Second)
	l.getLimiter("10.0.0.2")
	if l.size() != 2 {
		t.Fatalf("size = %d, want 2", l.size())
	}

	// 10.0.0.1 has been idle a full window; 10.0.0.2 only 30s.
	now = now.Add(30 * time.Second)
	l.getLimiter("10.0.0.3")
	if l.size() != 2 {
		t.Fatalf("size after sweep = %d, want 2", l.size())
	}
	if _, ok := l.limiters["10.0.0.1"]; ok {
		t.Fatal("idle client not swept")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := baseConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Hour
	srv, _ := newTestServer(t, cfg)

	// Burst is half the window allowance, at least one.
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests && resp.Header.Get("Retry-After") != "3600" {
			t.Fatalf("Retry-After = %q", resp.Header.Get("Retry-After"))
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestCORSPreflightAllowsPost(t *testing.T) {
	srv, _ := newTestServer(t, baseConfig())
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/admin/seasons/2026/recompute", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Fatalf("Access-Control-Allow-Methods = %q", got)
	}
}

func TestJobStream(t *testing.T) {
	srv, dispatcher := newTestServer(t, baseConfig())
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/api/v1/admin/jobs/stream?season=2026&token=" + signToken(t, testSecret, "admin")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The handler subscribes right after the upgrade; give it a moment
	// before submitting so the job is not published first.
	deadline := time.Now().Add(2 * time.Second)
	var event handler.JobEvent
	for {
		if _, err := dispatcher.Submit(context.Background(), "2026", "test"); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		if err := conn.ReadJSON(&event); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no job event received")
		}
		// A timed-out read poisons a gorilla connection; redial.
		conn.Close()
		conn, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("redial: %v", err)
		}
	}
	if event.Type != "JOB_FINISHED" || event.Job.SeasonID != "2026" || event.Job.Status != recompute.JobSucceeded {
		t.Fatalf("event = %+v", event)
	}
}
