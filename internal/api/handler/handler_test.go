package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/league-data/internal/api/respond"
	"github.com/albapepper/league-data/internal/cache"
	"github.com/albapepper/league-data/internal/config"
	"github.com/albapepper/league-data/internal/league"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/stats"
	"github.com/albapepper/league-data/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dataset() store.Dataset {
	line := func(pts, reb, ast int) league.StatLine {
		return league.StatLine{Points: pts, Rebounds: reb, Assists: ast, FieldGoalsMade: pts / 2, FieldGoalsAttempted: pts}
	}
	return store.Dataset{
		Seasons: []league.Season{
			{ID: "2026", Name: "Season 2026", Year: 2026, Active: true},
			{ID: "2025", Name: "Season 2025", Year: 2025},
		},
		Teams: []league.Team{
			{ID: "hawks", Name: "Harbor Hawks", ShortName: "HAW"},
			{ID: "owls", Name: "Old Town Owls", ShortName: "OWL"},
		},
		Players: []league.Player{
			{ID: "p1", Name: "Marcus Hill", TeamID: "hawks", Number: 23},
			{ID: "p2", Name: "Maria Lopez", TeamID: "hawks", Number: 7},
			{ID: "p3", Name: "Devon Hall", TeamID: "owls", Number: 11},
		},
		Games: []league.Game{
			{
				ID: "g1", SeasonID: "2026", HomeTeamID: "hawks", AwayTeamID: "owls", Date: "2026-02-01",
				HomeScore: 62, AwayScore: 55, Status: league.StatusFinished,
				BoxScore: []league.BoxLine{
					{PlayerID: "p1", TeamID: "hawks", StatLine: line(30, 8, 2)},
					{PlayerID: "p2", TeamID: "hawks", StatLine: line(14, 3, 9)},
					{PlayerID: "p3", TeamID: "owls", StatLine: line(25, 10, 4)},
				},
			},
		},
	}
}

type testEnv struct {
	router     http.Handler
	docs       *snapshot.Memory
	cache      *cache.Cache
	dispatcher *recompute.Dispatcher
	jobs       *recompute.MemoryJobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := discardLogger()
	src := store.NewMemory(dataset())
	docs := snapshot.NewMemory()
	orch := recompute.NewOrchestrator(src, docs, logger)
	jobs := recompute.NewMemoryJobStore()
	dispatcher := recompute.NewDispatcher(orch, jobs, 2, 8, logger)
	appCache := cache.New(true)
	t.Cleanup(func() {
		dispatcher.Close()
		appCache.Close()
	})

	h := New(Deps{
		Source:       src,
		Documents:    docs,
		Orchestrator: orch,
		Dispatcher:   dispatcher,
		Jobs:         jobs,
		Cache:        appCache,
		Config:       &config.Config{StoreBackend: "json", CacheBackend: "memory", JobBackend: "memory"},
		Logger:       logger,
	})

	r := chi.NewRouter()
	r.Get("/health/db", h.HealthCheckDB)
	r.Get("/api/v1/season", h.GetActiveSeason)
	r.Get("/api/v1/seasons", h.ListSeasons)
	r.Get("/api/v1/seasons/{seasonID}/standings", h.GetStandings)
	r.Get("/api/v1/seasons/{seasonID}/leaders/players", h.GetPlayerLeaders)
	r.Get("/api/v1/seasons/{seasonID}/leaders/players/{category}", h.GetPlayerCategoryLeaders)
	r.Get("/api/v1/seasons/{seasonID}/leaders/teams/{category}", h.GetTeamCategoryLeaders)
	r.Get("/api/v1/seasons/{seasonID}/teams/{teamID}", h.GetTeam)
	r.Get("/api/v1/seasons/{seasonID}/players", h.SearchPlayers)
	r.Get("/api/v1/seasons/{seasonID}/players/{playerID}", h.GetPlayer)
	r.Post("/api/v1/admin/seasons/{seasonID}/recompute", h.TriggerRecompute)
	r.Get("/api/v1/admin/jobs", h.ListJobs)
	r.Get("/api/v1/admin/jobs/{jobID}", h.GetJob)

	return &testEnv{router: r, docs: docs, cache: appCache, dispatcher: dispatcher, jobs: jobs}
}

func (e *testEnv) do(t *testing.T, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func waitJob(t *testing.T, jobs <-chan recompute.Job) recompute.Job {
	t.Helper()
	select {
	case job := <-jobs:
		return job
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for recompute job")
		return recompute.Job{}
	}
}

func TestStandingsCacheStates(t *testing.T) {
	env := newTestEnv(t)
	finished, cancel := env.dispatcher.Subscribe(4)
	defer cancel()

	rec := env.do(t, http.MethodGet, "/api/v1/seasons/2026/standings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("X-Cache"); got != respond.CacheComputed {
		t.Fatalf("X-Cache = %q, want %q", got, respond.CacheComputed)
	}
	computed := rec.Body.String()
	doc := decode[recompute.StandingsDocument](t, rec)
	if len(doc.Standings) != 2 || doc.Standings[0].TeamID != "hawks" || doc.Standings[0].Rank != 1 {
		t.Fatalf("standings = %+v", doc.Standings)
	}

	// The miss queued a recompute.
	if job := waitJob(t, finished); job.SeasonID != "2026" || job.Trigger != "cache-miss" || job.Status != recompute.JobSucceeded {
		t.Fatalf("job = %+v", job)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/seasons/2026/standings", nil)
	if got := rec.Header().Get("X-Cache"); got != respond.CacheHit {
		t.Fatalf("X-Cache = %q, want %q", got, respond.CacheHit)
	}

	env.cache.InvalidatePrefix(SeasonCachePrefix("2026"))
	rec = env.do(t, http.MethodGet, "/api/v1/seasons/2026/standings", nil)
	if got := rec.Header().Get("X-Cache"); got != respond.CacheStored {
		t.Fatalf("X-Cache = %q, want %q", got, respond.CacheStored)
	}
	if rec.Body.String() != computed {
		t.Fatalf("stored body differs from computed body:\n%s\n%s", rec.Body, computed)
	}
}

func TestStandingsETag(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/seasons/2026/standings", nil)
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	rec = env.do(t, http.MethodGet, "/api/v1/seasons/2026/standings", http.Header{"If-None-Match": {etag}})
	if rec.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", rec.Code)
	}
}

func TestLookupErrors(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown season standings", "/api/v1/seasons/1999/standings", http.StatusNotFound},
		{"unknown team", "/api/v1/seasons/2026/teams/nobody", http.StatusNotFound},
		{"unknown player", "/api/v1/seasons/2026/players/p99", http.StatusNotFound},
		{"unknown player category", "/api/v1/seasons/2026/leaders/players/dunks", http.StatusBadRequest},
		{"unknown team category", "/api/v1/seasons/2026/leaders/teams/tov", http.StatusBadRequest},
		{"bad search limit", "/api/v1/seasons/2026/players?limit=zero", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.path, nil)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			if body := decode[respond.ErrorResponse](t, rec); body.Error.Code == "" {
				t.Fatalf("missing error code in %s", rec.Body)
			}
		})
	}
}

func TestPlayerCategoryLeaders(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/seasons/2026/leaders/players/ppg", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	board := decode[LeaderBoard](t, rec)
	if board.Category != "ppg" || len(board.Leaders) != 3 {
		t.Fatalf("board = %+v", board)
	}
	if board.Leaders[0].PlayerID != "p1" || board.Leaders[0].Value != 30 {
		t.Fatalf("leader = %+v", board.Leaders[0])
	}

	rec = env.do(t, http.MethodGet, "/api/v1/seasons/2026/leaders/players/tov", nil)
	if board := decode[LeaderBoard](t, rec); !board.LowerIsBetter {
		t.Fatalf("tov board = %+v", board)
	}
}

func TestTeamCategoryLeaders(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/seasons/2026/leaders/teams/apg", nil)
	board := decode[LeaderBoard](t, rec)
	if len(board.Leaders) != 2 || board.Leaders[0].TeamID != "hawks" || board.Leaders[0].Value != 11 {
		t.Fatalf("board = %+v", board)
	}
}

func TestGetTeam(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/seasons/2026/teams/owls", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	detail := decode[TeamDetail](t, rec)
	if detail.Rank != 2 || detail.GamesBehind != 1 || detail.Team.Losses != 1 {
		t.Fatalf("detail = %+v", detail)
	}
	if len(detail.Roster) != 1 || detail.Roster[0].PlayerID != "p3" {
		t.Fatalf("roster = %+v", detail.Roster)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/seasons/2026/teams/hawks", nil)
	detail = decode[TeamDetail](t, rec)
	if len(detail.Roster) != 2 || detail.Roster[0].Number != 7 {
		t.Fatalf("roster not ordered by number: %+v", detail.Roster)
	}
}

func TestGetPlayer(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/seasons/2026/players/p2", nil)
	detail := decode[PlayerDetail](t, rec)
	if detail.Player.Averages.AssistsPerGame != 9 || detail.Team == nil || detail.Team.ShortName != "HAW" {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestSearchPlayers(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/seasons/2026/players?q=mar", nil)
	result := decode[PlayerSearch](t, rec)
	if len(result.Players) != 2 {
		t.Fatalf("players = %+v", result.Players)
	}
	for _, p := range result.Players {
		if p.PlayerID == "p3" {
			t.Fatalf("Devon Hall matched %q", result.Query)
		}
	}
}

func TestMatchPlayers(t *testing.T) {
	players := []stats.PlayerStats{
		{PlayerID: "1", Name: "Marcus Hill"},
		{PlayerID: "2", Name: "Maria Lopez"},
		{PlayerID: "3", Name: "Devon Hall"},
		{PlayerID: "4", Name: "Mark"},
	}
	tests := []struct {
		query string
		limit int
		want  []string
	}{
		{"", 10, []string{"3", "1", "2", "4"}},
		{"mark", 10, []string{"4"}},
		{"HALL", 10, []string{"3"}},
		{"", 2, []string{"3", "1"}},
		{"zzz", 10, []string{}},
	}
	for _, tt := range tests {
		got := MatchPlayers(players, tt.query, tt.limit)
		ids := make([]string, len(got))
		for i, p := range got {
			ids[i] = p.PlayerID
		}
		if len(ids) != len(tt.want) {
			t.Fatalf("MatchPlayers(%q) = %v, want %v", tt.query, ids, tt.want)
		}
		for i := range ids {
			if ids[i] != tt.want[i] {
				t.Fatalf("MatchPlayers(%q) = %v, want %v", tt.query, ids, tt.want)
			}
		}
	}
}

func TestSeasons(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/season", nil)
	if s := decode[league.Season](t, rec); s.ID != "2026" {
		t.Fatalf("active = %+v", s)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/seasons", nil)
	if seasons := decode[[]league.Season](t, rec); len(seasons) != 2 || seasons[0].ID != "2026" {
		t.Fatalf("seasons = %+v", seasons)
	}
}

func TestTriggerRecompute(t *testing.T) {
	env := newTestEnv(t)
	finished, cancel := env.dispatcher.Subscribe(4)
	defer cancel()

	rec := env.do(t, http.MethodPost, "/api/v1/admin/seasons/2025/recompute", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	job := decode[recompute.Job](t, rec)
	if rec.Header().Get("Location") != "/api/v1/admin/jobs/"+job.ID || job.Trigger != "http" {
		t.Fatalf("job = %+v, location = %q", job, rec.Header().Get("Location"))
	}

	waitJob(t, finished)
	rec = env.do(t, http.MethodGet, "/api/v1/admin/jobs/"+job.ID, nil)
	if got := decode[recompute.Job](t, rec); got.Status != recompute.JobSucceeded || got.Report == nil {
		t.Fatalf("job = %+v", got)
	}
	if _, err := env.docs.Get(context.Background(), "2025", snapshot.KindStandings); err != nil {
		t.Fatalf("standings not written: %v", err)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/admin/jobs?limit=5", nil)
	if jobs := decode[[]recompute.Job](t, rec); len(jobs) != 1 {
		t.Fatalf("jobs = %+v", jobs)
	}
}

func TestTriggerRecomputeKind(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/admin/seasons/2026/recompute?kind=teamLeaders", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if result := decode[recompute.KindResult](t, rec); !result.OK || result.Kind != snapshot.KindTeamLeaders {
		t.Fatalf("result = %+v", result)
	}
	if env.docs.Len() != 1 {
		t.Fatalf("documents = %d, want 1", env.docs.Len())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/admin/seasons/2026/recompute?kind=box-scores", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTriggerRecomputeErrors(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodPost, "/api/v1/admin/seasons/1999/recompute", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown season status = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/v1/admin/jobs/missing", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown job status = %d", rec.Code)
	}

	env.dispatcher.Close()
	if rec := env.do(t, http.MethodPost, "/api/v1/admin/seasons/2026/recompute", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("closed dispatcher status = %d", rec.Code)
	}
}

// heldRunner keeps the dispatcher's only worker busy until released.
type heldRunner struct {
	started chan string
	release chan struct{}
}

func (h *heldRunner) RecomputeAll(_ context.Context, seasonID string) recompute.Report {
	h.started <- seasonID
	<-h.release
	return recompute.Report{SeasonID: seasonID}
}

func TestTriggerRecomputeQueueFull(t *testing.T) {
	logger := discardLogger()
	src := store.NewMemory(dataset())
	runner := &heldRunner{started: make(chan string, 4), release: make(chan struct{})}
	jobs := recompute.NewMemoryJobStore()
	dispatcher := recompute.NewDispatcher(runner, jobs, 1, 1, logger)
	appCache := cache.New(true)
	t.Cleanup(func() {
		close(runner.release)
		dispatcher.Close()
		appCache.Close()
	})

	h := New(Deps{
		Source:     src,
		Documents:  snapshot.NewMemory(),
		Dispatcher: dispatcher,
		Jobs:       jobs,
		Cache:      appCache,
		Config:     &config.Config{StoreBackend: "json", CacheBackend: "memory", JobBackend: "memory"},
		Logger:     logger,
	})
	r := chi.NewRouter()
	r.Post("/api/v1/admin/seasons/{seasonID}/recompute", h.TriggerRecompute)

	ctx := context.Background()
	if _, err := dispatcher.Submit(ctx, "2025", "test"); err != nil {
		t.Fatal(err)
	}
	<-runner.started
	if _, err := dispatcher.Submit(ctx, "backfill", "test"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/seasons/2026/recompute", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body := decode[respond.ErrorResponse](t, rec); body.Error.Detail != recompute.ErrQueueFull.Error() {
		t.Fatalf("error = %+v, want queue full detail", body.Error)
	}

	recent, _ := jobs.Recent(ctx, 10)
	found := false
	for _, j := range recent {
		if j.SeasonID == "2026" {
			found = true
			if j.Status != recompute.JobFailed || j.Trigger != "http" {
				t.Fatalf("rejected job = %+v", j)
			}
		}
	}
	if !found {
		t.Fatal("rejected submit left no job record")
	}
}

type downDB struct{}

func (downDB) HealthCheck(context.Context) error { return errors.New("connection refused") }

func TestHealthCheckDB(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health/db", nil)
	if body := decode[map[string]any](t, rec); rec.Code != http.StatusOK || body["database"] != "not configured" {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}

	h := New(Deps{Database: downDB{}, Logger: discardLogger()})
	rec = httptest.NewRecorder()
	h.HealthCheckDB(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
