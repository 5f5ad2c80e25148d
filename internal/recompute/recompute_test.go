package recompute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/albapepper/league-data/internal/league"
	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixture() store.Dataset {
	return store.Dataset{
		Seasons: []league.Season{
			{ID: "2026", Year: 2026, Active: true},
			{ID: "2025", Year: 2025},
		},
		Teams: []league.Team{
			{ID: "a", Name: "Alpha"},
			{ID: "b", Name: "Bravo"},
		},
		Players: []league.Player{
			{ID: "p1", Name: "One", TeamID: "a"},
			{ID: "p2", Name: "Two", TeamID: "b"},
		},
		Games: []league.Game{
			{
				ID: "g1", SeasonID: "2026", HomeTeamID: "a", AwayTeamID: "b", Date: "2026-01-10",
				HomeScore: 50, AwayScore: 40, Status: league.StatusFinished,
				BoxScore: []league.BoxLine{
					{PlayerID: "p1", TeamID: "a", StatLine: league.StatLine{Points: 20, Rebounds: 5}},
					{PlayerID: "p2", TeamID: "b", StatLine: league.StatLine{Points: 15, Assists: 4}},
				},
			},
			{
				ID: "g2", SeasonID: "2026", HomeTeamID: "b", AwayTeamID: "a", Date: "2026-01-17",
				HomeScore: 44, AwayScore: 41, Status: league.StatusFinished,
			},
			{
				ID: "g3", SeasonID: "2026", HomeTeamID: "a", AwayTeamID: "b", Date: "2026-01-24",
				Status: league.StatusScheduled,
			},
		},
	}
}

// kindFailWriter fails writes for one kind and passes the rest through.
type kindFailWriter struct {
	snapshot.Store
	fail snapshot.Kind
}

func (w kindFailWriter) Put(ctx context.Context, doc snapshot.Document) error {
	if doc.Kind == w.fail {
		return errors.New("disk full")
	}
	return w.Store.Put(ctx, doc)
}

func TestRecomputeAllWritesEveryKind(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewMemory()
	o := NewOrchestrator(store.NewMemory(fixture()), cache, discardLogger())

	report := o.RecomputeAll(ctx, "2026")
	if report.Failed() != 0 {
		t.Fatalf("report = %s", report.Summary())
	}
	if cache.Len() != len(snapshot.Kinds) {
		t.Fatalf("cached documents = %d, want %d", cache.Len(), len(snapshot.Kinds))
	}

	doc, err := cache.Get(ctx, "2026", snapshot.KindStandings)
	if err != nil {
		t.Fatal(err)
	}
	var standings StandingsDocument
	if err := json.Unmarshal(doc.Payload, &standings); err != nil {
		t.Fatal(err)
	}
	// 1-1 each; a is +7 overall, b is -7.
	if len(standings.Standings) != 2 || standings.Standings[0].TeamID != "a" {
		t.Fatalf("standings = %+v", standings.Standings)
	}

	doc, err = cache.Get(ctx, "2026", snapshot.KindPlayerLeaders)
	if err != nil {
		t.Fatal(err)
	}
	var leaders LeadersDocument
	if err := json.Unmarshal(doc.Payload, &leaders); err != nil {
		t.Fatal(err)
	}
	ppg := leaders.Categories["ppg"]
	if len(ppg) != 2 || ppg[0].PlayerID != "p1" || ppg[0].Value != 20 {
		t.Fatalf("ppg leaders = %+v", ppg)
	}
}

// cdnStore publishes every document under a fixed base URL.
type cdnStore struct {
	snapshot.Store
}

func (cdnStore) PublicURL(seasonID string, kind snapshot.Kind) string {
	return "https://cdn.example.com/" + snapshot.Path(seasonID, kind) + ".json"
}

func TestRecomputeReportsPublicURL(t *testing.T) {
	ctx := context.Background()
	o := NewOrchestrator(store.NewMemory(fixture()), cdnStore{snapshot.NewMemory()}, discardLogger())

	report := o.RecomputeAll(ctx, "2026")
	for _, k := range report.Kinds {
		want := "https://cdn.example.com/seasons/2026/cached/" + string(k.Kind) + ".json"
		if !k.OK || k.URL != want {
			t.Errorf("%s: ok=%v url=%q, want %q", k.Kind, k.OK, k.URL, want)
		}
	}

	failing := cdnStore{kindFailWriter{Store: snapshot.NewMemory(), fail: snapshot.KindStandings}}
	report = NewOrchestrator(store.NewMemory(fixture()), failing, discardLogger()).RecomputeAll(ctx, "2026")
	for _, k := range report.Kinds {
		if (k.Kind == snapshot.KindStandings) != (k.URL == "") {
			t.Errorf("%s: ok=%v url=%q", k.Kind, k.OK, k.URL)
		}
	}

	plain := NewOrchestrator(store.NewMemory(fixture()), snapshot.NewMemory(), discardLogger())
	if k, _ := plain.RecomputeAll(ctx, "2026").Kind(snapshot.KindStandings); k.URL != "" {
		t.Errorf("url without a publishing store = %q", k.URL)
	}
}

func TestRecomputeAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewMemory()
	o := NewOrchestrator(store.NewMemory(fixture()), cache, discardLogger())

	o.RecomputeAll(ctx, "2026")
	first := map[snapshot.Kind][]byte{}
	for _, k := range snapshot.Kinds {
		doc, _ := cache.Get(ctx, "2026", k)
		first[k] = doc.Payload
	}

	o.RecomputeAll(ctx, "2026")
	for _, k := range snapshot.Kinds {
		doc, _ := cache.Get(ctx, "2026", k)
		if !bytes.Equal(doc.Payload, first[k]) {
			t.Fatalf("%s payload changed between runs:\n%s\n%s", k, first[k], doc.Payload)
		}
	}
}

func TestRecomputeAllIsolatesKindFailures(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewMemory()
	w := kindFailWriter{Store: cache, fail: snapshot.KindPlayerLeaders}
	o := NewOrchestrator(store.NewMemory(fixture()), w, discardLogger())

	report := o.RecomputeAll(ctx, "2026")
	if report.Succeeded() != 2 || report.Failed() != 1 {
		t.Fatalf("report = %s", report.Summary())
	}
	res, _ := report.Kind(snapshot.KindPlayerLeaders)
	if res.OK || res.Error == "" {
		t.Fatalf("playerLeaders result = %+v", res)
	}
	if _, err := cache.Get(ctx, "2026", snapshot.KindStandings); err != nil {
		t.Fatalf("standings not written: %v", err)
	}
	if _, err := cache.Get(ctx, "2026", snapshot.KindTeamLeaders); err != nil {
		t.Fatalf("teamLeaders not written: %v", err)
	}
	if statusOf(report) != JobPartial {
		t.Fatalf("status = %s, want partial", statusOf(report))
	}
}

func TestRecomputeAllUnknownSeason(t *testing.T) {
	cache := snapshot.NewMemory()
	o := NewOrchestrator(store.NewMemory(fixture()), cache, discardLogger())

	report := o.RecomputeAll(context.Background(), "1999")
	if report.Succeeded() != 0 || len(report.Kinds) != len(snapshot.Kinds) {
		t.Fatalf("report = %s", report.Summary())
	}
	for _, k := range report.Kinds {
		if !errors.Is(k.Err, store.ErrNotFound) {
			t.Fatalf("%s err = %v, want store.ErrNotFound", k.Kind, k.Err)
		}
	}
	if cache.Len() != 0 {
		t.Fatalf("cache written for unknown season")
	}
	if statusOf(report) != JobFailed {
		t.Fatalf("status = %s, want failed", statusOf(report))
	}
}

func TestRecomputeKindAndActive(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewMemory()
	o := NewOrchestrator(store.NewMemory(fixture()), cache, discardLogger())

	res := o.RecomputeKind(ctx, "2025", snapshot.KindTeamLeaders)
	if !res.OK {
		t.Fatalf("RecomputeKind = %+v", res)
	}
	if cache.Len() != 1 {
		t.Fatalf("cached documents = %d, want 1", cache.Len())
	}

	report := o.RecomputeActive(ctx)
	if report.SeasonID != "2026" || report.Failed() != 0 {
		t.Fatalf("RecomputeActive = %s", report.Summary())
	}
}

func TestCrossSeasonRecomputeDoesNotInterfere(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewMemory()
	o := NewOrchestrator(store.NewMemory(fixture()), cache, discardLogger())

	var wg sync.WaitGroup
	for _, season := range []string{"2026", "2025", "2026", "2025"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.RecomputeAll(ctx, season)
		}()
	}
	wg.Wait()

	doc, err := cache.Get(ctx, "2026", snapshot.KindStandings)
	if err != nil {
		t.Fatal(err)
	}
	var standings StandingsDocument
	if err := json.Unmarshal(doc.Payload, &standings); err != nil {
		t.Fatal(err)
	}
	if standings.SeasonID != "2026" || standings.Standings[0].Wins != 1 {
		t.Fatalf("2026 standings = %+v", standings)
	}
}

// blockingRunner holds each run until released.
type blockingRunner struct {
	started chan string
	release chan struct{}
}

func (b *blockingRunner) RecomputeAll(_ context.Context, seasonID string) Report {
	b.started <- seasonID
	<-b.release
	return Report{SeasonID: seasonID, Kinds: []KindResult{{Kind: snapshot.KindStandings, OK: true}}}
}

func waitJob(t *testing.T, ch <-chan Job) Job {
	t.Helper()
	select {
	case job := <-ch:
		return job
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job result")
		return Job{}
	}
}

func TestDispatcherLifecycle(t *testing.T) {
	ctx := context.Background()
	jobs := NewMemoryJobStore()
	o := NewOrchestrator(store.NewMemory(fixture()), snapshot.NewMemory(), discardLogger())
	d := NewDispatcher(o, jobs, 2, 8, discardLogger())
	results, cancel := d.Subscribe(4)
	defer cancel()

	job, err := d.Submit(ctx, "2026", "test")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.ID == "" || job.Status != JobQueued {
		t.Fatalf("submitted job = %+v", job)
	}

	done := waitJob(t, results)
	if done.ID != job.ID || done.Status != JobSucceeded || done.Report == nil {
		t.Fatalf("finished job = %+v", done)
	}
	stored, err := jobs.Get(ctx, job.ID)
	if err != nil || stored.Status != JobSucceeded || stored.StartedAt == nil || stored.FinishedAt == nil {
		t.Fatalf("stored job = %+v, %v", stored, err)
	}

	failed, err := d.Submit(ctx, "1999", "test")
	if err != nil {
		t.Fatal(err)
	}
	done = waitJob(t, results)
	if done.ID != failed.ID || done.Status != JobFailed || done.Error == "" {
		t.Fatalf("unknown season job = %+v", done)
	}

	d.Close()
	if _, err := d.Submit(ctx, "2026", "test"); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("Submit after Close: err = %v", err)
	}
	if _, ok := <-results; ok {
		t.Fatal("subscriber channel not closed by Close")
	}
}

func TestDispatcherCoalescesQueuedSeason(t *testing.T) {
	ctx := context.Background()
	runner := &blockingRunner{started: make(chan string, 4), release: make(chan struct{})}
	d := NewDispatcher(runner, NewMemoryJobStore(), 1, 8, discardLogger())

	first, err := d.Submit(ctx, "2025", "test")
	if err != nil {
		t.Fatal(err)
	}
	if got := <-runner.started; got != "2025" {
		t.Fatalf("started %s, want 2025", got)
	}

	second, _ := d.Submit(ctx, "2026", "test")
	again, _ := d.Submit(ctx, "2026", "test")
	if again.ID != second.ID {
		t.Fatalf("queued resubmission got new job %s, want %s", again.ID, second.ID)
	}
	if second.ID == first.ID {
		t.Fatal("different seasons share a job")
	}

	close(runner.release)
	d.Close()
}

func TestDispatcherQueueFull(t *testing.T) {
	ctx := context.Background()
	runner := &blockingRunner{started: make(chan string, 4), release: make(chan struct{})}
	jobs := NewMemoryJobStore()
	d := NewDispatcher(runner, jobs, 1, 1, discardLogger())
	results, cancel := d.Subscribe(4)
	defer cancel()

	if _, err := d.Submit(ctx, "2024", "test"); err != nil {
		t.Fatal(err)
	}
	<-runner.started // the only worker is busy
	queued, err := d.Submit(ctx, "2025", "test")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	job, err := d.Submit(ctx, "2026", "test")
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit err = %v, want ErrQueueFull", err)
	}
	if job.ID != "" {
		t.Fatalf("rejected submit returned job %+v", job)
	}

	recent, _ := jobs.Recent(ctx, 10)
	var rejected *Job
	for i := range recent {
		if recent[i].SeasonID == "2026" {
			rejected = &recent[i]
		}
	}
	if rejected == nil || rejected.Status != JobFailed || rejected.Error != ErrQueueFull.Error() || rejected.FinishedAt == nil {
		t.Fatalf("stored rejected job = %+v", rejected)
	}

	// The rejected season is not left reserved: once there is room it
	// gets a fresh job instead of coalescing into the failed one.
	close(runner.release)
	waitJob(t, results)
	if done := waitJob(t, results); done.ID != queued.ID || done.Status != JobSucceeded {
		t.Fatalf("queued job = %+v", done)
	}
	again, err := d.Submit(ctx, "2026", "test")
	if err != nil || again.ID == rejected.ID {
		t.Fatalf("resubmit = %+v, %v", again, err)
	}
	if done := waitJob(t, results); done.ID != again.ID {
		t.Fatalf("finished %s, want %s", done.ID, again.ID)
	}
	d.Close()
}

func TestDispatcherConcurrentSubmitsCoalesce(t *testing.T) {
	ctx := context.Background()
	runner := &blockingRunner{started: make(chan string, 4), release: make(chan struct{})}
	jobs := NewMemoryJobStore()
	d := NewDispatcher(runner, jobs, 1, 4, discardLogger())

	if _, err := d.Submit(ctx, "2024", "test"); err != nil {
		t.Fatal(err)
	}
	<-runner.started

	ids := make(chan string, 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := d.Submit(ctx, "2026", "test")
			if err != nil {
				t.Errorf("Submit: %v", err)
				return
			}
			ids <- job.ID
		}()
	}
	wg.Wait()
	close(ids)

	first := ""
	for id := range ids {
		if first == "" {
			first = id
		}
		if id != first {
			t.Fatalf("concurrent submits got jobs %s and %s", first, id)
		}
	}
	close(runner.release)
	d.Close()
}

func TestDispatcherRejectsEmptySeason(t *testing.T) {
	d := NewDispatcher(&blockingRunner{}, NewMemoryJobStore(), 1, 1, discardLogger())
	defer d.Close()
	if _, err := d.Submit(context.Background(), "", "test"); err == nil {
		t.Fatal("expected error for empty season")
	}
}

func TestMemoryJobStoreRecent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryJobStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_ = s.Create(ctx, Job{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	got, _ := s.Recent(ctx, 2)
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("Recent = %+v", got)
	}
	if _, err := s.Get(ctx, "zzz"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("Get unknown: err = %v", err)
	}
}
