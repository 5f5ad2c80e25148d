package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingSubmitter) Submit(_ context.Context, seasonID, trigger string) (recompute.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, seasonID+"/"+trigger)
	return recompute.Job{ID: "job", SeasonID: seasonID}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeIs(id string) ActiveSeasonFunc {
	return func(context.Context) (string, error) { return id, nil }
}

func TestMissingKinds(t *testing.T) {
	ctx := context.Background()
	cache := snapshot.NewMemory()
	_ = cache.Put(ctx, snapshot.Document{SeasonID: "2026", Kind: snapshot.KindStandings, Payload: []byte("{}")})

	got := MissingKinds(ctx, cache, "2026")
	if len(got) != 2 || got[0] != snapshot.KindPlayerLeaders || got[1] != snapshot.KindTeamLeaders {
		t.Fatalf("MissingKinds = %v", got)
	}
}

func TestCatchUpSubmitsWhenDocumentsMissing(t *testing.T) {
	ctx := context.Background()
	sub := &recordingSubmitter{}
	cache := snapshot.NewMemory()
	s, err := New(Config{}, sub, activeIs("2026"), cache, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	s.catchUp()
	if len(sub.calls) != 1 || sub.calls[0] != "2026/catchup" {
		t.Fatalf("calls = %v", sub.calls)
	}

	for _, k := range snapshot.Kinds {
		_ = cache.Put(ctx, snapshot.Document{SeasonID: "2026", Kind: k, Payload: []byte("{}")})
	}
	s.catchUp()
	if len(sub.calls) != 1 {
		t.Fatalf("complete cache resubmitted: %v", sub.calls)
	}
}

func TestNightlySkipsWithoutActiveSeason(t *testing.T) {
	sub := &recordingSubmitter{}
	noActive := func(context.Context) (string, error) { return "", errors.New("no active season") }
	s, err := New(Config{}, sub, noActive, nil, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	s.nightly()
	if len(sub.calls) != 0 {
		t.Fatalf("calls = %v", sub.calls)
	}

	s.active = activeIs("2026")
	s.nightly()
	if len(sub.calls) != 1 || sub.calls[0] != "2026/cron" {
		t.Fatalf("calls = %v", sub.calls)
	}
}

func TestNewRejectsBadCron(t *testing.T) {
	_, err := New(Config{Cron: "not a cron"}, &recordingSubmitter{}, activeIs("2026"), nil, discardLogger())
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestStartAndShutdown(t *testing.T) {
	s, err := New(DefaultConfig(), &recordingSubmitter{}, activeIs("2026"), snapshot.NewMemory(), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
