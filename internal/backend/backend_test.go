package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/albapepper/league-data/internal/config"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
)

const dataFile = `{
  "seasons": [{"id": "2026", "name": "2026", "year": 2026, "isActive": true}],
  "teams": [{"id": "a", "name": "Alpha"}, {"id": "b", "name": "Bravo"}],
  "players": [],
  "games": [{"id": "g1", "seasonId": "2026", "homeTeamId": "a", "awayTeamId": "b",
             "date": "2026-03-01", "homeScore": 70, "awayScore": 64, "status": "finished"}]
}`

func TestOpenLocalBackends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "database.json")
	if err := os.WriteFile(path, []byte(dataFile), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		StoreBackend: config.BackendJSON,
		DataFile:     path,
		CacheBackend: config.BackendFile,
		CacheDir:     filepath.Join(dir, "cache"),
		JobBackend:   config.BackendMemory,
	}

	ctx := context.Background()
	b, err := Open(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if b.DB != nil || b.Firestore != nil {
		t.Fatal("local backends opened remote connections")
	}
	if _, ok := b.Documents.(*snapshot.FileStore); !ok {
		t.Fatalf("Documents = %T, want *snapshot.FileStore", b.Documents)
	}
	if _, ok := b.Jobs.(*recompute.MemoryJobStore); !ok {
		t.Fatalf("Jobs = %T", b.Jobs)
	}
	if _, err := b.Sink(); !errors.Is(err, ErrReadOnlySource) {
		t.Fatalf("Sink err = %v, want ErrReadOnlySource", err)
	}

	id, err := b.ActiveSeasonID(ctx)
	if err != nil || id != "2026" {
		t.Fatalf("ActiveSeasonID = %q, %v", id, err)
	}

	orch := recompute.NewOrchestrator(b.Source, b.Documents, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if report := orch.RecomputeAll(ctx, id); report.Failed() != 0 {
		t.Fatalf("report = %s", report.Summary())
	}
	if _, err := os.Stat(filepath.Join(dir, "cache", "seasons", "2026", "cached", "standings.json")); err != nil {
		t.Fatalf("standings file: %v", err)
	}
}

func TestOpenMissingDataFile(t *testing.T) {
	cfg := &config.Config{
		StoreBackend: config.BackendJSON,
		DataFile:     filepath.Join(t.TempDir(), "missing.json"),
		CacheBackend: config.BackendMemory,
		JobBackend:   config.BackendMemory,
	}
	if _, err := Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatal("expected error for missing data file")
	}
}
