package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/albapepper/league-data/internal/league"
)

// JSONFile serves records from a league data file. The file is re-read
// when its modification time changes, so an upload that rewrites it is
// picked up by the next recompute.
type JSONFile struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	mem     *Memory
}

// OpenJSONFile reads and validates the data file at path.
func OpenJSONFile(path string) (*JSONFile, error) {
	f := &JSONFile{path: path}
	if _, err := f.current(); err != nil {
		return nil, err
	}
	return f, nil
}

// ReadDataset decodes a data file without building a store.
func ReadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read data file: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode data file %s: %w", path, err)
	}
	ds.Normalize()
	return ds, nil
}

func (f *JSONFile) current() (*Memory, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mem != nil && info.ModTime().Equal(f.modTime) {
		return f.mem, nil
	}
	ds, err := ReadDataset(f.path)
	if err != nil {
		return nil, err
	}
	f.mem = NewMemory(ds)
	f.modTime = info.ModTime()
	return f.mem, nil
}

func (f *JSONFile) ActiveSeason(ctx context.Context) (league.Season, error) {
	m, err := f.current()
	if err != nil {
		return league.Season{}, err
	}
	return m.ActiveSeason(ctx)
}

func (f *JSONFile) Season(ctx context.Context, seasonID string) (league.Season, error) {
	m, err := f.current()
	if err != nil {
		return league.Season{}, err
	}
	return m.Season(ctx, seasonID)
}

func (f *JSONFile) Seasons(ctx context.Context) ([]league.Season, error) {
	m, err := f.current()
	if err != nil {
		return nil, err
	}
	return m.Seasons(ctx)
}

func (f *JSONFile) Teams(ctx context.Context, seasonID string) ([]league.Team, error) {
	m, err := f.current()
	if err != nil {
		return nil, err
	}
	return m.Teams(ctx, seasonID)
}

func (f *JSONFile) Players(ctx context.Context, seasonID string) ([]league.Player, error) {
	m, err := f.current()
	if err != nil {
		return nil, err
	}
	return m.Players(ctx, seasonID)
}

func (f *JSONFile) Games(ctx context.Context, seasonID string) ([]league.Game, error) {
	m, err := f.current()
	if err != nil {
		return nil, err
	}
	return m.Games(ctx, seasonID)
}
