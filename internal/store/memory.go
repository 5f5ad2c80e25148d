package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/albapepper/league-data/internal/league"
)

// Dataset is the on-disk layout of a league data file. Older files carry a
// single "season" object instead of a "seasons" list; both are accepted.
// Teams and players in a file belong to every season it lists. Games with
// no seasonId belong to the file's single (or first) season.
type Dataset struct {
	Seasons []league.Season `json:"seasons,omitempty"`
	Season  *league.Season  `json:"season,omitempty"`
	Teams   []league.Team   `json:"teams"`
	Players []league.Player `json:"players"`
	Games   []league.Game   `json:"games"`
}

// Normalize folds the legacy season field into Seasons and fills missing
// game season IDs.
func (d *Dataset) Normalize() {
	if d.Season != nil {
		dup := false
		for _, s := range d.Seasons {
			if s.ID == d.Season.ID {
				dup = true
				break
			}
		}
		if !dup {
			d.Seasons = append([]league.Season{*d.Season}, d.Seasons...)
		}
		d.Season = nil
	}
	if len(d.Seasons) == 0 {
		return
	}
	def := d.Seasons[0].ID
	for i := range d.Games {
		if d.Games[i].SeasonID == "" {
			d.Games[i].SeasonID = def
		}
	}
}

type seasonData struct {
	season  league.Season
	teams   map[string]league.Team
	players map[string]league.Player
	games   map[string]league.Game
}

// Memory is an in-process Source and Sink. It backs the JSON file source
// and is handy in tests.
type Memory struct {
	mu      sync.RWMutex
	seasons map[string]*seasonData
}

// NewMemory builds a store from a dataset.
func NewMemory(ds Dataset) *Memory {
	ds.Normalize()
	m := &Memory{seasons: make(map[string]*seasonData)}
	for _, s := range ds.Seasons {
		sd := m.ensure(s.ID)
		sd.season = s
		for _, t := range ds.Teams {
			sd.teams[t.ID] = t
		}
		for _, p := range ds.Players {
			sd.players[p.ID] = p
		}
	}
	for _, g := range ds.Games {
		if sd, ok := m.seasons[g.SeasonID]; ok {
			sd.games[g.ID] = g
		}
	}
	return m
}

func (m *Memory) ensure(seasonID string) *seasonData {
	sd, ok := m.seasons[seasonID]
	if !ok {
		sd = &seasonData{
			season:  league.Season{ID: seasonID},
			teams:   make(map[string]league.Team),
			players: make(map[string]league.Player),
			games:   make(map[string]league.Game),
		}
		m.seasons[seasonID] = sd
	}
	return sd
}

func (m *Memory) get(seasonID string) (*seasonData, error) {
	sd, ok := m.seasons[seasonID]
	if !ok {
		return nil, fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	return sd, nil
}

func (m *Memory) ActiveSeason(ctx context.Context) (league.Season, error) {
	seasons, _ := m.Seasons(ctx)
	return activeOf(seasons)
}

func (m *Memory) Season(_ context.Context, seasonID string) (league.Season, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sd, err := m.get(seasonID)
	if err != nil {
		return league.Season{}, err
	}
	return sd.season, nil
}

// Seasons returns every season, newest year first.
func (m *Memory) Seasons(_ context.Context) ([]league.Season, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]league.Season, 0, len(m.seasons))
	for _, sd := range m.seasons {
		out = append(out, sd.season)
	}
	sortSeasons(out)
	return out, nil
}

func (m *Memory) Teams(_ context.Context, seasonID string) ([]league.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sd, err := m.get(seasonID)
	if err != nil {
		return nil, err
	}
	out := make([]league.Team, 0, len(sd.teams))
	for _, t := range sd.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Players(_ context.Context, seasonID string) ([]league.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sd, err := m.get(seasonID)
	if err != nil {
		return nil, err
	}
	out := make([]league.Player, 0, len(sd.players))
	for _, p := range sd.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Games returns the season's games ordered by date, then ID.
func (m *Memory) Games(_ context.Context, seasonID string) ([]league.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sd, err := m.get(seasonID)
	if err != nil {
		return nil, err
	}
	out := make([]league.Game, 0, len(sd.games))
	for _, g := range sd.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) PutSeason(_ context.Context, season league.Season) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(season.ID).season = season
	return nil
}

func (m *Memory) PutTeam(_ context.Context, seasonID string, team league.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(seasonID).teams[team.ID] = team
	return nil
}

func (m *Memory) PutPlayer(_ context.Context, seasonID string, player league.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(seasonID).players[player.ID] = player
	return nil
}

func (m *Memory) PutGame(_ context.Context, game league.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(game.SeasonID).games[game.ID] = game
	return nil
}

func sortSeasons(s []league.Season) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Year != s[j].Year {
			return s[i].Year > s[j].Year
		}
		return s[i].ID > s[j].ID
	})
}
