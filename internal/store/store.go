// Package store reads and writes the authoritative league records. Three
// backends are provided: a JSON data file, Postgres and Firestore. Teams,
// players and games are scoped to a season.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/albapepper/league-data/internal/league"
)

// ErrNotFound is returned when a season (or an entity within it) does not
// exist in the backend.
var ErrNotFound = errors.New("not found")

// Source is the read side of a backend.
type Source interface {
	ActiveSeason(ctx context.Context) (league.Season, error)
	Season(ctx context.Context, seasonID string) (league.Season, error)
	Seasons(ctx context.Context) ([]league.Season, error)
	Teams(ctx context.Context, seasonID string) ([]league.Team, error)
	Players(ctx context.Context, seasonID string) ([]league.Player, error)
	Games(ctx context.Context, seasonID string) ([]league.Game, error)
}

// Sink is the write side of a backend, used by import. Every method is an
// upsert keyed by ID within the season.
type Sink interface {
	PutSeason(ctx context.Context, season league.Season) error
	PutTeam(ctx context.Context, seasonID string, team league.Team) error
	PutPlayer(ctx context.Context, seasonID string, player league.Player) error
	PutGame(ctx context.Context, game league.Game) error
}

// Load reads every record for a season in one pass.
func Load(ctx context.Context, src Source, seasonID string) (league.Snapshot, error) {
	season, err := src.Season(ctx, seasonID)
	if err != nil {
		return league.Snapshot{}, fmt.Errorf("load season %s: %w", seasonID, err)
	}
	teams, err := src.Teams(ctx, seasonID)
	if err != nil {
		return league.Snapshot{}, fmt.Errorf("load teams: %w", err)
	}
	players, err := src.Players(ctx, seasonID)
	if err != nil {
		return league.Snapshot{}, fmt.Errorf("load players: %w", err)
	}
	games, err := src.Games(ctx, seasonID)
	if err != nil {
		return league.Snapshot{}, fmt.Errorf("load games: %w", err)
	}
	return league.Snapshot{
		Season:  season,
		Teams:   teams,
		Players: players,
		Games:   games,
	}, nil
}

// activeOf picks the active season from a list. When several are flagged
// the most recent year wins; when none are, ErrNotFound.
func activeOf(seasons []league.Season) (league.Season, error) {
	var (
		active league.Season
		found  bool
	)
	for _, s := range seasons {
		if !s.Active {
			continue
		}
		if !found || s.Year > active.Year {
			active, found = s, true
		}
	}
	if !found {
		return league.Season{}, fmt.Errorf("active season: %w", ErrNotFound)
	}
	return active, nil
}
