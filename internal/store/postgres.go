package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/league-data/internal/league"
)

// Postgres reads and writes league records using the prepared statements
// registered by package db. Team and player stats, team colors and game
// box scores are stored as jsonb.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func scanSeason(row pgx.Row) (league.Season, error) {
	var s league.Season
	err := row.Scan(&s.ID, &s.Name, &s.Year, &s.StartDate, &s.EndDate, &s.Active)
	return s, err
}

func (p *Postgres) ActiveSeason(ctx context.Context) (league.Season, error) {
	s, err := scanSeason(p.pool.QueryRow(ctx, "season_active"))
	if errors.Is(err, pgx.ErrNoRows) {
		return league.Season{}, fmt.Errorf("active season: %w", ErrNotFound)
	}
	if err != nil {
		return league.Season{}, fmt.Errorf("query active season: %w", err)
	}
	return s, nil
}

func (p *Postgres) Season(ctx context.Context, seasonID string) (league.Season, error) {
	s, err := scanSeason(p.pool.QueryRow(ctx, "season_by_id", seasonID))
	if errors.Is(err, pgx.ErrNoRows) {
		return league.Season{}, fmt.Errorf("season %s: %w", seasonID, ErrNotFound)
	}
	if err != nil {
		return league.Season{}, fmt.Errorf("query season: %w", err)
	}
	return s, nil
}

func (p *Postgres) Seasons(ctx context.Context) ([]league.Season, error) {
	rows, err := p.pool.Query(ctx, "seasons_all")
	if err != nil {
		return nil, fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	var out []league.Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) Teams(ctx context.Context, seasonID string) ([]league.Team, error) {
	rows, err := p.pool.Query(ctx, "teams_by_season", seasonID)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var out []league.Team
	for rows.Next() {
		var (
			t             league.Team
			colors, stats []byte
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.ShortName, &t.City, &t.Conference, &colors, &t.Logo, &stats); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		if err := unmarshalColumn(colors, &t.Colors); err != nil {
			return nil, fmt.Errorf("decode team %s colors: %w", t.ID, err)
		}
		if err := unmarshalColumn(stats, &t.Stats); err != nil {
			return nil, fmt.Errorf("decode team %s stats: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) Players(ctx context.Context, seasonID string) ([]league.Player, error) {
	rows, err := p.pool.Query(ctx, "players_by_season", seasonID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var out []league.Player
	for rows.Next() {
		var (
			pl    league.Player
			stats []byte
		)
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.TeamID, &pl.Number, &pl.Position, &stats); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		if err := unmarshalColumn(stats, &pl.Stats); err != nil {
			return nil, fmt.Errorf("decode player %s stats: %w", pl.ID, err)
		}
		out = append(out, pl)
	}
	return out, rows.Err()
}

func (p *Postgres) Games(ctx context.Context, seasonID string) ([]league.Game, error) {
	rows, err := p.pool.Query(ctx, "games_by_season", seasonID)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []league.Game
	for rows.Next() {
		var (
			g   league.Game
			box []byte
		)
		if err := rows.Scan(&g.ID, &g.SeasonID, &g.HomeTeamID, &g.AwayTeamID, &g.Date,
			&g.HomeScore, &g.AwayScore, &g.Status, &box); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if err := unmarshalColumn(box, &g.BoxScore); err != nil {
			return nil, fmt.Errorf("decode game %s box score: %w", g.ID, err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *Postgres) PutSeason(ctx context.Context, s league.Season) error {
	_, err := p.pool.Exec(ctx, "season_upsert", s.ID, s.Name, s.Year, s.StartDate, s.EndDate, s.Active)
	if err != nil {
		return fmt.Errorf("upsert season %s: %w", s.ID, err)
	}
	return nil
}

func (p *Postgres) PutTeam(ctx context.Context, seasonID string, t league.Team) error {
	colors, _ := json.Marshal(t.Colors)
	stats, _ := json.Marshal(t.Stats)
	_, err := p.pool.Exec(ctx, "team_upsert",
		seasonID, t.ID, t.Name, t.ShortName, t.City, string(t.Conference), colors, t.Logo, stats)
	if err != nil {
		return fmt.Errorf("upsert team %s: %w", t.ID, err)
	}
	return nil
}

func (p *Postgres) PutPlayer(ctx context.Context, seasonID string, pl league.Player) error {
	stats, _ := json.Marshal(pl.Stats)
	_, err := p.pool.Exec(ctx, "player_upsert",
		seasonID, pl.ID, pl.Name, pl.TeamID, pl.Number, pl.Position, stats)
	if err != nil {
		return fmt.Errorf("upsert player %s: %w", pl.ID, err)
	}
	return nil
}

func (p *Postgres) PutGame(ctx context.Context, g league.Game) error {
	box := g.BoxScore
	if box == nil {
		box = []league.BoxLine{}
	}
	boxJSON, _ := json.Marshal(box)
	_, err := p.pool.Exec(ctx, "game_upsert",
		g.SeasonID, g.ID, g.HomeTeamID, g.AwayTeamID, g.Date,
		g.HomeScore, g.AwayScore, string(g.Status), boxJSON)
	if err != nil {
		return fmt.Errorf("upsert game %s: %w", g.ID, err)
	}
	return nil
}

// unmarshalColumn decodes a jsonb column, treating NULL as the zero value.
func unmarshalColumn(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
