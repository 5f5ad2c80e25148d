// Package db provides a pgxpool-based connection pool with prepared statement
// registration, schema migration and health checking.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/league-data/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool. When cfg.DBMigrate is
// set the schema is applied first, on a dedicated connection, because the
// pool's prepared statements need the tables to exist.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if cfg.DBMigrate {
		if err := Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// Statements lists every prepared statement by name. Exposed so tests can
// check the set the stores rely on.
var Statements = map[string]string{
	// Health
	"health_check": "SELECT 1",

	// Seasons
	"season_active": `SELECT id, name, year, start_date, end_date, is_active FROM seasons
		WHERE is_active ORDER BY year DESC, id DESC LIMIT 1`,
	"season_by_id": "SELECT id, name, year, start_date, end_date, is_active FROM seasons WHERE id = $1",
	"seasons_all":  "SELECT id, name, year, start_date, end_date, is_active FROM seasons ORDER BY year DESC, id DESC",
	"season_upsert": `INSERT INTO seasons (id, name, year, start_date, end_date, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			year = EXCLUDED.year,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()`,

	// Teams
	"teams_by_season": `SELECT id, name, short_name, city, conference, colors, logo, stats
		FROM teams WHERE season_id = $1 ORDER BY id`,
	"team_upsert": `INSERT INTO teams (season_id, id, name, short_name, city, conference, colors, logo, stats)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (season_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			short_name = EXCLUDED.short_name,
			city = EXCLUDED.city,
			conference = EXCLUDED.conference,
			colors = EXCLUDED.colors,
			logo = EXCLUDED.logo,
			stats = EXCLUDED.stats,
			updated_at = NOW()`,

	// Players
	"players_by_season": `SELECT id, name, team_id, number, position, stats
		FROM players WHERE season_id = $1 ORDER BY id`,
	"player_upsert": `INSERT INTO players (season_id, id, name, team_id, number, position, stats)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (season_id, id) DO UPDATE SET
			name = EXCLUDED.name,
			team_id = EXCLUDED.team_id,
			number = EXCLUDED.number,
			position = EXCLUDED.position,
			stats = EXCLUDED.stats,
			updated_at = NOW()`,

	// Games
	"games_by_season": `SELECT id, season_id, home_team_id, away_team_id, game_date,
			home_score, away_score, status, box_score
		FROM games WHERE season_id = $1 ORDER BY game_date, id`,
	"game_upsert": `INSERT INTO games (season_id, id, home_team_id, away_team_id, game_date,
			home_score, away_score, status, box_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (season_id, id) DO UPDATE SET
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			game_date = EXCLUDED.game_date,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			status = EXCLUDED.status,
			box_score = EXCLUDED.box_score,
			updated_at = NOW()`,

	// Cached documents
	"cached_document_put": `INSERT INTO cached_documents (season_id, kind, payload, updated_at)
		VALUES ($1, $2, $3::json, NOW())
		ON CONFLICT (season_id, kind) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
	"cached_document_get": "SELECT payload::text, updated_at FROM cached_documents WHERE season_id = $1 AND kind = $2",

	// Recompute jobs
	"job_insert": "INSERT INTO recompute_jobs (id, season_id, trigger, status, created_at) VALUES ($1,$2,$3,$4,$5)",
	"job_mark_running": "UPDATE recompute_jobs SET status = 'running', started_at = $2 WHERE id = $1",
	"job_finish": `UPDATE recompute_jobs SET status = $2, report = $3, error = NULLIF($4, ''), finished_at = $5
		WHERE id = $1`,
	"job_get": `SELECT id, season_id, trigger, status, report, error, created_at, started_at, finished_at
		FROM recompute_jobs WHERE id = $1`,
	"job_recent": `SELECT id, season_id, trigger, status, report, error, created_at, started_at, finished_at
		FROM recompute_jobs ORDER BY created_at DESC, id DESC LIMIT $1`,
}

// registerPreparedStatements registers all statements the stores use.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range Statements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
