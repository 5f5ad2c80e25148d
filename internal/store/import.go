package store

import (
	"context"
	"fmt"
	"log/slog"
)

// ImportResult tracks counts and errors from an import.
type ImportResult struct {
	SeasonsUpserted int
	TeamsUpserted   int
	PlayersUpserted int
	GamesUpserted   int
	Errors          []string
}

// AddErrorf records a formatted error message.
func (r *ImportResult) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the import.
func (r *ImportResult) Summary() string {
	return fmt.Sprintf(
		"seasons=%d teams=%d players=%d games=%d errors=%d",
		r.SeasonsUpserted, r.TeamsUpserted, r.PlayersUpserted,
		r.GamesUpserted, len(r.Errors),
	)
}

// Import upserts every record in ds into dst. A failed record is logged
// and counted; the import carries on with the rest. Teams and players are
// written under each season in the dataset.
func Import(ctx context.Context, dst Sink, ds Dataset, logger *slog.Logger) ImportResult {
	ds.Normalize()
	var result ImportResult

	for _, season := range ds.Seasons {
		if err := ctx.Err(); err != nil {
			result.AddErrorf("import cancelled: %v", err)
			return result
		}
		if err := dst.PutSeason(ctx, season); err != nil {
			logger.Warn("season upsert failed", "season", season.ID, "error", err)
			result.AddErrorf("season %s: %v", season.ID, err)
			continue
		}
		result.SeasonsUpserted++

		for _, team := range ds.Teams {
			if err := dst.PutTeam(ctx, season.ID, team); err != nil {
				logger.Warn("team upsert failed", "season", season.ID, "team", team.ID, "error", err)
				result.AddErrorf("team %s: %v", team.ID, err)
				continue
			}
			result.TeamsUpserted++
		}
		for _, player := range ds.Players {
			if err := dst.PutPlayer(ctx, season.ID, player); err != nil {
				logger.Warn("player upsert failed", "season", season.ID, "player", player.ID, "error", err)
				result.AddErrorf("player %s: %v", player.ID, err)
				continue
			}
			result.PlayersUpserted++
		}
	}

	for _, game := range ds.Games {
		if game.SeasonID == "" {
			result.AddErrorf("game %s: no season", game.ID)
			continue
		}
		if err := dst.PutGame(ctx, game); err != nil {
			logger.Warn("game upsert failed", "game", game.ID, "error", err)
			result.AddErrorf("game %s: %v", game.ID, err)
			continue
		}
		result.GamesUpserted++
	}

	logger.Info("import complete", "summary", result.Summary())
	return result
}
