// Command leaguectl is the League Data maintenance CLI.
//
// Usage:
//
//	leaguectl recompute --season 2026
//	leaguectl recompute --kind standings
//	leaguectl import --file data/database.json --recompute
//	leaguectl standings --season 2026
//	leaguectl leaders --season 2026 --category ppg
//	leaguectl notify --season 2026
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/league-data/internal/backend"
	"github.com/albapepper/league-data/internal/config"
	"github.com/albapepper/league-data/internal/listener"
	"github.com/albapepper/league-data/internal/ranking"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "leaguectl",
		Short:        "League Data maintenance CLI",
		SilenceUsage: true,
	}

	root.AddCommand(recomputeCmd())
	root.AddCommand(importCmd())
	root.AddCommand(standingsCmd())
	root.AddCommand(leadersCmd())
	root.AddCommand(notifyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// recompute command
// --------------------------------------------------------------------------

func recomputeCmd() *cobra.Command {
	var season, kind string
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild cached standings and leader documents",
		Long:  "Rebuilds every cached document for a season (the active season when --season is omitted). --kind limits the run to one document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, b *backend.Backends) error {
				seasonID, err := resolveSeason(ctx, b, season)
				if err != nil {
					return err
				}
				orch := recompute.NewOrchestrator(b.Source, b.Documents, logger)

				if kind != "" {
					k, err := snapshot.ParseKind(kind)
					if err != nil {
						return err
					}
					result := orch.RecomputeKind(ctx, seasonID, k)
					if !result.OK {
						return fmt.Errorf("recompute %s for season %s: %s", k, seasonID, result.Error)
					}
					logger.Info("Recompute finished", "season", seasonID, "kind", k, "bytes", result.Bytes, "duration", result.Duration)
					return nil
				}

				report := orch.RecomputeAll(ctx, seasonID)
				logger.Info("Recompute finished", "summary", report.Summary())
				if report.Failed() > 0 {
					for _, e := range report.Errors() {
						logger.Error("recompute error", "error", e)
					}
					return fmt.Errorf("%d of %d documents failed", report.Failed(), len(report.Kinds))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season ID; empty = active season")
	cmd.Flags().StringVar(&kind, "kind", "", "Single document kind (standings, playerLeaders, teamLeaders)")
	return cmd
}

// --------------------------------------------------------------------------
// import command
// --------------------------------------------------------------------------

func importCmd() *cobra.Command {
	var (
		file          string
		withRecompute bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a league data file into the configured record store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			return run(func(ctx context.Context, cfg *config.Config, b *backend.Backends) error {
				sink, err := b.Sink()
				if err != nil {
					return fmt.Errorf("import into %s store: %w", cfg.StoreBackend, err)
				}
				ds, err := store.ReadDataset(file)
				if err != nil {
					return err
				}

				start := time.Now()
				result := store.Import(ctx, sink, ds, logger)
				logger.Info("Import finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("import error", "error", e)
				}

				if withRecompute {
					orch := recompute.NewOrchestrator(b.Source, b.Documents, logger)
					for _, s := range ds.Seasons {
						report := orch.RecomputeAll(ctx, s.ID)
						logger.Info("Recompute finished", "summary", report.Summary())
					}
				}
				if len(result.Errors) > 0 {
					return fmt.Errorf("%d records failed to import", len(result.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "League data JSON file")
	cmd.Flags().BoolVar(&withRecompute, "recompute", false, "Recompute every imported season afterwards")
	return cmd
}

// --------------------------------------------------------------------------
// standings / leaders commands
// --------------------------------------------------------------------------

func standingsCmd() *cobra.Command {
	var (
		season string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print a season's standings computed from current records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, b *backend.Backends) error {
				seasonID, err := resolveSeason(ctx, b, season)
				if err != nil {
					return err
				}
				agg, err := recompute.NewOrchestrator(b.Source, b.Documents, logger).Aggregate(ctx, seasonID)
				if err != nil {
					return err
				}
				table := ranking.RankStandings(agg.Teams)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), recompute.StandingsDocument{SeasonID: seasonID, Standings: table})
				}
				return printStandings(cmd.OutOrStdout(), table)
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season ID; empty = active season")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the standings document as JSON")
	return cmd
}

func leadersCmd() *cobra.Command {
	var (
		season   string
		category string
		teams    bool
	)
	cmd := &cobra.Command{
		Use:   "leaders",
		Short: "Print the top five in a leader category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, b *backend.Backends) error {
				seasonID, err := resolveSeason(ctx, b, season)
				if err != nil {
					return err
				}
				agg, err := recompute.NewOrchestrator(b.Source, b.Documents, logger).Aggregate(ctx, seasonID)
				if err != nil {
					return err
				}
				var entries []ranking.LeaderEntry
				if teams {
					entries, err = ranking.RankTeamLeaders(agg.Teams, category)
				} else {
					entries, err = ranking.RankLeaders(agg.Players, category)
				}
				if err != nil {
					return err
				}
				return printLeaders(cmd.OutOrStdout(), entries)
			})
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season ID; empty = active season")
	cmd.Flags().StringVar(&category, "category", "ppg", "Leader category key")
	cmd.Flags().BoolVar(&teams, "teams", false, "Rank teams instead of players")
	return cmd
}

// --------------------------------------------------------------------------
// notify command
// --------------------------------------------------------------------------

func notifyCmd() *cobra.Command {
	var season, source string
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send an upload-complete notification to running API servers",
		Long:  "Publishes on the upload channel with pg_notify so every API server with LISTEN_ENABLED queues a recompute.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			payload, err := json.Marshal(listener.UploadEvent{SeasonID: season, Source: source, Timestamp: time.Now().Unix()})
			if err != nil {
				return err
			}

			conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer conn.Close(context.Background())

			if _, err := conn.Exec(ctx, "SELECT pg_notify($1, $2)", cfg.ListenChannel, string(payload)); err != nil {
				return fmt.Errorf("notify %s: %w", cfg.ListenChannel, err)
			}
			logger.Info("Upload notification sent", "channel", cfg.ListenChannel, "payload", string(payload))
			return nil
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Season ID; empty = active season")
	cmd.Flags().StringVar(&source, "source", "leaguectl", "Upload source recorded in the event")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, backend connections and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config, b *backend.Backends) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	return fn(ctx, cfg, b)
}

func resolveSeason(ctx context.Context, b *backend.Backends, season string) (string, error) {
	if season != "" {
		return season, nil
	}
	id, err := b.ActiveSeasonID(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve active season: %w", err)
	}
	return id, nil
}

func printStandings(w io.Writer, table []ranking.StandingEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tTeam\tW\tL\tPct\tGB\tDiff\tHome\tRoad\tL10\tStrk\t")
	for _, e := range table {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.3f\t%.1f\t%+d\t%s\t%s\t%s\t%s\t\n",
			e.Rank, e.TeamName, e.Wins, e.Losses, e.WinPercentage, e.GamesBehind,
			e.Diff, e.Home, e.Road, e.LastTen, e.Streak)
	}
	return tw.Flush()
}

func printLeaders(w io.Writer, entries []ranking.LeaderEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tName\tTeam\tGP\tValue")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.1f\n", e.Rank, e.Name, e.TeamID, e.GamesPlayed, e.Value)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
