// Package recompute rebuilds a season's cached documents from its
// authoritative records and runs those rebuilds as observable background
// jobs.
package recompute

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/stats"
	"github.com/albapepper/league-data/internal/store"
)

// Orchestrator loads a season, aggregates it once and writes each document
// kind independently.
type Orchestrator struct {
	src    store.Source
	dst    snapshot.Writer
	logger *slog.Logger
}

func NewOrchestrator(src store.Source, dst snapshot.Writer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{src: src, dst: dst, logger: logger}
}

// Aggregate loads and aggregates a season without writing anything.
func (o *Orchestrator) Aggregate(ctx context.Context, seasonID string) (stats.Result, error) {
	snap, err := store.Load(ctx, o.src, seasonID)
	if err != nil {
		return stats.Result{}, err
	}
	return stats.Aggregate(snap.Season, snap.Teams, snap.Players, snap.Games), nil
}

// RecomputeAll rebuilds every document kind for a season. Kinds run
// concurrently and do not cancel each other; a kind that fails is reported
// while the others are still written.
func (o *Orchestrator) RecomputeAll(ctx context.Context, seasonID string) Report {
	start := time.Now()

	agg, err := o.Aggregate(ctx, seasonID)
	if err != nil {
		o.logger.Error("recompute load failed", "season", seasonID, "error", err)
		r := failedReport(seasonID, err)
		r.Duration = time.Since(start)
		return r
	}

	report := Report{SeasonID: seasonID, Kinds: make([]KindResult, len(snapshot.Kinds))}
	var g errgroup.Group
	for i, kind := range snapshot.Kinds {
		g.Go(func() error {
			// Each goroutine owns its slot.
			report.Kinds[i] = o.write(ctx, seasonID, kind, agg)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	o.logger.Info("recompute complete", "summary", report.Summary())
	return report
}

// RecomputeKind rebuilds a single document kind.
func (o *Orchestrator) RecomputeKind(ctx context.Context, seasonID string, kind snapshot.Kind) KindResult {
	agg, err := o.Aggregate(ctx, seasonID)
	if err != nil {
		o.logger.Error("recompute load failed", "season", seasonID, "kind", kind, "error", err)
		return KindResult{Kind: kind, Error: err.Error(), Err: err}
	}
	return o.write(ctx, seasonID, kind, agg)
}

// RecomputeActive rebuilds every kind for the active season.
func (o *Orchestrator) RecomputeActive(ctx context.Context) Report {
	season, err := o.src.ActiveSeason(ctx)
	if err != nil {
		o.logger.Error("resolve active season failed", "error", err)
		return failedReport("", err)
	}
	return o.RecomputeAll(ctx, season.ID)
}

func (o *Orchestrator) write(ctx context.Context, seasonID string, kind snapshot.Kind, agg stats.Result) KindResult {
	start := time.Now()
	res := KindResult{Kind: kind}

	payload, err := BuildPayload(kind, agg)
	if err == nil {
		err = o.dst.Put(ctx, snapshot.Document{SeasonID: seasonID, Kind: kind, Payload: payload})
		if err != nil {
			err = fmt.Errorf("write %s: %w", snapshot.Path(seasonID, kind), err)
		}
	}
	res.Duration = time.Since(start)

	if err != nil {
		res.Error, res.Err = err.Error(), err
		o.logger.Error("recompute kind failed", "season", seasonID, "kind", kind, "error", err)
		return res
	}
	res.OK = true
	res.Bytes = len(payload)
	if p, ok := o.dst.(snapshot.Publisher); ok {
		res.URL = p.PublicURL(seasonID, kind)
	}
	o.logger.Debug("recompute kind written", "season", seasonID, "kind", kind, "bytes", len(payload))
	return res
}
