package notifications

import (
	"context"
	"log/slog"

	"github.com/albapepper/league-data/internal/recompute"
)

// StartWorker sends an alert for every finished job that qualifies. Blocks
// until jobs is closed or ctx is cancelled. Intended to be called with `go`.
func StartWorker(ctx context.Context, jobs <-chan recompute.Job, sender *WebhookSender, all bool, logger *slog.Logger) {
	logger.Info("Job alert worker started", "all_jobs", all)
	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				logger.Info("Job alert worker stopped")
				return
			}
			if !ShouldAlert(job, all) {
				continue
			}
			if err := sender.Send(ctx, NewAlert(job)); err != nil {
				logger.Warn("job alert failed", "job", job.ID, "season", job.SeasonID, "error", err)
				continue
			}
			logger.Info("job alert sent", "job", job.ID, "status", job.Status)
		case <-ctx.Done():
			logger.Info("Job alert worker stopped")
			return
		}
	}
}
