package teamqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
)

// StandingsSnapshotWorker works standings_snapshot jobs by delegating
// to the team service's refresh path. Errors propagate to River, which
// retries with backoff.
type StandingsSnapshotWorker struct {
	river.WorkerDefaults[StandingsSnapshotJob]
	logger    *slog.Logger
	refresher StandingsRefresher
}

// NewStandingsSnapshotWorker creates a worker bound to the refresher.
func NewStandingsSnapshotWorker(logger *slog.Logger, refresher StandingsRefresher) *StandingsSnapshotWorker {
	return &StandingsSnapshotWorker{
		logger:    logger,
		refresher: refresher,
	}
}

// Work refreshes one tournament's standings snapshot.
func (w *StandingsSnapshotWorker) Work(ctx context.Context, job *river.Job[StandingsSnapshotJob]) error {
	w.logger.InfoContext(ctx, "Refreshing standings snapshot",
		attr.UUID("tournament_id", job.Args.TournamentID),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)

	if err := w.refresher.RefreshStandings(ctx, job.Args.TournamentID); err != nil {
		w.logger.ErrorContext(ctx, "Standings snapshot refresh failed",
			attr.UUID("tournament_id", job.Args.TournamentID),
			attr.Error(err),
		)
		return fmt.Errorf("refreshing standings for tournament %s: %w", job.Args.TournamentID, err)
	}

	w.logger.InfoContext(ctx, "Standings snapshot refreshed",
		attr.UUID("tournament_id", job.Args.TournamentID),
	)
	return nil
}
