// Package teamqueue runs the River-backed standings refresh queue.
// Round completions enqueue a snapshot job here instead of recomputing
// standings inline, so a burst of ballot finalizations costs one
// refresh.
package teamqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// StandingsRefresher recomputes and persists one tournament's table.
type StandingsRefresher interface {
	RefreshStandings(ctx context.Context, tournamentID types.TournamentID) error
}

// QueueService is the contract for standings job scheduling.
type QueueService interface {
	EnqueueStandingsSnapshot(ctx context.Context, tournamentID types.TournamentID) error
	PendingSnapshots(ctx context.Context, tournamentID types.TournamentID) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service schedules and works standings snapshot jobs using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics observability.Metrics
}

// NewService creates the standings queue service. River needs its own
// pgx pool, so the DSN is taken alongside the shared bun handle.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics observability.Metrics, refresher StandingsRefresher) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_team_queue_service"),
		attr.String("component", "river_queue"),
	)

	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewStandingsSnapshotWorker(ctxLogger, refresher))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			"standings":        {MaxWorkers: 5},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	ctxLogger.InfoContext(ctx, "Standings queue service initialized")

	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.logger.InfoContext(ctx, "Standings queue service started")
	return nil
}

// Stop drains and stops the River client, then closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.logger.InfoContext(ctx, "Standings queue service stopped")
	return nil
}

// EnqueueStandingsSnapshot schedules a standings refresh for the
// tournament. Duplicate requests against the same tournament dedupe on
// args while a job is still pending.
func (s *Service) EnqueueStandingsSnapshot(ctx context.Context, tournamentID types.TournamentID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_standings_snapshot", "river")

	ctxLogger := s.logger.With(
		attr.UUID("tournament_id", tournamentID),
		attr.String("operation", "enqueue_standings_snapshot"),
	)

	jobResult, err := s.client.Insert(ctx, StandingsSnapshotJob{TournamentID: tournamentID}, &river.InsertOpts{
		Queue: "standings",
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.ErrorContext(ctx, "Failed to enqueue standings snapshot", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_standings_snapshot", "river")
		return fmt.Errorf("failed to enqueue standings snapshot: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_standings_snapshot", "river")
	s.metrics.RecordOperationDuration(ctx, "enqueue_standings_snapshot", "river", time.Since(start))

	ctxLogger.InfoContext(ctx, "Standings snapshot enqueued",
		attr.Int64("job_id", jobResult.Job.ID),
		attr.Bool("unique_skipped", jobResult.UniqueSkippedAsDuplicate),
	)
	return nil
}

// PendingSnapshots reports queued snapshot jobs for a tournament.
func (s *Service) PendingSnapshots(ctx context.Context, tournamentID types.TournamentID) ([]JobInfo, error) {
	s.metrics.RecordOperationAttempt(ctx, "pending_snapshots", "river")

	type riverJobRow struct {
		ID          int64      `bun:"id"`
		Kind        string     `bun:"kind"`
		State       string     `bun:"state"`
		ScheduledAt *time.Time `bun:"scheduled_at"`
		Attempt     int16      `bun:"attempt"`
		MaxAttempts int16      `bun:"max_attempts"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "attempt", "max_attempts").
		Where("kind = ?", "standings_snapshot").
		Where("state IN (?, ?, ?)", "available", "scheduled", "running").
		Where("args->>'tournament_id' = ?", tournamentID.String()).
		Order("scheduled_at ASC NULLS LAST").
		Scan(ctx, &jobs)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "pending_snapshots", "river")
		return nil, fmt.Errorf("failed to query pending snapshots: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		result[i] = JobInfo{
			ID:           job.ID,
			Kind:         job.Kind,
			TournamentID: tournamentID.String(),
			State:        job.State,
			ScheduledAt:  scheduledAt,
			Attempt:      int(job.Attempt),
			MaxAttempts:  int(job.MaxAttempts),
		}
	}

	s.metrics.RecordOperationSuccess(ctx, "pending_snapshots", "river")
	return result, nil
}

// HealthCheck verifies the river_job table is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "health_check", "river")

	count, err := s.db.NewSelect().
		Table("river_job").
		Where("kind = ?", "standings_snapshot").
		Count(ctx)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "health_check", "river")
		return fmt.Errorf("queue service health check failed: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "health_check", "river")
	s.logger.DebugContext(ctx, "Queue service health check passed", attr.Int("total_jobs", count))
	return nil
}
