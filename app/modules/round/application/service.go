// Package roundservice drives tournament progression off the ballot
// cascade and serves round-scoped debate listings.
package roundservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/results"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

const moduleName = "round"

// StandingsEnqueuer schedules a standings snapshot refresh after a
// round completes. Wired to the team module's queue service.
type StandingsEnqueuer interface {
	EnqueueStandingsSnapshot(ctx context.Context, tournamentID types.TournamentID) error
}

// RoundService implements the Service interface.
type RoundService struct {
	repo      rounddb.Repository
	eventBus  eventbus.EventBus
	logger    *slog.Logger
	metrics   observability.Metrics
	tracer    trace.Tracer
	db        *bun.DB
	standings StandingsEnqueuer
}

// NewRoundService creates a new RoundService. standings may be nil when
// no queue backend is configured.
func NewRoundService(
	repo rounddb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
	standings StandingsEnqueuer,
) *RoundService {
	return &RoundService{
		repo:      repo,
		eventBus:  eventBus,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		standings: standings,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RoundService,
	ctx context.Context,
	operationName string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("module", moduleName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, moduleName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, moduleName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, moduleName)
			span.RecordError(err)
		}
	}()

	result, err = op(ctx)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operationName, moduleName)
		span.RecordError(err)
		return result, fmt.Errorf("%s operation failed: %w", operationName, err)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, moduleName)
	return result, nil
}

// runInTx executes fn inside one transaction. The nil-db path keeps the
// service testable without a database.
func (s *RoundService) runInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// publishEvent marshals payload and publishes it on topic.
func (s *RoundService) publishEvent(ctx context.Context, topic string, payload any) error {
	msg, err := eventbus.NewMessage(ctx, payload)
	if err != nil {
		return fmt.Errorf("failed to build message for %s: %w", topic, err)
	}
	return s.eventBus.Publish(topic, msg)
}
