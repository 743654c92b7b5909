// Package team assembles the team module: repository, service,
// standings queue, and router.
package team

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	teamservice "github.com/Podium-Debate/podium-engine/app/modules/team/application"
	teamhandlers "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/handlers"
	teamqueue "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/queue"
	teamdb "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/repositories"
	teamrouter "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/router"
	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/utils"
)

// Module represents the team module.
type Module struct {
	EventBus     eventbus.EventBus
	TeamService  teamservice.Service
	QueueService teamqueue.QueueService
	TeamRouter   *teamrouter.TeamRouter
	logger       *slog.Logger
	config       *config.Config
	cancelFunc   context.CancelFunc
}

// NewTeamModule creates and configures the team module. The returned
// module's QueueService doubles as the standings enqueuer for the
// round module.
func NewTeamModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	auth teamhandlers.Authorizer,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("team")

	service := teamservice.NewTeamService(
		teamdb.NewRepository(),
		eventBus,
		logger,
		obs.Metrics,
		tracer,
		db,
	)

	queueService, err := teamqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, obs.Metrics, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create standings queue service: %w", err)
	}

	moduleRouter := teamrouter.NewTeamRouter(logger, router, eventBus, eventBus, cfg, helpers, tracer, obs.Registry)
	if err := moduleRouter.Configure(ctx, service, auth, obs.Metrics); err != nil {
		return nil, fmt.Errorf("failed to configure team router: %w", err)
	}

	return &Module{
		EventBus:     eventBus,
		TeamService:  service,
		QueueService: queueService,
		TeamRouter:   moduleRouter,
		logger:       logger,
		config:       cfg,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting team module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.QueueService.Start(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to start standings queue service")
	}

	<-ctx.Done()

	if err := m.QueueService.Stop(context.Background()); err != nil {
		m.logger.Error("Failed to stop standings queue service")
	}
	m.logger.Info("Team module stopped")
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
