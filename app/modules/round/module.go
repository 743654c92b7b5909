// Package round assembles the round module: repository, service, and
// router.
package round

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	roundservice "github.com/Podium-Debate/podium-engine/app/modules/round/application"
	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	roundrouter "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/router"
	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/utils"
)

// Module represents the round module.
type Module struct {
	EventBus     eventbus.EventBus
	RoundService roundservice.Service
	RoundRouter  *roundrouter.RoundRouter
	logger       *slog.Logger
	config       *config.Config
	cancelFunc   context.CancelFunc
}

// NewRoundModule creates and configures the round module. standings may
// be nil when no job queue is configured.
func NewRoundModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	standings roundservice.StandingsEnqueuer,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("round")

	service := roundservice.NewRoundService(
		rounddb.NewRepository(),
		eventBus,
		logger,
		obs.Metrics,
		tracer,
		db,
		standings,
	)

	moduleRouter := roundrouter.NewRoundRouter(logger, router, eventBus, eventBus, cfg, helpers, tracer, obs.Registry)
	if err := moduleRouter.Configure(ctx, service, obs.Metrics); err != nil {
		return nil, fmt.Errorf("failed to configure round router: %w", err)
	}

	return &Module{
		EventBus:     eventBus,
		RoundService: service,
		RoundRouter:  moduleRouter,
		logger:       logger,
		config:       cfg,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting round module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Round module stopped")
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
