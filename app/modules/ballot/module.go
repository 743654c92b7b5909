// Package ballot assembles the ballot module: repository, service, and
// router.
package ballot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	ballotservice "github.com/Podium-Debate/podium-engine/app/modules/ballot/application"
	ballothandlers "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/handlers"
	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	ballotrouter "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/router"
	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/utils"
)

// Module represents the ballot module.
type Module struct {
	EventBus      eventbus.EventBus
	BallotService ballotservice.Service
	BallotRouter  *ballotrouter.BallotRouter
	logger        *slog.Logger
	config        *config.Config
	cancelFunc    context.CancelFunc
}

// NewBallotModule creates and configures the ballot module.
func NewBallotModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	auth ballothandlers.Authorizer,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("ballot")

	service := ballotservice.NewBallotService(
		ballotdb.NewRepository(),
		eventBus,
		logger,
		obs.Metrics,
		tracer,
		db,
	)

	moduleRouter := ballotrouter.NewBallotRouter(logger, router, eventBus, eventBus, cfg, helpers, tracer, obs.Registry)
	if err := moduleRouter.Configure(ctx, service, auth, obs.Metrics); err != nil {
		return nil, fmt.Errorf("failed to configure ballot router: %w", err)
	}

	return &Module{
		EventBus:      eventBus,
		BallotService: service,
		BallotRouter:  moduleRouter,
		logger:        logger,
		config:        cfg,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting ballot module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Ballot module stopped")
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
