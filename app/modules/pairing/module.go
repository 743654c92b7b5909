// Package pairing assembles the pairing module: repository, service,
// and router.
package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	pairingservice "github.com/Podium-Debate/podium-engine/app/modules/pairing/application"
	pairinghandlers "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/handlers"
	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	pairingrouter "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/router"
	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/utils"
)

// Module represents the pairing module.
type Module struct {
	EventBus       eventbus.EventBus
	PairingService pairingservice.Service
	PairingRouter  *pairingrouter.PairingRouter
	logger         *slog.Logger
	config         *config.Config
	cancelFunc     context.CancelFunc
}

// NewPairingModule creates and configures the pairing module.
func NewPairingModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	helpers utils.Helpers,
	auth pairinghandlers.Authorizer,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("pairing")

	service := pairingservice.NewPairingService(
		pairingdb.NewRepository(),
		eventBus,
		logger,
		obs.Metrics,
		tracer,
		db,
		cfg.Engine.DefaultJudgesPerDebate,
		int64(cfg.Engine.MaxImportSheetBytes),
	)

	moduleRouter := pairingrouter.NewPairingRouter(logger, router, eventBus, eventBus, cfg, helpers, tracer, obs.Registry)
	if err := moduleRouter.Configure(ctx, service, auth, obs.Metrics); err != nil {
		return nil, fmt.Errorf("failed to configure pairing router: %w", err)
	}

	return &Module{
		EventBus:       eventBus,
		PairingService: service,
		PairingRouter:  moduleRouter,
		logger:         logger,
		config:         cfg,
	}, nil
}

func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting pairing module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Pairing module stopped")
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
