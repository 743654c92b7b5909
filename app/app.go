// Package app assembles the engine: database, event bus, watermill
// router, ops HTTP listener, and every module.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/app/modules/auth"
	"github.com/Podium-Debate/podium-engine/app/modules/ballot"
	"github.com/Podium-Debate/podium-engine/app/modules/pairing"
	"github.com/Podium-Debate/podium-engine/app/modules/round"
	"github.com/Podium-Debate/podium-engine/app/modules/team"
	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/internal/db/bundb"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/utils"
)

// App holds the assembled engine.
type App struct {
	Config          *config.Config
	Observability   *observability.Observability
	WatermillRouter *message.Router
	EventBus        eventbus.EventBus

	AuthModule    *auth.Module
	TeamModule    *team.Module
	RoundModule   *round.Module
	PairingModule *pairing.Module
	BallotModule  *ballot.Module

	db         *bun.DB
	httpServer *http.Server
	helpers    utils.Helpers
}

// Initialize connects the infrastructure and wires every module onto a
// shared watermill router and ops HTTP mux.
func (app *App) Initialize(ctx context.Context, cfg *config.Config, obs *observability.Observability) error {
	app.Config = cfg
	app.Observability = obs
	app.helpers = utils.NewHelpers()
	logger := obs.Logger

	db, err := bundb.NewBunDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	bus, err := eventbus.New(cfg.NATS.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create watermill router: %w", err)
	}
	app.WatermillRouter = router

	httpRouter := chi.NewRouter()
	httpRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	httpRouter.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	app.AuthModule, err = auth.NewModule(ctx, cfg, obs, httpRouter)
	if err != nil {
		return fmt.Errorf("failed to initialize auth module: %w", err)
	}

	app.TeamModule, err = team.NewTeamModule(ctx, cfg, obs, db, bus, router, app.helpers, app.AuthModule.Service)
	if err != nil {
		return fmt.Errorf("failed to initialize team module: %w", err)
	}

	app.RoundModule, err = round.NewRoundModule(ctx, cfg, obs, db, bus, router, app.helpers, app.TeamModule.QueueService)
	if err != nil {
		return fmt.Errorf("failed to initialize round module: %w", err)
	}

	app.PairingModule, err = pairing.NewPairingModule(ctx, cfg, obs, db, bus, router, app.helpers, app.AuthModule.Service)
	if err != nil {
		return fmt.Errorf("failed to initialize pairing module: %w", err)
	}

	app.BallotModule, err = ballot.NewBallotModule(ctx, cfg, obs, db, bus, router, app.helpers, app.AuthModule.Service)
	if err != nil {
		return fmt.Errorf("failed to initialize ballot module: %w", err)
	}

	app.httpServer = &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           httpRouter,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return nil
}

// Run starts the modules, the ops HTTP listener, and the watermill
// router, and blocks until the context is cancelled.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	var wg sync.WaitGroup
	wg.Add(4)
	go app.TeamModule.Run(ctx, &wg)
	go app.RoundModule.Run(ctx, &wg)
	go app.PairingModule.Run(ctx, &wg)
	go app.BallotModule.Run(ctx, &wg)

	go func() {
		logger.Info("Ops HTTP listener starting", attr.String("address", app.httpServer.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ops HTTP listener failed", attr.Error(err))
		}
	}()

	err := app.WatermillRouter.Run(ctx)

	wg.Wait()
	return err
}

// Close shuts everything down in reverse dependency order.
func (app *App) Close(ctx context.Context) error {
	var firstErr error

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if app.httpServer != nil {
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			firstErr = err
		}
	}

	for _, closer := range []interface{ Close() error }{
		app.BallotModule, app.PairingModule, app.RoundModule, app.TeamModule,
	} {
		if closer == nil {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if app.WatermillRouter != nil {
		if err := app.WatermillRouter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
