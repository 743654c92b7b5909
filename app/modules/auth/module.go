// Package auth assembles the auth module: JWT provider, session
// service, and the HTTP introspection surface.
package auth

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	authservice "github.com/Podium-Debate/podium-engine/app/modules/auth/application"
	authhandlers "github.com/Podium-Debate/podium-engine/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Podium-Debate/podium-engine/app/modules/auth/infrastructure/jwt"
	"github.com/Podium-Debate/podium-engine/config"
	"github.com/Podium-Debate/podium-engine/internal/observability"
)

// Module represents the auth module.
type Module struct {
	Service  authservice.Service
	handlers *authhandlers.AuthHandlers
	logger   *slog.Logger
}

// NewModule creates the auth module and mounts its HTTP routes when an
// httpRouter is supplied.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("auth")

	logger.InfoContext(ctx, "Initializing auth module")

	jwtProvider := authjwt.NewProvider(cfg.JWT.Secret)

	service := authservice.NewService(
		jwtProvider,
		authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL},
		logger,
		tracer,
	)

	handlers := authhandlers.NewAuthHandlers(service, logger, tracer)

	if httpRouter != nil {
		limiter := authhandlers.NewIPRateLimiter(rate.Limit(5), 10)
		httpRouter.Route("/api/auth", func(r chi.Router) {
			r.Use(authhandlers.RateLimitMiddleware(limiter))
			r.Get("/session", handlers.HandleHTTPSession)
			r.Post("/authorize/ballot", handlers.HandleHTTPAuthorizeBallot)
		})
	}

	return &Module{
		Service:  service,
		handlers: handlers,
		logger:   logger,
	}, nil
}
