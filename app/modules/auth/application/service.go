// Package authservice verifies session tokens and enforces role gates
// for the tab room and volunteer judges.
package authservice

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	authdomain "github.com/Podium-Debate/podium-engine/app/modules/auth/domain"
	authjwt "github.com/Podium-Debate/podium-engine/app/modules/auth/infrastructure/jwt"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Config holds the configuration for the auth service.
type Config struct {
	DefaultTTL time.Duration
	RateLimit  rate.Limit
	RateBurst  int
}

const (
	DefaultTokenTTL  = 24 * time.Hour
	defaultRateLimit = rate.Limit(10)
	defaultRateBurst = 20
)

// service implements the Service interface.
type service struct {
	jwtProvider authjwt.Provider
	limiter     *TokenRateLimiter
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a new auth service.
func NewService(
	jwtProvider authjwt.Provider,
	config Config,
	logger *slog.Logger,
	tracer trace.Tracer,
) Service {
	if config.DefaultTTL == 0 {
		config.DefaultTTL = DefaultTokenTTL
	}
	if config.RateLimit == 0 {
		config.RateLimit = defaultRateLimit
	}
	if config.RateBurst == 0 {
		config.RateBurst = defaultRateBurst
	}
	return &service{
		jwtProvider: jwtProvider,
		limiter:     NewTokenRateLimiter(config.RateLimit, config.RateBurst),
		config:      config,
		logger:      logger,
		tracer:      tracer,
	}
}

// IssueToken signs a session token for the given user and role.
func (s *service) IssueToken(ctx context.Context, session *authdomain.Session) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.IssueToken")
	defer span.End()

	if !session.Role.IsValid() {
		return "", &types.AuthorizationError{Reason: "unknown role " + session.Role.String()}
	}

	token, err := s.jwtProvider.GenerateToken(session, s.config.DefaultTTL)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to sign session token", attr.Error(err))
		return "", err
	}
	return token, nil
}

// VerifySession validates the token and returns its session. Each
// distinct token gets its own rate budget, so a compromised or looping
// client cannot starve verification for everyone else.
func (s *service) VerifySession(ctx context.Context, token string) (*authdomain.Session, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.VerifySession")
	defer span.End()

	if token == "" {
		return nil, &types.AuthorizationError{Reason: "missing session token"}
	}
	if !s.limiter.Allow(token) {
		s.logger.WarnContext(ctx, "Session verification rate limit exceeded")
		return nil, &types.AuthorizationError{Reason: "rate limit exceeded"}
	}

	session, err := s.jwtProvider.ValidateToken(token)
	if err != nil {
		s.logger.WarnContext(ctx, "Session token rejected", attr.Error(err))
		return nil, &types.AuthorizationError{Reason: err.Error()}
	}
	if !session.Role.IsValid() {
		return nil, &types.AuthorizationError{Reason: "unknown role " + session.Role.String()}
	}
	return session, nil
}

// RequireRole verifies the token and enforces a minimum role.
func (s *service) RequireRole(ctx context.Context, token string, required authdomain.Role) (*authdomain.Session, error) {
	session, err := s.VerifySession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !session.Role.AtLeast(required) {
		s.logger.WarnContext(ctx, "Role check failed",
			attr.String("user_id", string(session.UserID)),
			attr.String("role", session.Role.String()),
			attr.String("required", required.String()),
		)
		return nil, &types.AuthorizationError{
			Reason: "role " + session.Role.String() + " does not grant " + required.String(),
		}
	}
	return session, nil
}

// AuthorizeBallotSubmission verifies the token, requires at least the
// volunteer role, and checks membership on the debate's judge panel.
func (s *service) AuthorizeBallotSubmission(ctx context.Context, token string, judges []types.UserID) (*authdomain.Session, error) {
	session, err := s.RequireRole(ctx, token, authdomain.RoleVolunteer)
	if err != nil {
		return nil, err
	}
	for _, judge := range judges {
		if judge == session.UserID {
			return session, nil
		}
	}
	return nil, &types.AuthorizationError{
		Reason: "judge " + string(session.UserID) + " is not on this debate's panel",
	}
}
