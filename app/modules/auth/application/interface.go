package authservice

import (
	"context"

	authdomain "github.com/Podium-Debate/podium-engine/app/modules/auth/domain"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Service is the auth module's application interface.
type Service interface {
	IssueToken(ctx context.Context, session *authdomain.Session) (string, error)
	VerifySession(ctx context.Context, token string) (*authdomain.Session, error)
	RequireRole(ctx context.Context, token string, required authdomain.Role) (*authdomain.Session, error)
	AuthorizeBallotSubmission(ctx context.Context, token string, judges []types.UserID) (*authdomain.Session, error)
}
