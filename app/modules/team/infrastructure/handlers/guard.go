package teamhandlers

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	authdomain "github.com/Podium-Debate/podium-engine/app/modules/auth/domain"
	"github.com/Podium-Debate/podium-engine/internal/utils"
)

// Authorizer is the slice of the auth module the team handlers use
// for their role gates.
type Authorizer interface {
	RequireRole(ctx context.Context, token string, required authdomain.Role) (*authdomain.Session, error)
}

// requireRole checks the session token the request message carries. A
// nil authorizer disables the gates; service-level tests exercise the
// operations directly. An empty reason means the caller passed.
func (h *TeamHandlers) requireRole(ctx context.Context, msg *message.Message, required authdomain.Role) (*authdomain.Session, string) {
	if h.auth == nil {
		return nil, ""
	}
	session, err := h.auth.RequireRole(ctx, msg.Metadata.Get(utils.AuthMetadataKey), required)
	if err != nil {
		return nil, err.Error()
	}
	return session, ""
}
