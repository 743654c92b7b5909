package authdomain

import (
	"time"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Session represents the domain model for a verified session token.
type Session struct {
	UserID       types.UserID
	Role         Role
	TournamentID *types.TournamentID
	ExpiresAt    time.Time
	IssuedAt     time.Time
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
