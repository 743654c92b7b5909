package roundservice

import (
	"context"

	roundevents "github.com/Podium-Debate/podium-engine/internal/events/round"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Service is the round module's application surface.
type Service interface {
	AdvanceTournament(ctx context.Context, payload roundevents.RoundCompletedPayloadV1) (advanceResult, error)
	ListDebates(ctx context.Context, roundID types.RoundID) (*DebateListView, error)
}

var _ Service = (*RoundService)(nil)
