package ballotservice

import (
	"context"

	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
)

// Service is the ballot module's application surface.
type Service interface {
	SubmitBallot(ctx context.Context, payload ballotevents.SubmitBallotRequestedPayloadV1) (submitBallotResult, error)
	OverrideBallot(ctx context.Context, payload ballotevents.OverrideBallotRequestedPayloadV1) (overrideBallotResult, error)
	FlagBallot(ctx context.Context, payload ballotevents.FlagBallotRequestedPayloadV1) (ballotFlagResult, error)
	ClearBallotFlags(ctx context.Context, payload ballotevents.ClearBallotFlagsRequestedPayloadV1) (ballotFlagResult, error)
}

var _ Service = (*BallotService)(nil)
