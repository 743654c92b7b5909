package ballotservice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

func TestFlagBallot(t *testing.T) {
	fx := newDebateFixture(2)
	service := newTestService(fx.repo, NewFakeEventBus())
	ctx := context.Background()

	submitted, err := service.SubmitBallot(ctx, fx.ballotFor(fx.judges[0], fx.prop, true))
	require.NoError(t, err)
	ballotID := submitted.Success.BallotID

	result, err := service.FlagBallot(ctx, ballotevents.FlagBallotRequestedPayloadV1{
		BallotID:  ballotID,
		FlagType:  types.FlagTypeAdmin,
		Reason:    "speaker scores inconsistent with notes",
		FlaggedBy: "admin-1",
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.Len(t, result.Success.Flags, 1)
	assert.Equal(t, types.FlagTypeAdmin, result.Success.Flags[0].Type)
	assert.Equal(t, types.UserID("admin-1"), result.Success.Flags[0].FlaggedBy)
	assert.False(t, result.Success.Flags[0].FlaggedAt.IsZero())

	// Flags accumulate until cleared.
	result, err = service.FlagBallot(ctx, ballotevents.FlagBallotRequestedPayloadV1{
		BallotID:  ballotID,
		FlagType:  types.FlagTypeJudge,
		Reason:    "panel disagreement",
		FlaggedBy: fx.judges[1],
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Len(t, result.Success.Flags, 2)
}

func TestFlagBallotRequiresReason(t *testing.T) {
	service := newTestService(NewFakeBallotRepository(), NewFakeEventBus())

	result, err := service.FlagBallot(context.Background(), ballotevents.FlagBallotRequestedPayloadV1{
		BallotID:  uuid.New(),
		FlagType:  types.FlagTypeAdmin,
		FlaggedBy: "admin-1",
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "reason")
}

func TestFlagBallotRejectsUnknownFlagType(t *testing.T) {
	service := newTestService(NewFakeBallotRepository(), NewFakeEventBus())

	result, err := service.FlagBallot(context.Background(), ballotevents.FlagBallotRequestedPayloadV1{
		BallotID:  uuid.New(),
		FlagType:  "spectator",
		Reason:    "loud heckling",
		FlaggedBy: "someone",
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "unknown flag type")
}

func TestFlagBallotNotFound(t *testing.T) {
	service := newTestService(NewFakeBallotRepository(), NewFakeEventBus())

	result, err := service.FlagBallot(context.Background(), ballotevents.FlagBallotRequestedPayloadV1{
		BallotID:  uuid.New(),
		FlagType:  types.FlagTypeAdmin,
		Reason:    "late submission",
		FlaggedBy: "admin-1",
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "not found")
}

func TestClearBallotFlags(t *testing.T) {
	fx := newDebateFixture(2)
	service := newTestService(fx.repo, NewFakeEventBus())
	ctx := context.Background()

	submitted, err := service.SubmitBallot(ctx, fx.ballotFor(fx.judges[0], fx.prop, true))
	require.NoError(t, err)
	ballotID := submitted.Success.BallotID

	_, err = service.FlagBallot(ctx, ballotevents.FlagBallotRequestedPayloadV1{
		BallotID:  ballotID,
		FlagType:  types.FlagTypeAdmin,
		Reason:    "needs review",
		FlaggedBy: "admin-1",
	})
	require.NoError(t, err)

	result, err := service.ClearBallotFlags(ctx, ballotevents.ClearBallotFlagsRequestedPayloadV1{
		BallotID:  ballotID,
		ClearedBy: "admin-1",
	})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Empty(t, result.Success.Flags)
	assert.Empty(t, fx.repo.Ballots[fx.debate.ID][fx.judges[0]].Flags)
}

func TestFlagSurvivesDraftResubmission(t *testing.T) {
	fx := newDebateFixture(2)
	service := newTestService(fx.repo, NewFakeEventBus())
	ctx := context.Background()

	submitted, err := service.SubmitBallot(ctx, fx.ballotFor(fx.judges[0], fx.prop, false))
	require.NoError(t, err)

	_, err = service.FlagBallot(ctx, ballotevents.FlagBallotRequestedPayloadV1{
		BallotID:  submitted.Success.BallotID,
		FlagType:  types.FlagTypeJudge,
		Reason:    "draft under discussion",
		FlaggedBy: fx.judges[1],
	})
	require.NoError(t, err)

	_, err = service.SubmitBallot(ctx, fx.ballotFor(fx.judges[0], fx.prop, false))
	require.NoError(t, err)

	assert.Len(t, fx.repo.Ballots[fx.debate.ID][fx.judges[0]].Flags, 1)
}
