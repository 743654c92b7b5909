package ballotservice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	roundevents "github.com/Podium-Debate/podium-engine/internal/events/round"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

func newTestService(repo ballotdb.Repository, bus *FakeEventBus) *BallotService {
	return NewBallotService(
		repo,
		bus,
		observability.NoOpLogger,
		&observability.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
}

type debateFixture struct {
	repo   *FakeBallotRepository
	debate *ballotdb.DebateRow
	prop   types.TeamID
	opp    types.TeamID
	judges []types.UserID
}

func newDebateFixture(judgeCount int) *debateFixture {
	prop := uuid.New()
	opp := uuid.New()
	judges := make([]types.UserID, 0, judgeCount)
	for i := 0; i < judgeCount; i++ {
		judges = append(judges, types.UserID("judge-"+string(rune('a'+i))))
	}
	debate := &ballotdb.DebateRow{
		ID:                uuid.New(),
		RoundID:           uuid.New(),
		TournamentID:      uuid.New(),
		PropositionTeamID: &prop,
		OppositionTeamID:  &opp,
		Judges:            judges,
		Status:            types.DebateStatusPending,
	}
	repo := NewFakeBallotRepository()
	repo.AddDebate(debate)
	return &debateFixture{repo: repo, debate: debate, prop: prop, opp: opp, judges: judges}
}

func validScores(teamID types.TeamID) []ballotevents.SpeakerScoreInput {
	return []ballotevents.SpeakerScoreInput{
		{SpeakerID: "speaker-1", TeamID: teamID, RoleFulfillment: 20, ArgumentationClash: 20, ContentDevelopment: 20, StyleStrategyDelivery: 20},
	}
}

func (fx *debateFixture) ballotFor(judge types.UserID, winner types.TeamID, final bool) ballotevents.SubmitBallotRequestedPayloadV1 {
	scores := append(validScores(fx.prop), validScores(fx.opp)...)
	return ballotevents.SubmitBallotRequestedPayloadV1{
		DebateID:      fx.debate.ID,
		JudgeID:       judge,
		WinningTeamID: &winner,
		SpeakerScores: scores,
		IsFinal:       final,
	}
}

func TestSubmitBallotDraft(t *testing.T) {
	fx := newDebateFixture(3)
	bus := NewFakeEventBus()
	service := newTestService(fx.repo, bus)

	result, err := service.SubmitBallot(context.Background(), fx.ballotFor(fx.judges[0], fx.prop, false))

	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.False(t, result.Success.IsFinal)
	assert.False(t, result.Success.DebateCompleted)
	assert.False(t, result.Success.RoundCompleted)

	stored := fx.repo.Ballots[fx.debate.ID][fx.judges[0]]
	require.NotNil(t, stored)
	assert.False(t, stored.FeedbackSubmitted)
	assert.Equal(t, types.DebateStatusPending, fx.repo.Debates[fx.debate.ID].Status)
	assert.Empty(t, bus.Published[ballotevents.DebateCompletedV1])
}

func TestSubmitBallotDraftCanBeResubmitted(t *testing.T) {
	fx := newDebateFixture(3)
	service := newTestService(fx.repo, NewFakeEventBus())

	first, err := service.SubmitBallot(context.Background(), fx.ballotFor(fx.judges[0], fx.prop, false))
	require.NoError(t, err)
	require.True(t, first.IsSuccess())

	second, err := service.SubmitBallot(context.Background(), fx.ballotFor(fx.judges[0], fx.opp, false))
	require.NoError(t, err)
	require.True(t, second.IsSuccess())
	assert.Equal(t, first.Success.BallotID, second.Success.BallotID)

	stored := fx.repo.Ballots[fx.debate.ID][fx.judges[0]]
	require.NotNil(t, stored.WinningTeamID)
	assert.Equal(t, fx.opp, *stored.WinningTeamID)
}

func TestSubmitBallotRejectsFinalizedResubmission(t *testing.T) {
	fx := newDebateFixture(3)
	service := newTestService(fx.repo, NewFakeEventBus())

	result, err := service.SubmitBallot(context.Background(), fx.ballotFor(fx.judges[0], fx.prop, true))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	again, err := service.SubmitBallot(context.Background(), fx.ballotFor(fx.judges[0], fx.opp, true))
	require.NoError(t, err)
	require.True(t, again.IsFailure())
	assert.Contains(t, again.Failure.Reason, "already finalized")
}

func TestSubmitBallotRejectsUnassignedJudge(t *testing.T) {
	fx := newDebateFixture(3)
	service := newTestService(fx.repo, NewFakeEventBus())

	result, err := service.SubmitBallot(context.Background(), fx.ballotFor("judge-outsider", fx.prop, true))
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "not assigned")
}

func TestSubmitBallotRejectsUnknownDebate(t *testing.T) {
	service := newTestService(NewFakeBallotRepository(), NewFakeEventBus())

	payload := ballotevents.SubmitBallotRequestedPayloadV1{DebateID: uuid.New(), JudgeID: "judge-a"}
	result, err := service.SubmitBallot(context.Background(), payload)
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "not found")
}

func TestSubmitBallotRejectsInvalidScoreWithoutWriting(t *testing.T) {
	fx := newDebateFixture(3)
	service := newTestService(fx.repo, NewFakeEventBus())

	payload := fx.ballotFor(fx.judges[0], fx.prop, true)
	payload.SpeakerScores[0].ArgumentationClash = 26

	result, err := service.SubmitBallot(context.Background(), payload)
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "argumentation_clash")
	assert.Empty(t, fx.repo.Ballots[fx.debate.ID])
	assert.NotContains(t, fx.repo.Trace(), "UpsertBallot")
}

func TestSubmitBallotMajorityCompletesDebateAndRound(t *testing.T) {
	fx := newDebateFixture(3)
	bus := NewFakeEventBus()
	service := newTestService(fx.repo, bus)
	ctx := context.Background()

	for _, submission := range []struct {
		judge  types.UserID
		winner types.TeamID
	}{
		{fx.judges[0], fx.prop},
		{fx.judges[1], fx.opp},
	} {
		result, err := service.SubmitBallot(ctx, fx.ballotFor(submission.judge, submission.winner, true))
		require.NoError(t, err)
		require.True(t, result.IsSuccess())
		assert.False(t, result.Success.RoundCompleted)
	}

	result, err := service.SubmitBallot(ctx, fx.ballotFor(fx.judges[2], fx.prop, true))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.True(t, result.Success.DebateCompleted)
	assert.True(t, result.Success.RoundCompleted)

	debate := fx.repo.Debates[fx.debate.ID]
	assert.Equal(t, types.DebateStatusCompleted, debate.Status)
	require.NotNil(t, debate.WinningTeamID)
	assert.Equal(t, fx.prop, *debate.WinningTeamID)
	assert.Equal(t, 2, debate.PropositionVotes)
	assert.Equal(t, 1, debate.OppositionVotes)

	assert.Equal(t, types.RoundStatusCompleted, fx.repo.Round.Status)
	assert.Len(t, bus.Published[ballotevents.DebateCompletedV1], 3)
	assert.Len(t, bus.Published[roundevents.RoundCompletedV1], 1)
}

func TestSubmitBallotTieLeavesWinnerUnset(t *testing.T) {
	fx := newDebateFixture(2)
	bus := NewFakeEventBus()
	service := newTestService(fx.repo, bus)
	ctx := context.Background()

	first, err := service.SubmitBallot(ctx, fx.ballotFor(fx.judges[0], fx.prop, true))
	require.NoError(t, err)
	require.True(t, first.IsSuccess())

	second, err := service.SubmitBallot(ctx, fx.ballotFor(fx.judges[1], fx.opp, true))
	require.NoError(t, err)
	require.True(t, second.IsSuccess())
	assert.True(t, second.Success.DebateCompleted)
	assert.False(t, second.Success.RoundCompleted)

	debate := fx.repo.Debates[fx.debate.ID]
	assert.Equal(t, types.DebateStatusCompleted, debate.Status)
	assert.Nil(t, debate.WinningTeamID)
	assert.Equal(t, types.RoundStatusInProgress, fx.repo.Round.Status)
}

func TestSubmitBallotRoundWaitsForEveryJudge(t *testing.T) {
	fx := newDebateFixture(2)
	service := newTestService(fx.repo, NewFakeEventBus())

	result, err := service.SubmitBallot(context.Background(), fx.ballotFor(fx.judges[0], fx.prop, true))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.True(t, result.Success.DebateCompleted)
	assert.False(t, result.Success.RoundCompleted)
	assert.Equal(t, types.RoundStatusInProgress, fx.repo.Round.Status)
}

func TestSubmitBallotAveragesTeamPoints(t *testing.T) {
	fx := newDebateFixture(2)
	service := newTestService(fx.repo, NewFakeEventBus())
	ctx := context.Background()

	// Both judges score the proposition speaker at 24.3 and the
	// opposition speaker at 30.0; the averaged team points must match.
	build := func(judge types.UserID) ballotevents.SubmitBallotRequestedPayloadV1 {
		return ballotevents.SubmitBallotRequestedPayloadV1{
			DebateID:      fx.debate.ID,
			JudgeID:       judge,
			WinningTeamID: &fx.opp,
			IsFinal:       true,
			SpeakerScores: []ballotevents.SpeakerScoreInput{
				{SpeakerID: "prop-speaker", TeamID: fx.prop, RoleFulfillment: 20, ArgumentationClash: 20, ContentDevelopment: 20, StyleStrategyDelivery: 20},
				{SpeakerID: "opp-speaker", TeamID: fx.opp, RoleFulfillment: 25, ArgumentationClash: 25, ContentDevelopment: 25, StyleStrategyDelivery: 25},
			},
		}
	}

	for _, judge := range fx.judges {
		result, err := service.SubmitBallot(ctx, build(judge))
		require.NoError(t, err)
		require.True(t, result.IsSuccess())
	}

	debate := fx.repo.Debates[fx.debate.ID]
	assert.InDelta(t, 24.3, debate.PropositionTeamPoints, 0.001)
	assert.InDelta(t, 30.0, debate.OppositionTeamPoints, 0.001)
	require.NotNil(t, debate.WinningTeamID)
	assert.Equal(t, fx.opp, *debate.WinningTeamID)
	assert.Equal(t, types.RoundStatusCompleted, fx.repo.Round.Status)
}

func TestSubmitBallotByeDebateResolvesForSoleParticipant(t *testing.T) {
	team := uuid.New()
	debate := &ballotdb.DebateRow{
		ID:                uuid.New(),
		RoundID:           uuid.New(),
		TournamentID:      uuid.New(),
		PropositionTeamID: &team,
		IsPublicSpeaking:  true,
		Judges:            []types.UserID{"judge-a"},
		Status:            types.DebateStatusPending,
	}
	repo := NewFakeBallotRepository()
	repo.AddDebate(debate)
	service := newTestService(repo, NewFakeEventBus())

	payload := ballotevents.SubmitBallotRequestedPayloadV1{
		DebateID:      debate.ID,
		JudgeID:       "judge-a",
		WinningTeamID: &team,
		IsFinal:       true,
		SpeakerScores: validScores(team),
	}

	result, err := service.SubmitBallot(context.Background(), payload)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.True(t, result.Success.DebateCompleted)
	assert.True(t, result.Success.RoundCompleted)

	stored := repo.Debates[debate.ID]
	require.NotNil(t, stored.WinningTeamID)
	assert.Equal(t, team, *stored.WinningTeamID)
}

func TestSubmitBallotCascadeIsIdempotent(t *testing.T) {
	fx := newDebateFixture(1)
	service := newTestService(fx.repo, NewFakeEventBus())
	ctx := context.Background()

	result, err := service.SubmitBallot(ctx, fx.ballotFor(fx.judges[0], fx.prop, true))
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.True(t, result.Success.RoundCompleted)
	firstEnd := fx.repo.RoundCompletedAt

	// An override after completion recomputes the debate but must not
	// complete the round a second time.
	override, err := service.OverrideBallot(ctx, ballotevents.OverrideBallotRequestedPayloadV1{
		DebateID:      fx.debate.ID,
		JudgeID:       fx.judges[0],
		OverriddenBy:  "admin-1",
		WinningTeamID: &fx.opp,
		Reason:        "scoring dispute",
	})
	require.NoError(t, err)
	require.True(t, override.IsSuccess())
	assert.False(t, override.Success.RoundCompleted)
	assert.Equal(t, firstEnd, fx.repo.RoundCompletedAt)
}
