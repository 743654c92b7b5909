package roundservice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	roundevents "github.com/Podium-Debate/podium-engine/internal/events/round"
	sharedevents "github.com/Podium-Debate/podium-engine/internal/events/shared"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

func newTestService(repo rounddb.Repository, bus *FakeEventBus, standings StandingsEnqueuer) *RoundService {
	return NewRoundService(
		repo,
		bus,
		observability.NoOpLogger,
		&observability.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		nil,
		standings,
	)
}

func newTournamentFixture(prelim, elim int) (*FakeRoundRepository, *rounddb.Tournament) {
	tournament := &rounddb.Tournament{
		ID:                uuid.New(),
		Name:              "City Invitational",
		Format:            types.FormatWorldSchools,
		PreliminaryRounds: prelim,
		EliminationRounds: elim,
		Status:            types.TournamentStatusInProgress,
	}
	repo := NewFakeRoundRepository()
	repo.Tournament = tournament
	return repo, tournament
}

func addRound(repo *FakeRoundRepository, tournamentID types.TournamentID, number int, roundType types.RoundType, status types.RoundStatus) rounddb.Round {
	round := rounddb.Round{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		RoundNumber:  number,
		Type:         roundType,
		Status:       status,
	}
	repo.Rounds = append(repo.Rounds, round)
	return round
}

func completedPayload(tournamentID types.TournamentID, round rounddb.Round) roundevents.RoundCompletedPayloadV1 {
	return roundevents.RoundCompletedPayloadV1{
		RoundID:      round.ID,
		TournamentID: tournamentID,
		RoundNumber:  round.RoundNumber,
		RoundType:    round.Type,
	}
}

func TestAdvanceTournamentMidSchedule(t *testing.T) {
	repo, tournament := newTournamentFixture(3, 1)
	first := addRound(repo, tournament.ID, 1, types.RoundTypePreliminary, types.RoundStatusCompleted)
	addRound(repo, tournament.ID, 2, types.RoundTypePreliminary, types.RoundStatusPending)
	bus := NewFakeEventBus()
	standings := &FakeStandingsEnqueuer{}
	service := newTestService(repo, bus, standings)

	result, err := service.AdvanceTournament(context.Background(), completedPayload(tournament.ID, first))

	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, types.TournamentStatusInProgress, result.Success.FromStatus)
	assert.Equal(t, types.TournamentStatusInProgress, result.Success.ToStatus)
	assert.Empty(t, repo.StatusUpdates)
	assert.Equal(t, []types.TournamentID{tournament.ID}, standings.Enqueued)
	assert.Len(t, bus.Published[sharedevents.NotificationRequestedV1], 1)
}

func TestAdvanceTournamentCompletesAfterFinalRound(t *testing.T) {
	repo, tournament := newTournamentFixture(2, 1)
	addRound(repo, tournament.ID, 1, types.RoundTypePreliminary, types.RoundStatusCompleted)
	addRound(repo, tournament.ID, 2, types.RoundTypePreliminary, types.RoundStatusCompleted)
	final := addRound(repo, tournament.ID, 3, types.RoundTypeFinal, types.RoundStatusCompleted)
	bus := NewFakeEventBus()
	service := newTestService(repo, bus, &FakeStandingsEnqueuer{})

	result, err := service.AdvanceTournament(context.Background(), completedPayload(tournament.ID, final))

	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, types.TournamentStatusCompleted, result.Success.ToStatus)
	assert.Equal(t, []types.TournamentStatus{types.TournamentStatusCompleted}, repo.StatusUpdates)
	assert.Equal(t, types.TournamentStatusCompleted, repo.Tournament.Status)
	assert.Len(t, bus.Published[sharedevents.NotificationRequestedV1], 1)
}

func TestAdvanceTournamentWaitsForUnscheduledRounds(t *testing.T) {
	// Two of three scheduled rounds exist and are completed; the
	// tournament must stay in progress until the third runs.
	repo, tournament := newTournamentFixture(3, 0)
	addRound(repo, tournament.ID, 1, types.RoundTypePreliminary, types.RoundStatusCompleted)
	second := addRound(repo, tournament.ID, 2, types.RoundTypePreliminary, types.RoundStatusCompleted)
	service := newTestService(repo, NewFakeEventBus(), &FakeStandingsEnqueuer{})

	result, err := service.AdvanceTournament(context.Background(), completedPayload(tournament.ID, second))

	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, types.TournamentStatusInProgress, result.Success.ToStatus)
	assert.Empty(t, repo.StatusUpdates)
}

func TestAdvanceTournamentIdempotentOnRedelivery(t *testing.T) {
	repo, tournament := newTournamentFixture(1, 0)
	round := addRound(repo, tournament.ID, 1, types.RoundTypePreliminary, types.RoundStatusCompleted)
	service := newTestService(repo, NewFakeEventBus(), &FakeStandingsEnqueuer{})
	ctx := context.Background()

	first, err := service.AdvanceTournament(ctx, completedPayload(tournament.ID, round))
	require.NoError(t, err)
	require.True(t, first.IsSuccess())
	require.Equal(t, types.TournamentStatusCompleted, first.Success.ToStatus)

	second, err := service.AdvanceTournament(ctx, completedPayload(tournament.ID, round))
	require.NoError(t, err)
	require.True(t, second.IsSuccess())
	assert.Equal(t, types.TournamentStatusCompleted, second.Success.FromStatus)
	assert.Equal(t, types.TournamentStatusCompleted, second.Success.ToStatus)
	assert.Len(t, repo.StatusUpdates, 1)
}

func TestAdvanceTournamentRejectsDraftTournament(t *testing.T) {
	repo, tournament := newTournamentFixture(1, 0)
	repo.Tournament.Status = types.TournamentStatusDraft
	round := addRound(repo, tournament.ID, 1, types.RoundTypePreliminary, types.RoundStatusCompleted)
	service := newTestService(repo, NewFakeEventBus(), &FakeStandingsEnqueuer{})

	result, err := service.AdvanceTournament(context.Background(), completedPayload(tournament.ID, round))

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "draft")
}

func TestAdvanceTournamentNotFound(t *testing.T) {
	service := newTestService(NewFakeRoundRepository(), NewFakeEventBus(), &FakeStandingsEnqueuer{})

	result, err := service.AdvanceTournament(context.Background(), roundevents.RoundCompletedPayloadV1{
		RoundID:      uuid.New(),
		TournamentID: uuid.New(),
	})
	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "not found")
}
