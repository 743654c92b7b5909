package roundservice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

func TestListDebates(t *testing.T) {
	repo, tournament := newTournamentFixture(1, 0)
	round := addRound(repo, tournament.ID, 1, types.RoundTypePreliminary, types.RoundStatusInProgress)

	propA, oppA := uuid.New(), uuid.New()
	done := rounddb.DebateListRow{
		ID:                uuid.New(),
		RoundID:           round.ID,
		RoomName:          "Library",
		PropositionTeamID: &propA,
		OppositionTeamID:  &oppA,
		Judges:            []types.UserID{"judge-a", "judge-b", "judge-c"},
		Status:            types.DebateStatusCompleted,
		WinningTeamID:     &propA,
	}
	propB := uuid.New()
	pending := rounddb.DebateListRow{
		ID:                uuid.New(),
		RoundID:           round.ID,
		RoomName:          "Auditorium",
		PropositionTeamID: &propB,
		IsPublicSpeaking:  true,
		Judges:            []types.UserID{"judge-d"},
		Status:            types.DebateStatusPending,
	}
	repo.Debates = []rounddb.DebateListRow{done, pending}
	repo.Counts = map[types.DebateID]int{done.ID: 3}
	repo.Flagged = map[types.DebateID]bool{pending.ID: true}

	service := newTestService(repo, NewFakeEventBus(), nil)
	view, err := service.ListDebates(context.Background(), round.ID)

	require.NoError(t, err)
	assert.Equal(t, round.ID, view.RoundID)
	assert.Equal(t, 1, view.RoundNumber)
	require.Len(t, view.Debates, 2)

	// Rooms come back in lexical order.
	assert.Equal(t, "Auditorium", view.Debates[0].RoomName)
	assert.Equal(t, "Library", view.Debates[1].RoomName)

	auditorium, library := view.Debates[0], view.Debates[1]
	assert.InDelta(t, 0.0, auditorium.CompletionPercentage, 0.001)
	assert.True(t, auditorium.HasFlaggedBallots)
	assert.True(t, auditorium.IsPublicSpeaking)

	assert.InDelta(t, 100.0, library.CompletionPercentage, 0.001)
	assert.False(t, library.HasFlaggedBallots)
	assert.Equal(t, 3, library.FinalBallots)

	assert.InDelta(t, 50.0, view.CompletionPercentage, 0.001)
}

func TestListDebatesPartialBallots(t *testing.T) {
	repo, tournament := newTournamentFixture(1, 0)
	round := addRound(repo, tournament.ID, 1, types.RoundTypePreliminary, types.RoundStatusInProgress)

	debate := rounddb.DebateListRow{
		ID:       uuid.New(),
		RoundID:  round.ID,
		RoomName: "Room 4",
		Judges:   []types.UserID{"judge-a", "judge-b", "judge-c"},
		Status:   types.DebateStatusInProgress,
	}
	repo.Debates = []rounddb.DebateListRow{debate}
	repo.Counts = map[types.DebateID]int{debate.ID: 1}

	service := newTestService(repo, NewFakeEventBus(), nil)
	view, err := service.ListDebates(context.Background(), round.ID)

	require.NoError(t, err)
	require.Len(t, view.Debates, 1)
	assert.InDelta(t, 33.333, view.Debates[0].CompletionPercentage, 0.01)
	assert.InDelta(t, 0.0, view.CompletionPercentage, 0.001)
}

func TestListDebatesRoundNotFound(t *testing.T) {
	service := newTestService(NewFakeRoundRepository(), NewFakeEventBus(), nil)

	_, err := service.ListDebates(context.Background(), uuid.New())
	require.Error(t, err)
	var notFound *types.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
