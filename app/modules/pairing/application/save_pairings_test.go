package pairingservice

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	pairingevents "github.com/Podium-Debate/podium-engine/internal/events/pairing"
	sharedevents "github.com/Podium-Debate/podium-engine/internal/events/shared"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

func newTestService(repo *FakePairingRepository, bus *FakeEventBus) *PairingService {
	return NewPairingService(
		repo,
		bus,
		observability.NoOpLogger,
		&observability.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		nil,
		3,
		1<<20,
	)
}

func teamIDPtr(id types.TeamID) *types.TeamID { return &id }

func judgeIDPtr(id types.UserID) *types.UserID { return &id }

func TestPairingService_SavePairings_Success(t *testing.T) {
	repo := NewFakePairingRepository()
	bus := NewFakeEventBus()
	service := newTestService(repo, bus)

	tournamentID := uuid.New()
	teamA, teamB, teamC := uuid.New(), uuid.New(), uuid.New()

	result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
		TournamentID: tournamentID,
		RoundNumber:  1,
		RequestedBy:  "admin-1",
		Proposed: []pairingevents.ProposedDebate{
			{
				RoomName:          "101",
				PropositionTeamID: teamIDPtr(teamA),
				OppositionTeamID:  teamIDPtr(teamB),
				Judges:            []types.UserID{"judge-1", "judge-2", "judge-3"},
				HeadJudgeID:       judgeIDPtr("judge-1"),
			},
			{
				RoomName:          "102",
				PropositionTeamID: teamIDPtr(teamC),
				IsPublicSpeaking:  true,
				Judges:            []types.UserID{"judge-4"},
			},
		},
	})

	require.NoError(t, err)
	require.True(t, result.IsSuccess(), "expected success, got %+v", result.Failure)
	assert.Equal(t, 2, result.Success.DebateCount)
	assert.Empty(t, result.Success.Warnings)

	require.Len(t, repo.LastInsertedDebates, 2)
	assert.Equal(t, types.DebateStatusPending, repo.LastInsertedDebates[0].Status)
	assert.True(t, repo.LastInsertedDebates[1].IsPublicSpeaking)

	assert.Contains(t, repo.Trace(), "DeleteDebatesForRound")
	assert.Len(t, bus.Published[sharedevents.NotificationRequestedV1], 1)
	assert.Len(t, bus.Published[sharedevents.AuditRecordedV1], 1)
}

func TestPairingService_SavePairings_CollectsAllViolations(t *testing.T) {
	repo := NewFakePairingRepository()
	service := newTestService(repo, NewFakeEventBus())

	teamA, teamB := uuid.New(), uuid.New()

	result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
		TournamentID: uuid.New(),
		RoundNumber:  2,
		RequestedBy:  "admin-1",
		Proposed: []pairingevents.ProposedDebate{
			{
				// Same team on both sides, head judge off the panel.
				RoomName:          "201",
				PropositionTeamID: teamIDPtr(teamA),
				OppositionTeamID:  teamIDPtr(teamA),
				Judges:            []types.UserID{"judge-1"},
				HeadJudgeID:       judgeIDPtr("judge-9"),
			},
			{
				// Reuses teamA, no judges at all.
				RoomName:          "202",
				PropositionTeamID: teamIDPtr(teamA),
				OppositionTeamID:  teamIDPtr(teamB),
			},
		},
	})

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	violations := result.Failure.Violations
	require.NotEmpty(t, violations)

	joined := strings.Join(violations, "\n")
	assert.Contains(t, joined, "cannot debate itself")
	assert.Contains(t, joined, "head judge judge-9 is not on the panel")
	assert.Contains(t, joined, "appears in rooms 201 and 202")
	assert.Contains(t, joined, "needs at least one judge")

	assert.NotContains(t, repo.Trace(), "InsertDebates")
}

func TestPairingService_SavePairings_EvenPanelWarning(t *testing.T) {
	repo := NewFakePairingRepository()
	service := newTestService(repo, NewFakeEventBus())

	result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
		TournamentID: uuid.New(),
		RoundNumber:  1,
		RequestedBy:  "admin-1",
		Proposed: []pairingevents.ProposedDebate{
			{
				RoomName:          "301",
				PropositionTeamID: teamIDPtr(uuid.New()),
				OppositionTeamID:  teamIDPtr(uuid.New()),
				Judges:            []types.UserID{"judge-1", "judge-2"},
			},
		},
	})

	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.Len(t, result.Success.Warnings, 1)
	assert.Contains(t, result.Success.Warnings[0], "even panel")
}

func TestPairingService_SavePairings_RefusesLiveRound(t *testing.T) {
	roundID := uuid.New()

	tests := []struct {
		name         string
		debateStatus types.DebateStatus
	}{
		{name: "in progress debate", debateStatus: types.DebateStatusInProgress},
		{name: "completed debate", debateStatus: types.DebateStatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakePairingRepository()
			repo.GetRoundFunc = func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, roundNumber int) (*pairingdb.RoundRef, error) {
				return &pairingdb.RoundRef{ID: roundID, TournamentID: tournamentID, RoundNumber: roundNumber, Status: types.RoundStatusPending}, nil
			}
			repo.ListDebatesForRoundFunc = func(ctx context.Context, db bun.IDB, id types.RoundID) ([]pairingdb.Debate, error) {
				return []pairingdb.Debate{{ID: uuid.New(), RoundID: id, Status: tt.debateStatus}}, nil
			}
			service := newTestService(repo, NewFakeEventBus())

			result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
				TournamentID: uuid.New(),
				RoundNumber:  3,
				RequestedBy:  "admin-1",
				Proposed: []pairingevents.ProposedDebate{
					{
						RoomName:          "401",
						PropositionTeamID: teamIDPtr(uuid.New()),
						OppositionTeamID:  teamIDPtr(uuid.New()),
						Judges:            []types.UserID{"judge-1"},
					},
				},
			})

			require.NoError(t, err)
			require.True(t, result.IsFailure())
			assert.Contains(t, result.Failure.Reason, "cannot be re-paired")
			assert.NotContains(t, repo.Trace(), "DeleteDebatesForRound")
		})
	}
}

func TestPairingService_SavePairings_RepairsAfterNoShow(t *testing.T) {
	repo := NewFakePairingRepository()
	repo.ListDebatesForRoundFunc = func(ctx context.Context, db bun.IDB, id types.RoundID) ([]pairingdb.Debate, error) {
		return []pairingdb.Debate{{ID: uuid.New(), RoundID: id, Status: types.DebateStatusNoShow, IsPublicSpeaking: true}}, nil
	}
	service := newTestService(repo, NewFakeEventBus())

	result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
		TournamentID: uuid.New(),
		RoundNumber:  3,
		RequestedBy:  "admin-1",
		Proposed: []pairingevents.ProposedDebate{
			{
				RoomName:          "401",
				PropositionTeamID: teamIDPtr(uuid.New()),
				OppositionTeamID:  teamIDPtr(uuid.New()),
				Judges:            []types.UserID{"judge-1"},
			},
		},
	})

	require.NoError(t, err)
	require.True(t, result.IsSuccess(), "expected success, got %+v", result.Failure)
	assert.Contains(t, repo.Trace(), "DeleteDebatesForRound")
}

func TestPairingService_SavePairings_RefusesInProgressRound(t *testing.T) {
	repo := NewFakePairingRepository()
	repo.GetRoundFunc = func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, roundNumber int) (*pairingdb.RoundRef, error) {
		return &pairingdb.RoundRef{ID: uuid.New(), TournamentID: tournamentID, RoundNumber: roundNumber, Status: types.RoundStatusInProgress}, nil
	}
	service := newTestService(repo, NewFakeEventBus())

	result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
		TournamentID: uuid.New(),
		RoundNumber:  4,
		RequestedBy:  "admin-1",
		Proposed: []pairingevents.ProposedDebate{
			{
				RoomName:          "501",
				PropositionTeamID: teamIDPtr(uuid.New()),
				OppositionTeamID:  teamIDPtr(uuid.New()),
				Judges:            []types.UserID{"judge-1"},
			},
		},
	})

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "in progress")
}

func TestPairingService_SavePairings_SurfacesJudgeConflictWithoutBlocking(t *testing.T) {
	schoolID := uuid.New()
	teamA, teamB := uuid.New(), uuid.New()

	repo := NewFakePairingRepository()
	repo.GetTeamsByIDsFunc = func(ctx context.Context, db bun.IDB, ids []types.TeamID) (map[types.TeamID]*pairingdb.TeamRef, error) {
		return map[types.TeamID]*pairingdb.TeamRef{
			teamA: {ID: teamA, Name: "Team A", SchoolID: &schoolID, Status: types.TeamStatusActive},
			teamB: {ID: teamB, Name: "Team B", Status: types.TeamStatusActive},
		}, nil
	}
	repo.GetJudgesByIDsFunc = func(ctx context.Context, db bun.IDB, ids []types.UserID) (map[types.UserID]*pairingdb.JudgeRef, error) {
		return map[types.UserID]*pairingdb.JudgeRef{
			"judge-1": {UserID: "judge-1", Name: "Judge One", SchoolID: &schoolID},
		}, nil
	}
	service := newTestService(repo, NewFakeEventBus())

	result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
		TournamentID: uuid.New(),
		RoundNumber:  1,
		RequestedBy:  "admin-1",
		Proposed: []pairingevents.ProposedDebate{
			{
				RoomName:          "601",
				PropositionTeamID: teamIDPtr(teamA),
				OppositionTeamID:  teamIDPtr(teamB),
				Judges:            []types.UserID{"judge-1"},
			},
		},
	})

	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	require.Len(t, result.Success.Conflicts, 1)
	assert.Equal(t, types.ConflictJudgeSchool, result.Success.Conflicts[0].Type)
	assert.Equal(t, types.SeverityError, result.Success.Conflicts[0].Severity)
	assert.Contains(t, repo.Trace(), "InsertDebates")
}

func TestPairingService_SavePairings_TournamentNotFound(t *testing.T) {
	repo := NewFakePairingRepository()
	repo.GetTournamentFunc = func(ctx context.Context, db bun.IDB, id types.TournamentID) (*pairingdb.TournamentRef, error) {
		return nil, pairingdb.ErrNotFound
	}
	service := newTestService(repo, NewFakeEventBus())

	result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
		TournamentID: uuid.New(),
		RoundNumber:  1,
		RequestedBy:  "admin-1",
	})

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, result.Failure.Reason, "not found")
}

func TestPairingService_SavePairings_RejectsWithdrawnTeam(t *testing.T) {
	teamA, teamB := uuid.New(), uuid.New()

	repo := NewFakePairingRepository()
	repo.GetTeamsByIDsFunc = func(ctx context.Context, db bun.IDB, ids []types.TeamID) (map[types.TeamID]*pairingdb.TeamRef, error) {
		return map[types.TeamID]*pairingdb.TeamRef{
			teamA: {ID: teamA, Name: "Team A", Status: types.TeamStatusWithdrawn},
			teamB: {ID: teamB, Name: "Team B", Status: types.TeamStatusActive},
		}, nil
	}
	service := newTestService(repo, NewFakeEventBus())

	result, err := service.SavePairings(context.Background(), pairingevents.SavePairingsRequestedPayloadV1{
		TournamentID: uuid.New(),
		RoundNumber:  1,
		RequestedBy:  "admin-1",
		Proposed: []pairingevents.ProposedDebate{
			{
				RoomName:          "701",
				PropositionTeamID: teamIDPtr(teamA),
				OppositionTeamID:  teamIDPtr(teamB),
				Judges:            []types.UserID{"judge-1"},
			},
		},
	})

	require.NoError(t, err)
	require.True(t, result.IsFailure())
	assert.Contains(t, strings.Join(result.Failure.Violations, "\n"), "withdrawn")
}
