package teamintegrationtests

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	teamservice "github.com/Podium-Debate/podium-engine/app/modules/team/application"
	teamdb "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/integration_tests/testutils"
	"github.com/Podium-Debate/podium-engine/internal/observability"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// testEnv is the shared test environment managed by TestMain.
var testEnv *testutils.TestEnvironment

// TestDeps holds dependencies needed by individual tests.
type TestDeps struct {
	Ctx       context.Context
	BunDB     *bun.DB
	Repo      teamdb.Repository
	Service   teamservice.Service
	Generator *testutils.TestDataGenerator
}

// SetupTestTeamService wires a team service against the shared
// environment's database and event bus.
func SetupTestTeamService(t *testing.T) TestDeps {
	t.Helper()

	if err := testEnv.DeepCleanup(); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}

	repo := teamdb.NewRepository()
	service := teamservice.NewTeamService(
		repo,
		testEnv.EventBus,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		testEnv.DB,
	)

	return TestDeps{
		Ctx:       testEnv.Ctx,
		BunDB:     testEnv.DB,
		Repo:      repo,
		Service:   service,
		Generator: testutils.NewTestDataGenerator(),
	}
}

// tournamentFixture is a seeded tournament with one round and a roster
// of teams.
type tournamentFixture struct {
	Tournament *rounddb.Tournament
	Round      *rounddb.Round
	Teams      []*teamdb.Team
}

func seedTournament(t *testing.T, deps TestDeps, teamCount int) tournamentFixture {
	t.Helper()

	gen := deps.Generator
	tournament := gen.GenerateTournament(3, 2, 1)
	round := gen.GenerateRound(tournament.ID, 1, types.RoundTypePreliminary)
	teams := gen.GenerateTeams(tournament.ID, teamCount)

	ctx := deps.Ctx
	if _, err := deps.BunDB.NewInsert().Model(tournament).Exec(ctx); err != nil {
		t.Fatalf("Failed to insert tournament: %v", err)
	}
	if _, err := deps.BunDB.NewInsert().Model(round).Exec(ctx); err != nil {
		t.Fatalf("Failed to insert round: %v", err)
	}
	for _, team := range teams {
		if _, err := deps.BunDB.NewInsert().Model(team).Exec(ctx); err != nil {
			t.Fatalf("Failed to insert team %s: %v", team.Name, err)
		}
	}

	return tournamentFixture{Tournament: tournament, Round: round, Teams: teams}
}

// seedCompletedDebate records a decided debate between two roster teams.
func seedCompletedDebate(t *testing.T, deps TestDeps, fixture tournamentFixture, prop, opp, winner *teamdb.Team, propPoints, oppPoints float64) {
	t.Helper()

	now := time.Now().UTC()
	debate := &pairingdb.Debate{
		ID:                    types.DebateID(uuid.New()),
		RoundID:               fixture.Round.ID,
		TournamentID:          fixture.Tournament.ID,
		PropositionTeamID:     &prop.ID,
		OppositionTeamID:      &opp.ID,
		Judges:                deps.Generator.GenerateJudges(1),
		RoomName:              "Room 1",
		Status:                types.DebateStatusCompleted,
		PropositionTeamPoints: propPoints,
		OppositionTeamPoints:  oppPoints,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if winner != nil {
		debate.WinningTeamID = &winner.ID
	}
	if _, err := deps.BunDB.NewInsert().Model(debate).Exec(deps.Ctx); err != nil {
		t.Fatalf("Failed to insert completed debate: %v", err)
	}
}

// seedPendingDebate pairs two roster teams in a not-yet-run debate.
func seedPendingDebate(t *testing.T, deps TestDeps, fixture tournamentFixture, prop, opp *teamdb.Team, room string) types.DebateID {
	t.Helper()

	debate := deps.Generator.GenerateDebate(fixture.Round, prop, opp, deps.Generator.GenerateJudges(1))
	debate.RoomName = room
	if _, err := deps.BunDB.NewInsert().Model(debate).Exec(deps.Ctx); err != nil {
		t.Fatalf("Failed to insert pending debate: %v", err)
	}
	return debate.ID
}
