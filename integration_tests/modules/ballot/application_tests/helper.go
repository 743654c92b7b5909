package ballotintegrationtests

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	ballotservice "github.com/Podium-Debate/podium-engine/app/modules/ballot/application"
	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
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
	Repo      ballotdb.Repository
	Service   ballotservice.Service
	Generator *testutils.TestDataGenerator
}

// SetupTestBallotService wires a ballot service against the shared
// environment's database and event bus.
func SetupTestBallotService(t *testing.T) TestDeps {
	t.Helper()

	if err := testEnv.DeepCleanup(); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}

	repo := ballotdb.NewRepository()
	service := ballotservice.NewBallotService(
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

// debateFixture is a seeded tournament with one round, two teams and a
// judged debate.
type debateFixture struct {
	Tournament *rounddb.Tournament
	Round      *rounddb.Round
	Prop       *teamdb.Team
	Opp        *teamdb.Team
	Judges     []types.UserID
	Debate     *pairingdb.Debate
}

func seedDebate(t *testing.T, deps TestDeps, judgeCount int) debateFixture {
	t.Helper()

	gen := deps.Generator
	tournament := gen.GenerateTournament(3, 2, judgeCount)
	round := gen.GenerateRound(tournament.ID, 1, types.RoundTypePreliminary)
	teams := gen.GenerateTeams(tournament.ID, 2)
	judges := gen.GenerateJudges(judgeCount)
	debate := gen.GenerateDebate(round, teams[0], teams[1], judges)

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
	if _, err := deps.BunDB.NewInsert().Model(debate).Exec(ctx); err != nil {
		t.Fatalf("Failed to insert debate: %v", err)
	}

	return debateFixture{
		Tournament: tournament,
		Round:      round,
		Prop:       teams[0],
		Opp:        teams[1],
		Judges:     judges,
		Debate:     debate,
	}
}

func loadDebateRow(t *testing.T, deps TestDeps, id types.DebateID) *ballotdb.DebateRow {
	t.Helper()
	row := new(ballotdb.DebateRow)
	if err := deps.BunDB.NewSelect().Model(row).Where("d.id = ?", id).Scan(deps.Ctx); err != nil {
		t.Fatalf("Failed to load debate %s: %v", id, err)
	}
	return row
}

func loadRound(t *testing.T, deps TestDeps, id types.RoundID) *rounddb.Round {
	t.Helper()
	round := new(rounddb.Round)
	if err := deps.BunDB.NewSelect().Model(round).Where("r.id = ?", id).Scan(deps.Ctx); err != nil {
		t.Fatalf("Failed to load round %s: %v", id, err)
	}
	return round
}
