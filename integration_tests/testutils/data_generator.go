package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	teamdb "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/repositories"
	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// TestDataGenerator builds realistic tournament fixtures for
// integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator with an optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// GenerateTournament builds an in-progress tournament row.
func (g *TestDataGenerator) GenerateTournament(prelimRounds, elimRounds, judgesPerDebate int) *rounddb.Tournament {
	now := time.Now().UTC()
	return &rounddb.Tournament{
		ID:                types.TournamentID(uuid.New()),
		Name:              g.faker.City() + " Invitational",
		Format:            types.FormatBritishParliament,
		TeamSize:          2,
		JudgesPerDebate:   judgesPerDebate,
		PreliminaryRounds: prelimRounds,
		EliminationRounds: elimRounds,
		Status:            types.TournamentStatusInProgress,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// GenerateRound builds an in-progress round for the tournament.
func (g *TestDataGenerator) GenerateRound(tournamentID types.TournamentID, number int, roundType types.RoundType) *rounddb.Round {
	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	return &rounddb.Round{
		ID:           types.RoundID(uuid.New()),
		TournamentID: tournamentID,
		RoundNumber:  number,
		Type:         roundType,
		Status:       types.RoundStatusInProgress,
		StartTime:    &start,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// GenerateTeams builds n active teams registered to the tournament.
func (g *TestDataGenerator) GenerateTeams(tournamentID types.TournamentID, n int) []*teamdb.Team {
	now := time.Now().UTC()
	teams := make([]*teamdb.Team, n)
	for i := range teams {
		teams[i] = &teamdb.Team{
			ID:           types.TeamID(uuid.New()),
			TournamentID: tournamentID,
			Name:         g.faker.LastName() + " " + string(rune('A'+i)),
			Members: []types.UserID{
				types.UserID(g.faker.Username()),
				types.UserID(g.faker.Username()),
			},
			Status:    types.TeamStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return teams
}

// GenerateJudges builds n judge user ids.
func (g *TestDataGenerator) GenerateJudges(n int) []types.UserID {
	judges := make([]types.UserID, n)
	for i := range judges {
		judges[i] = types.UserID(g.faker.Username())
	}
	return judges
}

// GenerateDebate pairs two teams in a room with the given panel.
func (g *TestDataGenerator) GenerateDebate(round *rounddb.Round, prop, opp *teamdb.Team, judges []types.UserID) *pairingdb.Debate {
	now := time.Now().UTC()
	debate := &pairingdb.Debate{
		ID:           types.DebateID(uuid.New()),
		RoundID:      round.ID,
		TournamentID: round.TournamentID,
		Judges:       judges,
		RoomName:     "Room " + g.faker.DigitN(3),
		Status:       types.DebateStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if prop != nil {
		debate.PropositionTeamID = &prop.ID
	}
	if opp != nil {
		debate.OppositionTeamID = &opp.ID
	}
	if len(judges) > 0 {
		debate.HeadJudgeID = &judges[0]
	}
	return debate
}

// GenerateSpeakerScore builds one in-range rubric score for a team
// member.
func (g *TestDataGenerator) GenerateSpeakerScore(team *teamdb.Team, member int) ballotevents.SpeakerScoreInput {
	score := func() float64 { return float64(g.faker.IntRange(12, 25)) }
	return ballotevents.SpeakerScoreInput{
		SpeakerID:             team.Members[member],
		TeamID:                team.ID,
		RoleFulfillment:       score(),
		ArgumentationClash:    score(),
		ContentDevelopment:    score(),
		StyleStrategyDelivery: score(),
	}
}

// GenerateSpeakerScores scores every member of the team.
func (g *TestDataGenerator) GenerateSpeakerScores(team *teamdb.Team) []ballotevents.SpeakerScoreInput {
	scores := make([]ballotevents.SpeakerScoreInput, len(team.Members))
	for i := range team.Members {
		scores[i] = g.GenerateSpeakerScore(team, i)
	}
	return scores
}
