package teamservice

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	teamdb "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// ------------------------
// Fake Team Repo
// ------------------------

// FakeTeamRepository is a programmable in-memory stand-in for
// teamdb.Repository. Debates live in one slice so the withdrawal path
// sees its own pairing rewrites.
type FakeTeamRepository struct {
	trace []string

	Teams     map[types.TeamID]*teamdb.Team
	Debates   []*teamdb.DebateRow
	Standings map[types.TeamID]*teamdb.TeamStanding

	GetTeamFunc                   func(ctx context.Context, db bun.IDB, id types.TeamID) (*teamdb.Team, error)
	ListTeamsForTournamentFunc    func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]teamdb.Team, error)
	UpdateTeamStatusFunc          func(ctx context.Context, db bun.IDB, id types.TeamID, status types.TeamStatus) error
	ListPendingDebatesForTeamFunc func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, teamID types.TeamID) ([]teamdb.DebateRow, error)
	UpdateDebatePairingFunc       func(ctx context.Context, db bun.IDB, debate *teamdb.DebateRow) error
	ListCompletedDebatesFunc      func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]teamdb.DebateRow, error)
	UpsertStandingsFunc           func(ctx context.Context, db bun.IDB, standings []*teamdb.TeamStanding) error
	ListStandingsFunc             func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]teamdb.TeamStanding, error)
}

func NewFakeTeamRepository() *FakeTeamRepository {
	return &FakeTeamRepository{
		trace:     []string{},
		Teams:     map[types.TeamID]*teamdb.Team{},
		Standings: map[types.TeamID]*teamdb.TeamStanding{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeTeamRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeTeamRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTeamRepository) GetTeam(ctx context.Context, db bun.IDB, id types.TeamID) (*teamdb.Team, error) {
	f.record("GetTeam")
	if f.GetTeamFunc != nil {
		return f.GetTeamFunc(ctx, db, id)
	}
	team, ok := f.Teams[id]
	if !ok {
		return nil, teamdb.ErrNotFound
	}
	copied := *team
	return &copied, nil
}

func (f *FakeTeamRepository) ListTeamsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]teamdb.Team, error) {
	f.record("ListTeamsForTournament")
	if f.ListTeamsForTournamentFunc != nil {
		return f.ListTeamsForTournamentFunc(ctx, db, tournamentID)
	}
	var out []teamdb.Team
	for _, team := range f.Teams {
		if team.TournamentID == tournamentID {
			out = append(out, *team)
		}
	}
	return out, nil
}

func (f *FakeTeamRepository) UpdateTeamStatus(ctx context.Context, db bun.IDB, id types.TeamID, status types.TeamStatus) error {
	f.record("UpdateTeamStatus")
	if f.UpdateTeamStatusFunc != nil {
		return f.UpdateTeamStatusFunc(ctx, db, id, status)
	}
	team, ok := f.Teams[id]
	if !ok {
		return teamdb.ErrNotFound
	}
	team.Status = status
	return nil
}

func (f *FakeTeamRepository) ListPendingDebatesForTeam(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, teamID types.TeamID) ([]teamdb.DebateRow, error) {
	f.record("ListPendingDebatesForTeam")
	if f.ListPendingDebatesForTeamFunc != nil {
		return f.ListPendingDebatesForTeamFunc(ctx, db, tournamentID, teamID)
	}
	var out []teamdb.DebateRow
	for _, debate := range f.Debates {
		if debate.TournamentID == tournamentID && debate.Status == types.DebateStatusPending && debate.References(teamID) {
			out = append(out, *debate)
		}
	}
	return out, nil
}

func (f *FakeTeamRepository) UpdateDebatePairing(ctx context.Context, db bun.IDB, debate *teamdb.DebateRow) error {
	f.record("UpdateDebatePairing")
	if f.UpdateDebatePairingFunc != nil {
		return f.UpdateDebatePairingFunc(ctx, db, debate)
	}
	for i, existing := range f.Debates {
		if existing.ID == debate.ID {
			copied := *debate
			f.Debates[i] = &copied
			return nil
		}
	}
	return teamdb.ErrNoRowsAffected
}

func (f *FakeTeamRepository) ListCompletedDebates(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]teamdb.DebateRow, error) {
	f.record("ListCompletedDebates")
	if f.ListCompletedDebatesFunc != nil {
		return f.ListCompletedDebatesFunc(ctx, db, tournamentID)
	}
	var out []teamdb.DebateRow
	for _, debate := range f.Debates {
		if debate.TournamentID == tournamentID && debate.Status == types.DebateStatusCompleted {
			out = append(out, *debate)
		}
	}
	return out, nil
}

func (f *FakeTeamRepository) UpsertStandings(ctx context.Context, db bun.IDB, standings []*teamdb.TeamStanding) error {
	f.record("UpsertStandings")
	if f.UpsertStandingsFunc != nil {
		return f.UpsertStandingsFunc(ctx, db, standings)
	}
	for _, standing := range standings {
		copied := *standing
		f.Standings[standing.TeamID] = &copied
	}
	return nil
}

func (f *FakeTeamRepository) ListStandings(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]teamdb.TeamStanding, error) {
	f.record("ListStandings")
	if f.ListStandingsFunc != nil {
		return f.ListStandingsFunc(ctx, db, tournamentID)
	}
	var out []teamdb.TeamStanding
	for _, standing := range f.Standings {
		if standing.TournamentID == tournamentID {
			out = append(out, *standing)
		}
	}
	return out, nil
}

var _ teamdb.Repository = (*FakeTeamRepository)(nil)

// ------------------------
// Fake EventBus
// ------------------------

// FakeEventBus records published topics and payload bytes.
type FakeEventBus struct {
	Published   map[string][]*message.Message
	PublishFunc func(topic string, messages ...*message.Message) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: map[string][]*message.Message{}}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	f.Published[topic] = append(f.Published[topic], messages...)
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) Close() error { return nil }

var _ eventbus.EventBus = (*FakeEventBus)(nil)
