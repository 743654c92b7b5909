package pairingservice

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// ------------------------
// Fake Pairing Repo
// ------------------------

// FakePairingRepository provides a programmable stub for the
// pairingdb.Repository interface.
type FakePairingRepository struct {
	trace []string

	GetTournamentFunc            func(ctx context.Context, db bun.IDB, id types.TournamentID) (*pairingdb.TournamentRef, error)
	GetRoundFunc                 func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, roundNumber int) (*pairingdb.RoundRef, error)
	ListRoundsForTournamentFunc  func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]pairingdb.RoundRef, error)
	ListDebatesForRoundFunc      func(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]pairingdb.Debate, error)
	ListDebatesForTournamentFunc func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]pairingdb.Debate, error)
	DeleteDebatesForRoundFunc    func(ctx context.Context, db bun.IDB, roundID types.RoundID) error
	InsertDebatesFunc            func(ctx context.Context, db bun.IDB, debates []*pairingdb.Debate) error
	GetTeamsByIDsFunc            func(ctx context.Context, db bun.IDB, ids []types.TeamID) (map[types.TeamID]*pairingdb.TeamRef, error)
	ListTeamsForTournamentFunc   func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]pairingdb.TeamRef, error)
	ListJudgesFunc               func(ctx context.Context, db bun.IDB) ([]pairingdb.JudgeRef, error)
	GetSchoolsByIDsFunc          func(ctx context.Context, db bun.IDB, ids []types.SchoolID) (map[types.SchoolID]*pairingdb.SchoolRef, error)
	GetJudgesByIDsFunc           func(ctx context.Context, db bun.IDB, ids []types.UserID) (map[types.UserID]*pairingdb.JudgeRef, error)
	ListJudgeFeedbackFunc        func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]pairingdb.JudgeFeedbackRef, error)

	LastInsertedDebates []*pairingdb.Debate
}

// NewFakePairingRepository initializes a new fake with an empty trace.
func NewFakePairingRepository() *FakePairingRepository {
	return &FakePairingRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakePairingRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePairingRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakePairingRepository) GetTournament(ctx context.Context, db bun.IDB, id types.TournamentID) (*pairingdb.TournamentRef, error) {
	f.record("GetTournament")
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, db, id)
	}
	return &pairingdb.TournamentRef{ID: id, Status: types.TournamentStatusInProgress, JudgesPerDebate: 3}, nil
}

func (f *FakePairingRepository) GetRound(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, roundNumber int) (*pairingdb.RoundRef, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, tournamentID, roundNumber)
	}
	return &pairingdb.RoundRef{TournamentID: tournamentID, RoundNumber: roundNumber, Status: types.RoundStatusPending}, nil
}

func (f *FakePairingRepository) ListRoundsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]pairingdb.RoundRef, error) {
	f.record("ListRoundsForTournament")
	if f.ListRoundsForTournamentFunc != nil {
		return f.ListRoundsForTournamentFunc(ctx, db, tournamentID)
	}
	return []pairingdb.RoundRef{}, nil
}

func (f *FakePairingRepository) ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]pairingdb.Debate, error) {
	f.record("ListDebatesForRound")
	if f.ListDebatesForRoundFunc != nil {
		return f.ListDebatesForRoundFunc(ctx, db, roundID)
	}
	return []pairingdb.Debate{}, nil
}

func (f *FakePairingRepository) ListDebatesForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]pairingdb.Debate, error) {
	f.record("ListDebatesForTournament")
	if f.ListDebatesForTournamentFunc != nil {
		return f.ListDebatesForTournamentFunc(ctx, db, tournamentID)
	}
	return []pairingdb.Debate{}, nil
}

func (f *FakePairingRepository) DeleteDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) error {
	f.record("DeleteDebatesForRound")
	if f.DeleteDebatesForRoundFunc != nil {
		return f.DeleteDebatesForRoundFunc(ctx, db, roundID)
	}
	return nil
}

func (f *FakePairingRepository) InsertDebates(ctx context.Context, db bun.IDB, debates []*pairingdb.Debate) error {
	f.record("InsertDebates")
	f.LastInsertedDebates = debates
	if f.InsertDebatesFunc != nil {
		return f.InsertDebatesFunc(ctx, db, debates)
	}
	return nil
}

func (f *FakePairingRepository) GetTeamsByIDs(ctx context.Context, db bun.IDB, ids []types.TeamID) (map[types.TeamID]*pairingdb.TeamRef, error) {
	f.record("GetTeamsByIDs")
	if f.GetTeamsByIDsFunc != nil {
		return f.GetTeamsByIDsFunc(ctx, db, ids)
	}
	result := make(map[types.TeamID]*pairingdb.TeamRef, len(ids))
	for _, id := range ids {
		result[id] = &pairingdb.TeamRef{ID: id, Name: "Team " + id.String()[:8], Status: types.TeamStatusActive}
	}
	return result, nil
}

func (f *FakePairingRepository) ListTeamsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]pairingdb.TeamRef, error) {
	f.record("ListTeamsForTournament")
	if f.ListTeamsForTournamentFunc != nil {
		return f.ListTeamsForTournamentFunc(ctx, db, tournamentID)
	}
	return []pairingdb.TeamRef{}, nil
}

func (f *FakePairingRepository) ListJudges(ctx context.Context, db bun.IDB) ([]pairingdb.JudgeRef, error) {
	f.record("ListJudges")
	if f.ListJudgesFunc != nil {
		return f.ListJudgesFunc(ctx, db)
	}
	return []pairingdb.JudgeRef{}, nil
}

func (f *FakePairingRepository) GetSchoolsByIDs(ctx context.Context, db bun.IDB, ids []types.SchoolID) (map[types.SchoolID]*pairingdb.SchoolRef, error) {
	f.record("GetSchoolsByIDs")
	if f.GetSchoolsByIDsFunc != nil {
		return f.GetSchoolsByIDsFunc(ctx, db, ids)
	}
	result := make(map[types.SchoolID]*pairingdb.SchoolRef, len(ids))
	for _, id := range ids {
		result[id] = &pairingdb.SchoolRef{ID: id, Name: "School " + id.String()[:8]}
	}
	return result, nil
}

func (f *FakePairingRepository) GetJudgesByIDs(ctx context.Context, db bun.IDB, ids []types.UserID) (map[types.UserID]*pairingdb.JudgeRef, error) {
	f.record("GetJudgesByIDs")
	if f.GetJudgesByIDsFunc != nil {
		return f.GetJudgesByIDsFunc(ctx, db, ids)
	}
	result := make(map[types.UserID]*pairingdb.JudgeRef, len(ids))
	for _, id := range ids {
		result[id] = &pairingdb.JudgeRef{UserID: id, Name: string(id)}
	}
	return result, nil
}

func (f *FakePairingRepository) ListJudgeFeedback(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]pairingdb.JudgeFeedbackRef, error) {
	f.record("ListJudgeFeedback")
	if f.ListJudgeFeedbackFunc != nil {
		return f.ListJudgeFeedbackFunc(ctx, db, tournamentID)
	}
	return []pairingdb.JudgeFeedbackRef{}, nil
}

var _ pairingdb.Repository = (*FakePairingRepository)(nil)

// ------------------------
// Fake Event Bus
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
