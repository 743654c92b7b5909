package ballotservice

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// ------------------------
// Fake Ballot Repo
// ------------------------

// FakeBallotRepository is a programmable in-memory stand-in for
// ballotdb.Repository. It keeps a real ballot store so the consensus
// recomputation inside a submission sees the ballot it just wrote.
type FakeBallotRepository struct {
	trace []string

	Debates map[types.DebateID]*ballotdb.DebateRow
	Ballots map[types.DebateID]map[types.UserID]*ballotdb.Ballot
	Round   *ballotdb.RoundRow

	RoundCompletedAt *time.Time

	GetDebateFunc                 func(ctx context.Context, db bun.IDB, id types.DebateID) (*ballotdb.DebateRow, error)
	UpdateDebateOutcomeFunc       func(ctx context.Context, db bun.IDB, debate *ballotdb.DebateRow) error
	ListDebatesForRoundFunc       func(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]ballotdb.DebateRow, error)
	GetBallotFunc                 func(ctx context.Context, db bun.IDB, debateID types.DebateID, judgeID types.UserID) (*ballotdb.Ballot, error)
	GetBallotByIDFunc             func(ctx context.Context, db bun.IDB, id types.BallotID) (*ballotdb.Ballot, error)
	UpsertBallotFunc              func(ctx context.Context, db bun.IDB, ballot *ballotdb.Ballot) error
	UpdateBallotFunc              func(ctx context.Context, db bun.IDB, ballot *ballotdb.Ballot) error
	ListFinalBallotsFunc          func(ctx context.Context, db bun.IDB, debateID types.DebateID) ([]ballotdb.Ballot, error)
	CountFinalBallotsByDebateFunc func(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]int, error)
	GetRoundFunc                  func(ctx context.Context, db bun.IDB, id types.RoundID) (*ballotdb.RoundRow, error)
	CompleteRoundFunc             func(ctx context.Context, db bun.IDB, roundID types.RoundID, endTime time.Time) (bool, error)
}

// NewFakeBallotRepository initializes a fake with empty stores and a
// pending round.
func NewFakeBallotRepository() *FakeBallotRepository {
	return &FakeBallotRepository{
		trace:   []string{},
		Debates: map[types.DebateID]*ballotdb.DebateRow{},
		Ballots: map[types.DebateID]map[types.UserID]*ballotdb.Ballot{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeBallotRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeBallotRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// AddDebate registers a debate and wires its round onto the fake.
func (f *FakeBallotRepository) AddDebate(debate *ballotdb.DebateRow) {
	f.Debates[debate.ID] = debate
	if f.Round == nil {
		f.Round = &ballotdb.RoundRow{
			ID:           debate.RoundID,
			TournamentID: debate.TournamentID,
			RoundNumber:  1,
			Type:         types.RoundTypePreliminary,
			Status:       types.RoundStatusInProgress,
		}
	}
}

func (f *FakeBallotRepository) GetDebate(ctx context.Context, db bun.IDB, id types.DebateID) (*ballotdb.DebateRow, error) {
	f.record("GetDebate")
	if f.GetDebateFunc != nil {
		return f.GetDebateFunc(ctx, db, id)
	}
	debate, ok := f.Debates[id]
	if !ok {
		return nil, ballotdb.ErrNotFound
	}
	copied := *debate
	return &copied, nil
}

func (f *FakeBallotRepository) UpdateDebateOutcome(ctx context.Context, db bun.IDB, debate *ballotdb.DebateRow) error {
	f.record("UpdateDebateOutcome")
	if f.UpdateDebateOutcomeFunc != nil {
		return f.UpdateDebateOutcomeFunc(ctx, db, debate)
	}
	copied := *debate
	f.Debates[debate.ID] = &copied
	return nil
}

func (f *FakeBallotRepository) ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]ballotdb.DebateRow, error) {
	f.record("ListDebatesForRound")
	if f.ListDebatesForRoundFunc != nil {
		return f.ListDebatesForRoundFunc(ctx, db, roundID)
	}
	var out []ballotdb.DebateRow
	for _, debate := range f.Debates {
		if debate.RoundID == roundID {
			out = append(out, *debate)
		}
	}
	return out, nil
}

func (f *FakeBallotRepository) GetBallot(ctx context.Context, db bun.IDB, debateID types.DebateID, judgeID types.UserID) (*ballotdb.Ballot, error) {
	f.record("GetBallot")
	if f.GetBallotFunc != nil {
		return f.GetBallotFunc(ctx, db, debateID, judgeID)
	}
	ballot, ok := f.Ballots[debateID][judgeID]
	if !ok {
		return nil, ballotdb.ErrNotFound
	}
	copied := *ballot
	return &copied, nil
}

func (f *FakeBallotRepository) GetBallotByID(ctx context.Context, db bun.IDB, id types.BallotID) (*ballotdb.Ballot, error) {
	f.record("GetBallotByID")
	if f.GetBallotByIDFunc != nil {
		return f.GetBallotByIDFunc(ctx, db, id)
	}
	for _, byJudge := range f.Ballots {
		for _, ballot := range byJudge {
			if ballot.ID == id {
				copied := *ballot
				return &copied, nil
			}
		}
	}
	return nil, ballotdb.ErrNotFound
}

func (f *FakeBallotRepository) UpsertBallot(ctx context.Context, db bun.IDB, ballot *ballotdb.Ballot) error {
	f.record("UpsertBallot")
	if f.UpsertBallotFunc != nil {
		return f.UpsertBallotFunc(ctx, db, ballot)
	}
	f.store(ballot)
	return nil
}

func (f *FakeBallotRepository) UpdateBallot(ctx context.Context, db bun.IDB, ballot *ballotdb.Ballot) error {
	f.record("UpdateBallot")
	if f.UpdateBallotFunc != nil {
		return f.UpdateBallotFunc(ctx, db, ballot)
	}
	f.store(ballot)
	return nil
}

func (f *FakeBallotRepository) store(ballot *ballotdb.Ballot) {
	if f.Ballots[ballot.DebateID] == nil {
		f.Ballots[ballot.DebateID] = map[types.UserID]*ballotdb.Ballot{}
	}
	copied := *ballot
	f.Ballots[ballot.DebateID][ballot.JudgeID] = &copied
}

func (f *FakeBallotRepository) ListFinalBallots(ctx context.Context, db bun.IDB, debateID types.DebateID) ([]ballotdb.Ballot, error) {
	f.record("ListFinalBallots")
	if f.ListFinalBallotsFunc != nil {
		return f.ListFinalBallotsFunc(ctx, db, debateID)
	}
	var out []ballotdb.Ballot
	for _, ballot := range f.Ballots[debateID] {
		if ballot.FeedbackSubmitted {
			out = append(out, *ballot)
		}
	}
	return out, nil
}

func (f *FakeBallotRepository) CountFinalBallotsByDebate(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]int, error) {
	f.record("CountFinalBallotsByDebate")
	if f.CountFinalBallotsByDebateFunc != nil {
		return f.CountFinalBallotsByDebateFunc(ctx, db, roundID)
	}
	counts := map[types.DebateID]int{}
	for _, debate := range f.Debates {
		if debate.RoundID != roundID {
			continue
		}
		for _, ballot := range f.Ballots[debate.ID] {
			if ballot.FeedbackSubmitted {
				counts[debate.ID]++
			}
		}
	}
	return counts, nil
}

func (f *FakeBallotRepository) GetRound(ctx context.Context, db bun.IDB, id types.RoundID) (*ballotdb.RoundRow, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, id)
	}
	if f.Round == nil || f.Round.ID != id {
		return nil, ballotdb.ErrNotFound
	}
	copied := *f.Round
	return &copied, nil
}

func (f *FakeBallotRepository) CompleteRound(ctx context.Context, db bun.IDB, roundID types.RoundID, endTime time.Time) (bool, error) {
	f.record("CompleteRound")
	if f.CompleteRoundFunc != nil {
		return f.CompleteRoundFunc(ctx, db, roundID, endTime)
	}
	if f.Round == nil || f.Round.ID != roundID || f.Round.Status == types.RoundStatusCompleted {
		return false, nil
	}
	f.Round.Status = types.RoundStatusCompleted
	f.Round.EndTime = &endTime
	f.RoundCompletedAt = &endTime
	return true, nil
}

var _ ballotdb.Repository = (*FakeBallotRepository)(nil)

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
