package roundservice

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/eventbus"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// ------------------------
// Fake Round Repo
// ------------------------

// FakeRoundRepository provides a programmable stub for the
// rounddb.Repository interface.
type FakeRoundRepository struct {
	trace []string

	Tournament *rounddb.Tournament
	Rounds     []rounddb.Round
	Debates    []rounddb.DebateListRow
	Counts     map[types.DebateID]int
	Flagged    map[types.DebateID]bool

	StatusUpdates []types.TournamentStatus

	GetTournamentFunc             func(ctx context.Context, db bun.IDB, id types.TournamentID) (*rounddb.Tournament, error)
	UpdateTournamentStatusFunc    func(ctx context.Context, db bun.IDB, id types.TournamentID, status types.TournamentStatus) error
	GetRoundFunc                  func(ctx context.Context, db bun.IDB, id types.RoundID) (*rounddb.Round, error)
	ListRoundsForTournamentFunc   func(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]rounddb.Round, error)
	ListDebatesForRoundFunc       func(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]rounddb.DebateListRow, error)
	CountFinalBallotsByDebateFunc func(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]int, error)
	FlaggedDebatesFunc            func(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]bool, error)
}

// NewFakeRoundRepository initializes a new fake with an empty trace.
func NewFakeRoundRepository() *FakeRoundRepository {
	return &FakeRoundRepository{
		trace:   []string{},
		Counts:  map[types.DebateID]int{},
		Flagged: map[types.DebateID]bool{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRoundRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRoundRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRoundRepository) GetTournament(ctx context.Context, db bun.IDB, id types.TournamentID) (*rounddb.Tournament, error) {
	f.record("GetTournament")
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, db, id)
	}
	if f.Tournament == nil || f.Tournament.ID != id {
		return nil, rounddb.ErrNotFound
	}
	copied := *f.Tournament
	return &copied, nil
}

func (f *FakeRoundRepository) UpdateTournamentStatus(ctx context.Context, db bun.IDB, id types.TournamentID, status types.TournamentStatus) error {
	f.record("UpdateTournamentStatus")
	f.StatusUpdates = append(f.StatusUpdates, status)
	if f.UpdateTournamentStatusFunc != nil {
		return f.UpdateTournamentStatusFunc(ctx, db, id, status)
	}
	if f.Tournament != nil && f.Tournament.ID == id {
		f.Tournament.Status = status
	}
	return nil
}

func (f *FakeRoundRepository) GetRound(ctx context.Context, db bun.IDB, id types.RoundID) (*rounddb.Round, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, id)
	}
	for _, round := range f.Rounds {
		if round.ID == id {
			copied := round
			return &copied, nil
		}
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepository) ListRoundsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]rounddb.Round, error) {
	f.record("ListRoundsForTournament")
	if f.ListRoundsForTournamentFunc != nil {
		return f.ListRoundsForTournamentFunc(ctx, db, tournamentID)
	}
	return f.Rounds, nil
}

func (f *FakeRoundRepository) ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]rounddb.DebateListRow, error) {
	f.record("ListDebatesForRound")
	if f.ListDebatesForRoundFunc != nil {
		return f.ListDebatesForRoundFunc(ctx, db, roundID)
	}
	return f.Debates, nil
}

func (f *FakeRoundRepository) CountFinalBallotsByDebate(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]int, error) {
	f.record("CountFinalBallotsByDebate")
	if f.CountFinalBallotsByDebateFunc != nil {
		return f.CountFinalBallotsByDebateFunc(ctx, db, roundID)
	}
	return f.Counts, nil
}

func (f *FakeRoundRepository) FlaggedDebates(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]bool, error) {
	f.record("FlaggedDebates")
	if f.FlaggedDebatesFunc != nil {
		return f.FlaggedDebatesFunc(ctx, db, roundID)
	}
	return f.Flagged, nil
}

var _ rounddb.Repository = (*FakeRoundRepository)(nil)

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

// ------------------------
// Fake Standings Enqueuer
// ------------------------

type FakeStandingsEnqueuer struct {
	Enqueued    []types.TournamentID
	EnqueueFunc func(ctx context.Context, tournamentID types.TournamentID) error
}

func (f *FakeStandingsEnqueuer) EnqueueStandingsSnapshot(ctx context.Context, tournamentID types.TournamentID) error {
	f.Enqueued = append(f.Enqueued, tournamentID)
	if f.EnqueueFunc != nil {
		return f.EnqueueFunc(ctx, tournamentID)
	}
	return nil
}

var _ StandingsEnqueuer = (*FakeStandingsEnqueuer)(nil)
