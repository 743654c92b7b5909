package ballotdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Repository is the ballot module's data access surface. Every method
// takes a bun.IDB so the consensus engine and the completion cascade
// can run inside one transaction.
type Repository interface {
	GetDebate(ctx context.Context, db bun.IDB, id types.DebateID) (*DebateRow, error)
	UpdateDebateOutcome(ctx context.Context, db bun.IDB, debate *DebateRow) error
	ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]DebateRow, error)

	GetBallot(ctx context.Context, db bun.IDB, debateID types.DebateID, judgeID types.UserID) (*Ballot, error)
	GetBallotByID(ctx context.Context, db bun.IDB, id types.BallotID) (*Ballot, error)
	UpsertBallot(ctx context.Context, db bun.IDB, ballot *Ballot) error
	UpdateBallot(ctx context.Context, db bun.IDB, ballot *Ballot) error
	ListFinalBallots(ctx context.Context, db bun.IDB, debateID types.DebateID) ([]Ballot, error)
	CountFinalBallotsByDebate(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]int, error)

	GetRound(ctx context.Context, db bun.IDB, id types.RoundID) (*RoundRow, error)
	CompleteRound(ctx context.Context, db bun.IDB, roundID types.RoundID, endTime time.Time) (bool, error)
}
