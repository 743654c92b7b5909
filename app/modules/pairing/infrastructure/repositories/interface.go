package pairingdb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Repository is the pairing module's data access surface. Every method
// takes a bun.IDB so callers can compose them inside a transaction.
type Repository interface {
	GetTournament(ctx context.Context, db bun.IDB, id types.TournamentID) (*TournamentRef, error)
	GetRound(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, roundNumber int) (*RoundRef, error)
	ListRoundsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]RoundRef, error)
	ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]Debate, error)
	ListDebatesForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]Debate, error)
	DeleteDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) error
	InsertDebates(ctx context.Context, db bun.IDB, debates []*Debate) error

	GetTeamsByIDs(ctx context.Context, db bun.IDB, ids []types.TeamID) (map[types.TeamID]*TeamRef, error)
	ListTeamsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]TeamRef, error)
	ListJudges(ctx context.Context, db bun.IDB) ([]JudgeRef, error)
	GetSchoolsByIDs(ctx context.Context, db bun.IDB, ids []types.SchoolID) (map[types.SchoolID]*SchoolRef, error)
	GetJudgesByIDs(ctx context.Context, db bun.IDB, ids []types.UserID) (map[types.UserID]*JudgeRef, error)

	ListJudgeFeedback(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]JudgeFeedbackRef, error)
}
