package rounddb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Repository is the round module's data access surface.
type Repository interface {
	GetTournament(ctx context.Context, db bun.IDB, id types.TournamentID) (*Tournament, error)
	UpdateTournamentStatus(ctx context.Context, db bun.IDB, id types.TournamentID, status types.TournamentStatus) error

	GetRound(ctx context.Context, db bun.IDB, id types.RoundID) (*Round, error)
	ListRoundsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]Round, error)

	ListDebatesForRound(ctx context.Context, db bun.IDB, roundID types.RoundID) ([]DebateListRow, error)
	CountFinalBallotsByDebate(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]int, error)
	FlaggedDebates(ctx context.Context, db bun.IDB, roundID types.RoundID) (map[types.DebateID]bool, error)
}
