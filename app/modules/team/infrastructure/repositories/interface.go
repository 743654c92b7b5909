package teamdb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Repository is the team module's data access surface.
type Repository interface {
	GetTeam(ctx context.Context, db bun.IDB, id types.TeamID) (*Team, error)
	ListTeamsForTournament(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]Team, error)
	UpdateTeamStatus(ctx context.Context, db bun.IDB, id types.TeamID, status types.TeamStatus) error

	ListPendingDebatesForTeam(ctx context.Context, db bun.IDB, tournamentID types.TournamentID, teamID types.TeamID) ([]DebateRow, error)
	UpdateDebatePairing(ctx context.Context, db bun.IDB, debate *DebateRow) error
	ListCompletedDebates(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]DebateRow, error)

	UpsertStandings(ctx context.Context, db bun.IDB, standings []*TeamStanding) error
	ListStandings(ctx context.Context, db bun.IDB, tournamentID types.TournamentID) ([]TeamStanding, error)
}
