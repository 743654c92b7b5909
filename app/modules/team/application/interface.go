package teamservice

import (
	"context"

	teamevents "github.com/Podium-Debate/podium-engine/internal/events/team"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Service is the team module's application interface.
type Service interface {
	WithdrawTeam(ctx context.Context, payload teamevents.WithdrawTeamRequestedPayloadV1) (withdrawResult, error)
	GetStandings(ctx context.Context, tournamentID types.TournamentID) (*StandingsView, error)
	RefreshStandings(ctx context.Context, tournamentID types.TournamentID) error
}

var _ Service = (*TeamService)(nil)
