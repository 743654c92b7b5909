// Package teamevents defines the team module's topics and payloads.
package teamevents

import (
	"github.com/Podium-Debate/podium-engine/internal/types"
)

const (
	WithdrawTeamRequestedV1 = "team.withdraw.requested.v1"
	TeamWithdrawnV1         = "team.withdrawn.v1"
	TeamWithdrawFailedV1    = "team.withdraw.failed.v1"

	StandingsSnapshotRequestedV1 = "team.standings.snapshot.requested.v1"
)

// WithdrawTeamRequestedPayloadV1 withdraws a team from its tournament.
type WithdrawTeamRequestedPayloadV1 struct {
	TeamID      types.TeamID `json:"team_id"`
	RequestedBy types.UserID `json:"requested_by"`
	Reason      string       `json:"reason,omitempty"`
}

// TeamWithdrawnPayloadV1 reports a completed withdrawal and the rooms
// converted to public-speaking debates.
type TeamWithdrawnPayloadV1 struct {
	TeamID        types.TeamID       `json:"team_id"`
	TournamentID  types.TournamentID `json:"tournament_id"`
	Reason        string             `json:"reason,omitempty"`
	AffectedRooms []string           `json:"affected_rooms,omitempty"`
}

// TeamWithdrawFailedPayloadV1 reports a rejected withdrawal.
type TeamWithdrawFailedPayloadV1 struct {
	TeamID types.TeamID `json:"team_id"`
	Reason string       `json:"reason"`
}

// StandingsSnapshotRequestedPayloadV1 asks the standings worker to
// refresh the per-team summary rows for a tournament.
type StandingsSnapshotRequestedPayloadV1 struct {
	TournamentID types.TournamentID `json:"tournament_id"`
}
