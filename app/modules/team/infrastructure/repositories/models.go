package teamdb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Team is the team module's owning model for the teams table.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:tm"`

	ID           types.TeamID       `bun:"id,pk,type:uuid"`
	TournamentID types.TournamentID `bun:"tournament_id,notnull,type:uuid"`
	SchoolID     *types.SchoolID    `bun:"school_id,nullzero,type:uuid"`
	Name         string             `bun:"name,notnull"`
	Members      []types.UserID     `bun:"members,type:jsonb"`
	Status       types.TeamStatus   `bun:"status,notnull"`
	CreatedAt    time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// School is the owning model for the schools table.
type School struct {
	bun.BaseModel `bun:"table:schools,alias:s"`

	ID        types.SchoolID `bun:"id,pk,type:uuid"`
	Name      string         `bun:"name,notnull"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Judge is the owning model for the judges directory table.
type Judge struct {
	bun.BaseModel `bun:"table:judges,alias:j"`

	UserID   types.UserID    `bun:"user_id,pk"`
	SchoolID *types.SchoolID `bun:"school_id,nullzero,type:uuid"`
	Name     string          `bun:"name,notnull"`
}

// TeamStanding is the river-maintained per-team summary row.
type TeamStanding struct {
	bun.BaseModel `bun:"table:team_standings,alias:ts"`

	TeamID         types.TeamID       `bun:"team_id,pk,type:uuid"`
	TournamentID   types.TournamentID `bun:"tournament_id,notnull,type:uuid"`
	Wins           int                `bun:"wins,notnull"`
	TotalPoints    float64            `bun:"total_points,notnull"`
	DebatesCounted int                `bun:"debates_counted,notnull"`
	ComputedAt     time.Time          `bun:"computed_at,nullzero,notnull"`
}

// DebateRow is the team module's view of a debate: the columns the
// withdrawal handler rewrites and the standings computation reads.
type DebateRow struct {
	bun.BaseModel `bun:"table:debates,alias:d"`

	ID                    types.DebateID     `bun:"id,pk,type:uuid"`
	RoundID               types.RoundID      `bun:"round_id,type:uuid"`
	TournamentID          types.TournamentID `bun:"tournament_id,type:uuid"`
	PropositionTeamID     *types.TeamID      `bun:"proposition_team_id,nullzero,type:uuid"`
	OppositionTeamID      *types.TeamID      `bun:"opposition_team_id,nullzero,type:uuid"`
	IsPublicSpeaking      bool               `bun:"is_public_speaking"`
	RoomName              string             `bun:"room_name"`
	Status                types.DebateStatus `bun:"status"`
	WinningTeamID         *types.TeamID      `bun:"winning_team_id,nullzero,type:uuid"`
	PropositionTeamPoints float64            `bun:"proposition_team_points"`
	OppositionTeamPoints  float64            `bun:"opposition_team_points"`
	UpdatedAt             time.Time          `bun:"updated_at,nullzero"`
}

// References reports whether the debate involves the given team.
func (d *DebateRow) References(teamID types.TeamID) bool {
	if d.PropositionTeamID != nil && *d.PropositionTeamID == teamID {
		return true
	}
	if d.OppositionTeamID != nil && *d.OppositionTeamID == teamID {
		return true
	}
	return false
}
