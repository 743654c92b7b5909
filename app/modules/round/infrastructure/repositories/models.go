package rounddb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Tournament is the round module's owning model for the tournaments
// table.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID                types.TournamentID     `bun:"id,pk,type:uuid"`
	Name              string                 `bun:"name,notnull"`
	Format            types.TournamentFormat `bun:"format,notnull"`
	TeamSize          int                    `bun:"team_size,notnull"`
	JudgesPerDebate   int                    `bun:"judges_per_debate,notnull"`
	PreliminaryRounds int                    `bun:"preliminary_rounds,notnull"`
	EliminationRounds int                    `bun:"elimination_rounds,notnull"`
	Status            types.TournamentStatus `bun:"status,notnull"`
	CreatedAt         time.Time              `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time              `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Round is the round module's owning model for the rounds table.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID           types.RoundID      `bun:"id,pk,type:uuid"`
	TournamentID types.TournamentID `bun:"tournament_id,notnull,type:uuid"`
	RoundNumber  int                `bun:"round_number,notnull"`
	Type         types.RoundType    `bun:"type,notnull"`
	Status       types.RoundStatus  `bun:"status,notnull"`
	StartTime    *time.Time         `bun:"start_time,nullzero"`
	EndTime      *time.Time         `bun:"end_time,nullzero"`
	CreatedAt    time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// DebateListRow is the slice of a debate the round listing surfaces.
type DebateListRow struct {
	bun.BaseModel `bun:"table:debates,alias:d"`

	ID                types.DebateID     `bun:"id,pk,type:uuid"`
	RoundID           types.RoundID      `bun:"round_id,type:uuid"`
	PropositionTeamID *types.TeamID      `bun:"proposition_team_id,nullzero,type:uuid"`
	OppositionTeamID  *types.TeamID      `bun:"opposition_team_id,nullzero,type:uuid"`
	IsPublicSpeaking  bool               `bun:"is_public_speaking"`
	Judges            []types.UserID     `bun:"judges,type:jsonb"`
	HeadJudgeID       *types.UserID      `bun:"head_judge_id,nullzero"`
	RoomName          string             `bun:"room_name"`
	Status            types.DebateStatus `bun:"status"`
	WinningTeamID     *types.TeamID      `bun:"winning_team_id,nullzero,type:uuid"`
}
