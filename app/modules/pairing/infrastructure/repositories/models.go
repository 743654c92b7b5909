package pairingdb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Debate is one scheduled matchup (or public-speaking bye) in a round.
// The pairing module owns this table; the ballot and team modules
// update outcome and bye fields through their own repositories.
type Debate struct {
	bun.BaseModel `bun:"table:debates,alias:d"`

	ID                    types.DebateID     `bun:"id,pk,type:uuid"`
	RoundID               types.RoundID      `bun:"round_id,notnull,type:uuid"`
	TournamentID          types.TournamentID `bun:"tournament_id,notnull,type:uuid"`
	PropositionTeamID     *types.TeamID      `bun:"proposition_team_id,nullzero,type:uuid"`
	OppositionTeamID      *types.TeamID      `bun:"opposition_team_id,nullzero,type:uuid"`
	IsPublicSpeaking      bool               `bun:"is_public_speaking,notnull,default:false"`
	Judges                []types.UserID     `bun:"judges,type:jsonb"`
	HeadJudgeID           *types.UserID      `bun:"head_judge_id,nullzero"`
	RoomName              string             `bun:"room_name,notnull"`
	Status                types.DebateStatus `bun:"status,notnull"`
	WinningTeamID         *types.TeamID      `bun:"winning_team_id,nullzero,type:uuid"`
	WinningPosition       *types.Position    `bun:"winning_position,nullzero"`
	PropositionVotes      int                `bun:"proposition_votes,notnull,default:0"`
	OppositionVotes       int                `bun:"opposition_votes,notnull,default:0"`
	PropositionTeamPoints float64            `bun:"proposition_team_points,notnull,default:0"`
	OppositionTeamPoints  float64            `bun:"opposition_team_points,notnull,default:0"`
	CreatedAt             time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// TeamIDs returns the participating team ids, skipping empty slots.
func (d *Debate) TeamIDs() []types.TeamID {
	ids := make([]types.TeamID, 0, 2)
	if d.PropositionTeamID != nil {
		ids = append(ids, *d.PropositionTeamID)
	}
	if d.OppositionTeamID != nil {
		ids = append(ids, *d.OppositionTeamID)
	}
	return ids
}

// Read models over tables owned by other modules. Only the columns the
// pairing module needs.

// TournamentRef is the pairing view of a tournament.
type TournamentRef struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID              types.TournamentID     `bun:"id,pk,type:uuid"`
	Name            string                 `bun:"name"`
	Status          types.TournamentStatus `bun:"status"`
	JudgesPerDebate int                    `bun:"judges_per_debate"`
}

// RoundRef is the pairing view of a round.
type RoundRef struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID           types.RoundID      `bun:"id,pk,type:uuid"`
	TournamentID types.TournamentID `bun:"tournament_id,type:uuid"`
	RoundNumber  int                `bun:"round_number"`
	Type         types.RoundType    `bun:"type"`
	Status       types.RoundStatus  `bun:"status"`
}

// TeamRef is the pairing view of a team.
type TeamRef struct {
	bun.BaseModel `bun:"table:teams,alias:tm"`

	ID           types.TeamID       `bun:"id,pk,type:uuid"`
	TournamentID types.TournamentID `bun:"tournament_id,type:uuid"`
	Name         string             `bun:"name"`
	SchoolID     *types.SchoolID    `bun:"school_id,nullzero,type:uuid"`
	Status       types.TeamStatus   `bun:"status"`
	Members      []types.UserID     `bun:"members,type:jsonb"`
}

// SchoolRef is the pairing view of a school.
type SchoolRef struct {
	bun.BaseModel `bun:"table:schools,alias:s"`

	ID   types.SchoolID `bun:"id,pk,type:uuid"`
	Name string         `bun:"name"`
}

// JudgeRef is the pairing view of a judge directory row.
type JudgeRef struct {
	bun.BaseModel `bun:"table:judges,alias:j"`

	UserID   types.UserID    `bun:"user_id,pk"`
	Name     string          `bun:"name"`
	SchoolID *types.SchoolID `bun:"school_id,nullzero,type:uuid"`
}

// JudgeFeedbackRef is one final ballot row joined to its debate, used
// by the feedback-conflict aggregate.
type JudgeFeedbackRef struct {
	bun.BaseModel `bun:"table:ballots,alias:b"`

	DebateID      types.DebateID       `bun:"debate_id,type:uuid"`
	JudgeID       types.UserID         `bun:"judge_id"`
	SpeakerScores []types.SpeakerScore `bun:"speaker_scores,type:jsonb"`
	RoundNumber   int                  `bun:"round_number,scanonly"`
}
