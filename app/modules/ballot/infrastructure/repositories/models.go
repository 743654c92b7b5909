package ballotdb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Ballot is one judge's scored ballot for a debate. At most one row per
// (debate_id, judge_id); drafts are patched in place, final ballots are
// immutable to their judge.
type Ballot struct {
	bun.BaseModel `bun:"table:ballots,alias:b"`

	ID                types.BallotID       `bun:"id,pk,type:uuid"`
	DebateID          types.DebateID       `bun:"debate_id,notnull,type:uuid"`
	JudgeID           types.UserID         `bun:"judge_id,notnull"`
	WinningTeamID     *types.TeamID        `bun:"winning_team_id,nullzero,type:uuid"`
	WinningPosition   *types.Position      `bun:"winning_position,nullzero"`
	SpeakerScores     []types.SpeakerScore `bun:"speaker_scores,type:jsonb"`
	Notes             string               `bun:"notes,nullzero"`
	Flags             []types.BallotFlag   `bun:"flags,type:jsonb"`
	FeedbackSubmitted bool                 `bun:"feedback_submitted,notnull,default:false"`
	CreatedAt         time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// DebateRow is the ballot module's view of a debate: the columns the
// consensus engine reads and writes.
type DebateRow struct {
	bun.BaseModel `bun:"table:debates,alias:d"`

	ID                    types.DebateID     `bun:"id,pk,type:uuid"`
	RoundID               types.RoundID      `bun:"round_id,type:uuid"`
	TournamentID          types.TournamentID `bun:"tournament_id,type:uuid"`
	PropositionTeamID     *types.TeamID      `bun:"proposition_team_id,nullzero,type:uuid"`
	OppositionTeamID      *types.TeamID      `bun:"opposition_team_id,nullzero,type:uuid"`
	IsPublicSpeaking      bool               `bun:"is_public_speaking"`
	Judges                []types.UserID     `bun:"judges,type:jsonb"`
	HeadJudgeID           *types.UserID      `bun:"head_judge_id,nullzero"`
	Status                types.DebateStatus `bun:"status"`
	WinningTeamID         *types.TeamID      `bun:"winning_team_id,nullzero,type:uuid"`
	WinningPosition       *types.Position    `bun:"winning_position,nullzero"`
	PropositionVotes      int                `bun:"proposition_votes"`
	OppositionVotes       int                `bun:"opposition_votes"`
	PropositionTeamPoints float64            `bun:"proposition_team_points"`
	OppositionTeamPoints  float64            `bun:"opposition_team_points"`
	UpdatedAt             time.Time          `bun:"updated_at,nullzero"`
}

// HasJudge reports whether the judge sits on this debate's panel.
func (d *DebateRow) HasJudge(judgeID types.UserID) bool {
	for _, id := range d.Judges {
		if id == judgeID {
			return true
		}
	}
	return false
}

// RoundRow is the ballot module's view of a round, read and completed
// by the cascade.
type RoundRow struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID           types.RoundID      `bun:"id,pk,type:uuid"`
	TournamentID types.TournamentID `bun:"tournament_id,type:uuid"`
	RoundNumber  int                `bun:"round_number"`
	Type         types.RoundType    `bun:"type"`
	Status       types.RoundStatus  `bun:"status"`
	EndTime      *time.Time         `bun:"end_time,nullzero"`
}
