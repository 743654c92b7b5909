// Package ballotevents defines the ballot module's topics and payloads.
package ballotevents

import (
	"github.com/Podium-Debate/podium-engine/internal/types"
)

const (
	SubmitBallotRequestedV1 = "ballot.submit.requested.v1"
	BallotSubmittedV1       = "ballot.submitted.v1"
	BallotSubmitFailedV1    = "ballot.submit.failed.v1"

	DebateCompletedV1 = "ballot.debate.completed.v1"

	OverrideBallotRequestedV1 = "ballot.override.requested.v1"
	BallotOverriddenV1        = "ballot.overridden.v1"
	BallotOverrideFailedV1    = "ballot.override.failed.v1"

	BallotFlagRequestedV1      = "ballot.flag.requested.v1"
	BallotFlaggedV1            = "ballot.flagged.v1"
	BallotFlagClearRequestedV1 = "ballot.flag.clear.requested.v1"
	BallotFlagsClearedV1       = "ballot.flags.cleared.v1"
	BallotFlagFailedV1         = "ballot.flag.failed.v1"
)

// SpeakerScoreInput is the raw rubric scoring for one speaker as
// submitted by a judge, before normalization.
type SpeakerScoreInput struct {
	SpeakerID             types.UserID `json:"speaker_id"`
	TeamID                types.TeamID `json:"team_id"`
	RoleFulfillment       float64      `json:"role_fulfillment"`
	ArgumentationClash    float64      `json:"argumentation_clash"`
	ContentDevelopment    float64      `json:"content_development"`
	StyleStrategyDelivery float64      `json:"style_strategy_delivery"`
	Comments              string       `json:"comments,omitempty"`
	BiasFlag              bool         `json:"bias_flag,omitempty"`
}

// SubmitBallotRequestedPayloadV1 is one judge's scored ballot for a
// debate. Drafts (IsFinal=false) may be resubmitted; a final ballot is
// immutable to its judge.
type SubmitBallotRequestedPayloadV1 struct {
	DebateID        types.DebateID      `json:"debate_id"`
	JudgeID         types.UserID        `json:"judge_id"`
	WinningTeamID   *types.TeamID       `json:"winning_team_id,omitempty"`
	WinningPosition *types.Position     `json:"winning_position,omitempty"`
	SpeakerScores   []SpeakerScoreInput `json:"speaker_scores"`
	Notes           string              `json:"notes,omitempty"`
	IsFinal         bool                `json:"is_final"`
}

// BallotSubmittedPayloadV1 acknowledges a stored ballot and reports
// whether the submission completed the debate and/or its round.
type BallotSubmittedPayloadV1 struct {
	BallotID        types.BallotID `json:"ballot_id"`
	DebateID        types.DebateID `json:"debate_id"`
	JudgeID         types.UserID   `json:"judge_id"`
	IsFinal         bool           `json:"is_final"`
	DebateCompleted bool           `json:"debate_completed"`
	RoundCompleted  bool           `json:"round_completed"`
}

// BallotSubmitFailedPayloadV1 reports a rejected submission.
type BallotSubmitFailedPayloadV1 struct {
	DebateID types.DebateID `json:"debate_id"`
	JudgeID  types.UserID   `json:"judge_id"`
	Reason   string         `json:"reason"`
}

// DebateCompletedPayloadV1 reports a debate outcome computed from its
// final ballots. Tied reports a completed debate with no declared
// winner.
type DebateCompletedPayloadV1 struct {
	DebateID              types.DebateID     `json:"debate_id"`
	RoundID               types.RoundID      `json:"round_id"`
	TournamentID          types.TournamentID `json:"tournament_id"`
	WinningTeamID         *types.TeamID      `json:"winning_team_id,omitempty"`
	WinningPosition       *types.Position    `json:"winning_position,omitempty"`
	PropositionVotes      int                `json:"proposition_votes"`
	OppositionVotes       int                `json:"opposition_votes"`
	PropositionTeamPoints float64            `json:"proposition_team_points"`
	OppositionTeamPoints  float64            `json:"opposition_team_points"`
	Tied                  bool               `json:"tied"`
}

// OverrideBallotRequestedPayloadV1 is the admin path that may patch a
// finalized ballot; consensus is recomputed afterwards.
type OverrideBallotRequestedPayloadV1 struct {
	DebateID        types.DebateID      `json:"debate_id"`
	JudgeID         types.UserID        `json:"judge_id"`
	OverriddenBy    types.UserID        `json:"overridden_by"`
	WinningTeamID   *types.TeamID       `json:"winning_team_id,omitempty"`
	WinningPosition *types.Position     `json:"winning_position,omitempty"`
	SpeakerScores   []SpeakerScoreInput `json:"speaker_scores,omitempty"`
	Reason          string              `json:"reason"`
}

// FlagBallotRequestedPayloadV1 attaches a typed flag to a ballot.
type FlagBallotRequestedPayloadV1 struct {
	BallotID  types.BallotID `json:"ballot_id"`
	FlagType  types.FlagType `json:"flag_type"`
	Reason    string         `json:"reason"`
	FlaggedBy types.UserID   `json:"flagged_by"`
}

// ClearBallotFlagsRequestedPayloadV1 removes every flag from a ballot.
type ClearBallotFlagsRequestedPayloadV1 struct {
	BallotID  types.BallotID `json:"ballot_id"`
	ClearedBy types.UserID   `json:"cleared_by"`
}

// BallotFlagResultPayloadV1 reports the flag state after a flag
// mutation.
type BallotFlagResultPayloadV1 struct {
	BallotID types.BallotID     `json:"ballot_id"`
	Flags    []types.BallotFlag `json:"flags"`
}

// BallotFlagFailedPayloadV1 reports a rejected flag mutation.
type BallotFlagFailedPayloadV1 struct {
	BallotID types.BallotID `json:"ballot_id"`
	Reason   string         `json:"reason"`
}
