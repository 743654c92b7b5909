// Package pairingevents defines the pairing module's topics and
// payloads.
package pairingevents

import (
	"github.com/Podium-Debate/podium-engine/internal/types"
)

const (
	SavePairingsRequestedV1 = "pairing.save.requested.v1"
	PairingsSavedV1         = "pairing.saved.v1"
	PairingsSaveFailedV1    = "pairing.save.failed.v1"

	ImportSheetRequestedV1 = "pairing.import.requested.v1"
	ImportSheetFailedV1    = "pairing.import.failed.v1"
)

// ProposedDebate is one room assignment proposed by a caller. Pairing
// generation lives outside the engine; the engine validates and stores
// whatever is proposed here.
type ProposedDebate struct {
	RoomName          string         `json:"room_name"`
	PropositionTeamID *types.TeamID  `json:"proposition_team_id,omitempty"`
	OppositionTeamID  *types.TeamID  `json:"opposition_team_id,omitempty"`
	IsPublicSpeaking  bool           `json:"is_public_speaking"`
	Judges            []types.UserID `json:"judges"`
	HeadJudgeID       *types.UserID  `json:"head_judge_id,omitempty"`
}

// SavePairingsRequestedPayloadV1 proposes a full replacement of a
// round's debates.
type SavePairingsRequestedPayloadV1 struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	RoundNumber  int                `json:"round_number"`
	RoundType    types.RoundType    `json:"round_type"`
	RequestedBy  types.UserID       `json:"requested_by"`
	Proposed     []ProposedDebate   `json:"proposed"`
}

// PairingsSavedPayloadV1 reports a successful replacement, including
// the conflicts surfaced for manual override decisions.
type PairingsSavedPayloadV1 struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	RoundID      types.RoundID      `json:"round_id"`
	RoundNumber  int                `json:"round_number"`
	DebateCount  int                `json:"debate_count"`
	Warnings     []string           `json:"warnings,omitempty"`
	Conflicts    []types.Conflict   `json:"conflicts,omitempty"`
}

// PairingsSaveFailedPayloadV1 reports a rejected save with every
// violation found in the validation pass.
type PairingsSaveFailedPayloadV1 struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	RoundNumber  int                `json:"round_number"`
	Reason       string             `json:"reason"`
	Violations   []string           `json:"violations,omitempty"`
}

// ImportSheetRequestedPayloadV1 carries an uploaded pairing sheet to
// parse and save.
type ImportSheetRequestedPayloadV1 struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	RoundNumber  int                `json:"round_number"`
	RoundType    types.RoundType    `json:"round_type"`
	RequestedBy  types.UserID       `json:"requested_by"`
	SheetData    []byte             `json:"sheet_data"`
}

// ImportSheetFailedPayloadV1 reports a sheet that could not be parsed.
type ImportSheetFailedPayloadV1 struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	RoundNumber  int                `json:"round_number"`
	Reason       string             `json:"reason"`
}
