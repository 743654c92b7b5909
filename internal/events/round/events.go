// Package roundevents defines the round module's topics and payloads.
package roundevents

import (
	"time"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

const (
	RoundCompletedV1 = "round.completed.v1"

	TournamentAdvancedV1      = "round.tournament.advanced.v1"
	TournamentAdvanceFailedV1 = "round.tournament.advance.failed.v1"
)

// RoundCompletedPayloadV1 announces a round auto-completed by the
// ballot cascade.
type RoundCompletedPayloadV1 struct {
	RoundID      types.RoundID      `json:"round_id"`
	TournamentID types.TournamentID `json:"tournament_id"`
	RoundNumber  int                `json:"round_number"`
	RoundType    types.RoundType    `json:"round_type"`
	EndTime      time.Time          `json:"end_time"`
}

// TournamentAdvancedPayloadV1 reports a tournament state transition
// driven by round completion.
type TournamentAdvancedPayloadV1 struct {
	TournamentID types.TournamentID     `json:"tournament_id"`
	FromStatus   types.TournamentStatus `json:"from_status"`
	ToStatus     types.TournamentStatus `json:"to_status"`
	RoundID      types.RoundID          `json:"round_id"`
}

// TournamentAdvanceFailedPayloadV1 reports a progression attempt that
// could not run.
type TournamentAdvanceFailedPayloadV1 struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	RoundID      types.RoundID      `json:"round_id"`
	Reason       string             `json:"reason"`
}
