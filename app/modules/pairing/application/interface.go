package pairingservice

import (
	"context"

	pairingevents "github.com/Podium-Debate/podium-engine/internal/events/pairing"
	"github.com/Podium-Debate/podium-engine/internal/results"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// Service defines the interface for the PairingService.
type Service interface {
	// SavePairings validates a proposed set of rooms and replaces the
	// round's debates with it in a single transaction.
	SavePairings(ctx context.Context, payload pairingevents.SavePairingsRequestedPayloadV1) (results.OperationResult[pairingevents.PairingsSavedPayloadV1, pairingevents.PairingsSaveFailedPayloadV1], error)

	// ImportPairingSheet parses an uploaded spreadsheet into proposed
	// rooms and runs them through SavePairings.
	ImportPairingSheet(ctx context.Context, payload pairingevents.ImportSheetRequestedPayloadV1) (results.OperationResult[pairingevents.PairingsSavedPayloadV1, pairingevents.ImportSheetFailedPayloadV1], error)

	// GetPairings returns a round's rooms with team, school, and judge
	// data joined and per-debate conflicts attached.
	GetPairings(ctx context.Context, tournamentID types.TournamentID, roundNumber int) (*PairingsView, error)

	// GetPairingQuality scans the whole tournament for the aggregate
	// conflict categories.
	GetPairingQuality(ctx context.Context, tournamentID types.TournamentID) (*QualityReport, error)
}
