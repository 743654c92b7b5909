package roundservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	roundevents "github.com/Podium-Debate/podium-engine/internal/events/round"
	sharedevents "github.com/Podium-Debate/podium-engine/internal/events/shared"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/results"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

type advanceResult = results.OperationResult[roundevents.TournamentAdvancedPayloadV1, roundevents.TournamentAdvanceFailedPayloadV1]

func advanceFailure(tournamentID types.TournamentID, roundID types.RoundID, reason string) advanceResult {
	return results.Failure[roundevents.TournamentAdvancedPayloadV1](roundevents.TournamentAdvanceFailedPayloadV1{
		TournamentID: tournamentID,
		RoundID:      roundID,
		Reason:       reason,
	})
}

// AdvanceTournament reacts to a completed round: it refreshes the
// standings snapshot, notifies the tournament, and moves the tournament
// to completed once its last round has closed. Re-delivery of the same
// round completion is a no-op.
func (s *RoundService) AdvanceTournament(ctx context.Context, payload roundevents.RoundCompletedPayloadV1) (advanceResult, error) {
	return withTelemetry(s, ctx, "AdvanceTournament", func(ctx context.Context) (advanceResult, error) {
		tournament, err := s.repo.GetTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			if errors.Is(err, rounddb.ErrNotFound) {
				return advanceFailure(payload.TournamentID, payload.RoundID, fmt.Sprintf("tournament %s not found", payload.TournamentID)), nil
			}
			return advanceResult{}, fmt.Errorf("fetching tournament: %w", err)
		}

		if tournament.Status == types.TournamentStatusCompleted || tournament.Status == types.TournamentStatusCancelled {
			return results.Success[roundevents.TournamentAdvancedPayloadV1, roundevents.TournamentAdvanceFailedPayloadV1](roundevents.TournamentAdvancedPayloadV1{
				TournamentID: tournament.ID,
				FromStatus:   tournament.Status,
				ToStatus:     tournament.Status,
				RoundID:      payload.RoundID,
			}), nil
		}
		if tournament.Status != types.TournamentStatusInProgress {
			return advanceFailure(tournament.ID, payload.RoundID, fmt.Sprintf("tournament %s is %s, rounds should not be completing", tournament.ID, tournament.Status)), nil
		}

		rounds, err := s.repo.ListRoundsForTournament(ctx, s.db, tournament.ID)
		if err != nil {
			return advanceResult{}, fmt.Errorf("listing rounds: %w", err)
		}

		fromStatus := tournament.Status
		toStatus := fromStatus
		if allRoundsCompleted(rounds, tournament) {
			next, err := tournament.Status.Transition(types.TournamentStatusCompleted)
			if err != nil {
				return advanceResult{}, fmt.Errorf("completing tournament: %w", err)
			}
			toStatus = next
			err = s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
				return s.repo.UpdateTournamentStatus(ctx, tx, tournament.ID, toStatus)
			})
			if err != nil {
				return advanceResult{}, fmt.Errorf("persisting tournament status: %w", err)
			}
		}

		s.enqueueStandingsSnapshot(ctx, tournament.ID)
		s.notifyRoundCompleted(ctx, tournament, payload, toStatus)

		return results.Success[roundevents.TournamentAdvancedPayloadV1, roundevents.TournamentAdvanceFailedPayloadV1](roundevents.TournamentAdvancedPayloadV1{
			TournamentID: tournament.ID,
			FromStatus:   fromStatus,
			ToStatus:     toStatus,
			RoundID:      payload.RoundID,
		}), nil
	})
}

// allRoundsCompleted reports whether the tournament has run its full
// schedule: every scheduled round exists and is completed.
func allRoundsCompleted(rounds []rounddb.Round, tournament *rounddb.Tournament) bool {
	scheduled := tournament.PreliminaryRounds + tournament.EliminationRounds
	if len(rounds) < scheduled {
		return false
	}
	for _, round := range rounds {
		if round.Status != types.RoundStatusCompleted {
			return false
		}
	}
	return true
}

func (s *RoundService) enqueueStandingsSnapshot(ctx context.Context, tournamentID types.TournamentID) {
	if s.standings == nil {
		return
	}
	if err := s.standings.EnqueueStandingsSnapshot(ctx, tournamentID); err != nil {
		s.logger.WarnContext(ctx, "Failed to enqueue standings snapshot",
			attr.Error(err),
			attr.UUID("tournament_id", tournamentID),
		)
	}
}

func (s *RoundService) notifyRoundCompleted(ctx context.Context, tournament *rounddb.Tournament, payload roundevents.RoundCompletedPayloadV1, toStatus types.TournamentStatus) {
	notification := sharedevents.TournamentNotificationPayloadV1{
		TournamentID: tournament.ID,
		Title:        fmt.Sprintf("Round %d results are final", payload.RoundNumber),
		Message:      fmt.Sprintf("All ballots for round %d of %s are in and results are posted.", payload.RoundNumber, tournament.Name),
		Type:         sharedevents.NotificationResults,
	}
	if toStatus == types.TournamentStatusCompleted {
		notification.Title = fmt.Sprintf("%s has concluded", tournament.Name)
		notification.Message = fmt.Sprintf("The final round of %s is complete. Congratulations to all teams!", tournament.Name)
	}
	if err := s.publishEvent(ctx, sharedevents.NotificationRequestedV1, notification); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish round completion notification",
			attr.Error(err),
			attr.UUID("tournament_id", tournament.ID),
		)
	}
}
