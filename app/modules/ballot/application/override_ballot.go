package ballotservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	sharedevents "github.com/Podium-Debate/podium-engine/internal/events/shared"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/results"
)

type overrideBallotResult = results.OperationResult[ballotevents.BallotSubmittedPayloadV1, ballotevents.BallotSubmitFailedPayloadV1]

// OverrideBallot lets tournament staff patch a finalized ballot, which
// is the manual resolution path for tied debates and scoring disputes.
// The debate outcome and the round completion cascade are recomputed in
// the same transaction, exactly as a regular final submission would.
func (s *BallotService) OverrideBallot(ctx context.Context, payload ballotevents.OverrideBallotRequestedPayloadV1) (overrideBallotResult, error) {
	return withTelemetry(s, ctx, "OverrideBallot", func(ctx context.Context) (overrideBallotResult, error) {
		debate, err := s.repo.GetDebate(ctx, s.db, payload.DebateID)
		if err != nil {
			if errors.Is(err, ballotdb.ErrNotFound) {
				return submitFailure(payload.DebateID, payload.JudgeID, fmt.Sprintf("debate %s not found", payload.DebateID)), nil
			}
			return overrideBallotResult{}, fmt.Errorf("fetching debate: %w", err)
		}

		ballot, err := s.repo.GetBallot(ctx, s.db, payload.DebateID, payload.JudgeID)
		if err != nil {
			if errors.Is(err, ballotdb.ErrNotFound) {
				return submitFailure(payload.DebateID, payload.JudgeID, fmt.Sprintf("no ballot by judge %s for debate %s", payload.JudgeID, payload.DebateID)), nil
			}
			return overrideBallotResult{}, fmt.Errorf("fetching ballot: %w", err)
		}

		if payload.Reason == "" {
			return submitFailure(payload.DebateID, payload.JudgeID, "an override requires a reason"), nil
		}

		previous, err := json.Marshal(ballot)
		if err != nil {
			return overrideBallotResult{}, fmt.Errorf("snapshotting ballot: %w", err)
		}

		now := time.Now().UTC()
		ballot.WinningTeamID = payload.WinningTeamID
		ballot.WinningPosition = payload.WinningPosition
		if len(payload.SpeakerScores) > 0 {
			scores, err := normalizeScores(payload.SpeakerScores)
			if err != nil {
				return submitFailure(payload.DebateID, payload.JudgeID, err.Error()), nil
			}
			ballot.SpeakerScores = scores
		}
		ballot.FeedbackSubmitted = true
		ballot.UpdatedAt = now

		var (
			outcome        debateOutcome
			roundCompleted bool
			round          *ballotdb.RoundRow
		)

		err = s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			if err := s.repo.UpdateBallot(ctx, tx, ballot); err != nil {
				return fmt.Errorf("updating ballot: %w", err)
			}

			finalBallots, err := s.repo.ListFinalBallots(ctx, tx, payload.DebateID)
			if err != nil {
				return fmt.Errorf("listing final ballots: %w", err)
			}

			outcome = computeOutcome(debate, finalBallots)
			if err := applyOutcome(debate, outcome, now); err != nil {
				return fmt.Errorf("completing debate: %w", err)
			}
			if err := s.repo.UpdateDebateOutcome(ctx, tx, debate); err != nil {
				return fmt.Errorf("persisting debate outcome: %w", err)
			}

			roundCompleted, round, err = s.runCompletionCascade(ctx, tx, debate.RoundID)
			if err != nil {
				return fmt.Errorf("running round completion cascade: %w", err)
			}
			return nil
		})
		if err != nil {
			return overrideBallotResult{}, err
		}

		s.publishDebateCompleted(ctx, debate, outcome)
		if roundCompleted && round != nil {
			s.publishRoundCompleted(ctx, round)
		}
		s.recordOverrideAudit(ctx, ballot, payload, previous, now)

		return results.Success[ballotevents.BallotSubmittedPayloadV1, ballotevents.BallotSubmitFailedPayloadV1](ballotevents.BallotSubmittedPayloadV1{
			BallotID:        ballot.ID,
			DebateID:        payload.DebateID,
			JudgeID:         payload.JudgeID,
			IsFinal:         true,
			DebateCompleted: true,
			RoundCompleted:  roundCompleted,
		}), nil
	})
}

func (s *BallotService) recordOverrideAudit(ctx context.Context, ballot *ballotdb.Ballot, payload ballotevents.OverrideBallotRequestedPayloadV1, previous json.RawMessage, now time.Time) {
	current, err := json.Marshal(ballot)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to snapshot overridden ballot for audit", attr.Error(err))
		return
	}
	audit := sharedevents.AuditRecordPayloadV1{
		UserID:        payload.OverriddenBy,
		Action:        "override_ballot",
		ResourceType:  "ballot",
		ResourceID:    ballot.ID.String(),
		Description:   payload.Reason,
		PreviousState: previous,
		NewState:      current,
		RecordedAt:    now,
	}
	if err := s.publishEvent(ctx, sharedevents.AuditRecordedV1, audit); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ballot override audit record", attr.Error(err))
	}
}
