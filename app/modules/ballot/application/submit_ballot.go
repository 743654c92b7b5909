package ballotservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	roundevents "github.com/Podium-Debate/podium-engine/internal/events/round"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/results"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

type submitBallotResult = results.OperationResult[ballotevents.BallotSubmittedPayloadV1, ballotevents.BallotSubmitFailedPayloadV1]

func submitFailure(debateID types.DebateID, judgeID types.UserID, reason string) submitBallotResult {
	return results.Failure[ballotevents.BallotSubmittedPayloadV1](ballotevents.BallotSubmitFailedPayloadV1{
		DebateID: debateID,
		JudgeID:  judgeID,
		Reason:   reason,
	})
}

// SubmitBallot records a judge's ballot for a debate. Speaker scores
// are normalized once at submission and stored; a draft can be
// resubmitted any number of times, a final ballot cannot.
//
// When the ballot is final, the debate's outcome is recomputed from
// every final ballot and the round completion cascade runs in the same
// transaction.
func (s *BallotService) SubmitBallot(ctx context.Context, payload ballotevents.SubmitBallotRequestedPayloadV1) (submitBallotResult, error) {
	return withTelemetry(s, ctx, "SubmitBallot", func(ctx context.Context) (submitBallotResult, error) {
		debate, err := s.repo.GetDebate(ctx, s.db, payload.DebateID)
		if err != nil {
			if errors.Is(err, ballotdb.ErrNotFound) {
				return submitFailure(payload.DebateID, payload.JudgeID, fmt.Sprintf("debate %s not found", payload.DebateID)), nil
			}
			return submitBallotResult{}, fmt.Errorf("fetching debate: %w", err)
		}

		if !debate.HasJudge(payload.JudgeID) {
			return submitFailure(payload.DebateID, payload.JudgeID, fmt.Sprintf("judge %s is not assigned to debate %s", payload.JudgeID, payload.DebateID)), nil
		}

		existing, err := s.repo.GetBallot(ctx, s.db, payload.DebateID, payload.JudgeID)
		if err != nil && !errors.Is(err, ballotdb.ErrNotFound) {
			return submitBallotResult{}, fmt.Errorf("fetching existing ballot: %w", err)
		}
		if existing != nil && existing.FeedbackSubmitted {
			return submitFailure(payload.DebateID, payload.JudgeID, fmt.Sprintf("ballot for debate %s by judge %s is already finalized", payload.DebateID, payload.JudgeID)), nil
		}

		scores, err := normalizeScores(payload.SpeakerScores)
		if err != nil {
			return submitFailure(payload.DebateID, payload.JudgeID, err.Error()), nil
		}

		now := time.Now().UTC()
		ballot := &ballotdb.Ballot{
			ID:                types.BallotID(uuid.New()),
			DebateID:          payload.DebateID,
			JudgeID:           payload.JudgeID,
			WinningTeamID:     payload.WinningTeamID,
			WinningPosition:   payload.WinningPosition,
			SpeakerScores:     scores,
			Notes:             payload.Notes,
			FeedbackSubmitted: payload.IsFinal,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if existing != nil {
			ballot.ID = existing.ID
			ballot.Flags = existing.Flags
			ballot.CreatedAt = existing.CreatedAt
		}

		var (
			debateCompleted bool
			roundCompleted  bool
			outcome         debateOutcome
			round           *ballotdb.RoundRow
		)

		err = s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			if err := s.repo.UpsertBallot(ctx, tx, ballot); err != nil {
				return fmt.Errorf("upserting ballot: %w", err)
			}

			if !payload.IsFinal {
				return nil
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
			debateCompleted = true

			roundCompleted, round, err = s.runCompletionCascade(ctx, tx, debate.RoundID)
			if err != nil {
				return fmt.Errorf("running round completion cascade: %w", err)
			}
			return nil
		})
		if err != nil {
			return submitBallotResult{}, err
		}

		if debateCompleted {
			s.publishDebateCompleted(ctx, debate, outcome)
		}
		if roundCompleted && round != nil {
			s.publishRoundCompleted(ctx, round)
		}

		return results.Success[ballotevents.BallotSubmittedPayloadV1, ballotevents.BallotSubmitFailedPayloadV1](ballotevents.BallotSubmittedPayloadV1{
			BallotID:        ballot.ID,
			DebateID:        payload.DebateID,
			JudgeID:         payload.JudgeID,
			IsFinal:         payload.IsFinal,
			DebateCompleted: debateCompleted,
			RoundCompleted:  roundCompleted,
		}), nil
	})
}

func (s *BallotService) publishDebateCompleted(ctx context.Context, debate *ballotdb.DebateRow, outcome debateOutcome) {
	payload := ballotevents.DebateCompletedPayloadV1{
		DebateID:              debate.ID,
		RoundID:               debate.RoundID,
		TournamentID:          debate.TournamentID,
		WinningTeamID:         outcome.WinningTeamID,
		WinningPosition:       outcome.WinningPosition,
		PropositionVotes:      outcome.PropositionVotes,
		OppositionVotes:       outcome.OppositionVotes,
		PropositionTeamPoints: outcome.PropositionTeamPoints,
		OppositionTeamPoints:  outcome.OppositionTeamPoints,
		Tied:                  outcome.Tied,
	}
	if err := s.publishEvent(ctx, ballotevents.DebateCompletedV1, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish debate completed event",
			attr.Error(err),
			attr.UUID("debate_id", uuid.UUID(debate.ID)),
		)
	}
}

func (s *BallotService) publishRoundCompleted(ctx context.Context, round *ballotdb.RoundRow) {
	payload := roundevents.RoundCompletedPayloadV1{
		RoundID:      round.ID,
		TournamentID: round.TournamentID,
		RoundNumber:  round.RoundNumber,
		RoundType:    round.Type,
	}
	if round.EndTime != nil {
		payload.EndTime = *round.EndTime
	}
	if err := s.publishEvent(ctx, roundevents.RoundCompletedV1, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish round completed event",
			attr.Error(err),
			attr.UUID("round_id", uuid.UUID(round.ID)),
		)
	}
}
