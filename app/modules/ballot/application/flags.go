package ballotservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
	"github.com/Podium-Debate/podium-engine/internal/results"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

type ballotFlagResult = results.OperationResult[ballotevents.BallotFlagResultPayloadV1, ballotevents.BallotFlagFailedPayloadV1]

func flagFailure(ballotID types.BallotID, reason string) ballotFlagResult {
	return results.Failure[ballotevents.BallotFlagResultPayloadV1](ballotevents.BallotFlagFailedPayloadV1{
		BallotID: ballotID,
		Reason:   reason,
	})
}

func flagSuccess(ballotID types.BallotID, flags []types.BallotFlag) ballotFlagResult {
	if flags == nil {
		flags = []types.BallotFlag{}
	}
	return results.Success[ballotevents.BallotFlagResultPayloadV1, ballotevents.BallotFlagFailedPayloadV1](ballotevents.BallotFlagResultPayloadV1{
		BallotID: ballotID,
		Flags:    flags,
	})
}

// FlagBallot attaches a typed moderation flag to a ballot. Flags do not
// alter scores or outcomes; they mark the ballot for staff review.
func (s *BallotService) FlagBallot(ctx context.Context, payload ballotevents.FlagBallotRequestedPayloadV1) (ballotFlagResult, error) {
	return withTelemetry(s, ctx, "FlagBallot", func(ctx context.Context) (ballotFlagResult, error) {
		if payload.Reason == "" {
			return flagFailure(payload.BallotID, "a flag requires a reason"), nil
		}
		switch payload.FlagType {
		case types.FlagTypeAdmin, types.FlagTypeJudge:
		default:
			return flagFailure(payload.BallotID, fmt.Sprintf("unknown flag type %q", payload.FlagType)), nil
		}

		ballot, err := s.repo.GetBallotByID(ctx, s.db, payload.BallotID)
		if err != nil {
			if errors.Is(err, ballotdb.ErrNotFound) {
				return flagFailure(payload.BallotID, fmt.Sprintf("ballot %s not found", payload.BallotID)), nil
			}
			return ballotFlagResult{}, fmt.Errorf("fetching ballot: %w", err)
		}

		ballot.Flags = append(ballot.Flags, types.BallotFlag{
			Type:      payload.FlagType,
			Reason:    payload.Reason,
			FlaggedBy: payload.FlaggedBy,
			FlaggedAt: time.Now().UTC(),
		})
		ballot.UpdatedAt = time.Now().UTC()

		err = s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			return s.repo.UpdateBallot(ctx, tx, ballot)
		})
		if err != nil {
			return ballotFlagResult{}, fmt.Errorf("flagging ballot: %w", err)
		}

		return flagSuccess(ballot.ID, ballot.Flags), nil
	})
}

// ClearBallotFlags removes every flag from a ballot after review.
func (s *BallotService) ClearBallotFlags(ctx context.Context, payload ballotevents.ClearBallotFlagsRequestedPayloadV1) (ballotFlagResult, error) {
	return withTelemetry(s, ctx, "ClearBallotFlags", func(ctx context.Context) (ballotFlagResult, error) {
		ballot, err := s.repo.GetBallotByID(ctx, s.db, payload.BallotID)
		if err != nil {
			if errors.Is(err, ballotdb.ErrNotFound) {
				return flagFailure(payload.BallotID, fmt.Sprintf("ballot %s not found", payload.BallotID)), nil
			}
			return ballotFlagResult{}, fmt.Errorf("fetching ballot: %w", err)
		}

		ballot.Flags = []types.BallotFlag{}
		ballot.UpdatedAt = time.Now().UTC()

		err = s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			return s.repo.UpdateBallot(ctx, tx, ballot)
		})
		if err != nil {
			return ballotFlagResult{}, fmt.Errorf("clearing ballot flags: %w", err)
		}

		return flagSuccess(ballot.ID, ballot.Flags), nil
	})
}
