package ballothandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	authdomain "github.com/Podium-Debate/podium-engine/app/modules/auth/domain"
	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
)

// HandleSubmitBallotRequest stores a judge's ballot and publishes
// submitted or failed depending on the outcome.
func (h *BallotHandlers) HandleSubmitBallotRequest(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleSubmitBallotRequest",
		&ballotevents.SubmitBallotRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*ballotevents.SubmitBallotRequestedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleSubmitBallotRequest")
			}

			session, reason := h.requireRole(ctx, msg, authdomain.RoleVolunteer)
			if reason == "" && session != nil && session.Role == authdomain.RoleVolunteer && session.UserID != request.JudgeID {
				reason = "judges may only submit their own ballots"
			}
			if reason != "" {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, &ballotevents.BallotSubmitFailedPayloadV1{
					DebateID: request.DebateID,
					JudgeID:  request.JudgeID,
					Reason:   reason,
				}, ballotevents.BallotSubmitFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			result, err := h.service.SubmitBallot(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, result.Failure, ballotevents.BallotSubmitFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, ballotevents.BallotSubmittedV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)(msg)
}

// HandleOverrideBallotRequest applies an admin override to a finalized
// ballot.
func (h *BallotHandlers) HandleOverrideBallotRequest(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleOverrideBallotRequest",
		&ballotevents.OverrideBallotRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*ballotevents.OverrideBallotRequestedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleOverrideBallotRequest")
			}

			if _, reason := h.requireRole(ctx, msg, authdomain.RoleAdmin); reason != "" {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, &ballotevents.BallotSubmitFailedPayloadV1{
					DebateID: request.DebateID,
					JudgeID:  request.JudgeID,
					Reason:   reason,
				}, ballotevents.BallotOverrideFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			result, err := h.service.OverrideBallot(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, result.Failure, ballotevents.BallotOverrideFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, ballotevents.BallotOverriddenV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)(msg)
}
