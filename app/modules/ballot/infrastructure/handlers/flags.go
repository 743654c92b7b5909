package ballothandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	authdomain "github.com/Podium-Debate/podium-engine/app/modules/auth/domain"
	ballotevents "github.com/Podium-Debate/podium-engine/internal/events/ballot"
)

// HandleFlagBallotRequest attaches a moderation flag to a ballot.
func (h *BallotHandlers) HandleFlagBallotRequest(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleFlagBallotRequest",
		&ballotevents.FlagBallotRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*ballotevents.FlagBallotRequestedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleFlagBallotRequest")
			}

			if _, reason := h.requireRole(ctx, msg, authdomain.RoleVolunteer); reason != "" {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, &ballotevents.BallotFlagFailedPayloadV1{
					BallotID: request.BallotID,
					Reason:   reason,
				}, ballotevents.BallotFlagFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			result, err := h.service.FlagBallot(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, result.Failure, ballotevents.BallotFlagFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, ballotevents.BallotFlaggedV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)(msg)
}

// HandleClearBallotFlagsRequest removes every flag from a ballot.
func (h *BallotHandlers) HandleClearBallotFlagsRequest(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleClearBallotFlagsRequest",
		&ballotevents.ClearBallotFlagsRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*ballotevents.ClearBallotFlagsRequestedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleClearBallotFlagsRequest")
			}

			if _, reason := h.requireRole(ctx, msg, authdomain.RoleTabStaff); reason != "" {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, &ballotevents.BallotFlagFailedPayloadV1{
					BallotID: request.BallotID,
					Reason:   reason,
				}, ballotevents.BallotFlagFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			result, err := h.service.ClearBallotFlags(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, result.Failure, ballotevents.BallotFlagFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, ballotevents.BallotFlagsClearedV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)(msg)
}
