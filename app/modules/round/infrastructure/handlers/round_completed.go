package roundhandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	roundevents "github.com/Podium-Debate/podium-engine/internal/events/round"
)

// HandleRoundCompleted advances the parent tournament after a round
// auto-completes.
func (h *RoundHandlers) HandleRoundCompleted(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleRoundCompleted",
		&roundevents.RoundCompletedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			event, ok := payload.(*roundevents.RoundCompletedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleRoundCompleted")
			}

			result, err := h.service.AdvanceTournament(ctx, *event)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, result.Failure, roundevents.TournamentAdvanceFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, roundevents.TournamentAdvancedV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)(msg)
}
