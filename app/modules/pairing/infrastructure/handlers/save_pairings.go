package pairinghandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	authdomain "github.com/Podium-Debate/podium-engine/app/modules/auth/domain"
	pairingevents "github.com/Podium-Debate/podium-engine/internal/events/pairing"
)

// HandleSavePairingsRequest validates and stores a proposed pairing
// set, publishing saved or failed depending on the outcome.
func (h *PairingHandlers) HandleSavePairingsRequest(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleSavePairingsRequest",
		&pairingevents.SavePairingsRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*pairingevents.SavePairingsRequestedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleSavePairingsRequest")
			}

			if _, reason := h.requireRole(ctx, msg, authdomain.RoleAdmin); reason != "" {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, &pairingevents.PairingsSaveFailedPayloadV1{
					TournamentID: request.TournamentID,
					RoundNumber:  request.RoundNumber,
					Reason:       reason,
				}, pairingevents.PairingsSaveFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			result, err := h.service.SavePairings(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, result.Failure, pairingevents.PairingsSaveFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, pairingevents.PairingsSavedV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)(msg)
}

// HandleImportSheetRequest parses an uploaded sheet and saves the
// resulting pairings.
func (h *PairingHandlers) HandleImportSheetRequest(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleImportSheetRequest",
		&pairingevents.ImportSheetRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*pairingevents.ImportSheetRequestedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleImportSheetRequest")
			}

			if _, reason := h.requireRole(ctx, msg, authdomain.RoleAdmin); reason != "" {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, &pairingevents.ImportSheetFailedPayloadV1{
					TournamentID: request.TournamentID,
					RoundNumber:  request.RoundNumber,
					Reason:       reason,
				}, pairingevents.ImportSheetFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			result, err := h.service.ImportPairingSheet(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, result.Failure, pairingevents.ImportSheetFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, pairingevents.PairingsSavedV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)(msg)
}
