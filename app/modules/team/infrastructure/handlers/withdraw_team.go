package teamhandlers

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"

	authdomain "github.com/Podium-Debate/podium-engine/app/modules/auth/domain"
	teamevents "github.com/Podium-Debate/podium-engine/internal/events/team"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
)

// HandleWithdrawTeamRequest withdraws a team and reports the rooms
// converted to public-speaking debates.
func (h *TeamHandlers) HandleWithdrawTeamRequest(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleWithdrawTeamRequest",
		&teamevents.WithdrawTeamRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*teamevents.WithdrawTeamRequestedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleWithdrawTeamRequest")
			}

			if _, reason := h.requireRole(ctx, msg, authdomain.RoleAdmin); reason != "" {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, &teamevents.TeamWithdrawFailedPayloadV1{
					TeamID: request.TeamID,
					Reason: reason,
				}, teamevents.TeamWithdrawFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			result, err := h.service.WithdrawTeam(ctx, *request)
			if err != nil {
				return nil, err
			}

			if result.IsFailure() {
				failureMsg, errMsg := h.helpers.CreateResultMessage(msg, result.Failure, teamevents.TeamWithdrawFailedV1)
				if errMsg != nil {
					return nil, errMsg
				}
				return []*message.Message{failureMsg}, nil
			}

			successMsg, err := h.helpers.CreateResultMessage(msg, result.Success, teamevents.TeamWithdrawnV1)
			if err != nil {
				return nil, err
			}
			return []*message.Message{successMsg}, nil
		},
	)(msg)
}

// HandleStandingsSnapshotRequest refreshes the team_standings rows
// inline. The river queue is the normal path; this topic exists for
// manual refreshes from operators.
func (h *TeamHandlers) HandleStandingsSnapshotRequest(msg *message.Message) ([]*message.Message, error) {
	return h.handlerWrapper(
		"HandleStandingsSnapshotRequest",
		&teamevents.StandingsSnapshotRequestedPayloadV1{},
		func(ctx context.Context, msg *message.Message, payload interface{}) ([]*message.Message, error) {
			request, ok := payload.(*teamevents.StandingsSnapshotRequestedPayloadV1)
			if !ok {
				return nil, errors.New("invalid payload type for HandleStandingsSnapshotRequest")
			}

			if _, reason := h.requireRole(ctx, msg, authdomain.RoleTabStaff); reason != "" {
				h.logger.WarnContext(ctx, "Standings snapshot request rejected",
					attr.String("reason", reason),
				)
				return nil, nil
			}

			if err := h.service.RefreshStandings(ctx, request.TournamentID); err != nil {
				return nil, err
			}
			return nil, nil
		},
	)(msg)
}
