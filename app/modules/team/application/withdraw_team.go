package teamservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	teamdb "github.com/Podium-Debate/podium-engine/app/modules/team/infrastructure/repositories"
	sharedevents "github.com/Podium-Debate/podium-engine/internal/events/shared"
	teamevents "github.com/Podium-Debate/podium-engine/internal/events/team"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/results"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

type withdrawResult = results.OperationResult[teamevents.TeamWithdrawnPayloadV1, teamevents.TeamWithdrawFailedPayloadV1]

func withdrawFailure(teamID types.TeamID, reason string) withdrawResult {
	return results.Failure[teamevents.TeamWithdrawnPayloadV1](teamevents.TeamWithdrawFailedPayloadV1{
		TeamID: teamID,
		Reason: reason,
	})
}

// WithdrawTeam marks a team withdrawn and rewrites its not-yet-run
// debates. Every pending debate referencing the team becomes a
// single-team public-speaking debate with the opponent as sole
// participant; debates already in progress or completed are left alone.
// Withdrawing twice is a conflict, not an idempotent no-op, so the
// second caller learns the team was already gone.
func (s *TeamService) WithdrawTeam(ctx context.Context, payload teamevents.WithdrawTeamRequestedPayloadV1) (withdrawResult, error) {
	return withTelemetry(s, ctx, "WithdrawTeam", func(ctx context.Context) (withdrawResult, error) {
		team, err := s.repo.GetTeam(ctx, s.db, payload.TeamID)
		if err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return withdrawFailure(payload.TeamID, fmt.Sprintf("team %s not found", payload.TeamID)), nil
			}
			return withdrawResult{}, fmt.Errorf("fetching team: %w", err)
		}

		if team.Status == types.TeamStatusWithdrawn {
			conflict := &types.ConflictStateError{Reason: fmt.Sprintf("team %s is already withdrawn", team.Name)}
			return withdrawFailure(team.ID, conflict.Error()), nil
		}

		var affectedRooms []string
		now := time.Now().UTC()

		err = s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			if err := s.repo.UpdateTeamStatus(ctx, tx, team.ID, types.TeamStatusWithdrawn); err != nil {
				return fmt.Errorf("marking team withdrawn: %w", err)
			}

			debates, err := s.repo.ListPendingDebatesForTeam(ctx, tx, team.TournamentID, team.ID)
			if err != nil {
				return fmt.Errorf("listing pending debates: %w", err)
			}

			for i := range debates {
				debate := &debates[i]
				if err := convertToBye(debate, team.ID, now); err != nil {
					return fmt.Errorf("converting debate %s: %w", debate.ID, err)
				}
				if err := s.repo.UpdateDebatePairing(ctx, tx, debate); err != nil {
					return fmt.Errorf("persisting debate %s: %w", debate.ID, err)
				}
				affectedRooms = append(affectedRooms, debate.RoomName)
			}
			return nil
		})
		if err != nil {
			return withdrawResult{}, err
		}

		s.notifyWithdrawal(ctx, team, payload.Reason, affectedRooms)

		return results.Success[teamevents.TeamWithdrawnPayloadV1, teamevents.TeamWithdrawFailedPayloadV1](teamevents.TeamWithdrawnPayloadV1{
			TeamID:        team.ID,
			TournamentID:  team.TournamentID,
			Reason:        payload.Reason,
			AffectedRooms: affectedRooms,
		}), nil
	})
}

// convertToBye clears the withdrawn team's slot and turns the debate
// into a public-speaking round for the opponent. A debate whose only
// participant withdrew has nobody left to speak and is marked no_show.
func convertToBye(debate *teamdb.DebateRow, withdrawn types.TeamID, now time.Time) error {
	if debate.PropositionTeamID != nil && *debate.PropositionTeamID == withdrawn {
		debate.PropositionTeamID = debate.OppositionTeamID
	}
	debate.OppositionTeamID = nil
	debate.IsPublicSpeaking = true
	debate.UpdatedAt = now

	if debate.PropositionTeamID == nil {
		next, err := debate.Status.Transition(types.DebateStatusNoShow)
		if err != nil {
			return err
		}
		debate.Status = next
	}
	return nil
}

func (s *TeamService) notifyWithdrawal(ctx context.Context, team *teamdb.Team, reason string, affectedRooms []string) {
	message := fmt.Sprintf("%s has withdrawn from the tournament.", team.Name)
	if len(affectedRooms) > 0 {
		message = fmt.Sprintf("%s Affected rooms: %s.", message, strings.Join(affectedRooms, ", "))
	}
	if reason != "" {
		message = fmt.Sprintf("%s Reason: %s.", message, reason)
	}
	notification := sharedevents.TournamentNotificationPayloadV1{
		TournamentID: team.TournamentID,
		Title:        fmt.Sprintf("Team withdrawal: %s", team.Name),
		Message:      message,
		Type:         sharedevents.NotificationWithdrawal,
	}
	if err := s.publishEvent(ctx, sharedevents.NotificationRequestedV1, notification); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish withdrawal notification",
			attr.Error(err),
			attr.UUID("team_id", team.ID),
		)
	}
}
