package pairingservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/Podium-Debate/podium-engine/app/modules/pairing/application/parsers"
	pairingevents "github.com/Podium-Debate/podium-engine/internal/events/pairing"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/results"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

type importSheetResult = results.OperationResult[pairingevents.PairingsSavedPayloadV1, pairingevents.ImportSheetFailedPayloadV1]

// ImportPairingSheet parses an uploaded XLSX workbook, resolves its
// team and judge names against the tournament roster, and hands the
// result to SavePairings.
func (s *PairingService) ImportPairingSheet(ctx context.Context, payload pairingevents.ImportSheetRequestedPayloadV1) (importSheetResult, error) {
	return withTelemetry(s, ctx, "ImportPairingSheet", func(ctx context.Context) (importSheetResult, error) {
		fail := func(reason string) importSheetResult {
			return results.Failure[pairingevents.PairingsSavedPayloadV1](pairingevents.ImportSheetFailedPayloadV1{
				TournamentID: payload.TournamentID,
				RoundNumber:  payload.RoundNumber,
				Reason:       reason,
			})
		}

		if s.maxSheetBytes > 0 && int64(len(payload.SheetData)) > s.maxSheetBytes {
			return fail(fmt.Sprintf("sheet is %d bytes, limit is %d", len(payload.SheetData), s.maxSheetBytes)), nil
		}

		rows, err := parsers.ParsePairingSheet(payload.SheetData)
		if err != nil {
			return fail(err.Error()), nil
		}

		teams, err := s.repo.ListTeamsForTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			return importSheetResult{}, err
		}
		judges, err := s.repo.ListJudges(ctx, s.db)
		if err != nil {
			return importSheetResult{}, err
		}

		teamsByName := make(map[string]types.TeamID, len(teams))
		for _, team := range teams {
			teamsByName[strings.ToLower(team.Name)] = team.ID
		}
		judgesByName := make(map[string]types.UserID, len(judges))
		for _, judge := range judges {
			judgesByName[strings.ToLower(judge.Name)] = judge.UserID
		}

		var unresolved []string
		proposed := make([]pairingevents.ProposedDebate, 0, len(rows))
		for _, row := range rows {
			room := pairingevents.ProposedDebate{
				RoomName:         row.RoomName,
				IsPublicSpeaking: row.IsPublicSpeaking,
			}
			if id, ok := teamsByName[strings.ToLower(row.PropositionName)]; ok {
				teamID := id
				room.PropositionTeamID = &teamID
			} else {
				unresolved = append(unresolved, fmt.Sprintf("room %s: unknown team %q", row.RoomName, row.PropositionName))
			}
			if row.OppositionName != "" {
				if id, ok := teamsByName[strings.ToLower(row.OppositionName)]; ok {
					teamID := id
					room.OppositionTeamID = &teamID
				} else {
					unresolved = append(unresolved, fmt.Sprintf("room %s: unknown team %q", row.RoomName, row.OppositionName))
				}
			}
			for _, judgeName := range row.JudgeNames {
				if id, ok := judgesByName[strings.ToLower(judgeName)]; ok {
					room.Judges = append(room.Judges, id)
				} else {
					unresolved = append(unresolved, fmt.Sprintf("room %s: unknown judge %q", row.RoomName, judgeName))
				}
			}
			if row.HeadJudgeName != "" {
				if id, ok := judgesByName[strings.ToLower(row.HeadJudgeName)]; ok {
					judgeID := id
					room.HeadJudgeID = &judgeID
				} else {
					unresolved = append(unresolved, fmt.Sprintf("room %s: unknown head judge %q", row.RoomName, row.HeadJudgeName))
				}
			}
			proposed = append(proposed, room)
		}

		if len(unresolved) > 0 {
			return fail("unresolved names: " + strings.Join(unresolved, "; ")), nil
		}

		saveResult, err := s.SavePairings(ctx, pairingevents.SavePairingsRequestedPayloadV1{
			TournamentID: payload.TournamentID,
			RoundNumber:  payload.RoundNumber,
			RoundType:    payload.RoundType,
			RequestedBy:  payload.RequestedBy,
			Proposed:     proposed,
		})
		if err != nil {
			return importSheetResult{}, err
		}
		if saveResult.IsFailure() {
			reason := saveResult.Failure.Reason
			if len(saveResult.Failure.Violations) > 0 {
				reason = reason + ": " + strings.Join(saveResult.Failure.Violations, "; ")
			}
			s.logger.WarnContext(ctx, "Imported sheet failed pairing validation",
				attr.ExtractCorrelationID(ctx),
				attr.String("reason", reason),
			)
			return fail(reason), nil
		}

		return results.Success[pairingevents.PairingsSavedPayloadV1, pairingevents.ImportSheetFailedPayloadV1](*saveResult.Success), nil
	})
}
