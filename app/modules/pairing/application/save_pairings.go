package pairingservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	pairingevents "github.com/Podium-Debate/podium-engine/internal/events/pairing"
	sharedevents "github.com/Podium-Debate/podium-engine/internal/events/shared"
	"github.com/Podium-Debate/podium-engine/internal/observability/attr"
	"github.com/Podium-Debate/podium-engine/internal/results"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

type savePairingsResult = results.OperationResult[pairingevents.PairingsSavedPayloadV1, pairingevents.PairingsSaveFailedPayloadV1]

// SavePairings validates a proposed room set and replaces the round's
// debates atomically. Validation collects every violation before
// rejecting; detector conflicts are surfaced on success but never block
// the save on their own.
func (s *PairingService) SavePairings(ctx context.Context, payload pairingevents.SavePairingsRequestedPayloadV1) (savePairingsResult, error) {
	return withTelemetry(s, ctx, "SavePairings", func(ctx context.Context) (savePairingsResult, error) {
		fail := func(reason string, violations []string) savePairingsResult {
			return results.Failure[pairingevents.PairingsSavedPayloadV1](pairingevents.PairingsSaveFailedPayloadV1{
				TournamentID: payload.TournamentID,
				RoundNumber:  payload.RoundNumber,
				Reason:       reason,
				Violations:   violations,
			})
		}

		tournament, err := s.repo.GetTournament(ctx, s.db, payload.TournamentID)
		if err != nil {
			if errors.Is(err, pairingdb.ErrNotFound) {
				return fail(fmt.Sprintf("tournament %s not found", payload.TournamentID), nil), nil
			}
			return savePairingsResult{}, err
		}

		round, err := s.repo.GetRound(ctx, s.db, payload.TournamentID, payload.RoundNumber)
		if err != nil {
			if errors.Is(err, pairingdb.ErrNotFound) {
				return fail(fmt.Sprintf("round %d not found in tournament %s", payload.RoundNumber, payload.TournamentID), nil), nil
			}
			return savePairingsResult{}, err
		}

		judgesPerDebate := tournament.JudgesPerDebate
		if judgesPerDebate == 0 {
			judgesPerDebate = s.judgesPerDebate
		}

		violations, warnings := validateProposed(payload.Proposed, judgesPerDebate)

		teams, err := s.repo.GetTeamsByIDs(ctx, s.db, proposedTeamIDs(payload.Proposed))
		if err != nil {
			return savePairingsResult{}, err
		}
		judges, err := s.repo.GetJudgesByIDs(ctx, s.db, proposedJudgeIDs(payload.Proposed))
		if err != nil {
			return savePairingsResult{}, err
		}
		violations = append(violations, validateReferences(payload.Proposed, teams, judges)...)

		if len(violations) > 0 {
			return fail("pairing validation failed", violations), nil
		}

		existing, err := s.repo.ListDebatesForRound(ctx, s.db, round.ID)
		if err != nil {
			return savePairingsResult{}, err
		}
		for _, debate := range existing {
			if !debate.Status.Mutable() {
				return fail(fmt.Sprintf("round %d has a debate in state %q and cannot be re-paired", payload.RoundNumber, debate.Status), nil), nil
			}
		}
		if round.Status == types.RoundStatusInProgress && tournament.Status == types.TournamentStatusInProgress {
			return fail(fmt.Sprintf("round %d is in progress and cannot be re-paired", payload.RoundNumber), nil), nil
		}

		conflicts, err := s.detectProposedConflicts(ctx, payload.Proposed, teams, judges)
		if err != nil {
			return savePairingsResult{}, err
		}

		now := time.Now().UTC()
		debates := make([]*pairingdb.Debate, 0, len(payload.Proposed))
		for _, proposed := range payload.Proposed {
			debates = append(debates, &pairingdb.Debate{
				ID:                uuid.New(),
				RoundID:           round.ID,
				TournamentID:      payload.TournamentID,
				PropositionTeamID: proposed.PropositionTeamID,
				OppositionTeamID:  proposed.OppositionTeamID,
				IsPublicSpeaking:  proposed.IsPublicSpeaking,
				Judges:            proposed.Judges,
				HeadJudgeID:       proposed.HeadJudgeID,
				RoomName:          proposed.RoomName,
				Status:            types.DebateStatusPending,
				CreatedAt:         now,
				UpdatedAt:         now,
			})
		}

		result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (savePairingsResult, error) {
			if err := s.repo.DeleteDebatesForRound(ctx, db, round.ID); err != nil {
				return savePairingsResult{}, err
			}
			if err := s.repo.InsertDebates(ctx, db, debates); err != nil {
				return savePairingsResult{}, err
			}
			return results.Success[pairingevents.PairingsSavedPayloadV1, pairingevents.PairingsSaveFailedPayloadV1](pairingevents.PairingsSavedPayloadV1{
				TournamentID: payload.TournamentID,
				RoundID:      round.ID,
				RoundNumber:  payload.RoundNumber,
				DebateCount:  len(debates),
				Warnings:     warnings,
				Conflicts:    conflicts,
			}), nil
		})
		if err != nil {
			return savePairingsResult{}, err
		}

		s.notifyPairingsSaved(ctx, payload, round.ID, len(existing), len(debates))

		return result, nil
	})
}

// notifyPairingsSaved publishes the notification and audit events after
// a successful save. Both are best-effort.
func (s *PairingService) notifyPairingsSaved(ctx context.Context, payload pairingevents.SavePairingsRequestedPayloadV1, roundID types.RoundID, previousCount, newCount int) {
	notification := sharedevents.TournamentNotificationPayloadV1{
		TournamentID: payload.TournamentID,
		Title:        fmt.Sprintf("Round %d pairings posted", payload.RoundNumber),
		Message:      fmt.Sprintf("Pairings for round %d are available (%d rooms).", payload.RoundNumber, newCount),
		Type:         sharedevents.NotificationPairings,
	}
	if err := s.publishEvent(ctx, sharedevents.NotificationRequestedV1, notification); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish pairing notification",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}

	newState, _ := json.Marshal(map[string]int{"debate_count": newCount})
	previousState, _ := json.Marshal(map[string]int{"debate_count": previousCount})
	audit := sharedevents.AuditRecordPayloadV1{
		UserID:        payload.RequestedBy,
		Action:        "save_pairings",
		ResourceType:  "round",
		ResourceID:    roundID.String(),
		Description:   fmt.Sprintf("replaced pairings for round %d of tournament %s", payload.RoundNumber, payload.TournamentID),
		PreviousState: previousState,
		NewState:      newState,
		RecordedAt:    time.Now().UTC(),
	}
	if err := s.publishEvent(ctx, sharedevents.AuditRecordedV1, audit); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish pairing audit record",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
	}
}

// validateProposed runs the structural checks that need no storage
// access. It returns every violation found, not just the first, plus
// the non-blocking warnings.
func validateProposed(proposed []pairingevents.ProposedDebate, judgesPerDebate int) (violations, warnings []string) {
	seenTeams := make(map[types.TeamID]string)

	for _, room := range proposed {
		teamIDs := make([]types.TeamID, 0, 2)
		if room.PropositionTeamID != nil {
			teamIDs = append(teamIDs, *room.PropositionTeamID)
		}
		if room.OppositionTeamID != nil {
			teamIDs = append(teamIDs, *room.OppositionTeamID)
		}

		switch {
		case room.IsPublicSpeaking && len(teamIDs) != 1:
			violations = append(violations, fmt.Sprintf("room %s: a public speaking room must have exactly one team", room.RoomName))
		case !room.IsPublicSpeaking && len(teamIDs) != 2:
			violations = append(violations, fmt.Sprintf("room %s: a debate room must have both teams assigned", room.RoomName))
		}

		if room.PropositionTeamID != nil && room.OppositionTeamID != nil &&
			*room.PropositionTeamID == *room.OppositionTeamID {
			violations = append(violations, fmt.Sprintf("room %s: a team cannot debate itself", room.RoomName))
		}

		for _, teamID := range teamIDs {
			if firstRoom, seen := seenTeams[teamID]; seen {
				violations = append(violations, fmt.Sprintf("team %s appears in rooms %s and %s", teamID, firstRoom, room.RoomName))
				continue
			}
			seenTeams[teamID] = room.RoomName
		}

		if !room.IsPublicSpeaking && len(room.Judges) == 0 {
			violations = append(violations, fmt.Sprintf("room %s: a debate room needs at least one judge", room.RoomName))
		}

		if room.HeadJudgeID != nil {
			found := false
			for _, judgeID := range room.Judges {
				if judgeID == *room.HeadJudgeID {
					found = true
					break
				}
			}
			if !found {
				violations = append(violations, fmt.Sprintf("room %s: head judge %s is not on the panel", room.RoomName, *room.HeadJudgeID))
			}
		}

		if count := len(room.Judges); count > 0 && count%2 == 0 && count != judgesPerDebate {
			warnings = append(warnings, fmt.Sprintf("room %s: an even panel of %d judges risks tie votes (expected %d)", room.RoomName, count, judgesPerDebate))
		}
	}

	return violations, warnings
}

// validateReferences checks every referenced team and judge against the
// batch-fetched rows.
func validateReferences(proposed []pairingevents.ProposedDebate, teams map[types.TeamID]*pairingdb.TeamRef, judges map[types.UserID]*pairingdb.JudgeRef) []string {
	var violations []string
	for _, room := range proposed {
		for _, teamID := range roomTeamIDs(room) {
			team, ok := teams[teamID]
			if !ok {
				violations = append(violations, fmt.Sprintf("room %s: unknown team %s", room.RoomName, teamID))
				continue
			}
			if team.Status != types.TeamStatusActive {
				violations = append(violations, fmt.Sprintf("room %s: team %s is %s", room.RoomName, team.Name, team.Status))
			}
		}
		for _, judgeID := range room.Judges {
			if _, ok := judges[judgeID]; !ok {
				violations = append(violations, fmt.Sprintf("room %s: unknown judge %s", room.RoomName, judgeID))
			}
		}
	}
	return violations
}

func roomTeamIDs(room pairingevents.ProposedDebate) []types.TeamID {
	ids := make([]types.TeamID, 0, 2)
	if room.PropositionTeamID != nil {
		ids = append(ids, *room.PropositionTeamID)
	}
	if room.OppositionTeamID != nil {
		ids = append(ids, *room.OppositionTeamID)
	}
	return ids
}

func proposedTeamIDs(proposed []pairingevents.ProposedDebate) []types.TeamID {
	seen := make(map[types.TeamID]struct{})
	var ids []types.TeamID
	for _, room := range proposed {
		for _, teamID := range roomTeamIDs(room) {
			if _, ok := seen[teamID]; ok {
				continue
			}
			seen[teamID] = struct{}{}
			ids = append(ids, teamID)
		}
	}
	return ids
}

func proposedJudgeIDs(proposed []pairingevents.ProposedDebate) []types.UserID {
	seen := make(map[types.UserID]struct{})
	var ids []types.UserID
	for _, room := range proposed {
		for _, judgeID := range room.Judges {
			if _, ok := seen[judgeID]; ok {
				continue
			}
			seen[judgeID] = struct{}{}
			ids = append(ids, judgeID)
		}
	}
	return ids
}

// detectProposedConflicts resolves school data for the proposed rooms
// and runs the per-debate detector over each one.
func (s *PairingService) detectProposedConflicts(ctx context.Context, proposed []pairingevents.ProposedDebate, teams map[types.TeamID]*pairingdb.TeamRef, judges map[types.UserID]*pairingdb.JudgeRef) ([]types.Conflict, error) {
	schoolIDs := make([]types.SchoolID, 0, len(teams)+len(judges))
	seen := make(map[types.SchoolID]struct{})
	collect := func(id *types.SchoolID) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; ok {
			return
		}
		seen[*id] = struct{}{}
		schoolIDs = append(schoolIDs, *id)
	}
	for _, team := range teams {
		collect(team.SchoolID)
	}
	for _, judge := range judges {
		collect(judge.SchoolID)
	}

	schools, err := s.repo.GetSchoolsByIDs(ctx, s.db, schoolIDs)
	if err != nil {
		return nil, err
	}
	schoolName := func(id *types.SchoolID) string {
		if id == nil {
			return ""
		}
		if school, ok := schools[*id]; ok {
			return school.Name
		}
		return ""
	}

	var conflicts []types.Conflict
	for _, room := range proposed {
		resolved := ResolvedDebate{
			RoomName:         room.RoomName,
			IsPublicSpeaking: room.IsPublicSpeaking,
		}
		if room.PropositionTeamID != nil {
			if team, ok := teams[*room.PropositionTeamID]; ok {
				resolved.Proposition = &ResolvedTeam{ID: team.ID, Name: team.Name, SchoolID: team.SchoolID, SchoolName: schoolName(team.SchoolID)}
			}
		}
		if room.OppositionTeamID != nil {
			if team, ok := teams[*room.OppositionTeamID]; ok {
				resolved.Opposition = &ResolvedTeam{ID: team.ID, Name: team.Name, SchoolID: team.SchoolID, SchoolName: schoolName(team.SchoolID)}
			}
		}
		for _, judgeID := range room.Judges {
			if judge, ok := judges[judgeID]; ok {
				resolved.Judges = append(resolved.Judges, ResolvedJudge{ID: judge.UserID, Name: judge.Name, SchoolID: judge.SchoolID, SchoolName: schoolName(judge.SchoolID)})
			}
		}
		conflicts = append(conflicts, DetectConflicts(resolved)...)
	}
	return conflicts, nil
}
