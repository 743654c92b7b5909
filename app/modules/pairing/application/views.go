package pairingservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// TeamSlot is a team rendered into a pairing view.
type TeamSlot struct {
	ID         types.TeamID `json:"id"`
	Name       string       `json:"name"`
	SchoolName string       `json:"school_name,omitempty"`
}

// JudgeSlot is a judge rendered into a pairing view.
type JudgeSlot struct {
	ID         types.UserID `json:"id"`
	Name       string       `json:"name"`
	SchoolName string       `json:"school_name,omitempty"`
	IsHead     bool         `json:"is_head,omitempty"`
}

// PairingRoom is one debate row of the pairing view.
type PairingRoom struct {
	DebateID         types.DebateID     `json:"debate_id"`
	RoomName         string             `json:"room_name"`
	IsPublicSpeaking bool               `json:"is_public_speaking"`
	Status           types.DebateStatus `json:"status"`
	Proposition      *TeamSlot          `json:"proposition,omitempty"`
	Opposition       *TeamSlot          `json:"opposition,omitempty"`
	Judges           []JudgeSlot        `json:"judges"`
	Conflicts        []types.Conflict   `json:"conflicts,omitempty"`
}

// PairingsView is a round's rooms with everything joined in.
type PairingsView struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	RoundID      types.RoundID      `json:"round_id"`
	RoundNumber  int                `json:"round_number"`
	RoundStatus  types.RoundStatus  `json:"round_status"`
	Rooms        []PairingRoom      `json:"rooms"`
}

// QualityReport summarizes the aggregate conflict scan of a tournament.
type QualityReport struct {
	TournamentID    types.TournamentID         `json:"tournament_id"`
	DebateCount     int                        `json:"debate_count"`
	Conflicts       []types.Conflict           `json:"conflicts"`
	CountsByType    map[types.ConflictType]int `json:"counts_by_type"`
	Recommendations []string                   `json:"recommendations"`
}

// GetPairings returns a round's rooms ordered by room number, with
// team, school, and judge data batch-fetched in one pass per entity.
func (s *PairingService) GetPairings(ctx context.Context, tournamentID types.TournamentID, roundNumber int) (*PairingsView, error) {
	round, err := s.repo.GetRound(ctx, s.db, tournamentID, roundNumber)
	if err != nil {
		if errors.Is(err, pairingdb.ErrNotFound) {
			return nil, types.NewNotFoundError("round", strconv.Itoa(roundNumber))
		}
		return nil, err
	}

	debates, err := s.repo.ListDebatesForRound(ctx, s.db, round.ID)
	if err != nil {
		return nil, err
	}

	teamIDs := make([]types.TeamID, 0, len(debates)*2)
	judgeIDs := make([]types.UserID, 0, len(debates)*3)
	for _, debate := range debates {
		teamIDs = append(teamIDs, debate.TeamIDs()...)
		judgeIDs = append(judgeIDs, debate.Judges...)
	}
	teams, err := s.repo.GetTeamsByIDs(ctx, s.db, teamIDs)
	if err != nil {
		return nil, err
	}
	judges, err := s.repo.GetJudgesByIDs(ctx, s.db, judgeIDs)
	if err != nil {
		return nil, err
	}

	schoolIDs := make([]types.SchoolID, 0, len(teams)+len(judges))
	seen := make(map[types.SchoolID]struct{})
	for _, team := range teams {
		if team.SchoolID != nil {
			if _, ok := seen[*team.SchoolID]; !ok {
				seen[*team.SchoolID] = struct{}{}
				schoolIDs = append(schoolIDs, *team.SchoolID)
			}
		}
	}
	for _, judge := range judges {
		if judge.SchoolID != nil {
			if _, ok := seen[*judge.SchoolID]; !ok {
				seen[*judge.SchoolID] = struct{}{}
				schoolIDs = append(schoolIDs, *judge.SchoolID)
			}
		}
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

	view := &PairingsView{
		TournamentID: tournamentID,
		RoundID:      round.ID,
		RoundNumber:  round.RoundNumber,
		RoundStatus:  round.Status,
		Rooms:        make([]PairingRoom, 0, len(debates)),
	}

	for _, debate := range debates {
		debateID := debate.ID
		room := PairingRoom{
			DebateID:         debate.ID,
			RoomName:         debate.RoomName,
			IsPublicSpeaking: debate.IsPublicSpeaking,
			Status:           debate.Status,
			Judges:           make([]JudgeSlot, 0, len(debate.Judges)),
		}
		resolved := ResolvedDebate{
			DebateID:         &debateID,
			RoomName:         debate.RoomName,
			IsPublicSpeaking: debate.IsPublicSpeaking,
		}
		if debate.PropositionTeamID != nil {
			if team, ok := teams[*debate.PropositionTeamID]; ok {
				room.Proposition = &TeamSlot{ID: team.ID, Name: team.Name, SchoolName: schoolName(team.SchoolID)}
				resolved.Proposition = &ResolvedTeam{ID: team.ID, Name: team.Name, SchoolID: team.SchoolID, SchoolName: schoolName(team.SchoolID)}
			}
		}
		if debate.OppositionTeamID != nil {
			if team, ok := teams[*debate.OppositionTeamID]; ok {
				room.Opposition = &TeamSlot{ID: team.ID, Name: team.Name, SchoolName: schoolName(team.SchoolID)}
				resolved.Opposition = &ResolvedTeam{ID: team.ID, Name: team.Name, SchoolID: team.SchoolID, SchoolName: schoolName(team.SchoolID)}
			}
		}
		for _, judgeID := range debate.Judges {
			judge, ok := judges[judgeID]
			if !ok {
				continue
			}
			isHead := debate.HeadJudgeID != nil && *debate.HeadJudgeID == judgeID
			room.Judges = append(room.Judges, JudgeSlot{ID: judge.UserID, Name: judge.Name, SchoolName: schoolName(judge.SchoolID), IsHead: isHead})
			resolved.Judges = append(resolved.Judges, ResolvedJudge{ID: judge.UserID, Name: judge.Name, SchoolID: judge.SchoolID, SchoolName: schoolName(judge.SchoolID)})
		}
		room.Conflicts = DetectConflicts(resolved)
		view.Rooms = append(view.Rooms, room)
	}

	sortRooms(view.Rooms)
	return view, nil
}

// GetPairingQuality scans every debate and final ballot of a tournament
// for the history-based conflict categories.
func (s *PairingService) GetPairingQuality(ctx context.Context, tournamentID types.TournamentID) (*QualityReport, error) {
	if _, err := s.repo.GetTournament(ctx, s.db, tournamentID); err != nil {
		if errors.Is(err, pairingdb.ErrNotFound) {
			return nil, types.NewNotFoundError("tournament", tournamentID.String())
		}
		return nil, err
	}

	debates, err := s.repo.ListDebatesForTournament(ctx, s.db, tournamentID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.repo.ListRoundsForTournament(ctx, s.db, tournamentID)
	if err != nil {
		return nil, err
	}
	teams, err := s.repo.ListTeamsForTournament(ctx, s.db, tournamentID)
	if err != nil {
		return nil, err
	}
	feedback, err := s.repo.ListJudgeFeedback(ctx, s.db, tournamentID)
	if err != nil {
		return nil, err
	}

	roundNumbers := make(map[types.RoundID]int, len(rounds))
	for _, round := range rounds {
		roundNumbers[round.ID] = round.RoundNumber
	}
	teamNames := make(map[types.TeamID]string, len(teams))
	for _, team := range teams {
		teamNames[team.ID] = team.Name
	}

	conflicts := DetectAggregateConflicts(AggregateInput{
		Debates:      debates,
		RoundNumbers: roundNumbers,
		TeamNames:    teamNames,
		Feedback:     feedback,
	})

	counts := make(map[types.ConflictType]int)
	for _, conflict := range conflicts {
		counts[conflict.Type]++
	}

	return &QualityReport{
		TournamentID:    tournamentID,
		DebateCount:     len(debates),
		Conflicts:       conflicts,
		CountsByType:    counts,
		Recommendations: buildRecommendations(counts),
	}, nil
}

// buildRecommendations turns the aggregate conflict counts into the
// advisory lines shown alongside a quality report.
func buildRecommendations(counts map[types.ConflictType]int) []string {
	recommendations := []string{}
	if n := counts[types.ConflictRepeatOpponent]; n > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d pairing(s) repeat an earlier opponent; vary the draw in later rounds", n))
	}
	if n := counts[types.ConflictSideImbalance]; n > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d team(s) have an unbalanced side history; assign them the under-represented side next round", n))
	}
	if n := counts[types.ConflictByeViolation]; n > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d team(s) have sat out more than once; rotate byes across the field", n))
	}
	if n := counts[types.ConflictFeedback]; n > 0 {
		recommendations = append(recommendations, fmt.Sprintf("%d judge-team pairing(s) show a feedback conflict; keep those judges off those teams", n))
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "no pairing issues detected")
	}
	return recommendations
}

// sortRooms orders rooms by the first integer in the room name, then
// lexically. "Room 10" sorts after "Room 2".
func sortRooms(rooms []PairingRoom) {
	sort.SliceStable(rooms, func(i, j int) bool {
		ni, iOK := roomNumber(rooms[i].RoomName)
		nj, jOK := roomNumber(rooms[j].RoomName)
		switch {
		case iOK && jOK && ni != nj:
			return ni < nj
		case iOK != jOK:
			return iOK
		default:
			return rooms[i].RoomName < rooms[j].RoomName
		}
	})
}

func roomNumber(name string) (int, bool) {
	start := 0
	for start < len(name) && (name[start] < '0' || name[start] > '9') {
		start++
	}
	end := start
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(name[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
