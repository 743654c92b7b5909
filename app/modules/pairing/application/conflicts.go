package pairingservice

import (
	"fmt"
	"sort"

	pairingdb "github.com/Podium-Debate/podium-engine/app/modules/pairing/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// ResolvedTeam is a team slot with its school joined in.
type ResolvedTeam struct {
	ID         types.TeamID
	Name       string
	SchoolID   *types.SchoolID
	SchoolName string
}

// ResolvedJudge is a judge with their school joined in.
type ResolvedJudge struct {
	ID         types.UserID
	Name       string
	SchoolID   *types.SchoolID
	SchoolName string
}

// ResolvedDebate is the detector's input: one room with team, school,
// and judge data already joined. DebateID is nil for proposed rooms
// that have not been persisted yet.
type ResolvedDebate struct {
	DebateID         *types.DebateID
	RoomName         string
	IsPublicSpeaking bool
	Proposition      *ResolvedTeam
	Opposition       *ResolvedTeam
	Judges           []ResolvedJudge
}

func (d ResolvedDebate) teams() []*ResolvedTeam {
	teams := make([]*ResolvedTeam, 0, 2)
	if d.Proposition != nil {
		teams = append(teams, d.Proposition)
	}
	if d.Opposition != nil {
		teams = append(teams, d.Opposition)
	}
	return teams
}

// DetectConflicts inspects a single resolved debate and returns its
// per-debate conflicts in a stable order: judge conflicts first (in
// judge order), then the same-school warning. It never touches storage.
func DetectConflicts(debate ResolvedDebate) []types.Conflict {
	var conflicts []types.Conflict

	// For public-speaking rooms only the single participating team is
	// checked, which teams() already guarantees.
	for _, judge := range debate.Judges {
		if judge.SchoolID == nil {
			continue
		}
		for _, team := range debate.teams() {
			if team.SchoolID == nil || *team.SchoolID != *judge.SchoolID {
				continue
			}
			judgeID := judge.ID
			conflicts = append(conflicts, types.Conflict{
				Type:        types.ConflictJudgeSchool,
				Severity:    types.SeverityError,
				Description: fmt.Sprintf("judge %s shares school %s with team %s in room %s", judge.Name, team.SchoolName, team.Name, debate.RoomName),
				DebateID:    debate.DebateID,
				TeamIDs:     []types.TeamID{team.ID},
				JudgeID:     &judgeID,
			})
		}
	}

	if !debate.IsPublicSpeaking && debate.Proposition != nil && debate.Opposition != nil {
		if debate.Proposition.SchoolID != nil && debate.Opposition.SchoolID != nil &&
			*debate.Proposition.SchoolID == *debate.Opposition.SchoolID {
			conflicts = append(conflicts, types.Conflict{
				Type:        types.ConflictSameSchool,
				Severity:    types.SeverityWarning,
				Description: fmt.Sprintf("teams %s and %s both represent %s in room %s", debate.Proposition.Name, debate.Opposition.Name, debate.Proposition.SchoolName, debate.RoomName),
				DebateID:    debate.DebateID,
				TeamIDs:     []types.TeamID{debate.Proposition.ID, debate.Opposition.ID},
			})
		}
	}

	return conflicts
}

// feedbackThreshold is the rubric average below which a judge's history
// against a team counts as a feedback conflict.
const feedbackThreshold = 2.0

// sideImbalanceTolerance is the allowed difference between a team's
// proposition and opposition appearances before it is flagged.
const sideImbalanceTolerance = 1

// AggregateInput carries the tournament-wide data the aggregate
// detector scans. Round numbers come separately because debates only
// carry round ids.
type AggregateInput struct {
	Debates      []pairingdb.Debate
	RoundNumbers map[types.RoundID]int
	TeamNames    map[types.TeamID]string
	Feedback     []pairingdb.JudgeFeedbackRef
}

// DetectAggregateConflicts computes the history-based conflict
// categories across a whole tournament: repeated opponents, side
// imbalance, extra byes, and judge feedback conflicts.
func DetectAggregateConflicts(input AggregateInput) []types.Conflict {
	var conflicts []types.Conflict

	conflicts = append(conflicts, detectRepeatOpponents(input)...)
	conflicts = append(conflicts, detectSideImbalance(input)...)
	conflicts = append(conflicts, detectByeViolations(input)...)
	conflicts = append(conflicts, detectFeedbackConflicts(input)...)

	return conflicts
}

type teamPair struct {
	a, b types.TeamID
}

func pairKey(a, b types.TeamID) teamPair {
	if b.String() < a.String() {
		a, b = b, a
	}
	return teamPair{a: a, b: b}
}

func detectRepeatOpponents(input AggregateInput) []types.Conflict {
	meetings := make(map[teamPair][]int)
	for _, debate := range input.Debates {
		if debate.IsPublicSpeaking || debate.PropositionTeamID == nil || debate.OppositionTeamID == nil {
			continue
		}
		key := pairKey(*debate.PropositionTeamID, *debate.OppositionTeamID)
		meetings[key] = append(meetings[key], input.RoundNumbers[debate.RoundID])
	}

	var conflicts []types.Conflict
	for pair, rounds := range meetings {
		if len(rounds) < 2 {
			continue
		}
		sort.Ints(rounds)
		conflicts = append(conflicts, types.Conflict{
			Type:        types.ConflictRepeatOpponent,
			Severity:    types.SeverityWarning,
			Description: fmt.Sprintf("teams %s and %s have met %d times (rounds %v)", input.TeamNames[pair.a], input.TeamNames[pair.b], len(rounds), rounds),
			TeamIDs:     []types.TeamID{pair.a, pair.b},
		})
	}
	sortConflicts(conflicts)
	return conflicts
}

func detectSideImbalance(input AggregateInput) []types.Conflict {
	type sides struct{ prop, opp int }
	counts := make(map[types.TeamID]*sides)
	bump := func(id types.TeamID) *sides {
		if counts[id] == nil {
			counts[id] = &sides{}
		}
		return counts[id]
	}
	for _, debate := range input.Debates {
		if debate.IsPublicSpeaking {
			continue
		}
		if debate.PropositionTeamID != nil {
			bump(*debate.PropositionTeamID).prop++
		}
		if debate.OppositionTeamID != nil {
			bump(*debate.OppositionTeamID).opp++
		}
	}

	var conflicts []types.Conflict
	for teamID, count := range counts {
		diff := count.prop - count.opp
		if diff < 0 {
			diff = -diff
		}
		if diff <= sideImbalanceTolerance {
			continue
		}
		conflicts = append(conflicts, types.Conflict{
			Type:        types.ConflictSideImbalance,
			Severity:    types.SeverityWarning,
			Description: fmt.Sprintf("team %s has debated proposition %d times and opposition %d times", input.TeamNames[teamID], count.prop, count.opp),
			TeamIDs:     []types.TeamID{teamID},
		})
	}
	sortConflicts(conflicts)
	return conflicts
}

func detectByeViolations(input AggregateInput) []types.Conflict {
	byes := make(map[types.TeamID]int)
	for _, debate := range input.Debates {
		if !debate.IsPublicSpeaking {
			continue
		}
		for _, teamID := range debate.TeamIDs() {
			byes[teamID]++
		}
	}

	var conflicts []types.Conflict
	for teamID, count := range byes {
		if count <= 1 {
			continue
		}
		conflicts = append(conflicts, types.Conflict{
			Type:        types.ConflictByeViolation,
			Severity:    types.SeverityWarning,
			Description: fmt.Sprintf("team %s has received %d byes", input.TeamNames[teamID], count),
			TeamIDs:     []types.TeamID{teamID},
		})
	}
	sortConflicts(conflicts)
	return conflicts
}

func detectFeedbackConflicts(input AggregateInput) []types.Conflict {
	type judgeTeam struct {
		judge types.UserID
		team  types.TeamID
	}
	type history struct {
		sum    float64
		dims   int
		biased bool
	}
	histories := make(map[judgeTeam]*history)

	for _, ballot := range input.Feedback {
		for _, score := range ballot.SpeakerScores {
			key := judgeTeam{judge: ballot.JudgeID, team: score.TeamID}
			h := histories[key]
			if h == nil {
				h = &history{}
				histories[key] = h
			}
			h.sum += score.RoleFulfillment + score.ArgumentationClash + score.ContentDevelopment + score.StyleStrategyDelivery
			h.dims += 4
			if score.BiasFlag {
				h.biased = true
			}
		}
	}

	var conflicts []types.Conflict
	for key, h := range histories {
		average := h.sum / float64(h.dims)
		if !h.biased && average >= feedbackThreshold {
			continue
		}
		judgeID := key.judge
		description := fmt.Sprintf("judge %s has averaged %.1f across feedback dimensions for team %s", key.judge, average, input.TeamNames[key.team])
		if h.biased {
			description = fmt.Sprintf("judge %s has a bias flag against team %s", key.judge, input.TeamNames[key.team])
		}
		conflicts = append(conflicts, types.Conflict{
			Type:        types.ConflictFeedback,
			Severity:    types.SeverityWarning,
			Description: description,
			TeamIDs:     []types.TeamID{key.team},
			JudgeID:     &judgeID,
		})
	}
	sortConflicts(conflicts)
	return conflicts
}

// sortConflicts orders by description so map iteration never leaks into
// report ordering.
func sortConflicts(conflicts []types.Conflict) {
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Description < conflicts[j].Description
	})
}
