package roundservice

import (
	"context"
	"errors"
	"fmt"
	"sort"

	rounddb "github.com/Podium-Debate/podium-engine/app/modules/round/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// DebateListing is one row of the round status board.
type DebateListing struct {
	DebateID             types.DebateID     `json:"debate_id"`
	RoomName             string             `json:"room_name"`
	PropositionTeamID    *types.TeamID      `json:"proposition_team_id,omitempty"`
	OppositionTeamID     *types.TeamID      `json:"opposition_team_id,omitempty"`
	IsPublicSpeaking     bool               `json:"is_public_speaking"`
	Status               types.DebateStatus `json:"status"`
	WinningTeamID        *types.TeamID      `json:"winning_team_id,omitempty"`
	JudgeCount           int                `json:"judge_count"`
	FinalBallots         int                `json:"final_ballots"`
	CompletionPercentage float64            `json:"completion_percentage"`
	HasFlaggedBallots    bool               `json:"has_flagged_ballots"`
}

// DebateListView is the full listing for one round.
type DebateListView struct {
	RoundID              types.RoundID      `json:"round_id"`
	TournamentID         types.TournamentID `json:"tournament_id"`
	RoundNumber          int                `json:"round_number"`
	RoundStatus          types.RoundStatus  `json:"round_status"`
	Debates              []DebateListing    `json:"debates"`
	CompletionPercentage float64            `json:"completion_percentage"`
}

// ListDebates returns every debate in a round with its ballot progress
// and flag status. Ballot counts and flags are batch-fetched, one query
// each per request.
func (s *RoundService) ListDebates(ctx context.Context, roundID types.RoundID) (*DebateListView, error) {
	round, err := s.repo.GetRound(ctx, s.db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return nil, types.NewNotFoundError("round", roundID.String())
		}
		return nil, fmt.Errorf("fetching round: %w", err)
	}

	debates, err := s.repo.ListDebatesForRound(ctx, s.db, roundID)
	if err != nil {
		return nil, fmt.Errorf("listing debates: %w", err)
	}
	counts, err := s.repo.CountFinalBallotsByDebate(ctx, s.db, roundID)
	if err != nil {
		return nil, fmt.Errorf("counting final ballots: %w", err)
	}
	flagged, err := s.repo.FlaggedDebates(ctx, s.db, roundID)
	if err != nil {
		return nil, fmt.Errorf("listing flagged debates: %w", err)
	}

	view := &DebateListView{
		RoundID:      round.ID,
		TournamentID: round.TournamentID,
		RoundNumber:  round.RoundNumber,
		RoundStatus:  round.Status,
		Debates:      make([]DebateListing, 0, len(debates)),
	}

	completed := 0
	for _, debate := range debates {
		listing := DebateListing{
			DebateID:          debate.ID,
			RoomName:          debate.RoomName,
			PropositionTeamID: debate.PropositionTeamID,
			OppositionTeamID:  debate.OppositionTeamID,
			IsPublicSpeaking:  debate.IsPublicSpeaking,
			Status:            debate.Status,
			WinningTeamID:     debate.WinningTeamID,
			JudgeCount:        len(debate.Judges),
			FinalBallots:      counts[debate.ID],
			HasFlaggedBallots: flagged[debate.ID],
		}
		listing.CompletionPercentage = ballotCompletion(listing.FinalBallots, listing.JudgeCount, debate.Status)
		if debate.Status == types.DebateStatusCompleted {
			completed++
		}
		view.Debates = append(view.Debates, listing)
	}

	sort.Slice(view.Debates, func(i, j int) bool {
		return view.Debates[i].RoomName < view.Debates[j].RoomName
	})

	if len(debates) > 0 {
		view.CompletionPercentage = float64(completed) / float64(len(debates)) * 100
	}
	return view, nil
}

// ballotCompletion is the share of assigned judges whose ballot is
// final. Judge-less debates follow the debate status alone.
func ballotCompletion(finalBallots, judgeCount int, status types.DebateStatus) float64 {
	if judgeCount == 0 {
		if status == types.DebateStatusCompleted {
			return 100
		}
		return 0
	}
	return float64(finalBallots) / float64(judgeCount) * 100
}
