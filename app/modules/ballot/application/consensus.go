package ballotservice

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	ballotdb "github.com/Podium-Debate/podium-engine/app/modules/ballot/infrastructure/repositories"
	"github.com/Podium-Debate/podium-engine/internal/types"
)

// debateOutcome is the result of recomputing a debate from its final
// ballots.
type debateOutcome struct {
	WinningTeamID         *types.TeamID
	WinningPosition       *types.Position
	PropositionVotes      int
	OppositionVotes       int
	PropositionTeamPoints float64
	OppositionTeamPoints  float64
	Tied                  bool
}

// ballotSide resolves which side a ballot favors. The explicit position
// wins; otherwise the winning team id is matched against the debate's
// slots.
func ballotSide(debate *ballotdb.DebateRow, ballot ballotdb.Ballot) (types.Position, bool) {
	if ballot.WinningPosition != nil {
		return *ballot.WinningPosition, true
	}
	if ballot.WinningTeamID == nil {
		return "", false
	}
	if debate.PropositionTeamID != nil && *ballot.WinningTeamID == *debate.PropositionTeamID {
		return types.PositionProposition, true
	}
	if debate.OppositionTeamID != nil && *ballot.WinningTeamID == *debate.OppositionTeamID {
		return types.PositionOpposition, true
	}
	return "", false
}

// computeOutcome recomputes a debate's result from scratch out of its
// final ballots. It is idempotent: calling it after every new final
// ballot converges on the same answer as calling it once at the end.
//
// Majority is strict; an even split leaves the winner unset but still
// counts as a computed (tied) outcome. Team points are the average
// per-ballot team totals, not a sum.
func computeOutcome(debate *ballotdb.DebateRow, finalBallots []ballotdb.Ballot) debateOutcome {
	outcome := debateOutcome{}

	for _, ballot := range finalBallots {
		side, ok := ballotSide(debate, ballot)
		if ok {
			switch side {
			case types.PositionProposition:
				outcome.PropositionVotes++
			case types.PositionOpposition:
				outcome.OppositionVotes++
			}
		}

		for _, score := range ballot.SpeakerScores {
			if debate.PropositionTeamID != nil && score.TeamID == *debate.PropositionTeamID {
				outcome.PropositionTeamPoints += score.Score
			} else if debate.OppositionTeamID != nil && score.TeamID == *debate.OppositionTeamID {
				outcome.OppositionTeamPoints += score.Score
			}
		}
	}

	if n := len(finalBallots); n > 0 {
		outcome.PropositionTeamPoints = outcome.PropositionTeamPoints / float64(n)
		outcome.OppositionTeamPoints = outcome.OppositionTeamPoints / float64(n)
	}

	switch {
	case outcome.PropositionVotes > outcome.OppositionVotes:
		outcome.WinningTeamID = debate.PropositionTeamID
		position := types.PositionProposition
		outcome.WinningPosition = &position
	case outcome.OppositionVotes > outcome.PropositionVotes:
		outcome.WinningTeamID = debate.OppositionTeamID
		position := types.PositionOpposition
		outcome.WinningPosition = &position
	default:
		outcome.Tied = true
	}

	return outcome
}

// applyOutcome writes a computed outcome onto the debate row and moves
// it to completed.
func applyOutcome(debate *ballotdb.DebateRow, outcome debateOutcome, now time.Time) error {
	next, err := debate.Status.Transition(types.DebateStatusCompleted)
	if err != nil {
		// Already completed: recomputation is legal, the status stays.
		if debate.Status != types.DebateStatusCompleted {
			return err
		}
		next = types.DebateStatusCompleted
	}
	debate.Status = next
	debate.WinningTeamID = outcome.WinningTeamID
	debate.WinningPosition = outcome.WinningPosition
	debate.PropositionVotes = outcome.PropositionVotes
	debate.OppositionVotes = outcome.OppositionVotes
	debate.PropositionTeamPoints = outcome.PropositionTeamPoints
	debate.OppositionTeamPoints = outcome.OppositionTeamPoints
	debate.UpdatedAt = now
	return nil
}

// runCompletionCascade checks whether the debate's round is finished
// and, if so, completes it. Runs inside the submission transaction.
//
// A round auto-completes only when every debate is completed with a
// decided winner and every judged debate has a final ballot from each
// assigned judge. A tie therefore blocks auto-completion until an
// admin override resolves it.
func (s *BallotService) runCompletionCascade(ctx context.Context, db bun.IDB, roundID types.RoundID) (bool, *ballotdb.RoundRow, error) {
	round, err := s.repo.GetRound(ctx, db, roundID)
	if err != nil {
		return false, nil, err
	}
	if round.Status == types.RoundStatusCompleted {
		return false, round, nil
	}

	debates, err := s.repo.ListDebatesForRound(ctx, db, roundID)
	if err != nil {
		return false, round, err
	}
	for _, debate := range debates {
		if debate.Status != types.DebateStatusCompleted || debate.WinningTeamID == nil {
			return false, round, nil
		}
	}

	counts, err := s.repo.CountFinalBallotsByDebate(ctx, db, roundID)
	if err != nil {
		return false, round, err
	}
	for _, debate := range debates {
		if len(debate.Judges) == 0 {
			continue
		}
		if counts[debate.ID] != len(debate.Judges) {
			return false, round, nil
		}
	}

	endTime := time.Now().UTC()
	completed, err := s.repo.CompleteRound(ctx, db, roundID, endTime)
	if err != nil {
		return false, round, err
	}
	if completed {
		round.Status = types.RoundStatusCompleted
		round.EndTime = &endTime
	}
	return completed, round, nil
}
