package types

import "fmt"

// Statuses used to be plain strings patched ad hoc from many call
// sites. Each entity now has a single Transition function that rejects
// illegal moves, so the lifecycle invariants live in one place.

// TournamentStatus is the coarse tournament state machine.
type TournamentStatus string

const (
	TournamentStatusDraft      TournamentStatus = "draft"
	TournamentStatusPublished  TournamentStatus = "published"
	TournamentStatusInProgress TournamentStatus = "in_progress"
	TournamentStatusCompleted  TournamentStatus = "completed"
	TournamentStatusCancelled  TournamentStatus = "cancelled"
)

var tournamentTransitions = map[TournamentStatus][]TournamentStatus{
	TournamentStatusDraft:      {TournamentStatusPublished, TournamentStatusCancelled},
	TournamentStatusPublished:  {TournamentStatusInProgress, TournamentStatusCancelled},
	TournamentStatusInProgress: {TournamentStatusCompleted, TournamentStatusCancelled},
	TournamentStatusCompleted:  {},
	TournamentStatusCancelled:  {},
}

// Transition returns the next status or an error when the move is not
// a legal edge of the tournament state machine.
func (s TournamentStatus) Transition(to TournamentStatus) (TournamentStatus, error) {
	for _, allowed := range tournamentTransitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("illegal tournament transition %s -> %s", s, to)
}

// RoundStatus is the round state machine. Rounds never regress: the
// only terminal state is completed, reached via the completion cascade.
type RoundStatus string

const (
	RoundStatusPending    RoundStatus = "pending"
	RoundStatusInProgress RoundStatus = "in_progress"
	RoundStatusCompleted  RoundStatus = "completed"
)

var roundTransitions = map[RoundStatus][]RoundStatus{
	RoundStatusPending:    {RoundStatusInProgress, RoundStatusCompleted},
	RoundStatusInProgress: {RoundStatusCompleted},
	RoundStatusCompleted:  {},
}

// Transition returns the next status or an error on an illegal move
// (completed -> pending being the classic one).
func (s RoundStatus) Transition(to RoundStatus) (RoundStatus, error) {
	for _, allowed := range roundTransitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("illegal round transition %s -> %s", s, to)
}

// DebateStatus is the debate state machine. no_show is an operator
// escape hatch from pending only.
type DebateStatus string

const (
	DebateStatusPending    DebateStatus = "pending"
	DebateStatusInProgress DebateStatus = "in_progress"
	DebateStatusCompleted  DebateStatus = "completed"
	DebateStatusNoShow     DebateStatus = "no_show"
)

var debateTransitions = map[DebateStatus][]DebateStatus{
	DebateStatusPending:    {DebateStatusInProgress, DebateStatusCompleted, DebateStatusNoShow},
	DebateStatusInProgress: {DebateStatusCompleted},
	DebateStatusCompleted:  {},
	DebateStatusNoShow:     {},
}

// Transition returns the next status or an error on an illegal move.
func (s DebateStatus) Transition(to DebateStatus) (DebateStatus, error) {
	for _, allowed := range debateTransitions[s] {
		if allowed == to {
			return to, nil
		}
	}
	return s, fmt.Errorf("illegal debate transition %s -> %s", s, to)
}

// Mutable reports whether the pairing layer may still replace a debate.
// Once a debate is live or decided only the ballot and withdrawal paths
// touch it. A no_show debate left behind by a withdrawal stays
// re-pairable.
func (s DebateStatus) Mutable() bool {
	return s == DebateStatusPending || s == DebateStatusNoShow
}
