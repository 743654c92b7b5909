package types

// ConflictType classifies a pairing conflict.
type ConflictType string

const (
	// Per-debate conflicts, computed at validation time.
	ConflictJudgeSchool ConflictType = "judge_conflict"
	ConflictSameSchool  ConflictType = "same_school"

	// Aggregate conflicts, computed by the pairing-quality report.
	ConflictRepeatOpponent ConflictType = "repeat_opponent"
	ConflictSideImbalance  ConflictType = "side_imbalance"
	ConflictByeViolation   ConflictType = "bye_violation"
	ConflictFeedback       ConflictType = "feedback_conflict"
)

// ConflictSeverity is how strongly a conflict should be surfaced.
// Errors still never block persistence on their own; the caller makes
// the override decision.
type ConflictSeverity string

const (
	SeverityWarning ConflictSeverity = "warning"
	SeverityError   ConflictSeverity = "error"
)

// Conflict is one typed pairing conflict attached to a debate or, for
// the aggregate categories, to a team/judge pair across a tournament.
type Conflict struct {
	Type        ConflictType     `json:"type"`
	Severity    ConflictSeverity `json:"severity"`
	Description string           `json:"description"`
	DebateID    *DebateID        `json:"debate_id,omitempty"`
	TeamIDs     []TeamID         `json:"team_ids,omitempty"`
	JudgeID     *UserID          `json:"judge_id,omitempty"`
}
