package types

import (
	"time"

	"github.com/google/uuid"
)

// Entity identifiers. Aliased to uuid.UUID so bun and the uuid helpers
// work on them directly.
type (
	TournamentID = uuid.UUID
	RoundID      = uuid.UUID
	DebateID     = uuid.UUID
	BallotID     = uuid.UUID
	TeamID       = uuid.UUID
	SchoolID     = uuid.UUID
)

// UserID identifies a platform user (judge, speaker, admin). Users live
// in an external identity system, so the id is an opaque string.
type UserID string

// Role is the platform role carried by a verified session.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
	RoleStudent   Role = "student"
)

// Position is the side a team argues in a debate.
type Position string

const (
	PositionProposition Position = "proposition"
	PositionOpposition  Position = "opposition"
)

// TournamentFormat identifies the debate format a tournament runs.
type TournamentFormat string

const (
	FormatWorldSchools      TournamentFormat = "world_schools"
	FormatBritishParliament TournamentFormat = "british_parliamentary"
	FormatPublicForum       TournamentFormat = "public_forum"
)

// RoundType distinguishes preliminary rounds from the knockout bracket.
type RoundType string

const (
	RoundTypePreliminary RoundType = "preliminary"
	RoundTypeElimination RoundType = "elimination"
	RoundTypeFinal       RoundType = "final"
)

// TeamStatus is the registration state of a team.
type TeamStatus string

const (
	TeamStatusActive       TeamStatus = "active"
	TeamStatusWithdrawn    TeamStatus = "withdrawn"
	TeamStatusDisqualified TeamStatus = "disqualified"
)

// SpeakerScore is one judge's rubric scoring for a single speaker.
// The four sub-scores are each in [0,25]; Score is the normalized final
// value on the 30-point speaker scale, computed once at submission.
type SpeakerScore struct {
	SpeakerID             UserID  `json:"speaker_id"`
	TeamID                TeamID  `json:"team_id"`
	RoleFulfillment       float64 `json:"role_fulfillment"`
	ArgumentationClash    float64 `json:"argumentation_clash"`
	ContentDevelopment    float64 `json:"content_development"`
	StyleStrategyDelivery float64 `json:"style_strategy_delivery"`
	Score                 float64 `json:"score"`
	Comments              string  `json:"comments,omitempty"`
	BiasFlag              bool    `json:"bias_flag,omitempty"`
}

// FlagType classifies a ballot flag record.
type FlagType string

const (
	FlagTypeAdmin FlagType = "admin"
	FlagTypeJudge FlagType = "judge"
)

// BallotFlag is a typed moderation marker attached to a ballot. Flags
// used to be encoded as substrings of the notes field; they are proper
// records here so has-flag/list/clear never scrape free text.
type BallotFlag struct {
	Type      FlagType  `json:"type"`
	Reason    string    `json:"reason"`
	FlaggedBy UserID    `json:"flagged_by"`
	FlaggedAt time.Time `json:"flagged_at"`
}
