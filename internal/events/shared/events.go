// Package sharedevents holds the cross-module notification and audit
// topics. Both are fire-and-forget: publish failures are logged and
// never fail the originating mutation.
package sharedevents

import (
	"encoding/json"
	"time"

	"github.com/Podium-Debate/podium-engine/internal/types"
)

const (
	NotificationRequestedV1 = "notification.tournament.requested.v1"
	AuditRecordedV1         = "audit.recorded.v1"
)

// NotificationType categorizes a tournament-wide notification.
type NotificationType string

const (
	NotificationPairings   NotificationType = "pairings"
	NotificationResults    NotificationType = "results"
	NotificationWithdrawal NotificationType = "withdrawal"
	NotificationSchedule   NotificationType = "schedule"
)

// TournamentNotificationPayloadV1 asks the dispatcher to fan a message
// out to everyone registered in a tournament.
type TournamentNotificationPayloadV1 struct {
	TournamentID types.TournamentID `json:"tournament_id"`
	Title        string             `json:"title"`
	Message      string             `json:"message"`
	Type         NotificationType   `json:"type"`
}

// AuditRecordPayloadV1 is one audit log entry for the external sink.
type AuditRecordPayloadV1 struct {
	UserID        types.UserID    `json:"user_id"`
	Action        string          `json:"action"`
	ResourceType  string          `json:"resource_type"`
	ResourceID    string          `json:"resource_id"`
	Description   string          `json:"description"`
	PreviousState json.RawMessage `json:"previous_state,omitempty"`
	NewState      json.RawMessage `json:"new_state,omitempty"`
	RecordedAt    time.Time       `json:"recorded_at"`
}
