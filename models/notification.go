package models

import "time"

// NotificationKind identifies the milestone a notification announces.
type NotificationKind string

const (
	NotificationDayComplete      NotificationKind = "day_complete"
	NotificationProtocolComplete NotificationKind = "protocol_complete"
)

// Notification is a fire-and-forget milestone notice handed to the delivery
// collaborator. This core records it; transport (push/SMS/email) lives
// outside.
type Notification struct {
	ID           uint             `json:"id"`
	UserID       string           `json:"user_id"`
	AssignmentID uint             `json:"assignment_id"`
	Kind         NotificationKind `json:"kind"`
	CreatedAt    time.Time        `json:"created_at"`
}
