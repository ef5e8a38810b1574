package services

import (
	"log"

	"mio/models"
	"mio/repository"
)

// Notifier is the fire-and-forget boundary to the notification delivery
// collaborator. Implementations must never block completion processing;
// delivery failures are logged, not returned.
type Notifier interface {
	NotifyDayComplete(userID string, assignmentID uint)
	NotifyProtocolComplete(userID string, assignmentID uint)
}

// outboxNotifier records milestone notices into the in-memory outbox for
// the delivery collaborator (push/SMS/email) to drain.
type outboxNotifier struct {
	outbox repository.NotificationOutbox
}

// NewOutboxNotifier creates a Notifier backed by the notification outbox.
func NewOutboxNotifier(outbox repository.NotificationOutbox) Notifier {
	return &outboxNotifier{outbox: outbox}
}

// NotifyDayComplete records a day-complete milestone notice.
func (n *outboxNotifier) NotifyDayComplete(userID string, assignmentID uint) {
	err := n.outbox.SaveNotification(models.Notification{
		UserID:       userID,
		AssignmentID: assignmentID,
		Kind:         models.NotificationDayComplete,
	})
	if err != nil {
		log.Printf("WARN: [Notifier] Failed to record day-complete notice for userID %s (assignment %d): %v", userID, assignmentID, err)
	}
}

// NotifyProtocolComplete records a protocol-complete milestone notice.
func (n *outboxNotifier) NotifyProtocolComplete(userID string, assignmentID uint) {
	err := n.outbox.SaveNotification(models.Notification{
		UserID:       userID,
		AssignmentID: assignmentID,
		Kind:         models.NotificationProtocolComplete,
	})
	if err != nil {
		log.Printf("WARN: [Notifier] Failed to record protocol-complete notice for userID %s (assignment %d): %v", userID, assignmentID, err)
	}
}
