package repository

import (
	"errors"
	"log"
	"sync"
	"time"

	"mio/models"
)

// NotificationOutbox records fire-and-forget milestone notices for the
// delivery collaborator to drain. Delivery transport (push/SMS/email) is
// outside this core, so an in-memory store is enough.
type NotificationOutbox interface {
	SaveNotification(notification models.Notification) error
	GetNotificationsByUserID(userID string) ([]models.Notification, error)
}

type notificationOutbox struct {
	notifications map[string][]models.Notification // keyed by UserID
	mu            sync.RWMutex
}

// NewNotificationOutbox creates an in-memory NotificationOutbox.
func NewNotificationOutbox() NotificationOutbox {
	return &notificationOutbox{
		notifications: make(map[string][]models.Notification),
	}
}

// SaveNotification appends a notification to the user's outbox.
func (r *notificationOutbox) SaveNotification(notification models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notification.UserID == "" {
		return errors.New("failed to save notification: UserID cannot be empty")
	}

	userNotifications := r.notifications[notification.UserID]
	notification.ID = uint(len(userNotifications) + 1) // per-user sequence
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	r.notifications[notification.UserID] = append(userNotifications, notification)

	log.Printf("INFO: [NotificationOutbox] Recorded notification: UserID=%s, ID=%d, Kind=%s, AssignmentID=%d",
		notification.UserID, notification.ID, notification.Kind, notification.AssignmentID)
	return nil
}

// GetNotificationsByUserID returns a copy of the user's pending notices.
// An unknown user yields an empty slice, not an error.
func (r *notificationOutbox) GetNotificationsByUserID(userID string) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userNotifications, exists := r.notifications[userID]
	if !exists || len(userNotifications) == 0 {
		return []models.Notification{}, nil
	}

	// Return a copy so callers cannot mutate internal storage.
	result := make([]models.Notification, len(userNotifications))
	copy(result, userNotifications)
	return result, nil
}
