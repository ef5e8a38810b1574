package services

import (
	"testing"

	"mio/models"
	"mio/repository"

	"github.com/stretchr/testify/assert"
)

func TestOutboxNotifier(t *testing.T) {
	t.Run("Milestone notices land in the user's outbox", func(t *testing.T) {
		outbox := repository.NewNotificationOutbox()
		notifier := NewOutboxNotifier(outbox)

		notifier.NotifyDayComplete("user123", 10)
		notifier.NotifyProtocolComplete("user123", 10)

		notices, err := outbox.GetNotificationsByUserID("user123")
		assert.NoError(t, err)
		assert.Len(t, notices, 2)
		assert.Equal(t, models.NotificationDayComplete, notices[0].Kind)
		assert.Equal(t, models.NotificationProtocolComplete, notices[1].Kind)
		assert.Equal(t, uint(10), notices[0].AssignmentID)
	})

	t.Run("Outboxes are isolated per user", func(t *testing.T) {
		outbox := repository.NewNotificationOutbox()
		notifier := NewOutboxNotifier(outbox)

		notifier.NotifyDayComplete("user123", 10)

		notices, err := outbox.GetNotificationsByUserID("someoneElse")
		assert.NoError(t, err)
		assert.Empty(t, notices)
	})

	t.Run("Save failure does not panic the notifier", func(t *testing.T) {
		outbox := repository.NewNotificationOutbox()
		notifier := NewOutboxNotifier(outbox)

		// Empty userID is rejected by the outbox; the notifier only logs it.
		assert.NotPanics(t, func() {
			notifier.NotifyDayComplete("", 10)
		})
	})
}
