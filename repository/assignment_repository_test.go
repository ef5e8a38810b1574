package repository

import (
	"errors"
	"testing"
	"time"

	"mio/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	// Named shared-cache database so every connection in the pool sees the
	// same in-memory store.
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Assignment{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newActiveAssignment(userID string, slot models.Slot, protocolID uint) *models.Assignment {
	return &models.Assignment{
		UserID:           userID,
		Slot:             slot,
		ProtocolID:       protocolID,
		Status:           models.AssignmentStatusActive,
		CurrentWeek:      1,
		CurrentDay:       1,
		CompletedTaskIDs: []uint{},
	}
}

func TestAssignmentRepository_SlotExclusivity(t *testing.T) {
	repo := NewAssignmentRepository(newTestDB(t))
	userID := "user123"

	t.Run("Second assignment into an occupied slot is rejected", func(t *testing.T) {
		first := newActiveAssignment(userID, models.SlotPrimary, 1)
		assert.NoError(t, repo.CreateAssignment(first))
		assert.NotZero(t, first.ID)

		second := newActiveAssignment(userID, models.SlotPrimary, 2)
		err := repo.CreateAssignment(second)

		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrSlotOccupied))

		count, err := repo.CountActiveAssignments(userID, models.SlotPrimary)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("The other slot stays assignable", func(t *testing.T) {
		secondary := newActiveAssignment(userID, models.SlotSecondary, 2)
		assert.NoError(t, repo.CreateAssignment(secondary))

		count, err := repo.CountActiveAssignments(userID, models.SlotSecondary)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Completing the assignment frees the slot for a new one", func(t *testing.T) {
		active, err := repo.GetActiveAssignment(userID, models.SlotPrimary)
		assert.NoError(t, err)
		assert.NotNil(t, active)

		updated, err := repo.UpdateWithLock(active.ID, func(a *models.Assignment) error {
			a.Status = models.AssignmentStatusCompleted
			now := time.Now()
			a.CompletedAt = &now
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, models.AssignmentStatusCompleted, updated.Status)

		count, err := repo.CountActiveAssignments(userID, models.SlotPrimary)
		assert.NoError(t, err)
		assert.Zero(t, count)

		next := newActiveAssignment(userID, models.SlotPrimary, 2)
		assert.NoError(t, repo.CreateAssignment(next))

		count, err = repo.CountActiveAssignments(userID, models.SlotPrimary)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Another user's slots are unaffected", func(t *testing.T) {
		other := newActiveAssignment("someoneElse", models.SlotPrimary, 1)
		assert.NoError(t, repo.CreateAssignment(other))
	})
}

func TestAssignmentRepository_UpdateWithLock(t *testing.T) {
	repo := NewAssignmentRepository(newTestDB(t))

	t.Run("Apply mutations are persisted in one write", func(t *testing.T) {
		assignment := newActiveAssignment("user123", models.SlotPrimary, 1)
		assert.NoError(t, repo.CreateAssignment(assignment))

		updated, err := repo.UpdateWithLock(assignment.ID, func(a *models.Assignment) error {
			a.CompletedTaskIDs = append(a.CompletedTaskIDs, 7)
			a.TotalTasksCompleted++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, []uint{7}, updated.CompletedTaskIDs)
		assert.Equal(t, 1, updated.TotalTasksCompleted)

		reloaded, err := repo.GetAssignmentByID(assignment.ID)
		assert.NoError(t, err)
		assert.Equal(t, []uint{7}, reloaded.CompletedTaskIDs)
		assert.Equal(t, 1, reloaded.TotalTasksCompleted)
	})

	t.Run("Apply error aborts the write", func(t *testing.T) {
		assignment := newActiveAssignment("user456", models.SlotPrimary, 1)
		assert.NoError(t, repo.CreateAssignment(assignment))

		updated, err := repo.UpdateWithLock(assignment.ID, func(a *models.Assignment) error {
			a.TotalTasksCompleted = 99
			return errors.New("reducer rejected the event")
		})

		assert.Error(t, err)
		assert.Nil(t, updated)

		reloaded, err := repo.GetAssignmentByID(assignment.ID)
		assert.NoError(t, err)
		assert.Zero(t, reloaded.TotalTasksCompleted)
	})

	t.Run("Missing assignment yields nil without error", func(t *testing.T) {
		updated, err := repo.UpdateWithLock(9999, func(a *models.Assignment) error {
			return nil
		})

		assert.NoError(t, err)
		assert.Nil(t, updated)
	})
}
