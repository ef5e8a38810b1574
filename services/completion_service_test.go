package services

import (
	"testing"

	"mio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock type for the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyDayComplete(userID string, assignmentID uint) {
	m.Called(userID, assignmentID)
}

func (m *MockNotifier) NotifyProtocolComplete(userID string, assignmentID uint) {
	m.Called(userID, assignmentID)
}

// buildProtocol creates a protocol of the given length with tasksPerDay
// tasks in every (week, day) cell. Task IDs are sequential, so
// taskIDsFor can hand tests the IDs of any one day.
func buildProtocol(weeks int, tasksPerDay int) *models.Protocol {
	p := &models.Protocol{ID: 1, Slug: "daily-deductible", Title: "Daily Deductible", DurationDays: weeks * 7}
	var id uint = 1
	for w := 1; w <= weeks; w++ {
		for d := 1; d <= 7; d++ {
			for n := 0; n < tasksPerDay; n++ {
				p.Tasks = append(p.Tasks, models.ProtocolTask{
					ID: id, ProtocolID: p.ID, Week: w, Day: d,
					TimeOfDay: models.TimeOfDayMorning, Type: models.TaskTypeAction,
					Title: "practice", Order: n,
				})
				id++
			}
		}
	}
	return p
}

func taskIDsFor(p *models.Protocol, week, day int) []uint {
	var ids []uint
	for _, task := range p.TasksForDay(week, day) {
		ids = append(ids, task.ID)
	}
	return ids
}

func TestCompletionService_Complete(t *testing.T) {
	userID := "user123"
	protocol := buildProtocol(2, 2) // 14 days, 2 tasks per day

	newService := func(assignment *models.Assignment) (CompletionService, *MockAssignmentRepository, *MockNotifier) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		mockNotifier := new(MockNotifier)
		if assignment != nil {
			mockAssignmentRepo.On("GetAssignmentByID", assignment.ID).Return(assignment, nil)
			mockProtocolRepo.On("GetProtocolByID", protocol.ID).Return(protocol, nil)
			mockAssignmentRepo.On("UpdateWithLock", assignment.ID).Return(assignment, nil)
		}
		return NewCompletionService(mockAssignmentRepo, mockProtocolRepo, mockNotifier), mockAssignmentRepo, mockNotifier
	}

	t.Run("Completing one of two tasks leaves the day open", func(t *testing.T) {
		assignment := &models.Assignment{
			ID: 10, UserID: userID, Slot: models.SlotPrimary, ProtocolID: protocol.ID,
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 1,
		}
		service, _, _ := newService(assignment)
		ids := taskIDsFor(protocol, 1, 1)

		outcome, err := service.Complete(10, ids[0], "")

		assert.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.False(t, outcome.DayCompleted)
		assert.Equal(t, 1, assignment.CurrentDay)
		assert.Equal(t, 1, assignment.TotalTasksCompleted)
		assert.Equal(t, []uint{ids[0]}, assignment.CompletedTaskIDs)
		assert.Zero(t, assignment.DaysCompleted)
	})

	t.Run("Finishing the day rolls over and clears the completed set", func(t *testing.T) {
		ids := taskIDsFor(protocol, 1, 1)
		assignment := &models.Assignment{
			ID: 10, UserID: userID, Slot: models.SlotPrimary, ProtocolID: protocol.ID,
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 1,
			CompletedTaskIDs: []uint{ids[0]}, TotalTasksCompleted: 1,
		}
		service, _, mockNotifier := newService(assignment)
		mockNotifier.On("NotifyDayComplete", userID, uint(10)).Once()

		outcome, err := service.Complete(10, ids[1], "")

		assert.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.True(t, outcome.DayCompleted)
		assert.False(t, outcome.WeekCompleted)
		assert.False(t, outcome.ProtocolCompleted)
		assert.Equal(t, 1, assignment.CurrentWeek)
		assert.Equal(t, 2, assignment.CurrentDay)
		assert.Empty(t, assignment.CompletedTaskIDs) // yesterday's set never leaks into today
		assert.Equal(t, 1, assignment.DaysCompleted)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Replaying a completed task is a no-op success", func(t *testing.T) {
		ids := taskIDsFor(protocol, 1, 1)
		assignment := &models.Assignment{
			ID: 10, UserID: userID, Slot: models.SlotPrimary, ProtocolID: protocol.ID,
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 1,
		}
		service, _, _ := newService(assignment)

		first, err := service.Complete(10, ids[0], "")
		assert.NoError(t, err)
		assert.True(t, first.Success)

		replay, err := service.Complete(10, ids[0], "")

		assert.NoError(t, err)
		assert.True(t, replay.Success)
		assert.False(t, replay.DayCompleted)
		assert.Equal(t, 1, assignment.TotalTasksCompleted) // counted once
		assert.Len(t, assignment.CompletedTaskIDs, 1)
	})

	t.Run("Finishing day seven rolls the week over", func(t *testing.T) {
		ids := taskIDsFor(protocol, 1, 7)
		assignment := &models.Assignment{
			ID: 10, UserID: userID, Slot: models.SlotPrimary, ProtocolID: protocol.ID,
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 7,
			CompletedTaskIDs: []uint{ids[0]}, DaysCompleted: 6, TotalTasksCompleted: 13,
		}
		service, _, mockNotifier := newService(assignment)
		mockNotifier.On("NotifyDayComplete", userID, uint(10)).Once()

		outcome, err := service.Complete(10, ids[1], "")

		assert.NoError(t, err)
		assert.True(t, outcome.DayCompleted)
		assert.True(t, outcome.WeekCompleted)
		assert.False(t, outcome.ProtocolCompleted)
		assert.Equal(t, 2, assignment.CurrentWeek)
		assert.Equal(t, 1, assignment.CurrentDay)
		assert.Empty(t, assignment.CompletedTaskIDs)
		assert.Equal(t, 7, assignment.DaysCompleted)
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Finishing the final day completes the protocol and frees the slot", func(t *testing.T) {
		ids := taskIDsFor(protocol, 2, 7)
		assignment := &models.Assignment{
			ID: 10, UserID: userID, Slot: models.SlotPrimary, ProtocolID: protocol.ID,
			Status: models.AssignmentStatusActive, CurrentWeek: 2, CurrentDay: 7,
			CompletedTaskIDs: []uint{ids[0]}, DaysCompleted: 13, TotalTasksCompleted: 27,
		}
		service, _, mockNotifier := newService(assignment)
		mockNotifier.On("NotifyDayComplete", userID, uint(10)).Once()
		mockNotifier.On("NotifyProtocolComplete", userID, uint(10)).Once()

		outcome, err := service.Complete(10, ids[1], "")

		assert.NoError(t, err)
		assert.True(t, outcome.DayCompleted)
		assert.True(t, outcome.WeekCompleted)
		assert.True(t, outcome.ProtocolCompleted)
		assert.Equal(t, models.AssignmentStatusCompleted, assignment.Status)
		assert.NotNil(t, assignment.CompletedAt)
		assert.Equal(t, 14, assignment.DaysCompleted) // 14-day protocol, 14 completed days
		mockNotifier.AssertExpectations(t)
	})

	t.Run("Task outside the current day is rejected without mutation", func(t *testing.T) {
		assignment := &models.Assignment{
			ID: 10, UserID: userID, Slot: models.SlotPrimary, ProtocolID: protocol.ID,
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 1,
		}
		service, _, _ := newService(assignment)
		tomorrow := taskIDsFor(protocol, 1, 2)

		outcome, err := service.Complete(10, tomorrow[0], "")

		assert.Error(t, err)
		assert.Nil(t, outcome)
		var invalid *InvalidTaskError
		assert.ErrorAs(t, err, &invalid)
		assert.Contains(t, invalid.Reason, "not scheduled")
		assert.Zero(t, assignment.TotalTasksCompleted)
		assert.Empty(t, assignment.CompletedTaskIDs)
	})

	t.Run("Unknown task ID is rejected", func(t *testing.T) {
		assignment := &models.Assignment{
			ID: 10, UserID: userID, Slot: models.SlotPrimary, ProtocolID: protocol.ID,
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 1,
		}
		service, _, _ := newService(assignment)

		outcome, err := service.Complete(10, 9999, "")

		assert.Error(t, err)
		assert.Nil(t, outcome)
		var invalid *InvalidTaskError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("Missing assignment is rejected", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewCompletionService(mockAssignmentRepo, mockProtocolRepo, new(MockNotifier))

		mockAssignmentRepo.On("GetAssignmentByID", uint(99)).Return(nil, nil).Once()

		outcome, err := service.Complete(99, 1, "")

		assert.Error(t, err)
		assert.Nil(t, outcome)
		var invalid *InvalidTaskError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "assignment not found", invalid.Reason)
	})

	t.Run("Completed assignment rejects further completions", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewCompletionService(mockAssignmentRepo, mockProtocolRepo, new(MockNotifier))

		done := &models.Assignment{ID: 10, UserID: userID, ProtocolID: protocol.ID, Status: models.AssignmentStatusCompleted}
		mockAssignmentRepo.On("GetAssignmentByID", uint(10)).Return(done, nil).Once()

		outcome, err := service.Complete(10, 1, "")

		assert.Error(t, err)
		assert.Nil(t, outcome)
		var invalid *InvalidTaskError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "assignment is not active", invalid.Reason)
	})

	t.Run("Notes are recorded against the completed task", func(t *testing.T) {
		assignment := &models.Assignment{
			ID: 10, UserID: userID, Slot: models.SlotPrimary, ProtocolID: protocol.ID,
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 1,
		}
		service, _, _ := newService(assignment)
		ids := taskIDsFor(protocol, 1, 1)

		outcome, err := service.Complete(10, ids[0], "felt easier today")

		assert.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Len(t, assignment.TaskNotes, 1)
		assert.Equal(t, ids[0], assignment.TaskNotes[0].TaskID)
		assert.Equal(t, 1, assignment.TaskNotes[0].Week)
		assert.Equal(t, 1, assignment.TaskNotes[0].Day)
		assert.Equal(t, "felt easier today", assignment.TaskNotes[0].Note)
	})
}

func TestDeriveState(t *testing.T) {
	protocol := buildProtocol(2, 2)

	t.Run("Partially done day is in progress", func(t *testing.T) {
		ids := taskIDsFor(protocol, 1, 3)
		assignment := &models.Assignment{
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 3,
			CompletedTaskIDs: []uint{ids[0]},
		}
		assert.Equal(t, StateDayInProgress, DeriveState(assignment, protocol))
	})

	t.Run("All tasks done mid-week is day complete", func(t *testing.T) {
		assignment := &models.Assignment{
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 3,
			CompletedTaskIDs: taskIDsFor(protocol, 1, 3),
		}
		assert.Equal(t, StateDayComplete, DeriveState(assignment, protocol))
	})

	t.Run("All tasks done on day seven is week complete", func(t *testing.T) {
		assignment := &models.Assignment{
			Status: models.AssignmentStatusActive, CurrentWeek: 1, CurrentDay: 7,
			CompletedTaskIDs: taskIDsFor(protocol, 1, 7),
		}
		assert.Equal(t, StateWeekComplete, DeriveState(assignment, protocol))
	})

	t.Run("Completed assignment is protocol complete", func(t *testing.T) {
		assignment := &models.Assignment{Status: models.AssignmentStatusCompleted}
		assert.Equal(t, StateProtocolComplete, DeriveState(assignment, protocol))
	})
}
