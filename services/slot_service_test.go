package services

import (
	"errors"
	"testing"

	"mio/models"
	"mio/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAssignmentRepository is a mock type for the AssignmentRepository
// interface. It is shared by the slot, completion and progress service tests
// in this package.
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) CreateAssignment(assignment *models.Assignment) error {
	args := m.Called(assignment)
	return args.Error(0)
}

func (m *MockAssignmentRepository) GetAssignmentByID(assignmentID uint) (*models.Assignment, error) {
	args := m.Called(assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) GetActiveAssignment(userID string, slot models.Slot) (*models.Assignment, error) {
	args := m.Called(userID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) GetAssignmentsByUserID(userID string) ([]*models.Assignment, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) CountActiveAssignments(userID string, slot models.Slot) (int64, error) {
	args := m.Called(userID, slot)
	return args.Get(0).(int64), args.Error(1)
}

// UpdateWithLock mirrors the real contract: the expectation supplies the
// locked record (or nil for not-found), the apply function runs against it,
// and an apply error aborts the write.
func (m *MockAssignmentRepository) UpdateWithLock(assignmentID uint, apply func(*models.Assignment) error) (*models.Assignment, error) {
	args := m.Called(assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	assignment := args.Get(0).(*models.Assignment)
	if err := apply(assignment); err != nil {
		return nil, err
	}
	return assignment, args.Error(1)
}

// MockProtocolRepository is a mock type for the ProtocolRepository interface
type MockProtocolRepository struct {
	mock.Mock
}

func (m *MockProtocolRepository) CreateProtocol(protocol *models.Protocol) error {
	args := m.Called(protocol)
	return args.Error(0)
}

func (m *MockProtocolRepository) GetProtocolByID(protocolID uint) (*models.Protocol, error) {
	args := m.Called(protocolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Protocol), args.Error(1)
}

func (m *MockProtocolRepository) GetProtocolBySlug(slug string) (*models.Protocol, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Protocol), args.Error(1)
}

func (m *MockProtocolRepository) ListProtocols() ([]*models.Protocol, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Protocol), args.Error(1)
}

func (m *MockProtocolRepository) CountProtocols() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func TestSlotService_Assign(t *testing.T) {
	userID := "user123"
	protocol := &models.Protocol{ID: 1, Slug: "daily-deductible", Title: "Daily Deductible", DurationDays: 14}

	t.Run("Successfully assigns a protocol to a free slot", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		mockProtocolRepo.On("GetProtocolByID", uint(1)).Return(protocol, nil).Once()
		mockAssignmentRepo.On("CreateAssignment", mock.MatchedBy(func(a *models.Assignment) bool {
			return a.UserID == userID &&
				a.Slot == models.SlotPrimary &&
				a.Status == models.AssignmentStatusActive &&
				a.CurrentWeek == 1 && a.CurrentDay == 1
		})).Run(func(args mock.Arguments) {
			args.Get(0).(*models.Assignment).ID = 10
		}).Return(nil).Once()

		assignment, err := service.Assign(userID, models.SlotPrimary, 1)

		assert.NoError(t, err)
		assert.NotNil(t, assignment)
		assert.Equal(t, uint(10), assignment.ID)
		assert.Empty(t, assignment.CompletedTaskIDs)
		assert.Zero(t, assignment.DaysCompleted)
		mockAssignmentRepo.AssertExpectations(t)
		mockProtocolRepo.AssertExpectations(t)
	})

	t.Run("Occupied slot is rejected with SlotOccupiedError", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		mockProtocolRepo.On("GetProtocolByID", uint(1)).Return(protocol, nil).Once()
		mockAssignmentRepo.On("CreateAssignment", mock.AnythingOfType("*models.Assignment")).Return(repository.ErrSlotOccupied).Once()

		assignment, err := service.Assign(userID, models.SlotPrimary, 1)

		assert.Error(t, err)
		assert.Nil(t, assignment)
		var occupied *SlotOccupiedError
		assert.True(t, errors.As(err, &occupied))
		assert.Equal(t, userID, occupied.UserID)
		assert.Equal(t, models.SlotPrimary, occupied.Slot)
		mockAssignmentRepo.AssertExpectations(t)
	})

	t.Run("Both slots can hold protocols concurrently", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		second := &models.Protocol{ID: 2, Slug: "neural-rewiring", DurationDays: 42}
		mockProtocolRepo.On("GetProtocolByID", uint(1)).Return(protocol, nil).Once()
		mockProtocolRepo.On("GetProtocolByID", uint(2)).Return(second, nil).Once()
		mockAssignmentRepo.On("CreateAssignment", mock.AnythingOfType("*models.Assignment")).Return(nil).Twice()

		first, err := service.Assign(userID, models.SlotPrimary, 1)
		assert.NoError(t, err)
		assert.Equal(t, models.SlotPrimary, first.Slot)

		other, err := service.Assign(userID, models.SlotSecondary, 2)
		assert.NoError(t, err)
		assert.Equal(t, models.SlotSecondary, other.Slot)
		mockAssignmentRepo.AssertExpectations(t)
	})

	t.Run("Unknown slot is rejected", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		assignment, err := service.Assign(userID, models.Slot("tertiary"), 1)

		assert.Error(t, err)
		assert.Nil(t, assignment)
		assert.Contains(t, err.Error(), "unknown slot")
		mockAssignmentRepo.AssertNotCalled(t, "CreateAssignment", mock.Anything)
	})

	t.Run("Empty userID is rejected", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		assignment, err := service.Assign("", models.SlotPrimary, 1)

		assert.Error(t, err)
		assert.Nil(t, assignment)
		assert.EqualError(t, err, "userID cannot be empty")
	})

	t.Run("Missing protocol is rejected", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		mockProtocolRepo.On("GetProtocolByID", uint(99)).Return(nil, nil).Once()

		assignment, err := service.Assign(userID, models.SlotPrimary, 99)

		assert.Error(t, err)
		assert.Nil(t, assignment)
		assert.Contains(t, err.Error(), "protocol with ID 99 not found")
		mockAssignmentRepo.AssertNotCalled(t, "CreateAssignment", mock.Anything)
	})
}

func TestSlotService_Release(t *testing.T) {
	t.Run("Release marks the assignment completed", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		active := &models.Assignment{ID: 10, UserID: "user123", Slot: models.SlotPrimary, Status: models.AssignmentStatusActive}
		mockAssignmentRepo.On("UpdateWithLock", uint(10)).Return(active, nil).Once()

		released, err := service.Release(10)

		assert.NoError(t, err)
		assert.NotNil(t, released)
		assert.Equal(t, models.AssignmentStatusCompleted, released.Status)
		assert.NotNil(t, released.CompletedAt)
		mockAssignmentRepo.AssertExpectations(t)
	})

	t.Run("Releasing a missing assignment fails", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		mockAssignmentRepo.On("UpdateWithLock", uint(99)).Return(nil, nil).Once()

		released, err := service.Release(99)

		assert.Error(t, err)
		assert.Nil(t, released)
		assert.Contains(t, err.Error(), "assignment with ID 99 not found")
	})
}

func TestSlotService_GetAssignmentHistory(t *testing.T) {
	userID := "user123"

	t.Run("History includes completed assignments", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		history := []*models.Assignment{
			{ID: 11, UserID: userID, Slot: models.SlotPrimary, Status: models.AssignmentStatusActive},
			{ID: 10, UserID: userID, Slot: models.SlotPrimary, Status: models.AssignmentStatusCompleted},
		}
		mockAssignmentRepo.On("GetAssignmentsByUserID", userID).Return(history, nil).Once()

		got, err := service.GetAssignmentHistory(userID)

		assert.NoError(t, err)
		assert.Equal(t, history, got)
		mockAssignmentRepo.AssertExpectations(t)
	})

	t.Run("Empty userID is rejected", func(t *testing.T) {
		service := NewSlotService(new(MockAssignmentRepository), new(MockProtocolRepository))

		got, err := service.GetAssignmentHistory("")

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestSlotService_GetActiveAssignments(t *testing.T) {
	userID := "user123"

	t.Run("Only occupied slots appear in the map", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		primary := &models.Assignment{ID: 10, UserID: userID, Slot: models.SlotPrimary, Status: models.AssignmentStatusActive}
		mockAssignmentRepo.On("GetActiveAssignment", userID, models.SlotPrimary).Return(primary, nil).Once()
		mockAssignmentRepo.On("GetActiveAssignment", userID, models.SlotSecondary).Return(nil, nil).Once()

		active, err := service.GetActiveAssignments(userID)

		assert.NoError(t, err)
		assert.Len(t, active, 1)
		assert.Equal(t, primary, active[models.SlotPrimary])
		assert.NotContains(t, active, models.SlotSecondary)
		mockAssignmentRepo.AssertExpectations(t)
	})

	t.Run("Slot frees after release, allowing a new assignment", func(t *testing.T) {
		mockAssignmentRepo := new(MockAssignmentRepository)
		mockProtocolRepo := new(MockProtocolRepository)
		service := NewSlotService(mockAssignmentRepo, mockProtocolRepo)

		finished := &models.Assignment{ID: 10, UserID: userID, Slot: models.SlotPrimary, Status: models.AssignmentStatusActive}
		mockAssignmentRepo.On("UpdateWithLock", uint(10)).Return(finished, nil).Once()
		_, err := service.Release(10)
		assert.NoError(t, err)

		protocol := &models.Protocol{ID: 2, Slug: "neural-rewiring", DurationDays: 42}
		mockProtocolRepo.On("GetProtocolByID", uint(2)).Return(protocol, nil).Once()
		mockAssignmentRepo.On("CreateAssignment", mock.AnythingOfType("*models.Assignment")).Return(nil).Once()

		next, err := service.Assign(userID, models.SlotPrimary, 2)

		assert.NoError(t, err)
		assert.NotNil(t, next)
		assert.Equal(t, models.AssignmentStatusActive, next.Status)
		mockAssignmentRepo.AssertExpectations(t)
	})
}
