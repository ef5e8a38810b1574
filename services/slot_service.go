package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"mio/models"
	"mio/repository"
)

// SlotService defines the interface for managing the two assignment slots
// of a user. At most one active assignment exists per (user, slot); a slot
// frees only when its assignment completes.
type SlotService interface {
	Assign(userID string, slot models.Slot, protocolID uint) (*models.Assignment, error)
	Release(assignmentID uint) (*models.Assignment, error)
	GetActiveAssignments(userID string) (map[models.Slot]*models.Assignment, error)
	GetAssignmentHistory(userID string) ([]*models.Assignment, error)
}

type slotService struct {
	assignmentRepo repository.AssignmentRepository
	protocolRepo   repository.ProtocolRepository
}

// NewSlotService creates a new instance of SlotService.
func NewSlotService(assignmentRepo repository.AssignmentRepository, protocolRepo repository.ProtocolRepository) SlotService {
	return &slotService{
		assignmentRepo: assignmentRepo,
		protocolRepo:   protocolRepo,
	}
}

// Assign creates a new active assignment binding protocolID to (userID,
// slot). Fails with SlotOccupiedError while the slot's current assignment
// is still active.
func (s *slotService) Assign(userID string, slot models.Slot, protocolID uint) (*models.Assignment, error) {
	if userID == "" {
		log.Printf("WARN: [SlotService] Assign called with empty userID.")
		return nil, errors.New("userID cannot be empty")
	}
	if !models.ValidSlot(slot) {
		log.Printf("WARN: [SlotService] Assign called with unknown slot '%s' for userID %s.", slot, userID)
		return nil, fmt.Errorf("unknown slot '%s'", slot)
	}

	protocol, err := s.protocolRepo.GetProtocolByID(protocolID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to load protocol %d for assignment", protocolID)
		log.Printf("ERROR: [SlotService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if protocol == nil {
		log.Printf("WARN: [SlotService] Assign: protocol %d not found (userID %s).", protocolID, userID)
		return nil, fmt.Errorf("protocol with ID %d not found", protocolID)
	}

	assignment := &models.Assignment{
		UserID:           userID,
		Slot:             slot,
		ProtocolID:       protocol.ID,
		Status:           models.AssignmentStatusActive,
		CurrentWeek:      1,
		CurrentDay:       1,
		CompletedTaskIDs: []uint{},
	}

	if err := s.assignmentRepo.CreateAssignment(assignment); err != nil {
		if errors.Is(err, repository.ErrSlotOccupied) {
			log.Printf("INFO: [SlotService] Slot '%s' occupied for userID %s, rejecting assignment of protocol %d.", slot, userID, protocolID)
			return nil, &SlotOccupiedError{UserID: userID, Slot: slot}
		}
		errMsg := fmt.Sprintf("failed to create assignment for userID %s", userID)
		log.Printf("ERROR: [SlotService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}

	log.Printf("INFO: [SlotService] Assigned protocol %d ('%s') to userID %s in slot '%s' (assignment ID %d).",
		protocol.ID, protocol.Slug, userID, slot, assignment.ID)
	return assignment, nil
}

// Release marks the assignment completed, freeing its slot for the next
// protocol. The record is kept for historical reporting, never deleted.
// Invoked by the completion state machine on protocol completion; there is
// no mid-protocol abandon path in this core.
func (s *slotService) Release(assignmentID uint) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.UpdateWithLock(assignmentID, func(a *models.Assignment) error {
		markCompleted(a)
		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("failed to release assignment %d", assignmentID)
		log.Printf("ERROR: [SlotService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if assignment == nil {
		log.Printf("WARN: [SlotService] Release: assignment %d not found.", assignmentID)
		return nil, fmt.Errorf("assignment with ID %d not found", assignmentID)
	}
	log.Printf("INFO: [SlotService] Released assignment ID %d (userID %s, slot '%s').", assignment.ID, assignment.UserID, assignment.Slot)
	return assignment, nil
}

// GetActiveAssignments returns the user's active assignment per slot. Slots
// without an active assignment are absent from the map.
func (s *slotService) GetActiveAssignments(userID string) (map[models.Slot]*models.Assignment, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	active := make(map[models.Slot]*models.Assignment)
	for _, slot := range []models.Slot{models.SlotPrimary, models.SlotSecondary} {
		assignment, err := s.assignmentRepo.GetActiveAssignment(userID, slot)
		if err != nil {
			errMsg := fmt.Sprintf("failed to load active assignment for userID %s slot '%s'", userID, slot)
			log.Printf("ERROR: [SlotService] %s: %v", errMsg, err)
			return nil, fmt.Errorf("%s: %w", errMsg, err)
		}
		if assignment != nil {
			active[slot] = assignment
		}
	}
	return active, nil
}

// markCompleted applies the terminal transition to an assignment record.
// Shared with the completion reducer so the release semantics stay in one
// place whether the slot frees via Release or inside a completion write.
func markCompleted(a *models.Assignment) {
	a.Status = models.AssignmentStatusCompleted
	now := time.Now()
	a.CompletedAt = &now
}

// GetAssignmentHistory returns all of the user's assignments, newest first,
// including completed ones.
func (s *slotService) GetAssignmentHistory(userID string) ([]*models.Assignment, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}
	assignments, err := s.assignmentRepo.GetAssignmentsByUserID(userID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to load assignments for userID %s", userID)
		log.Printf("ERROR: [SlotService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return assignments, nil
}
