package repository

import (
	"errors"
	"fmt"
	"log"
	"mio/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSlotOccupied is returned by CreateAssignment when the (userID, slot)
// pair already has an active assignment. The service layer wraps it into a
// user-facing error.
var ErrSlotOccupied = errors.New("slot already has an active assignment")

// AssignmentRepository defines the interface for assignment persistence.
//
// All writes that touch the completion counters go through UpdateWithLock so
// the completed-task set and the counters always change in one transaction.
type AssignmentRepository interface {
	CreateAssignment(assignment *models.Assignment) error
	GetAssignmentByID(assignmentID uint) (*models.Assignment, error)
	GetActiveAssignment(userID string, slot models.Slot) (*models.Assignment, error)
	GetAssignmentsByUserID(userID string) ([]*models.Assignment, error)
	CountActiveAssignments(userID string, slot models.Slot) (int64, error)
	UpdateWithLock(assignmentID uint, apply func(*models.Assignment) error) (*models.Assignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// CreateAssignment inserts a new assignment. The check for an existing
// active assignment and the insert run in one transaction, so the at-most-
// one-active-per-(user, slot) invariant holds even under concurrent calls.
func (r *assignmentRepository) CreateAssignment(assignment *models.Assignment) error {
	if assignment == nil {
		log.Printf("ERROR: [AssignmentRepository] CreateAssignment: assignment cannot be nil")
		return errors.New("assignment cannot be nil")
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Assignment{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND slot = ? AND status = ?", assignment.UserID, assignment.Slot, models.AssignmentStatusActive).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check slot occupancy: %w", err)
		}
		if count > 0 {
			return ErrSlotOccupied
		}
		return tx.Create(assignment).Error
	})
	if err != nil {
		if errors.Is(err, ErrSlotOccupied) {
			log.Printf("INFO: [AssignmentRepository] Slot '%s' already occupied for userID %s.", assignment.Slot, assignment.UserID)
			return err
		}
		log.Printf("ERROR: [AssignmentRepository] Failed to create assignment for userID %s slot '%s': %v", assignment.UserID, assignment.Slot, err)
		return fmt.Errorf("failed to create assignment for userID %s: %w", assignment.UserID, err)
	}
	log.Printf("INFO: [AssignmentRepository] Created assignment ID %d for userID %s (slot '%s', protocol %d).",
		assignment.ID, assignment.UserID, assignment.Slot, assignment.ProtocolID)
	return nil
}

// GetAssignmentByID retrieves an assignment by its ID.
// Returns (nil, nil) when the assignment does not exist.
func (r *assignmentRepository) GetAssignmentByID(assignmentID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.First(&assignment, assignmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [AssignmentRepository] Assignment with ID %d not found.", assignmentID)
			return nil, nil
		}
		log.Printf("ERROR: [AssignmentRepository] Failed to retrieve assignment ID %d: %v", assignmentID, err)
		return nil, fmt.Errorf("failed to retrieve assignment ID %d: %w", assignmentID, err)
	}
	return &assignment, nil
}

// GetActiveAssignment retrieves the active assignment for (userID, slot).
// Returns (nil, nil) when the slot is free.
func (r *assignmentRepository) GetActiveAssignment(userID string, slot models.Slot) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.Where("user_id = ? AND slot = ? AND status = ?", userID, slot, models.AssignmentStatusActive).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: [AssignmentRepository] Failed to retrieve active assignment for userID %s slot '%s': %v", userID, slot, err)
		return nil, fmt.Errorf("failed to retrieve active assignment for userID %s: %w", userID, err)
	}
	return &assignment, nil
}

// GetAssignmentsByUserID retrieves all assignments for a user, newest first.
// Completed assignments remain queryable for historical reporting.
func (r *assignmentRepository) GetAssignmentsByUserID(userID string) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&assignments).Error
	if err != nil {
		log.Printf("ERROR: [AssignmentRepository] Failed to retrieve assignments for userID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to retrieve assignments for userID %s: %w", userID, err)
	}
	return assignments, nil
}

// CountActiveAssignments counts active assignments for (userID, slot).
func (r *assignmentRepository) CountActiveAssignments(userID string, slot models.Slot) (int64, error) {
	var count int64
	err := r.db.Model(&models.Assignment{}).
		Where("user_id = ? AND slot = ? AND status = ?", userID, slot, models.AssignmentStatusActive).
		Count(&count).Error
	if err != nil {
		log.Printf("ERROR: [AssignmentRepository] Failed to count active assignments for userID %s: %v", userID, err)
		return 0, fmt.Errorf("failed to count active assignments for userID %s: %w", userID, err)
	}
	return count, nil
}

// UpdateWithLock loads the assignment under a row lock, hands it to apply,
// and saves the mutated record, all inside one transaction. The apply
// callback therefore never sees stale state, and its mutations either all
// persist or none do. Returning an error from apply rolls everything back.
func (r *assignmentRepository) UpdateWithLock(assignmentID uint, apply func(*models.Assignment) error) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&assignment, assignmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return fmt.Errorf("failed to lock assignment ID %d: %w", assignmentID, err)
		}
		if err := apply(&assignment); err != nil {
			return err
		}
		return tx.Save(&assignment).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [AssignmentRepository] UpdateWithLock: assignment ID %d not found.", assignmentID)
			return nil, nil
		}
		return nil, err
	}
	log.Printf("INFO: [AssignmentRepository] Updated assignment ID %d (week %d, day %d, status %s).",
		assignment.ID, assignment.CurrentWeek, assignment.CurrentDay, assignment.Status)
	return &assignment, nil
}
