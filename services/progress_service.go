package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"mio/models"
	"mio/repository"
)

// ProgressService defines the interface for read-only progress summaries.
// Every method is a pure derivation over (assignment, protocol): nothing is
// mutated, and summaries are safe to recompute at any time, including while
// a completion is mid-transition.
type ProgressService interface {
	GetProgress(assignmentID uint) (*models.ProgressSummary, error)
	GetUserProgress(userID string) (*models.UserProgressResponse, error)
}

type progressService struct {
	assignmentRepo repository.AssignmentRepository
	protocolRepo   repository.ProtocolRepository
}

// NewProgressService creates a new instance of ProgressService.
func NewProgressService(assignmentRepo repository.AssignmentRepository, protocolRepo repository.ProtocolRepository) ProgressService {
	return &progressService{
		assignmentRepo: assignmentRepo,
		protocolRepo:   protocolRepo,
	}
}

// GetProgress derives the summary for one assignment.
func (s *progressService) GetProgress(assignmentID uint) (*models.ProgressSummary, error) {
	assignment, err := s.assignmentRepo.GetAssignmentByID(assignmentID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to load assignment %d for progress", assignmentID)
		log.Printf("ERROR: [ProgressService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if assignment == nil {
		log.Printf("WARN: [ProgressService] Progress requested for missing assignment %d.", assignmentID)
		return nil, fmt.Errorf("assignment with ID %d not found", assignmentID)
	}

	protocol, err := s.protocolRepo.GetProtocolByID(assignment.ProtocolID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to load protocol %d for assignment %d", assignment.ProtocolID, assignmentID)
		log.Printf("ERROR: [ProgressService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if protocol == nil {
		log.Printf("ERROR: [ProgressService] Protocol %d missing for assignment %d. Data integrity issue?", assignment.ProtocolID, assignmentID)
		return nil, fmt.Errorf("protocol %d for assignment %d not found", assignment.ProtocolID, assignmentID)
	}

	return summarize(assignment, protocol), nil
}

// GetUserProgress derives summaries for each of the user's occupied slots.
func (s *progressService) GetUserProgress(userID string) (*models.UserProgressResponse, error) {
	if userID == "" {
		log.Printf("WARN: [ProgressService] GetUserProgress called with empty userID.")
		return nil, errors.New("userID cannot be empty")
	}

	response := &models.UserProgressResponse{
		UserID:      userID,
		Slots:       make(map[models.Slot]*models.ProgressSummary),
		GeneratedAt: time.Now().UTC(),
	}

	for _, slot := range []models.Slot{models.SlotPrimary, models.SlotSecondary} {
		assignment, err := s.assignmentRepo.GetActiveAssignment(userID, slot)
		if err != nil {
			errMsg := fmt.Sprintf("failed to load active assignment for userID %s slot '%s'", userID, slot)
			log.Printf("ERROR: [ProgressService] %s: %v", errMsg, err)
			return nil, fmt.Errorf("%s: %w", errMsg, err)
		}
		if assignment == nil {
			continue
		}
		protocol, err := s.protocolRepo.GetProtocolByID(assignment.ProtocolID)
		if err != nil {
			errMsg := fmt.Sprintf("failed to load protocol %d for assignment %d", assignment.ProtocolID, assignment.ID)
			log.Printf("ERROR: [ProgressService] %s: %v", errMsg, err)
			return nil, fmt.Errorf("%s: %w", errMsg, err)
		}
		if protocol == nil {
			log.Printf("ERROR: [ProgressService] Protocol %d missing for assignment %d. Data integrity issue?", assignment.ProtocolID, assignment.ID)
			continue
		}
		response.Slots[slot] = summarize(assignment, protocol)
	}

	return response, nil
}

// summarize computes the read-only summary for one (assignment, protocol)
// pair.
func summarize(assignment *models.Assignment, protocol *models.Protocol) *models.ProgressSummary {
	totalDays := protocol.DurationDays
	percentage := 0
	if totalDays > 0 {
		percentage = (100*assignment.DaysCompleted + totalDays/2) / totalDays
	}
	if percentage > 100 {
		percentage = 100
	}
	remaining := totalDays - assignment.DaysCompleted
	if remaining < 0 {
		remaining = 0
	}

	todays := protocol.TasksForDay(assignment.CurrentWeek, assignment.CurrentDay)
	counts := models.TodayTaskCounts{Total: len(todays)}
	for _, task := range todays {
		if assignment.HasCompletedTask(task.ID) {
			counts.Completed++
		}
	}

	return &models.ProgressSummary{
		AssignmentID:         assignment.ID,
		Slot:                 assignment.Slot,
		ProtocolID:           protocol.ID,
		ProtocolTitle:        protocol.Title,
		Status:               assignment.Status,
		State:                string(DeriveState(assignment, protocol)),
		CurrentWeek:          assignment.CurrentWeek,
		CurrentDay:           assignment.CurrentDay,
		CompletionPercentage: percentage,
		DaysCompleted:        assignment.DaysCompleted,
		DaysRemaining:        remaining,
		TodayTasks:           counts,
		GeneratedAt:          time.Now().UTC(),
	}
}
