package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"mio/models"
	"mio/repository"
)

// DerivedState is the progression state of an assignment. It is never
// stored: it is a pure function of the assignment record plus the
// protocol's task list for the current (week, day).
type DerivedState string

const (
	StateDayInProgress    DerivedState = "day_in_progress"
	StateDayComplete      DerivedState = "day_complete"
	StateWeekComplete     DerivedState = "week_complete"
	StateProtocolComplete DerivedState = "protocol_complete"
)

// DeriveState computes the progression state of an assignment against its
// protocol. Because Complete rolls the day over inside the same write, the
// DayComplete and WeekComplete states are only observable mid-transition.
func DeriveState(assignment *models.Assignment, protocol *models.Protocol) DerivedState {
	if assignment.Status == models.AssignmentStatusCompleted {
		return StateProtocolComplete
	}
	todays := protocol.TasksForDay(assignment.CurrentWeek, assignment.CurrentDay)
	if len(todays) == 0 {
		return StateDayInProgress
	}
	for _, task := range todays {
		if !assignment.HasCompletedTask(task.ID) {
			return StateDayInProgress
		}
	}
	if assignment.CurrentDay == 7 {
		return StateWeekComplete
	}
	return StateDayComplete
}

// CompletionService defines the interface for applying task completions to
// an assignment and deriving day/week/protocol boundary transitions.
type CompletionService interface {
	Complete(assignmentID uint, taskID uint, notes string) (*models.CompletionOutcome, error)
}

type completionService struct {
	assignmentRepo repository.AssignmentRepository
	protocolRepo   repository.ProtocolRepository
	notifier       Notifier
}

// NewCompletionService creates a new instance of CompletionService.
func NewCompletionService(assignmentRepo repository.AssignmentRepository, protocolRepo repository.ProtocolRepository, notifier Notifier) CompletionService {
	return &completionService{
		assignmentRepo: assignmentRepo,
		protocolRepo:   protocolRepo,
		notifier:       notifier,
	}
}

// Complete validates and applies one task completion. Re-submitting an
// already-completed task is a no-op success (duplicate taps and retried
// network calls must be safe); an unknown task, a task outside the current
// day, or a missing/inactive assignment fails with InvalidTaskError and
// mutates nothing.
//
// All mutations — completed set, counters, day/week advance, terminal
// status — are computed by a pure reducer over the locked record and
// persisted as one transactional write, so a retry after a failed write can
// replay the identical payload safely.
func (s *completionService) Complete(assignmentID uint, taskID uint, notes string) (*models.CompletionOutcome, error) {
	existing, err := s.assignmentRepo.GetAssignmentByID(assignmentID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to load assignment %d for completion", assignmentID)
		log.Printf("ERROR: [CompletionService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if existing == nil {
		log.Printf("WARN: [CompletionService] Completion attempted on missing assignment %d.", assignmentID)
		return nil, &InvalidTaskError{AssignmentID: assignmentID, TaskID: taskID, Reason: "assignment not found"}
	}
	if existing.Status != models.AssignmentStatusActive {
		log.Printf("WARN: [CompletionService] Completion attempted on %s assignment %d.", existing.Status, assignmentID)
		return nil, &InvalidTaskError{AssignmentID: assignmentID, TaskID: taskID, Reason: "assignment is not active"}
	}

	protocol, err := s.protocolRepo.GetProtocolByID(existing.ProtocolID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to load protocol %d for assignment %d", existing.ProtocolID, assignmentID)
		log.Printf("ERROR: [CompletionService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if protocol == nil {
		log.Printf("ERROR: [CompletionService] Protocol %d missing for assignment %d. Data integrity issue?", existing.ProtocolID, assignmentID)
		return nil, fmt.Errorf("protocol %d for assignment %d not found", existing.ProtocolID, assignmentID)
	}

	var outcome models.CompletionOutcome
	updated, err := s.assignmentRepo.UpdateWithLock(assignmentID, func(a *models.Assignment) error {
		// Re-check under the row lock; a racing call may have completed the
		// protocol between the pre-read and here.
		if a.Status != models.AssignmentStatusActive {
			return &InvalidTaskError{AssignmentID: assignmentID, TaskID: taskID, Reason: "assignment is not active"}
		}
		var applyErr error
		outcome, applyErr = applyCompletion(a, protocol, taskID, notes)
		return applyErr
	})
	if err != nil {
		var invalidTask *InvalidTaskError
		if errors.As(err, &invalidTask) {
			return nil, err
		}
		errMsg := fmt.Sprintf("failed to apply completion of task %d on assignment %d", taskID, assignmentID)
		log.Printf("ERROR: [CompletionService] %s: %v", errMsg, err)
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	if updated == nil {
		return nil, &InvalidTaskError{AssignmentID: assignmentID, TaskID: taskID, Reason: "assignment not found"}
	}

	// Milestone notices are fire-and-forget; delivery problems never fail
	// the completion call.
	if outcome.DayCompleted {
		s.notifier.NotifyDayComplete(updated.UserID, updated.ID)
	}
	if outcome.ProtocolCompleted {
		s.notifier.NotifyProtocolComplete(updated.UserID, updated.ID)
	}

	log.Printf("INFO: [CompletionService] Task %d completed on assignment %d (day=%v week=%v protocol=%v, now week %d day %d).",
		taskID, assignmentID, outcome.DayCompleted, outcome.WeekCompleted, outcome.ProtocolCompleted, updated.CurrentWeek, updated.CurrentDay)
	return &outcome, nil
}

// applyCompletion is the pure reducer behind Complete: (assignment,
// completion event) -> new assignment state plus outcome. It mutates only
// the record it is handed and performs no I/O, which keeps it unit-testable
// without a persistence harness.
func applyCompletion(a *models.Assignment, protocol *models.Protocol, taskID uint, notes string) (models.CompletionOutcome, error) {
	todays := protocol.TasksForDay(a.CurrentWeek, a.CurrentDay)
	scheduled := false
	for _, task := range todays {
		if task.ID == taskID {
			scheduled = true
			break
		}
	}
	if !scheduled {
		return models.CompletionOutcome{}, &InvalidTaskError{
			AssignmentID: a.ID,
			TaskID:       taskID,
			Reason:       fmt.Sprintf("task is not scheduled for week %d day %d", a.CurrentWeek, a.CurrentDay),
		}
	}

	if a.HasCompletedTask(taskID) {
		// Idempotent replay: succeed without touching counters or flags.
		return models.CompletionOutcome{Success: true}, nil
	}

	a.CompletedTaskIDs = append(a.CompletedTaskIDs, taskID)
	a.TotalTasksCompleted++
	if notes != "" {
		a.TaskNotes = append(a.TaskNotes, models.TaskNote{
			TaskID:    taskID,
			Week:      a.CurrentWeek,
			Day:       a.CurrentDay,
			Note:      notes,
			CreatedAt: time.Now(),
		})
	}

	allDone := true
	for _, task := range todays {
		if !a.HasCompletedTask(task.ID) {
			allDone = false
			break
		}
	}

	outcome := models.CompletionOutcome{Success: true}
	if !allDone {
		return outcome, nil
	}

	outcome.DayCompleted = true
	a.DaysCompleted++

	switch {
	case a.CurrentDay < 7:
		a.CurrentDay++
		a.CompletedTaskIDs = []uint{}
	case a.CurrentWeek < protocol.TotalWeeks():
		outcome.WeekCompleted = true
		a.CurrentWeek++
		a.CurrentDay = 1
		a.CompletedTaskIDs = []uint{}
	default:
		// Final day of the final week: the protocol is done and the slot
		// frees for the next assignment.
		outcome.WeekCompleted = true
		outcome.ProtocolCompleted = true
		markCompleted(a)
	}
	return outcome, nil
}
