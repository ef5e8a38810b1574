package services

import (
	"errors"
	"fmt"

	"mio/models"
)

// ErrIncompleteAnswerSet is returned by Classify when the answer set does
// not contain exactly one valid answer per scoring-table question. The
// presentation layer recovers locally by blocking submission.
var ErrIncompleteAnswerSet = errors.New("answer set is incomplete: every question requires exactly one answer")

// ErrNoRecommendation is returned by the recommendation rule when no
// automatic protocol pick is possible for the user (no assessment, no
// pattern signal, or nothing in the catalog targets their patterns). The
// caller falls back to manual assignment; it is not an internal failure.
var ErrNoRecommendation = errors.New("no automatic protocol recommendation available")

// SlotOccupiedError is returned by Assign when the requested slot already
// holds an active assignment. Fatal to the assigning call, not to the system.
type SlotOccupiedError struct {
	UserID string
	Slot   models.Slot
}

func (e *SlotOccupiedError) Error() string {
	return fmt.Sprintf("slot '%s' for user %s already has an active assignment", e.Slot, e.UserID)
}

// InvalidTaskError is returned by Complete when the task does not belong to
// the assignment's current day, or the assignment is missing or not active.
// No state is mutated when it is returned.
type InvalidTaskError struct {
	AssignmentID uint
	TaskID       uint
	Reason       string
}

func (e *InvalidTaskError) Error() string {
	return fmt.Sprintf("invalid task %d for assignment %d: %s", e.TaskID, e.AssignmentID, e.Reason)
}
