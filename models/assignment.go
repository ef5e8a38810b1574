package models

import (
	"time"

	"gorm.io/gorm"
)

// Slot is one of the two concurrent assignment channels a user can have an
// active protocol in. The set is closed; there is no third slot.
type Slot string

const (
	SlotPrimary   Slot = "primary"
	SlotSecondary Slot = "secondary"
)

// ValidSlot reports whether s is one of the two known slots.
func ValidSlot(s Slot) bool {
	return s == SlotPrimary || s == SlotSecondary
}

// AssignmentStatus defines the lifecycle of an assignment. Completed is
// terminal; there is no pause or cancel state in this core.
type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// Assignment binds one Protocol to one slot for one user and tracks the
// user's day-by-day advancement through it.
//
// Invariant: at most one active Assignment per (UserID, Slot) at any time.
// CompletedTaskIDs is scoped to the current day only and is cleared on
// every day rollover; DaysCompleted and TotalTasksCompleted are monotonic.
type Assignment struct {
	ID                  uint             `json:"id" gorm:"primarykey"`
	UserID              string           `json:"user_id" gorm:"index:idx_user_slot;not null"`
	Slot                Slot             `json:"slot" gorm:"index:idx_user_slot;type:varchar(20);not null"`
	ProtocolID          uint             `json:"protocol_id" gorm:"index;not null"`
	Status              AssignmentStatus `json:"status" gorm:"type:varchar(20);default:'active';not null"`
	CurrentWeek         int              `json:"current_week" gorm:"default:1;not null"` // 1-based
	CurrentDay          int              `json:"current_day" gorm:"default:1;not null"`  // 1-7, resets each week
	CompletedTaskIDs    []uint           `json:"completed_task_ids" gorm:"serializer:json"`
	DaysCompleted       int              `json:"days_completed" gorm:"default:0;not null"`
	TotalTasksCompleted int              `json:"total_tasks_completed" gorm:"default:0;not null"`
	TaskNotes           []TaskNote       `json:"task_notes,omitempty" gorm:"serializer:json"` // opaque, never parsed by this core
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt           gorm.DeletedAt   `json:"-" gorm:"index"`
}

// TableName specifies the table name for the Assignment model.
func (Assignment) TableName() string {
	return "assignments"
}

// HasCompletedTask reports whether taskID is in the current day's
// completed set.
func (a *Assignment) HasCompletedTask(taskID uint) bool {
	for _, id := range a.CompletedTaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

// TaskNote is a free-text note a user attached to one task completion.
// Stored for downstream display; this core never interprets the text.
type TaskNote struct {
	TaskID    uint      `json:"task_id"`
	Week      int       `json:"week"`
	Day       int       `json:"day"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// CompletionOutcome is the structured result of one completion call.
// DayCompleted and WeekCompleted are per-call celebration signals: they are
// true only on the call that produced the transition, never persisted.
type CompletionOutcome struct {
	Success           bool `json:"success"`
	DayCompleted      bool `json:"day_completed"`
	WeekCompleted     bool `json:"week_completed"`
	ProtocolCompleted bool `json:"protocol_completed"`
}
