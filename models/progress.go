package models

import "time"

// TodayTaskCounts summarizes the current day's task completion for one
// assignment.
type TodayTaskCounts struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// ProgressSummary is a read-only derivation over one assignment and its
// protocol. It is recomputed on every call and never stored.
type ProgressSummary struct {
	AssignmentID         uint             `json:"assignment_id"`
	Slot                 Slot             `json:"slot"`
	ProtocolID           uint             `json:"protocol_id"`
	ProtocolTitle        string           `json:"protocol_title"`
	Status               AssignmentStatus `json:"status"`
	State                string           `json:"state"` // derived progression state, see services.DeriveState
	CurrentWeek          int              `json:"current_week"`
	CurrentDay           int              `json:"current_day"`
	CompletionPercentage int              `json:"completion_percentage"` // round(100 * days_completed / total_days)
	DaysCompleted        int              `json:"days_completed"`
	DaysRemaining        int              `json:"days_remaining"`
	TodayTasks           TodayTaskCounts  `json:"today_tasks"`
	GeneratedAt          time.Time        `json:"generated_at"`
}

// UserProgressResponse groups the per-slot summaries for one user. A slot
// with no active assignment is simply absent from the map.
type UserProgressResponse struct {
	UserID      string                    `json:"user_id"`
	Slots       map[Slot]*ProgressSummary `json:"slots"`
	GeneratedAt time.Time                 `json:"generated_at"`
}
