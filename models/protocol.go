package models

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

// TaskType defines the category of a protocol task.
type TaskType string

const (
	TaskTypeAction         TaskType = "action"
	TaskTypeReflection     TaskType = "reflection"
	TaskTypeReading        TaskType = "reading"
	TaskTypeVideo          TaskType = "video"
	TaskTypeWorksheet      TaskType = "worksheet"
	TaskTypeVoiceRecording TaskType = "voice_recording"
)

// TimeOfDay is the daily bucket a task is scheduled into.
type TimeOfDay string

const (
	TimeOfDayMorning    TimeOfDay = "morning"
	TimeOfDayThroughout TimeOfDay = "throughout"
	TimeOfDayEvening    TimeOfDay = "evening"
)

// timeOfDayOrder fixes the display and iteration order of the daily buckets.
var timeOfDayOrder = map[TimeOfDay]int{
	TimeOfDayMorning:    0,
	TimeOfDayThroughout: 1,
	TimeOfDayEvening:    2,
}

// TimeOfDayRank returns the sort rank of a bucket (morning first).
func TimeOfDayRank(t TimeOfDay) int {
	return timeOfDayOrder[t]
}

// Protocol is a multi-week catalog entity of day/time grouped tasks.
// DurationDays is always a multiple of 7; protocols run in whole weeks.
type Protocol struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	Slug           string         `json:"slug" gorm:"uniqueIndex;not null"`
	Title          string         `json:"title" gorm:"not null"`
	Theme          string         `json:"theme"`
	TargetPatterns []Pattern      `json:"target_patterns" gorm:"serializer:json"`        // patterns this protocol is written for
	Temperaments   []Temperament  `json:"temperaments,omitempty" gorm:"serializer:json"` // empty means suited to every temperament
	DurationDays   int            `json:"duration_days" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
	Tasks          []ProtocolTask `json:"tasks" gorm:"foreignKey:ProtocolID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName specifies the table name for the Protocol model.
func (Protocol) TableName() string {
	return "protocols"
}

// TotalWeeks returns the protocol length in whole weeks.
func (p *Protocol) TotalWeeks() int {
	return p.DurationDays / 7
}

// TasksForDay returns the tasks scheduled for (week, day), ordered
// morning, throughout, evening and by Order within a bucket.
func (p *Protocol) TasksForDay(week, day int) []ProtocolTask {
	var tasks []ProtocolTask
	for _, t := range p.Tasks {
		if t.Week == week && t.Day == day {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].TimeOfDay != tasks[j].TimeOfDay {
			return TimeOfDayRank(tasks[i].TimeOfDay) < TimeOfDayRank(tasks[j].TimeOfDay)
		}
		return tasks[i].Order < tasks[j].Order
	})
	return tasks
}

// ProtocolTask is an individual task within a Protocol, scheduled for one
// (week, day, time-of-day) cell.
type ProtocolTask struct {
	ID               uint           `json:"id" gorm:"primarykey"`
	ProtocolID       uint           `json:"protocol_id" gorm:"index;not null"`
	Week             int            `json:"week" gorm:"not null"` // 1-based
	Day              int            `json:"day" gorm:"not null"`  // 1-7, resets each week
	TimeOfDay        TimeOfDay      `json:"time_of_day" gorm:"type:varchar(20);not null"`
	Type             TaskType       `json:"type" gorm:"type:varchar(50);not null"`
	Title            string         `json:"title" gorm:"not null"`
	Instructions     string         `json:"instructions" gorm:"type:text"`
	EstimatedMinutes int            `json:"estimated_minutes"` // 0 when the task has no fixed time commitment
	ResourceURL      string         `json:"resource_url,omitempty"`
	Order            int            `json:"order" gorm:"default:0"` // ordering within a time-of-day bucket
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for the ProtocolTask model.
func (ProtocolTask) TableName() string {
	return "protocol_tasks"
}
