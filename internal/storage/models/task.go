package models

import "time"

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a to-do item. A task with a DueDate shows up on the calendar.
type Task struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"-"`
	Title         string       `json:"title"`
	Description   *string      `json:"description,omitempty"`
	Priority      TaskPriority `json:"priority"`
	Status        TaskStatus   `json:"status"`
	DueDate       *time.Time   `json:"due_date,omitempty"`
	EstimatedTime *int         `json:"estimated_time,omitempty"` // minutes
	CourseID      *string      `json:"course_id,omitempty"`
	Archived      bool         `json:"archived"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TaskFilter narrows a task listing. Zero values match everything.
type TaskFilter struct {
	Status   TaskStatus
	CourseID string
	Priority TaskPriority
}
