package calendar

import (
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// DefaultTaskDuration is the length given to a task with no estimate.
const DefaultTaskDuration = 30 * time.Minute

// DisplayEvent is the unified view model for native events and task due
// dates. It is derived on every render and never stored.
type DisplayEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"all_day"`
	CourseID    string    `json:"course_id,omitempty"`
	Source      string    `json:"source,omitempty"`
	IsTask      bool      `json:"is_task"`

	// Set only when IsTask is true.
	Status   models.TaskStatus   `json:"status,omitempty"`
	Priority models.TaskPriority `json:"priority,omitempty"`
}

// Completed reports whether the entry is a finished task.
func (e DisplayEvent) Completed() bool {
	return e.IsTask && e.Status == models.StatusCompleted
}

// Normalize merges native events and tasks into one collection. Native
// events come first in their given order, followed by every task that has
// a due date. Tasks are not filtered by any time window here; callers that
// index the result drop whatever falls outside their cells.
func Normalize(events []models.CalendarEvent, tasks []models.Task) []DisplayEvent {
	out := make([]DisplayEvent, 0, len(events)+len(tasks))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	for _, t := range tasks {
		if de, ok := FromTask(t); ok {
			out = append(out, de)
		}
	}
	return out
}

// FromEvent wraps a native event. An end before the start is clamped to
// the start.
func FromEvent(e models.CalendarEvent) DisplayEvent {
	de := DisplayEvent{
		ID:          e.ID,
		Title:       e.Title,
		Description: deref(e.Description),
		Location:    deref(e.Location),
		Start:       e.StartTime,
		End:         e.EndTime,
		AllDay:      e.AllDay,
		CourseID:    deref(e.CourseID),
		Source:      e.Source,
	}
	if de.End.Before(de.Start) {
		de.End = de.Start
	}
	return de
}

// FromTask projects a task onto its due date. Tasks without a due date
// have no calendar presence and report false.
func FromTask(t models.Task) (DisplayEvent, bool) {
	if t.DueDate == nil {
		return DisplayEvent{}, false
	}
	dur := DefaultTaskDuration
	if t.EstimatedTime != nil && *t.EstimatedTime > 0 {
		dur = time.Duration(*t.EstimatedTime) * time.Minute
	}
	start := *t.DueDate
	return DisplayEvent{
		ID:          t.ID,
		Title:       t.Title,
		Description: deref(t.Description),
		Start:       start,
		End:         start.Add(dur),
		CourseID:    deref(t.CourseID),
		IsTask:      true,
		Status:      t.Status,
		Priority:    t.Priority,
	}, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
