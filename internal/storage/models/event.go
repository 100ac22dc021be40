package models

import "time"

// Event sources.
const (
	SourceManual = "manual"
	SourceGoogle = "google"
	SourceCanvas = "canvas"
	SourceICS    = "ics"
)

// CalendarEvent is a native, persisted calendar entry.
type CalendarEvent struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	AllDay      bool      `json:"all_day"`
	CourseID    *string   `json:"course_id,omitempty"`
	Source      string    `json:"source"`
	SourceID    *string   `json:"source_id,omitempty"`
	FeedID      *string   `json:"feed_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
