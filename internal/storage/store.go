package storage

import (
	"context"
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// Store exposes the three owner-scoped read queries the calendar view is
// built from.
type Store struct {
	Events  *EventRepository
	Tasks   *TaskRepository
	Courses *CourseRepository
}

// NewStore wires repositories over db.
func NewStore(db *DB) *Store {
	return &Store{
		Events:  NewEventRepository(db),
		Tasks:   NewTaskRepository(db),
		Courses: NewCourseRepository(db),
	}
}

// GetEvents returns events starting within [start, end].
func (s *Store) GetEvents(ctx context.Context, ownerID string, start, end time.Time, courseID string) ([]models.CalendarEvent, error) {
	return s.Events.ListInRange(ctx, ownerID, start, end, courseID)
}

// GetTasks returns all non-archived tasks matching filter, regardless of
// due date.
func (s *Store) GetTasks(ctx context.Context, ownerID string, filter models.TaskFilter) ([]models.Task, error) {
	return s.Tasks.List(ctx, ownerID, filter)
}

// GetCourses returns all non-archived courses.
func (s *Store) GetCourses(ctx context.Context, ownerID string) ([]models.Course, error) {
	return s.Courses.List(ctx, ownerID)
}
