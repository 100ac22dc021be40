package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// Store is the owner-scoped read side the calendar is built from.
type Store interface {
	GetEvents(ctx context.Context, ownerID string, start, end time.Time, courseID string) ([]models.CalendarEvent, error)
	GetTasks(ctx context.Context, ownerID string, filter models.TaskFilter) ([]models.Task, error)
	GetCourses(ctx context.Context, ownerID string) ([]models.Course, error)
}

// Service loads snapshots from a Store and renders them.
type Service struct {
	store Store
	loc   *time.Location
	opts  IndexOptions
	now   func() time.Time
}

// NewService creates a calendar service. Anchors are interpreted in loc.
func NewService(store Store, loc *time.Location, opts IndexOptions) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, loc: loc, opts: opts, now: time.Now}
}

// Location is the wall-clock zone of rendered views.
func (s *Service) Location() *time.Location { return s.loc }

// Now is the current instant in the service's location.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// Load fetches the three collections for a view concurrently. Any failure
// fails the whole load; a partial snapshot is never returned.
func (s *Service) Load(ctx context.Context, ownerID string, view View, anchor time.Time, courseID string) (Snapshot, error) {
	r := ResolveRange(view, anchor.In(s.loc))
	var snap Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := s.store.GetEvents(gctx, ownerID, r.Start, r.End, courseID)
		if err != nil {
			return fmt.Errorf("loading events: %w", err)
		}
		snap.Events = events
		return nil
	})
	g.Go(func() error {
		tasks, err := s.store.GetTasks(gctx, ownerID, models.TaskFilter{CourseID: courseID})
		if err != nil {
			return fmt.Errorf("loading tasks: %w", err)
		}
		snap.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		courses, err := s.store.GetCourses(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("loading courses: %w", err)
		}
		snap.Courses = courses
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Render loads and renders a view for ownerID.
func (s *Service) Render(ctx context.Context, ownerID string, view View, anchor time.Time, courseID string) (Result, error) {
	anchor = anchor.In(s.loc)
	snap, err := s.Load(ctx, ownerID, view, anchor, courseID)
	if err != nil {
		return Result{}, err
	}
	return Render(view, anchor, snap, Options{Index: s.opts, Now: s.Now()}), nil
}
