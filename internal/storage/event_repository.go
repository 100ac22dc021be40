package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// EventRepository provides data access for native calendar events.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new calendar event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const eventColumns = `id, owner_id, title, description, location, start_time, end_time,
	all_day, course_id, source, source_id, feed_id, created_at`

func scanEvent(row interface{ Scan(...any) error }) (models.CalendarEvent, error) {
	var (
		e           models.CalendarEvent
		description sql.NullString
		location    sql.NullString
		courseID    sql.NullString
		sourceID    sql.NullString
		feedID      sql.NullString
		start, end  int64
		createdAt   int64
	)
	err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &description, &location, &start, &end,
		&e.AllDay, &courseID, &e.Source, &sourceID, &feedID, &createdAt)
	if err != nil {
		return e, err
	}
	e.Description = fromNullString(description)
	e.Location = fromNullString(location)
	e.StartTime = fromMillis(start)
	e.EndTime = fromMillis(end)
	e.CourseID = fromNullString(courseID)
	e.SourceID = fromNullString(sourceID)
	e.FeedID = fromNullString(feedID)
	e.CreatedAt = fromMillis(createdAt)
	return e, nil
}

func validateEvent(e *models.CalendarEvent) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return fmt.Errorf("%w: event title is required", ErrInvalid)
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return fmt.Errorf("%w: start and end time are required", ErrInvalid)
	}
	if e.EndTime.Before(e.StartTime) {
		return fmt.Errorf("%w: end time is before start time", ErrInvalid)
	}
	if e.Source == "" {
		e.Source = models.SourceManual
	}
	e.CourseID = optionalCourse(e.CourseID)
	return nil
}

// Create inserts a new event owned by e.OwnerID.
func (r *EventRepository) Create(ctx context.Context, e *models.CalendarEvent) error {
	if err := validateEvent(e); err != nil {
		return err
	}
	if err := ensureCourse(ctx, r.DB(), e.OwnerID, e.CourseID); err != nil {
		return err
	}
	e.ID = GenerateID()
	e.CreatedAt = r.Now()

	return r.insert(ctx, r.DB(), e)
}

func (r *EventRepository) insert(ctx context.Context, q Queryable, e *models.CalendarEvent) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO calendar_events (id, owner_id, title, description, location, start_time,
			end_time, all_day, course_id, source, source_id, feed_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.OwnerID, e.Title, e.Description, e.Location, toMillis(e.StartTime),
		toMillis(e.EndTime), e.AllDay, e.CourseID, e.Source, e.SourceID, e.FeedID,
		toMillis(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// GetByID retrieves one of the owner's events.
func (r *EventRepository) GetByID(ctx context.Context, ownerID, id string) (*models.CalendarEvent, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM calendar_events WHERE id = ? AND owner_id = ?`, id, ownerID)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}
	return &e, nil
}

// ListInRange returns the owner's events whose start lies within
// [start, end] inclusive, optionally restricted to one course. Rows come
// back in insertion order.
func (r *EventRepository) ListInRange(ctx context.Context, ownerID string, start, end time.Time, courseID string) ([]models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events
		WHERE owner_id = ? AND start_time >= ? AND start_time <= ?`
	args := []any{ownerID, toMillis(start), toMillis(end)}
	if courseID != "" {
		query += ` AND course_id = ?`
		args = append(args, courseID)
	}
	query += ` ORDER BY rowid`

	return r.list(ctx, query, args...)
}

// ListAll returns every event of the owner, optionally restricted to one
// course, in insertion order.
func (r *EventRepository) ListAll(ctx context.Context, ownerID, courseID string) ([]models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE owner_id = ?`
	args := []any{ownerID}
	if courseID != "" {
		query += ` AND course_id = ?`
		args = append(args, courseID)
	}
	query += ` ORDER BY rowid`

	return r.list(ctx, query, args...)
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]models.CalendarEvent, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []models.CalendarEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update overwrites the editable fields of an event.
func (r *EventRepository) Update(ctx context.Context, e *models.CalendarEvent) error {
	if err := validateEvent(e); err != nil {
		return err
	}
	if err := ensureCourse(ctx, r.DB(), e.OwnerID, e.CourseID); err != nil {
		return err
	}
	result, err := r.DB().ExecContext(ctx, `
		UPDATE calendar_events SET title = ?, description = ?, location = ?, start_time = ?,
			end_time = ?, all_day = ?, course_id = ?
		WHERE id = ? AND owner_id = ?
	`,
		e.Title, e.Description, e.Location, toMillis(e.StartTime), toMillis(e.EndTime),
		e.AllDay, e.CourseID, e.ID, e.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return rowsAffected(result)
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.DB().ExecContext(ctx,
		`DELETE FROM calendar_events WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return rowsAffected(result)
}

// ReplaceFeedEvents makes the feed's imported events match events exactly:
// rows are upserted by (owner, source, source_id) and rows of the feed that
// are no longer present are removed. It returns (upserted, removed).
func (r *EventRepository) ReplaceFeedEvents(ctx context.Context, feed models.Feed, events []models.CalendarEvent) (int, int, error) {
	var upserted, removed int

	err := r.DB().TransactionContext(ctx, func(tx *sql.Tx) error {
		keep := make([]any, 0, len(events))
		now := toMillis(r.Now())

		for i := range events {
			e := &events[i]
			if e.SourceID == nil || *e.SourceID == "" {
				continue
			}
			if e.EndTime.Before(e.StartTime) {
				e.EndTime = e.StartTime
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO calendar_events (id, owner_id, title, description, location, start_time,
					end_time, all_day, course_id, source, source_id, feed_id, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(owner_id, source, source_id) DO UPDATE SET
					title = excluded.title, description = excluded.description,
					location = excluded.location, start_time = excluded.start_time,
					end_time = excluded.end_time, all_day = excluded.all_day,
					course_id = excluded.course_id, feed_id = excluded.feed_id
			`,
				GenerateID(), feed.OwnerID, e.Title, e.Description, e.Location,
				toMillis(e.StartTime), toMillis(e.EndTime), e.AllDay, feed.CourseID,
				models.SourceICS, *e.SourceID, feed.ID, now,
			)
			if err != nil {
				return fmt.Errorf("upserting feed event: %w", err)
			}
			keep = append(keep, *e.SourceID)
			upserted++
		}

		query := `DELETE FROM calendar_events WHERE owner_id = ? AND feed_id = ?`
		args := []any{feed.OwnerID, feed.ID}
		if len(keep) > 0 {
			query += ` AND source_id NOT IN (?` + strings.Repeat(",?", len(keep)-1) + `)`
			args = append(args, keep...)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("removing stale feed events: %w", err)
		}
		n, _ := result.RowsAffected()
		removed = int(n)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return upserted, removed, nil
}
