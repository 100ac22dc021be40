package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// TaskRepository provides data access for tasks.
type TaskRepository struct {
	BaseRepository
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const taskColumns = `id, owner_id, title, description, priority, status, due_date,
	estimated_time, course_id, archived, created_at`

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		dueDate     sql.NullInt64
		estimated   sql.NullInt64
		courseID    sql.NullString
		createdAt   int64
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &description, &t.Priority, &t.Status,
		&dueDate, &estimated, &courseID, &t.Archived, &createdAt)
	if err != nil {
		return t, err
	}
	t.Description = fromNullString(description)
	t.DueDate = fromNullMillis(dueDate)
	t.EstimatedTime = fromNullInt(estimated)
	t.CourseID = fromNullString(courseID)
	t.CreatedAt = fromMillis(createdAt)
	return t, nil
}

func validateTask(t *models.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("%w: task title is required", ErrInvalid)
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Status == "" {
		t.Status = models.StatusTodo
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalid, t.Priority)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, t.Status)
	}
	if t.EstimatedTime != nil && *t.EstimatedTime < 0 {
		return fmt.Errorf("%w: estimated time must not be negative", ErrInvalid)
	}
	t.CourseID = optionalCourse(t.CourseID)
	return nil
}

// Create inserts a new task owned by t.OwnerID.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	if err := validateTask(t); err != nil {
		return err
	}
	if err := ensureCourse(ctx, r.DB(), t.OwnerID, t.CourseID); err != nil {
		return err
	}
	t.ID = GenerateID()
	t.CreatedAt = r.Now()
	t.Archived = false

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, priority, status, due_date,
			estimated_time, course_id, archived, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
	`,
		t.ID, t.OwnerID, t.Title, t.Description, t.Priority, t.Status, nullMillis(t.DueDate),
		t.EstimatedTime, t.CourseID, toMillis(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

// GetByID retrieves one of the owner's tasks, archived or not.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return &t, nil
}

// List returns every non-archived task of the owner matching filter. It is
// deliberately not time-bounded.
func (r *TaskRepository) List(ctx context.Context, ownerID string, filter models.TaskFilter) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ? AND archived = 0`
	args := []any{ownerID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.CourseID != "" {
		query += ` AND course_id = ?`
		args = append(args, filter.CourseID)
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, filter.Priority)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update overwrites the editable fields of a task.
func (r *TaskRepository) Update(ctx context.Context, t *models.Task) error {
	if err := validateTask(t); err != nil {
		return err
	}
	if err := ensureCourse(ctx, r.DB(), t.OwnerID, t.CourseID); err != nil {
		return err
	}
	result, err := r.DB().ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, due_date = ?,
			estimated_time = ?, course_id = ?
		WHERE id = ? AND owner_id = ?
	`,
		t.Title, t.Description, t.Priority, t.Status, nullMillis(t.DueDate),
		t.EstimatedTime, t.CourseID, t.ID, t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return rowsAffected(result)
}

// Archive hides a task from listings and the calendar.
func (r *TaskRepository) Archive(ctx context.Context, ownerID, id string) error {
	result, err := r.DB().ExecContext(ctx,
		`UPDATE tasks SET archived = 1 WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("archiving task: %w", err)
	}
	return rowsAffected(result)
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.DB().ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return rowsAffected(result)
}
