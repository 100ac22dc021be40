package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// CourseRepository provides data access for courses.
type CourseRepository struct {
	BaseRepository
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const courseColumns = `id, owner_id, name, description, color, archived, created_at`

func scanCourse(row interface{ Scan(...any) error }) (models.Course, error) {
	var (
		c           models.Course
		description sql.NullString
		createdAt   int64
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &description, &c.Color, &c.Archived, &createdAt)
	if err != nil {
		return c, err
	}
	c.Description = fromNullString(description)
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func validateCourse(c *models.Course) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: course name is required", ErrInvalid)
	}
	if strings.TrimSpace(c.Color) == "" {
		return fmt.Errorf("%w: course color is required", ErrInvalid)
	}
	return nil
}

// Create inserts a new course owned by c.OwnerID.
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	if err := validateCourse(c); err != nil {
		return err
	}
	c.ID = GenerateID()
	c.CreatedAt = r.Now()
	c.Archived = false

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO courses (id, owner_id, name, description, color, archived, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`, c.ID, c.OwnerID, c.Name, c.Description, c.Color, toMillis(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

// GetByID retrieves one of the owner's courses.
func (r *CourseRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Course, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = ? AND owner_id = ?`, id, ownerID)
	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying course: %w", err)
	}
	return &c, nil
}

// List returns the owner's non-archived courses.
func (r *CourseRepository) List(ctx context.Context, ownerID string) ([]models.Course, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT `+courseColumns+` FROM courses
		WHERE owner_id = ? AND archived = 0
		ORDER BY created_at, rowid
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Update overwrites name, description and color.
func (r *CourseRepository) Update(ctx context.Context, c *models.Course) error {
	if err := validateCourse(c); err != nil {
		return err
	}
	result, err := r.DB().ExecContext(ctx, `
		UPDATE courses SET name = ?, description = ?, color = ?
		WHERE id = ? AND owner_id = ?
	`, c.Name, c.Description, c.Color, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("updating course: %w", err)
	}
	return rowsAffected(result)
}

// Archive hides a course from listings without deleting it.
func (r *CourseRepository) Archive(ctx context.Context, ownerID, id string) error {
	result, err := r.DB().ExecContext(ctx,
		`UPDATE courses SET archived = 1 WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("archiving course: %w", err)
	}
	return rowsAffected(result)
}

// Delete removes a course; tasks and events keep existing without it.
func (r *CourseRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.DB().ExecContext(ctx,
		`DELETE FROM courses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting course: %w", err)
	}
	return rowsAffected(result)
}

// optionalCourse treats a blank course reference as no course.
func optionalCourse(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

// ensureCourse checks that a referenced course belongs to the owner.
func ensureCourse(ctx context.Context, q Queryable, ownerID string, courseID *string) error {
	if courseID == nil || *courseID == "" {
		return nil
	}
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM courses WHERE id = ? AND owner_id = ?`, *courseID, ownerID).Scan(&n)
	if err != nil {
		return fmt.Errorf("checking course: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: unknown course %s", ErrInvalid, *courseID)
	}
	return nil
}
