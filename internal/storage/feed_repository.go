package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Tbsheff/notion-clone/internal/storage/models"
)

// FeedRepository provides data access for ICS feed subscriptions.
type FeedRepository struct {
	BaseRepository
}

// NewFeedRepository creates a new feed repository.
func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

const feedColumns = `id, owner_id, name, url, course_id, sync_interval_min, last_sync_at,
	sync_status, sync_error, enabled, created_at, updated_at`

func scanFeed(row interface{ Scan(...any) error }) (models.Feed, error) {
	var (
		f          models.Feed
		courseID   sql.NullString
		lastSyncAt sql.NullInt64
		syncError  sql.NullString
		created    int64
		updated    int64
	)
	err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.URL, &courseID, &f.SyncIntervalMin,
		&lastSyncAt, &f.SyncStatus, &syncError, &f.Enabled, &created, &updated)
	if err != nil {
		return f, err
	}
	f.CourseID = fromNullString(courseID)
	f.LastSyncAt = fromNullMillis(lastSyncAt)
	f.SyncError = fromNullString(syncError)
	f.CreatedAt = fromMillis(created)
	f.UpdatedAt = fromMillis(updated)
	return f, nil
}

func validateFeed(f *models.Feed) error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return fmt.Errorf("%w: feed name is required", ErrInvalid)
	}
	f.URL = strings.TrimSpace(f.URL)
	u, err := url.Parse(f.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "webcal") || u.Host == "" {
		return fmt.Errorf("%w: feed url must be an http(s) or webcal url", ErrInvalid)
	}
	f.CourseID = optionalCourse(f.CourseID)
	return nil
}

// ensureUniqueURL rejects a second subscription by one owner to the same url.
func ensureUniqueURL(ctx context.Context, q Queryable, f *models.Feed) error {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feeds WHERE owner_id = ? AND url = ? AND id != ?`,
		f.OwnerID, f.URL, f.ID).Scan(&n)
	if err != nil {
		return fmt.Errorf("checking feed url: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: already subscribed to %s", ErrConflict, f.URL)
	}
	return nil
}

// Create inserts a new feed subscription in pending state.
func (r *FeedRepository) Create(ctx context.Context, f *models.Feed) error {
	if err := validateFeed(f); err != nil {
		return err
	}
	if err := ensureCourse(ctx, r.DB(), f.OwnerID, f.CourseID); err != nil {
		return err
	}
	if err := ensureUniqueURL(ctx, r.DB(), f); err != nil {
		return err
	}
	f.ID = GenerateID()
	f.CreatedAt = r.Now()
	f.UpdatedAt = f.CreatedAt
	f.SyncStatus = models.SyncStatusPending

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO feeds (id, owner_id, name, url, course_id, sync_interval_min, sync_status,
			enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		f.ID, f.OwnerID, f.Name, f.URL, f.CourseID, f.SyncIntervalMin, f.SyncStatus,
		f.Enabled, toMillis(f.CreatedAt), toMillis(f.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting feed: %w", err)
	}
	return nil
}

// GetByID retrieves one of the owner's feeds.
func (r *FeedRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Feed, error) {
	row := r.DB().QueryRowContext(ctx,
		`SELECT `+feedColumns+` FROM feeds WHERE id = ? AND owner_id = ?`, id, ownerID)
	f, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	return &f, nil
}

// List retrieves the owner's feeds.
func (r *FeedRepository) List(ctx context.Context, ownerID string) ([]models.Feed, error) {
	return r.list(ctx, `SELECT `+feedColumns+` FROM feeds WHERE owner_id = ? ORDER BY name`, ownerID)
}

// ListEnabled retrieves enabled feeds across all owners, least recently
// synced first.
func (r *FeedRepository) ListEnabled(ctx context.Context) ([]models.Feed, error) {
	return r.list(ctx, `
		SELECT `+feedColumns+` FROM feeds
		WHERE enabled = 1
		ORDER BY last_sync_at ASC NULLS FIRST
	`)
}

func (r *FeedRepository) list(ctx context.Context, query string, args ...any) ([]models.Feed, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feeds: %w", err)
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// UpdateSyncStatus records the outcome of a sync attempt. last_sync_at only
// advances on success.
func (r *FeedRepository) UpdateSyncStatus(ctx context.Context, id, status string, syncError *string) error {
	now := r.Now()
	var lastSyncAt sql.NullInt64
	if status == models.SyncStatusSuccess {
		lastSyncAt = nullMillis(&now)
	}

	_, err := r.DB().ExecContext(ctx, `
		UPDATE feeds SET
			sync_status = ?, sync_error = ?, last_sync_at = COALESCE(?, last_sync_at), updated_at = ?
		WHERE id = ?
	`, status, syncError, lastSyncAt, toMillis(now), id)
	if err != nil {
		return fmt.Errorf("updating sync status: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a feed. Sync state is untouched.
func (r *FeedRepository) Update(ctx context.Context, f *models.Feed) error {
	if err := validateFeed(f); err != nil {
		return err
	}
	if err := ensureCourse(ctx, r.DB(), f.OwnerID, f.CourseID); err != nil {
		return err
	}
	if err := ensureUniqueURL(ctx, r.DB(), f); err != nil {
		return err
	}
	f.UpdatedAt = r.Now()
	result, err := r.DB().ExecContext(ctx, `
		UPDATE feeds SET name = ?, url = ?, course_id = ?, sync_interval_min = ?, enabled = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, f.Name, f.URL, f.CourseID, f.SyncIntervalMin, f.Enabled, toMillis(f.UpdatedAt), f.ID, f.OwnerID)
	if err != nil {
		return fmt.Errorf("updating feed: %w", err)
	}
	return rowsAffected(result)
}

// Delete removes a feed; its imported events cascade.
func (r *FeedRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.DB().ExecContext(ctx, `DELETE FROM feeds WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting feed: %w", err)
	}
	return rowsAffected(result)
}
