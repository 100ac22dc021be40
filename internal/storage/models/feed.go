package models

import "time"

// Feed is an ICS subscription whose events are imported into the owner's
// calendar with source "ics".
type Feed struct {
	ID              string     `json:"id"`
	OwnerID         string     `json:"-"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	CourseID        *string    `json:"course_id,omitempty"`
	SyncIntervalMin int        `json:"sync_interval_min"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	SyncStatus      string     `json:"sync_status"`
	SyncError       *string    `json:"sync_error,omitempty"`
	Enabled         bool       `json:"enabled"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SyncStatus constants
const (
	SyncStatusPending = "pending"
	SyncStatusSyncing = "syncing"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// FeedSyncResult contains the results of a feed sync operation.
type FeedSyncResult struct {
	FeedID        string    `json:"feed_id"`
	FeedName      string    `json:"feed_name"`
	OwnerID       string    `json:"-"`
	EventsFound   int       `json:"events_found"`
	EventsUpdated int       `json:"events_updated"`
	EventsRemoved int       `json:"events_removed"`
	SyncedAt      time.Time `json:"synced_at"`
}
