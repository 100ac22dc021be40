// Package models contains the domain models for the application.
package models

import "time"

// Course groups tasks and events; Color is a display token such as "#3b82f6".
type Course struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       string    `json:"color"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
}
