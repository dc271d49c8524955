package models

import "time"

// Event represents a scheduled event occupying the half-open interval
// [StartTime, EndTime). StartTime must be strictly before EndTime. Capacity
// and Location are optional; OrganizationID is required only under the
// organization-scoped conflict policy.
type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	StartTime      time.Time `json:"start_time" db:"start_time"`
	EndTime        time.Time `json:"end_time" db:"end_time"`
	Capacity       *int      `json:"capacity,omitempty"`
	Location       *string   `json:"location,omitempty"`
	OrganizationID *string   `json:"organization_id,omitempty" db:"organization_id"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
