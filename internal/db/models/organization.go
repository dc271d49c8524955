package models

import "time"

// Organization represents a group that hosts events and holds memberships.
// Names are unique with case-sensitive exact matching. CreatedBy must
// reference an existing user at creation time; the creator is provisioned an
// ACTIVE membership in the same transaction that creates the organization.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
