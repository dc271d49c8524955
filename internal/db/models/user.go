// Package models defines the domain entities managed by GatherHub: users,
// organizations, memberships, events, and attendees. Memberships and attendees
// are identified by composite keys (organization+user, event+user) with
// structural equality — they never carry a surrogate ID.
package models

import "time"

// User represents an account in the system. The password hash is never
// serialized in API responses.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
