package models

import "time"

// AuditLog records a mutating API action for after-the-fact review.
type AuditLog struct {
	ID           string    `json:"id"`
	UserID       *string   `json:"user_id,omitempty" db:"user_id"`
	Action       string    `json:"action"`
	ResourceType *string   `json:"resource_type,omitempty" db:"resource_type"`
	ResourceID   *string   `json:"resource_id,omitempty" db:"resource_id"`
	IPAddress    *string   `json:"ip_address,omitempty" db:"ip_address"`
	Status       int       `json:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
