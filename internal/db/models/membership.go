package models

import "time"

// MembershipStatus is the lifecycle state of a membership.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipInvited   MembershipStatus = "INVITED"
	MembershipSuspended MembershipStatus = "SUSPENDED"
)

// Valid reports whether s is one of the three known statuses.
func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipActive, MembershipInvited, MembershipSuspended:
		return true
	}
	return false
}

// MembershipKey is the composite identity of a membership. It is a comparable
// value type so it can be used directly as a map key; at most one membership
// exists per key.
type MembershipKey struct {
	OrganizationID string
	UserID         string
}

// Membership represents a user's membership in an organization, keyed by
// (organization_id, user_id) — there is no surrogate ID.
type Membership struct {
	OrganizationID string           `json:"organization_id" db:"organization_id"`
	UserID         string           `json:"user_id" db:"user_id"`
	Status         MembershipStatus `json:"status" db:"status"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
}

// Key returns the composite identity of the membership.
func (m *Membership) Key() MembershipKey {
	return MembershipKey{OrganizationID: m.OrganizationID, UserID: m.UserID}
}

// MembershipWithUser includes user details for member listings.
type MembershipWithUser struct {
	OrganizationID string           `json:"organization_id" db:"organization_id"`
	UserID         string           `json:"user_id" db:"user_id"`
	Status         MembershipStatus `json:"status" db:"status"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UserEmail      string           `json:"user_email" db:"user_email"`
	UserName       string           `json:"user_name" db:"user_name"`
}
