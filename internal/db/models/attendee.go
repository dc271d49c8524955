package models

import "time"

// RSVPStatus is an attendee's response to an invitation.
type RSVPStatus string

const (
	RSVPPending RSVPStatus = "PENDING"
	RSVPYes     RSVPStatus = "YES"
	RSVPNo      RSVPStatus = "NO"
)

// Valid reports whether s is one of the three known RSVP statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPPending, RSVPYes, RSVPNo:
		return true
	}
	return false
}

// AttendeeKey is the composite identity of an attendee. Comparable value
// type; at most one attendee record exists per key.
type AttendeeKey struct {
	EventID string
	UserID  string
}

// Attendee represents a user invited to an event, keyed by
// (event_id, user_id) — there is no surrogate ID. RSVP defaults to PENDING
// and may only be changed by the invited user themself.
type Attendee struct {
	EventID   string     `json:"event_id" db:"event_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	RSVP      RSVPStatus `json:"rsvp_status" db:"rsvp_status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Key returns the composite identity of the attendee.
func (a *Attendee) Key() AttendeeKey {
	return AttendeeKey{EventID: a.EventID, UserID: a.UserID}
}

// AttendeeWithUser includes user details for attendee listings.
type AttendeeWithUser struct {
	EventID   string     `json:"event_id" db:"event_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	RSVP      RSVPStatus `json:"rsvp_status" db:"rsvp_status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UserEmail string     `json:"user_email" db:"user_email"`
	UserName  string     `json:"user_name" db:"user_name"`
}
