package models

import "testing"

func TestMembershipStatusValid(t *testing.T) {
	valid := []MembershipStatus{MembershipActive, MembershipInvited, MembershipSuspended}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	invalid := []MembershipStatus{"", "active", "DELETED", "PENDING"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestRSVPStatusValid(t *testing.T) {
	valid := []RSVPStatus{RSVPPending, RSVPYes, RSVPNo}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	invalid := []RSVPStatus{"", "yes", "MAYBE", "ACTIVE"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

// Composite keys must have structural equality so they can act as map keys:
// two memberships for the same (org, user) pair are the same identity.
func TestMembershipKeyEquality(t *testing.T) {
	a := &Membership{OrganizationID: "org-1", UserID: "user-1", Status: MembershipActive}
	b := &Membership{OrganizationID: "org-1", UserID: "user-1", Status: MembershipSuspended}
	if a.Key() != b.Key() {
		t.Error("keys for the same pair should be equal regardless of status")
	}

	seen := map[MembershipKey]bool{a.Key(): true}
	if !seen[b.Key()] {
		t.Error("key should index the same map slot")
	}

	c := &Membership{OrganizationID: "org-2", UserID: "user-1"}
	if a.Key() == c.Key() {
		t.Error("different organizations must yield different keys")
	}
}

func TestAttendeeKeyEquality(t *testing.T) {
	a := &Attendee{EventID: "evt-1", UserID: "user-1", RSVP: RSVPPending}
	b := &Attendee{EventID: "evt-1", UserID: "user-1", RSVP: RSVPYes}
	if a.Key() != b.Key() {
		t.Error("keys for the same pair should be equal regardless of RSVP")
	}
	c := &Attendee{EventID: "evt-1", UserID: "user-2"}
	if a.Key() == c.Key() {
		t.Error("different users must yield different keys")
	}
}
