package services

import (
	"context"
	"log/slog"

	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/db/repositories"
	"github.com/gatherhub/gatherhub/internal/validation"
)

// AttendeeService manages event attendance: invitations, RSVP updates, and
// removal. RSVP changes are gated to the attendee themselves; removal is
// gated to the event's creator.
type AttendeeService struct {
	attendees   *repositories.AttendeeRepository
	events      *repositories.EventRepository
	users       *repositories.UserRepository
	memberships *repositories.MembershipRepository
}

// NewAttendeeService creates a new AttendeeService.
func NewAttendeeService(attendees *repositories.AttendeeRepository, events *repositories.EventRepository, users *repositories.UserRepository, memberships *repositories.MembershipRepository) *AttendeeService {
	return &AttendeeService{
		attendees:   attendees,
		events:      events,
		users:       users,
		memberships: memberships,
	}
}

// Invite records a user as an attendee of an event. The RSVP status defaults
// to PENDING when blank. Both the event and the user must already exist, and
// when the event belongs to an organization the invitee must be a member of
// it. A duplicate (event, user) pair is rejected.
func (s *AttendeeService) Invite(ctx context.Context, a *models.Attendee) (*models.Attendee, error) {
	if a == nil {
		return nil, invalidArgumentf("attendee must not be nil")
	}
	if !validation.NonBlank(a.EventID) {
		return nil, invalidArgumentf("event id must not be blank")
	}
	if !validation.NonBlank(a.UserID) {
		return nil, invalidArgumentf("user id must not be blank")
	}
	if a.RSVP == "" {
		a.RSVP = models.RSVPPending
	}
	if !a.RSVP.Valid() {
		return nil, invalidArgumentf("invalid rsvp status %q", a.RSVP)
	}

	ev, err := s.events.GetByID(ctx, a.EventID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, notFoundf("event %s does not exist", a.EventID)
	}

	userExists, err := s.users.ExistsByID(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	if !userExists {
		return nil, notFoundf("user %s does not exist", a.UserID)
	}

	if ev.OrganizationID != nil && validation.NonBlank(*ev.OrganizationID) {
		member, err := s.memberships.Exists(ctx, *ev.OrganizationID, a.UserID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, invalidArgumentf("user %s is not a member of organization %s", a.UserID, *ev.OrganizationID)
		}
	}

	exists, err := s.attendees.Exists(ctx, a.EventID, a.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, alreadyExistsf("user %s is already an attendee of event %s", a.UserID, a.EventID)
	}

	if err := s.attendees.Create(ctx, a); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, alreadyExistsf("user %s is already an attendee of event %s", a.UserID, a.EventID)
		}
		return nil, err
	}

	slog.Info("attendee invited", "event_id", a.EventID, "user_id", a.UserID, "rsvp_status", a.RSVP)
	return a, nil
}

// UpdateRSVP changes an attendee's RSVP status. Only the attendee themselves
// may change it, so requestingUserID must equal userID.
func (s *AttendeeService) UpdateRSVP(ctx context.Context, eventID, userID, requestingUserID string, status models.RSVPStatus) error {
	if !validation.NonBlank(eventID) {
		return invalidArgumentf("event id must not be blank")
	}
	if !validation.NonBlank(userID) {
		return invalidArgumentf("user id must not be blank")
	}
	if !validation.NonBlank(requestingUserID) {
		return invalidArgumentf("requesting user id must not be blank")
	}
	if !status.Valid() {
		return invalidArgumentf("invalid rsvp status %q", status)
	}
	if requestingUserID != userID {
		return forbiddenf("only user %s may change their own rsvp", userID)
	}

	exists, err := s.attendees.Exists(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundf("user %s is not an attendee of event %s", userID, eventID)
	}

	if err := s.attendees.UpdateRSVP(ctx, eventID, userID, status); err != nil {
		return err
	}

	slog.Info("rsvp updated", "event_id", eventID, "user_id", userID, "rsvp_status", status)
	return nil
}

// Delete removes an attendee from an event. Only the event's creator may do
// this; an event with no recorded creator cannot have attendees removed.
func (s *AttendeeService) Delete(ctx context.Context, eventID, userID, requestingUserID string) error {
	if !validation.NonBlank(eventID) {
		return invalidArgumentf("event id must not be blank")
	}
	if !validation.NonBlank(userID) {
		return invalidArgumentf("user id must not be blank")
	}
	if !validation.NonBlank(requestingUserID) {
		return invalidArgumentf("requesting user id must not be blank")
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev == nil {
		return notFoundf("event %s does not exist", eventID)
	}
	if !validation.NonBlank(ev.CreatedBy) {
		return invalidArgumentf("event %s has no creator recorded", eventID)
	}
	if ev.CreatedBy != requestingUserID {
		return forbiddenf("only the creator of event %s may remove attendees", eventID)
	}

	exists, err := s.attendees.Exists(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundf("user %s is not an attendee of event %s", userID, eventID)
	}

	if err := s.attendees.Delete(ctx, eventID, userID); err != nil {
		return err
	}

	slog.Info("attendee removed", "event_id", eventID, "user_id", userID, "requested_by", requestingUserID)
	return nil
}

// Get retrieves one attendance record.
func (s *AttendeeService) Get(ctx context.Context, eventID, userID string) (*models.Attendee, error) {
	if !validation.NonBlank(eventID) || !validation.NonBlank(userID) {
		return nil, invalidArgumentf("event id and user id must not be blank")
	}
	a, err := s.attendees.Get(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, notFoundf("user %s is not an attendee of event %s", userID, eventID)
	}
	return a, nil
}

// ListByEvent returns all attendees of an event with user details attached.
func (s *AttendeeService) ListByEvent(ctx context.Context, eventID string) ([]*models.AttendeeWithUser, error) {
	if !validation.NonBlank(eventID) {
		return nil, invalidArgumentf("event id must not be blank")
	}
	return s.attendees.ListByEvent(ctx, eventID)
}

// Exists reports whether the (event, user) attendance pair is present.
func (s *AttendeeService) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	return s.attendees.Exists(ctx, eventID, userID)
}

// CountByEvent returns the number of attendees of an event.
func (s *AttendeeService) CountByEvent(ctx context.Context, eventID string) (int, error) {
	return s.attendees.CountByEvent(ctx, eventID)
}

// CountByEventAndStatus returns the number of attendees of an event with the
// given RSVP status.
func (s *AttendeeService) CountByEventAndStatus(ctx context.Context, eventID string, status models.RSVPStatus) (int, error) {
	if !status.Valid() {
		return 0, invalidArgumentf("invalid rsvp status %q", status)
	}
	return s.attendees.CountByEventAndStatus(ctx, eventID, status)
}
