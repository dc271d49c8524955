// attendee_repository.go implements AttendeeRepository over sqlx. Attendees
// are keyed by the (event_id, user_id) composite primary key; every lookup is
// by the full pair.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gatherhub/gatherhub/internal/db/models"
)

// AttendeeRepository handles database operations for event attendees
type AttendeeRepository struct {
	db sqlx.ExtContext
}

// NewAttendeeRepository creates a new attendee repository
func NewAttendeeRepository(db *sqlx.DB) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

// WithTx returns a copy of the repository that runs its queries inside tx.
func (r *AttendeeRepository) WithTx(tx *sqlx.Tx) *AttendeeRepository {
	return &AttendeeRepository{db: tx}
}

// Create inserts a new attendee. The composite primary key enforces pair
// uniqueness; callers check IsUniqueViolation to detect a concurrent
// duplicate invite.
func (r *AttendeeRepository) Create(ctx context.Context, a *models.Attendee) error {
	a.CreatedAt = time.Now()

	query := `
		INSERT INTO attendees (event_id, user_id, rsvp_status, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, a.EventID, a.UserID, a.RSVP, a.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to create attendee: %w", err)
	}

	return nil
}

// Get retrieves an attendee by its composite key
func (r *AttendeeRepository) Get(ctx context.Context, eventID, userID string) (*models.Attendee, error) {
	var a models.Attendee
	query := `SELECT * FROM attendees WHERE event_id = $1 AND user_id = $2`
	err := sqlx.GetContext(ctx, r.db, &a, query, eventID, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendee: %w", err)
	}
	return &a, nil
}

// Exists reports whether an attendee exists for the composite key
func (r *AttendeeRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM attendees WHERE event_id = $1 AND user_id = $2)`
	if err := sqlx.GetContext(ctx, r.db, &exists, query, eventID, userID); err != nil {
		return false, fmt.Errorf("failed to check attendee existence: %w", err)
	}
	return exists, nil
}

// UpdateRSVP overwrites the attendee's RSVP status
func (r *AttendeeRepository) UpdateRSVP(ctx context.Context, eventID, userID string, status models.RSVPStatus) error {
	query := `
		UPDATE attendees
		SET rsvp_status = $3
		WHERE event_id = $1 AND user_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, eventID, userID, status)
	if err != nil {
		return fmt.Errorf("failed to update rsvp: %w", err)
	}

	return nil
}

// Delete removes an attendee by its composite key
func (r *AttendeeRepository) Delete(ctx context.Context, eventID, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attendees WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete attendee: %w", err)
	}
	return nil
}

// ListByEvent retrieves all attendees of an event with user details
func (r *AttendeeRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.AttendeeWithUser, error) {
	attendees := make([]*models.AttendeeWithUser, 0)
	query := `
		SELECT a.event_id, a.user_id, a.rsvp_status, a.created_at,
		       COALESCE(u.email, '') AS user_email, COALESCE(u.display_name, '') AS user_name
		FROM attendees a
		LEFT JOIN users u ON a.user_id = u.id
		WHERE a.event_id = $1
		ORDER BY a.created_at DESC
	`
	if err := sqlx.SelectContext(ctx, r.db, &attendees, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return attendees, nil
}

// CountByEvent returns the number of attendees of an event
func (r *AttendeeRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attendees WHERE event_id = $1`
	if err := sqlx.GetContext(ctx, r.db, &count, query, eventID); err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return count, nil
}

// CountByEventAndStatus returns the number of attendees of an event with the
// given RSVP status
func (r *AttendeeRepository) CountByEventAndStatus(ctx context.Context, eventID string, status models.RSVPStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attendees WHERE event_id = $1 AND rsvp_status = $2`
	if err := sqlx.GetContext(ctx, r.db, &count, query, eventID, status); err != nil {
		return 0, fmt.Errorf("failed to count attendees by status: %w", err)
	}
	return count, nil
}

// Count returns the total number of attendee records
func (r *AttendeeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, `SELECT COUNT(*) FROM attendees`); err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return count, nil
}
