// event_repository.go implements EventRepository over sqlx, including the
// half-open interval overlap query used for scheduling-conflict detection.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gatherhub/gatherhub/internal/db/models"
)

// EventRepository handles database operations for events
type EventRepository struct {
	db sqlx.ExtContext
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx returns a copy of the repository that runs its queries inside tx.
// The conflict check and the insert that depends on it must share a
// transaction, otherwise two concurrent creates can both pass the check.
func (r *EventRepository) WithTx(tx *sqlx.Tx) *EventRepository {
	return &EventRepository{db: tx}
}

// Create inserts a new event, assigning its ID and timestamps.
func (r *EventRepository) Create(ctx context.Context, ev *models.Event) error {
	ev.ID = uuid.New().String()
	ev.CreatedAt = time.Now()
	ev.UpdatedAt = ev.CreatedAt

	query := `
		INSERT INTO events (id, title, description, start_time, end_time, capacity, location, organization_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		ev.ID, ev.Title, ev.Description, ev.StartTime, ev.EndTime,
		ev.Capacity, ev.Location, ev.OrganizationID, ev.CreatedBy,
		ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	query := `SELECT * FROM events WHERE id = $1`
	err := sqlx.GetContext(ctx, r.db, &ev, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &ev, nil
}

// Update replaces the event's mutable fields in place, preserving the ID,
// creator, and creation timestamp.
func (r *EventRepository) Update(ctx context.Context, ev *models.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, start_time = $4, end_time = $5,
		    capacity = $6, location = $7, organization_id = $8, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		ev.ID, ev.Title, ev.Description, ev.StartTime, ev.EndTime,
		ev.Capacity, ev.Location, ev.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	return nil
}

// Delete deletes an event by ID. Attendees are not cascaded.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// List retrieves a paginated list of events ordered by start time
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	events := make([]*models.Event, 0)
	query := `SELECT * FROM events ORDER BY start_time LIMIT $1 OFFSET $2`
	if err := sqlx.SelectContext(ctx, r.db, &events, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// FindOverlapping returns all events whose [start_time, end_time) interval
// intersects [start, end) under half-open semantics: s1 < e2 AND s2 < e1.
// excludeID removes the event's own row from consideration during updates;
// pass the empty string for creates and public conflict queries.
func (r *EventRepository) FindOverlapping(ctx context.Context, start, end time.Time, excludeID string) ([]*models.Event, error) {
	events := make([]*models.Event, 0)
	query := `
		SELECT * FROM events
		WHERE start_time < $2 AND $1 < end_time
		  AND ($3 = '' OR id <> $3)
		ORDER BY start_time
	`
	if err := sqlx.SelectContext(ctx, r.db, &events, query, start, end, excludeID); err != nil {
		return nil, fmt.Errorf("failed to find overlapping events: %w", err)
	}
	return events, nil
}

// Count returns the total number of events
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM events`
	if err := sqlx.GetContext(ctx, r.db, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// CountUpcoming returns the number of events starting after now
func (r *EventRepository) CountUpcoming(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM events WHERE start_time > NOW()`
	if err := sqlx.GetContext(ctx, r.db, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count upcoming events: %w", err)
	}
	return count, nil
}
