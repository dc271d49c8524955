// event_service.go owns the event lifecycle: time-range validation and the
// deployment's conflict policy. Two policies exist and are never mixed:
//
//   - PolicyGlobalOverlap rejects a create/update whose half-open
//     [start, end) interval intersects any other event's interval.
//   - PolicyOrgScoped skips overlap checking and instead requires the event's
//     organization to exist.
//
// The policy is chosen at construction from configuration, one per deployment.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/db/repositories"
	"github.com/gatherhub/gatherhub/internal/telemetry"
	"github.com/gatherhub/gatherhub/internal/validation"
)

// ConflictPolicy selects how event creation and update guard against bad
// scheduling.
type ConflictPolicy string

const (
	// PolicyGlobalOverlap rejects intervals that intersect any existing event.
	PolicyGlobalOverlap ConflictPolicy = "global_overlap"
	// PolicyOrgScoped requires the event's organization to exist and performs
	// no overlap checking.
	PolicyOrgScoped ConflictPolicy = "org_scoped"
)

// Valid reports whether p is a known policy.
func (p ConflictPolicy) Valid() bool {
	return p == PolicyGlobalOverlap || p == PolicyOrgScoped
}

// EventService enforces event invariants over the repository layer.
type EventService struct {
	db     *sqlx.DB
	events *repositories.EventRepository
	orgs   *repositories.OrganizationRepository
	policy ConflictPolicy
}

// NewEventService creates a new EventService with the given conflict policy.
func NewEventService(db *sqlx.DB, events *repositories.EventRepository, orgs *repositories.OrganizationRepository, policy ConflictPolicy) *EventService {
	if !policy.Valid() {
		policy = PolicyGlobalOverlap
	}
	return &EventService{db: db, events: events, orgs: orgs, policy: policy}
}

// Policy returns the conflict policy the service was constructed with.
func (s *EventService) Policy() ConflictPolicy {
	return s.policy
}

func (s *EventService) validate(ev *models.Event) error {
	if ev == nil {
		return invalidArgumentf("event must not be nil")
	}
	if !validation.NonBlank(ev.Title) {
		return invalidArgumentf("event title must not be blank")
	}
	if ev.StartTime.IsZero() || ev.EndTime.IsZero() {
		return invalidArgumentf("event start and end times are required")
	}
	if !ev.StartTime.Before(ev.EndTime) {
		return invalidArgumentf("event start %s must be strictly before end %s",
			ev.StartTime.Format(time.RFC3339), ev.EndTime.Format(time.RFC3339))
	}
	if ev.Capacity != nil && *ev.Capacity < 0 {
		return invalidArgumentf("event capacity must not be negative")
	}
	return nil
}

// checkPolicy runs the deployment's conflict policy against the candidate
// event. excludeID removes the event's own row from the overlap scan during
// updates. Under the global policy the caller must hold a transaction so the
// scan and the subsequent write are atomic; repo is already tx-scoped.
func (s *EventService) checkPolicy(ctx context.Context, repo *repositories.EventRepository, ev *models.Event, excludeID string) error {
	switch s.policy {
	case PolicyOrgScoped:
		if ev.OrganizationID == nil || !validation.NonBlank(*ev.OrganizationID) {
			return invalidArgumentf("event organization id is required")
		}
		exists, err := s.orgs.ExistsByID(ctx, *ev.OrganizationID)
		if err != nil {
			return err
		}
		if !exists {
			return invalidArgumentf("organization %s does not exist", *ev.OrganizationID)
		}
		return nil
	default: // PolicyGlobalOverlap
		conflicts, err := repo.FindOverlapping(ctx, ev.StartTime, ev.EndTime, excludeID)
		if err != nil {
			return err
		}
		for _, other := range conflicts {
			// The SQL predicate mirrors Overlaps; re-check here so the
			// half-open semantics are owned in one place.
			if validation.Overlaps(ev.StartTime, ev.EndTime, other.StartTime, other.EndTime) {
				telemetry.SchedulingConflictsTotal.Inc()
				return conflictf("interval [%s, %s) overlaps event %s",
					ev.StartTime.Format(time.RFC3339), ev.EndTime.Format(time.RFC3339), other.ID)
			}
		}
		return nil
	}
}

// Create validates the event, applies the conflict policy, and persists it.
// The overlap scan and the insert run inside one transaction so two
// concurrent creates cannot both pass the check.
func (s *EventService) Create(ctx context.Context, ev *models.Event) (*models.Event, error) {
	if err := s.validate(ev); err != nil {
		return nil, err
	}
	if !validation.NonBlank(ev.CreatedBy) {
		return nil, invalidArgumentf("event created_by must not be blank")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	repo := s.events.WithTx(tx)
	if err := s.checkPolicy(ctx, repo, ev, ""); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, ev); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event: %w", err)
	}

	slog.Info("event created", "event_id", ev.ID, "title", ev.Title,
		"start", ev.StartTime, "end", ev.EndTime, "policy", s.policy)
	return ev, nil
}

// Update re-runs creation validation against the new data and replaces the
// event's mutable fields, preserving its ID, creator, and creation timestamp.
// The overlap scan excludes the event's own interval.
func (s *EventService) Update(ctx context.Context, id string, ev *models.Event) (*models.Event, error) {
	if !validation.NonBlank(id) {
		return nil, invalidArgumentf("event id must not be blank")
	}
	if err := s.validate(ev); err != nil {
		return nil, err
	}

	existing, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, notFoundf("event %s does not exist", id)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	repo := s.events.WithTx(tx)
	if err := s.checkPolicy(ctx, repo, ev, id); err != nil {
		return nil, err
	}

	existing.Title = ev.Title
	existing.Description = ev.Description
	existing.StartTime = ev.StartTime
	existing.EndTime = ev.EndTime
	existing.Capacity = ev.Capacity
	existing.Location = ev.Location
	if s.policy == PolicyOrgScoped {
		existing.OrganizationID = ev.OrganizationID
	}

	if err := repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event update: %w", err)
	}

	slog.Info("event updated", "event_id", id, "title", existing.Title)
	return existing, nil
}

// Delete removes an event. Only the event's creator may delete it.
func (s *EventService) Delete(ctx context.Context, id, requestingUserID string) error {
	if !validation.NonBlank(id) {
		return invalidArgumentf("event id must not be blank")
	}
	if !validation.NonBlank(requestingUserID) {
		return invalidArgumentf("requesting user id must not be blank")
	}

	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ev == nil {
		return notFoundf("event %s does not exist", id)
	}
	if ev.CreatedBy != requestingUserID {
		return forbiddenf("only the creator of event %s may delete it", id)
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("event deleted", "event_id", id, "requested_by", requestingUserID)
	return nil
}

// FindConflicting returns all events whose interval intersects [start, end)
// under half-open semantics. Read-only; usable publicly and by Create/Update.
func (s *EventService) FindConflicting(ctx context.Context, start, end time.Time) ([]*models.Event, error) {
	if start.IsZero() || end.IsZero() {
		return nil, invalidArgumentf("start and end times are required")
	}
	if !start.Before(end) {
		return nil, invalidArgumentf("start must be strictly before end")
	}
	return s.events.FindOverlapping(ctx, start, end, "")
}

// Get retrieves an event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	if !validation.NonBlank(id) {
		return nil, invalidArgumentf("event id must not be blank")
	}
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, notFoundf("event %s does not exist", id)
	}
	return ev, nil
}

// List retrieves a page of events ordered by start time.
func (s *EventService) List(ctx context.Context, limit, offset int) ([]*models.Event, error) {
	return s.events.List(ctx, limit, offset)
}
