package services

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/db/repositories"
)

var eventCols = []string{
	"id", "title", "description", "start_time", "end_time",
	"capacity", "location", "organization_id", "created_by",
	"created_at", "updated_at",
}

func newEventService(t *testing.T, policy ConflictPolicy) (*EventService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "postgres")
	svc := NewEventService(sqlxDB,
		repositories.NewEventRepository(sqlxDB),
		repositories.NewOrganizationRepository(db),
		policy,
	)
	return svc, mock
}

func eventAt(hhmm string) time.Time {
	ts, err := time.Parse(time.RFC3339, "2024-01-15T"+hhmm+":00Z")
	if err != nil {
		panic(err)
	}
	return ts
}

func overlapRow(id string, start, end time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(eventCols).
		AddRow(id, "Standup", nil, start, end, nil, nil, nil, "user-1", time.Now(), time.Now())
}

func draftEvent(start, end time.Time) *models.Event {
	return &models.Event{
		Title:     "Planning",
		StartTime: start,
		EndTime:   end,
		CreatedBy: "user-1",
	}
}

func TestEventCreateNoConflict(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM events.*start_time <").
		WithArgs(eventAt("10:00"), eventAt("11:00"), "").
		WillReturnRows(sqlmock.NewRows(eventCols))
	mock.ExpectExec("INSERT INTO events").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ev, err := svc.Create(context.Background(), draftEvent(eventAt("10:00"), eventAt("11:00")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID == "" {
		t.Error("expected generated event id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEventCreateConflict(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM events.*start_time <").
		WithArgs(eventAt("10:00"), eventAt("11:00"), "").
		WillReturnRows(overlapRow("evt-9", eventAt("10:30"), eventAt("11:30")))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), draftEvent(eventAt("10:00"), eventAt("11:00")))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// Intervals are half-open: an event ending exactly when another starts is not
// a conflict. The overlap query's strict inequalities return no rows here.
func TestEventCreateBoundaryTouchSucceeds(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM events.*start_time <").
		WithArgs(eventAt("11:00"), eventAt("12:00"), "").
		WillReturnRows(sqlmock.NewRows(eventCols))
	mock.ExpectExec("INSERT INTO events").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := svc.Create(context.Background(), draftEvent(eventAt("11:00"), eventAt("12:00")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventCreateStartNotBeforeEnd(t *testing.T) {
	svc, _ := newEventService(t, PolicyGlobalOverlap)

	for _, tc := range []struct {
		name       string
		start, end time.Time
	}{
		{"equal", eventAt("10:00"), eventAt("10:00")},
		{"reversed", eventAt("11:00"), eventAt("10:00")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), draftEvent(tc.start, tc.end))
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestEventCreateNegativeCapacity(t *testing.T) {
	svc, _ := newEventService(t, PolicyGlobalOverlap)
	ev := draftEvent(eventAt("10:00"), eventAt("11:00"))
	capacity := -1
	ev.Capacity = &capacity

	_, err := svc.Create(context.Background(), ev)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestEventCreateOrgScopedRequiresOrganization(t *testing.T) {
	svc, mock := newEventService(t, PolicyOrgScoped)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), draftEvent(eventAt("10:00"), eventAt("11:00")))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestEventCreateOrgScopedUnknownOrganization(t *testing.T) {
	svc, mock := newEventService(t, PolicyOrgScoped)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM organizations").
		WithArgs("org-ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	ev := draftEvent(eventAt("10:00"), eventAt("11:00"))
	orgID := "org-ghost"
	ev.OrganizationID = &orgID

	_, err := svc.Create(context.Background(), ev)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

// Org-scoped deployments skip overlap checking entirely: two events at the
// same time in one existing organization both go through.
func TestEventCreateOrgScopedSkipsOverlapCheck(t *testing.T) {
	svc, mock := newEventService(t, PolicyOrgScoped)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM organizations").
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO events").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ev := draftEvent(eventAt("10:00"), eventAt("11:00"))
	orgID := "org-1"
	ev.OrganizationID = &orgID

	if _, err := svc.Create(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// The update overlap scan must exclude the event's own row, otherwise every
// reschedule would conflict with itself.
func TestEventUpdateExcludesSelf(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)

	mock.ExpectQuery("SELECT \\* FROM events WHERE id").
		WithArgs("evt-1").
		WillReturnRows(overlapRow("evt-1", eventAt("10:00"), eventAt("11:00")))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM events.*start_time <").
		WithArgs(eventAt("10:30"), eventAt("11:30"), "evt-1").
		WillReturnRows(sqlmock.NewRows(eventCols))
	mock.ExpectExec("UPDATE events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ev, err := svc.Update(context.Background(), "evt-1", draftEvent(eventAt("10:30"), eventAt("11:30")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.ID != "evt-1" {
		t.Errorf("ID = %s, want evt-1", ev.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEventUpdateNotFound(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)
	mock.ExpectQuery("SELECT \\* FROM events WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(eventCols))

	_, err := svc.Update(context.Background(), "missing", draftEvent(eventAt("10:00"), eventAt("11:00")))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventDeleteByCreator(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)

	mock.ExpectQuery("SELECT \\* FROM events WHERE id").
		WithArgs("evt-1").
		WillReturnRows(overlapRow("evt-1", eventAt("10:00"), eventAt("11:00")))
	mock.ExpectExec("DELETE FROM events").
		WithArgs("evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.Delete(context.Background(), "evt-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventDeleteByNonCreatorForbidden(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)

	mock.ExpectQuery("SELECT \\* FROM events WHERE id").
		WithArgs("evt-1").
		WillReturnRows(overlapRow("evt-1", eventAt("10:00"), eventAt("11:00")))

	err := svc.Delete(context.Background(), "evt-1", "user-2")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEventDeleteNotFound(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)
	mock.ExpectQuery("SELECT \\* FROM events WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(eventCols))

	err := svc.Delete(context.Background(), "missing", "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventFindConflicting(t *testing.T) {
	svc, mock := newEventService(t, PolicyGlobalOverlap)

	mock.ExpectQuery("SELECT \\* FROM events.*start_time <").
		WithArgs(eventAt("10:00"), eventAt("12:00"), "").
		WillReturnRows(overlapRow("evt-9", eventAt("11:00"), eventAt("13:00")))

	conflicts, err := svc.FindConflicting(context.Background(), eventAt("10:00"), eventAt("12:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ID != "evt-9" {
		t.Errorf("conflicts = %v, want single evt-9", conflicts)
	}
}

func TestEventFindConflictingInvalidRange(t *testing.T) {
	svc, _ := newEventService(t, PolicyGlobalOverlap)
	_, err := svc.FindConflicting(context.Background(), eventAt("12:00"), eventAt("10:00"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewEventServiceUnknownPolicyDefaults(t *testing.T) {
	svc, _ := newEventService(t, ConflictPolicy("bogus"))
	if svc.Policy() != PolicyGlobalOverlap {
		t.Errorf("Policy = %s, want %s", svc.Policy(), PolicyGlobalOverlap)
	}
}
