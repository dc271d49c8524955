package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/gatherhub/gatherhub/internal/db/models"
)

var attendeeCols = []string{"event_id", "user_id", "rsvp_status", "created_at"}

func newAttendeeRepo(t *testing.T) (*AttendeeRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewAttendeeRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestAttendeeGet_Found(t *testing.T) {
	repo, mock := newAttendeeRepo(t)
	mock.ExpectQuery("SELECT \\* FROM attendees WHERE event_id").
		WithArgs("evt-1", "user-1").
		WillReturnRows(sqlmock.NewRows(attendeeCols).
			AddRow("evt-1", "user-1", "PENDING", time.Now()))

	a, err := repo.Get(context.Background(), "evt-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil {
		t.Fatal("expected attendee, got nil")
	}
	if a.RSVP != models.RSVPPending {
		t.Errorf("RSVP = %s, want PENDING", a.RSVP)
	}
}

func TestAttendeeGet_NotFound(t *testing.T) {
	repo, mock := newAttendeeRepo(t)
	mock.ExpectQuery("SELECT \\* FROM attendees WHERE event_id").
		WillReturnRows(sqlmock.NewRows(attendeeCols))

	a, err := repo.Get(context.Background(), "evt-1", "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != nil {
		t.Error("expected nil, got non-nil")
	}
}

func TestAttendeeCreate(t *testing.T) {
	repo, mock := newAttendeeRepo(t)
	mock.ExpectExec("INSERT INTO attendees").
		WithArgs("evt-1", "user-1", models.RSVPPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &models.Attendee{EventID: "evt-1", UserID: "user-1", RSVP: models.RSVPPending}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAttendeeUpdateRSVP(t *testing.T) {
	repo, mock := newAttendeeRepo(t)
	mock.ExpectExec("UPDATE attendees").
		WithArgs("evt-1", "user-1", models.RSVPYes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateRSVP(context.Background(), "evt-1", "user-1", models.RSVPYes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAttendeeDelete(t *testing.T) {
	repo, mock := newAttendeeRepo(t)
	mock.ExpectExec("DELETE FROM attendees").
		WithArgs("evt-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "evt-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAttendeeListByEvent(t *testing.T) {
	repo, mock := newAttendeeRepo(t)
	rows := sqlmock.NewRows([]string{
		"event_id", "user_id", "rsvp_status", "created_at", "user_email", "user_name",
	}).
		AddRow("evt-1", "user-1", "YES", time.Now(), "a@example.com", "Alice").
		AddRow("evt-1", "user-2", "PENDING", time.Now(), "b@example.com", "Bob")
	mock.ExpectQuery("SELECT.*FROM attendees a.*LEFT JOIN users").
		WithArgs("evt-1").
		WillReturnRows(rows)

	attendees, err := repo.ListByEvent(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attendees) != 2 {
		t.Fatalf("len = %d, want 2", len(attendees))
	}
}

func TestAttendeeCountByEventAndStatus(t *testing.T) {
	repo, mock := newAttendeeRepo(t)
	mock.ExpectQuery("SELECT COUNT.*FROM attendees WHERE event_id.*AND rsvp_status").
		WithArgs("evt-1", models.RSVPYes).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountByEventAndStatus(context.Background(), "evt-1", models.RSVPYes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}
