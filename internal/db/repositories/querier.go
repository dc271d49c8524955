// Package repositories implements the data access layer (repository pattern)
// for GatherHub. Each repository type encapsulates all database queries for a
// domain entity. Services never issue SQL directly — all database access goes
// through this layer, which keeps query logic testable in isolation.
//
// Repositories are constructed over the DBTX interface so the same query
// methods run against a *sql.DB or inside a *sql.Tx. The WithTx method on a
// repository returns a transaction-scoped copy; services use it for composite
// writes (organization creation + creator membership) that must commit or
// roll back as a unit.
package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// DBTX is the subset of database operations shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). The unique indexes on organizations.name and
// the composite primary keys on memberships and attendees are the final
// backstop against concurrent creates that both pass the optimistic
// existence check; callers translate this into an already-exists domain
// error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
