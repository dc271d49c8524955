// Package services implements the consistency core of GatherHub: the
// cross-entity invariants that must hold when organizations, memberships,
// events, and attendee invitations are created, updated, or deleted.
//
// Every public operation validates its input synchronously before any write;
// the first failing check short-circuits and no partial write occurs. The one
// composite write — organization creation plus the creator's membership — runs
// in a single database transaction so either both rows are visible afterwards
// or neither is.
package services

import (
	"errors"
	"fmt"
)

// Domain error kinds. Handlers match on these with errors.Is to pick the HTTP
// status: InvalidArgument → 400, NotFound → 404, AlreadyExists and Conflict →
// 409, Forbidden → 403. Forbidden is deliberately distinct from
// InvalidArgument: wrong-actor failures surface as 403, not 400.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrConflict        = errors.New("scheduling conflict")
	ErrForbidden       = errors.New("forbidden")

	// ErrInvalidCredentials is returned by Authenticate for a bad email or
	// password. It intentionally does not reveal which of the two was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func invalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func alreadyExistsf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAlreadyExists, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}
