// membership_service.go owns the membership lifecycle: the
// (organization, user) pair is the identity, at most one membership exists per
// pair, and status moves freely between ACTIVE, INVITED, and SUSPENDED at this
// layer (the HTTP layer additionally restricts update targets to ACTIVE and
// SUSPENDED).
package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/db/repositories"
	"github.com/gatherhub/gatherhub/internal/validation"
)

// MembershipService enforces membership invariants over the repository layer.
type MembershipService struct {
	db          *sql.DB
	memberships *repositories.MembershipRepository
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(db *sql.DB, memberships *repositories.MembershipRepository) *MembershipService {
	return &MembershipService{db: db, memberships: memberships}
}

// Create creates a membership for the (orgID, userID) pair. Status defaults
// to ACTIVE when empty; any of the three statuses may be supplied at creation
// time, including INVITED and SUSPENDED. The existence check and the insert
// share a transaction, with the composite primary key as the backstop against
// a concurrent duplicate create.
func (s *MembershipService) Create(ctx context.Context, orgID, userID string, status models.MembershipStatus) (*models.Membership, error) {
	if !validation.NonBlank(orgID) {
		return nil, invalidArgumentf("organization id must not be blank")
	}
	if !validation.NonBlank(userID) {
		return nil, invalidArgumentf("user id must not be blank")
	}
	if status == "" {
		status = models.MembershipActive
	}
	if !status.Valid() {
		return nil, invalidArgumentf("unknown membership status %q", status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	repo := s.memberships.WithTx(tx)

	exists, err := repo.Exists(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, alreadyExistsf("membership already exists for organization %s and user %s", orgID, userID)
	}

	m := &models.Membership{OrganizationID: orgID, UserID: userID, Status: status}
	if err := repo.Create(ctx, m); err != nil {
		if repositories.IsUniqueViolation(err) {
			// A concurrent create won the race between our check and insert.
			return nil, alreadyExistsf("membership already exists for organization %s and user %s", orgID, userID)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit membership: %w", err)
	}

	slog.Info("membership created", "organization_id", orgID, "user_id", userID, "status", status)
	return m, nil
}

// UpdateStatus overwrites the membership's status. No transition graph is
// enforced here; any status may follow any other.
func (s *MembershipService) UpdateStatus(ctx context.Context, orgID, userID string, status models.MembershipStatus) (*models.Membership, error) {
	if !validation.NonBlank(orgID) {
		return nil, invalidArgumentf("organization id must not be blank")
	}
	if !validation.NonBlank(userID) {
		return nil, invalidArgumentf("user id must not be blank")
	}
	if !status.Valid() {
		return nil, invalidArgumentf("unknown membership status %q", status)
	}

	m, err := s.memberships.Get(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, notFoundf("no membership for organization %s and user %s", orgID, userID)
	}

	if err := s.memberships.UpdateStatus(ctx, orgID, userID, status); err != nil {
		return nil, err
	}

	m.Status = status
	slog.Info("membership status updated", "organization_id", orgID, "user_id", userID, "status", status)
	return m, nil
}

// Delete removes the membership for the pair.
func (s *MembershipService) Delete(ctx context.Context, orgID, userID string) error {
	if !validation.NonBlank(orgID) || !validation.NonBlank(userID) {
		return invalidArgumentf("organization id and user id must not be blank")
	}

	exists, err := s.memberships.Exists(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundf("no membership for organization %s and user %s", orgID, userID)
	}

	if err := s.memberships.Delete(ctx, orgID, userID); err != nil {
		return err
	}

	slog.Info("membership deleted", "organization_id", orgID, "user_id", userID)
	return nil
}

// Get retrieves the membership for the pair. Read operations never create
// records as a side effect.
func (s *MembershipService) Get(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	if !validation.NonBlank(orgID) || !validation.NonBlank(userID) {
		return nil, invalidArgumentf("organization id and user id must not be blank")
	}
	m, err := s.memberships.Get(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, notFoundf("no membership for organization %s and user %s", orgID, userID)
	}
	return m, nil
}

// ListByOrg lists the memberships of an organization with user details.
func (s *MembershipService) ListByOrg(ctx context.Context, orgID string) ([]*models.MembershipWithUser, error) {
	if !validation.NonBlank(orgID) {
		return nil, invalidArgumentf("organization id must not be blank")
	}
	return s.memberships.ListByOrg(ctx, orgID)
}

// ListByUser lists the memberships held by a user.
func (s *MembershipService) ListByUser(ctx context.Context, userID string) ([]*models.Membership, error) {
	if !validation.NonBlank(userID) {
		return nil, invalidArgumentf("user id must not be blank")
	}
	return s.memberships.ListByUser(ctx, userID)
}

// ListByStatus lists the memberships of an organization with the given status.
func (s *MembershipService) ListByStatus(ctx context.Context, orgID string, status models.MembershipStatus) ([]*models.Membership, error) {
	if !validation.NonBlank(orgID) {
		return nil, invalidArgumentf("organization id must not be blank")
	}
	if !status.Valid() {
		return nil, invalidArgumentf("unknown membership status %q", status)
	}
	return s.memberships.ListByStatus(ctx, orgID, status)
}

// Exists reports whether a membership exists for the pair.
func (s *MembershipService) Exists(ctx context.Context, orgID, userID string) (bool, error) {
	if !validation.NonBlank(orgID) || !validation.NonBlank(userID) {
		return false, invalidArgumentf("organization id and user id must not be blank")
	}
	return s.memberships.Exists(ctx, orgID, userID)
}

// CountActiveInOrg returns the number of ACTIVE memberships in an organization.
func (s *MembershipService) CountActiveInOrg(ctx context.Context, orgID string) (int, error) {
	if !validation.NonBlank(orgID) {
		return 0, invalidArgumentf("organization id must not be blank")
	}
	return s.memberships.CountByOrgAndStatus(ctx, orgID, models.MembershipActive)
}

// CountForUser returns the number of memberships a user holds.
func (s *MembershipService) CountForUser(ctx context.Context, userID string) (int, error) {
	if !validation.NonBlank(userID) {
		return 0, invalidArgumentf("user id must not be blank")
	}
	return s.memberships.CountForUser(ctx, userID)
}
