// organization_service.go owns the organization lifecycle. Creating an
// organization atomically provisions an ACTIVE membership for the creator: the
// two inserts share one database transaction, so a failed membership write
// rolls the organization back rather than leaving it visible.
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

// OrganizationService enforces organization invariants over the repository layer.
type OrganizationService struct {
	db          *sql.DB
	orgs        *repositories.OrganizationRepository
	memberships *repositories.MembershipRepository
	users       *repositories.UserRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(db *sql.DB, orgs *repositories.OrganizationRepository, memberships *repositories.MembershipRepository, users *repositories.UserRepository) *OrganizationService {
	return &OrganizationService{db: db, orgs: orgs, memberships: memberships, users: users}
}

// Create creates an organization and the creator's ACTIVE membership in a
// single transaction. Name uniqueness is a case-sensitive exact match;
// createdBy must reference an existing user.
func (s *OrganizationService) Create(ctx context.Context, name, createdBy string) (*models.Organization, error) {
	if !validation.NonBlank(name) {
		return nil, invalidArgumentf("organization name must not be blank")
	}
	if !validation.NonBlank(createdBy) {
		return nil, invalidArgumentf("created_by must not be blank")
	}

	creatorExists, err := s.users.ExistsByID(ctx, createdBy)
	if err != nil {
		return nil, err
	}
	if !creatorExists {
		return nil, invalidArgumentf("user %s does not exist", createdBy)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	orgRepo := s.orgs.WithTx(tx)
	memberRepo := s.memberships.WithTx(tx)

	existing, err := orgRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, alreadyExistsf("organization name %q is already taken", name)
	}

	org := &models.Organization{Name: name, CreatedBy: createdBy}
	if err := orgRepo.Create(ctx, org); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, alreadyExistsf("organization name %q is already taken", name)
		}
		return nil, err
	}

	// Bootstrap membership inside the same transaction. If this insert fails
	// the deferred rollback makes the organization write invisible too.
	m := &models.Membership{
		OrganizationID: org.ID,
		UserID:         createdBy,
		Status:         models.MembershipActive,
	}
	if err := memberRepo.Create(ctx, m); err != nil {
		slog.Warn("organization creation rolled back: membership bootstrap failed",
			"organization_name", name, "created_by", createdBy, "error", err)
		return nil, fmt.Errorf("failed to create creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit organization: %w", err)
	}

	slog.Info("organization created", "organization_id", org.ID, "name", name, "created_by", createdBy)
	return org, nil
}

// Update replaces the organization's name and creator in place. The new name
// must not be owned by a different organization.
func (s *OrganizationService) Update(ctx context.Context, id, name, createdBy string) (*models.Organization, error) {
	if !validation.NonBlank(id) {
		return nil, invalidArgumentf("organization id must not be blank")
	}
	if !validation.NonBlank(name) {
		return nil, invalidArgumentf("organization name must not be blank")
	}
	if !validation.NonBlank(createdBy) {
		return nil, invalidArgumentf("created_by must not be blank")
	}

	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, notFoundf("organization %s does not exist", id)
	}

	holder, err := s.orgs.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.ID != id {
		return nil, alreadyExistsf("organization name %q is already taken", name)
	}

	org.Name = name
	org.CreatedBy = createdBy
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, err
	}

	slog.Info("organization updated", "organization_id", id, "name", name)
	return org, nil
}

// Delete removes the organization by ID. Memberships and events are not
// cascaded.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	if !validation.NonBlank(id) {
		return invalidArgumentf("organization id must not be blank")
	}

	exists, err := s.orgs.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return notFoundf("organization %s does not exist", id)
	}

	if err := s.orgs.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("organization deleted", "organization_id", id)
	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationService) Get(ctx context.Context, id string) (*models.Organization, error) {
	if !validation.NonBlank(id) {
		return nil, invalidArgumentf("organization id must not be blank")
	}
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, notFoundf("organization %s does not exist", id)
	}
	return org, nil
}

// List retrieves a page of organizations.
func (s *OrganizationService) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	return s.orgs.List(ctx, limit, offset)
}

// Count returns the total number of organizations.
func (s *OrganizationService) Count(ctx context.Context) (int, error) {
	return s.orgs.Count(ctx)
}
