// membership_repository.go implements MembershipRepository. Memberships are
// keyed by the (organization_id, user_id) composite primary key; every lookup
// is by the full pair, never by a generated ID.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gatherhub/gatherhub/internal/db/models"
)

// MembershipRepository handles database operations for memberships
type MembershipRepository struct {
	db DBTX
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db DBTX) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// WithTx returns a copy of the repository that runs its queries inside tx.
func (r *MembershipRepository) WithTx(tx *sql.Tx) *MembershipRepository {
	return &MembershipRepository{db: tx}
}

// Create inserts a new membership. The composite primary key enforces pair
// uniqueness at the database level; callers check IsUniqueViolation on the
// returned error to detect a concurrent duplicate create.
func (r *MembershipRepository) Create(ctx context.Context, m *models.Membership) error {
	m.CreatedAt = time.Now()

	query := `
		INSERT INTO memberships (organization_id, user_id, status, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.OrganizationID,
		m.UserID,
		m.Status,
		m.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}

// Get retrieves a membership by its composite key
func (r *MembershipRepository) Get(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	query := `
		SELECT organization_id, user_id, status, created_at
		FROM memberships
		WHERE organization_id = $1 AND user_id = $2
	`

	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, orgID, userID).Scan(
		&m.OrganizationID,
		&m.UserID,
		&m.Status,
		&m.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// Exists reports whether a membership exists for the composite key
func (r *MembershipRepository) Exists(ctx context.Context, orgID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM memberships WHERE organization_id = $1 AND user_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, orgID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership existence: %w", err)
	}
	return exists, nil
}

// UpdateStatus overwrites the membership's status
func (r *MembershipRepository) UpdateStatus(ctx context.Context, orgID, userID string, status models.MembershipStatus) error {
	query := `
		UPDATE memberships
		SET status = $3
		WHERE organization_id = $1 AND user_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, orgID, userID, status)
	if err != nil {
		return fmt.Errorf("failed to update membership status: %w", err)
	}

	return nil
}

// Delete removes a membership by its composite key
func (r *MembershipRepository) Delete(ctx context.Context, orgID, userID string) error {
	query := `DELETE FROM memberships WHERE organization_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, orgID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}

	return nil
}

// ListByOrg retrieves all memberships of an organization with user details
func (r *MembershipRepository) ListByOrg(ctx context.Context, orgID string) ([]*models.MembershipWithUser, error) {
	query := `
		SELECT m.organization_id, m.user_id, m.status, m.created_at,
		       COALESCE(u.email, '') AS user_email, COALESCE(u.display_name, '') AS user_name
		FROM memberships m
		LEFT JOIN users u ON m.user_id = u.id
		WHERE m.organization_id = $1
		ORDER BY m.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	members := make([]*models.MembershipWithUser, 0)
	for rows.Next() {
		m := &models.MembershipWithUser{}
		err := rows.Scan(
			&m.OrganizationID,
			&m.UserID,
			&m.Status,
			&m.CreatedAt,
			&m.UserEmail,
			&m.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// ListByUser retrieves all memberships held by a user
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]*models.Membership, error) {
	query := `
		SELECT organization_id, user_id, status, created_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	return r.queryMemberships(ctx, query, userID)
}

// ListByStatus retrieves all memberships in an organization with the given status
func (r *MembershipRepository) ListByStatus(ctx context.Context, orgID string, status models.MembershipStatus) ([]*models.Membership, error) {
	query := `
		SELECT organization_id, user_id, status, created_at
		FROM memberships
		WHERE organization_id = $1 AND status = $2
		ORDER BY created_at DESC
	`

	return r.queryMemberships(ctx, query, orgID, status)
}

func (r *MembershipRepository) queryMemberships(ctx context.Context, query string, args ...any) ([]*models.Membership, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]*models.Membership, 0)
	for rows.Next() {
		m := &models.Membership{}
		err := rows.Scan(
			&m.OrganizationID,
			&m.UserID,
			&m.Status,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}

// CountByOrgAndStatus returns the number of memberships in an organization
// with the given status
func (r *MembershipRepository) CountByOrgAndStatus(ctx context.Context, orgID string, status models.MembershipStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM memberships WHERE organization_id = $1 AND status = $2`
	if err := r.db.QueryRowContext(ctx, query, orgID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}

// CountForUser returns the number of memberships a user holds
func (r *MembershipRepository) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM memberships WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count user memberships: %w", err)
	}
	return count, nil
}

// CountByStatus returns membership counts grouped by status, used by the
// stats collector to refresh entity gauges.
func (r *MembershipRepository) CountByStatus(ctx context.Context) (map[models.MembershipStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM memberships GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count memberships by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.MembershipStatus]int)
	for rows.Next() {
		var status models.MembershipStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan membership count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
