package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// MembershipsRepository handles organization membership persistence.
type MembershipsRepository struct {
	db *sql.DB
}

// NewMembershipsRepository creates a new memberships repository.
func NewMembershipsRepository(db *sql.DB) *MembershipsRepository {
	return &MembershipsRepository{db: db}
}

// Create creates a new membership.
func (r *MembershipsRepository) Create(ctx context.Context, member *domain.Member) error {
	return r.CreateTx(ctx, r.db, member)
}

// CreateTx creates a new membership within a transaction.
func (r *MembershipsRepository) CreateTx(ctx context.Context, q Querier, member *domain.Member) error {
	query := `
		INSERT INTO organization_members (id, organization_id, user_id, role, parent_member_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		member.ID, member.OrganizationID, member.UserID, member.Role,
		member.ParentMemberID, member.CreatedAt, member.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrMemberAlreadyExists
	}
	return err
}

// GetByID retrieves a membership by ID.
func (r *MembershipsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, organization_id, user_id, role, parent_member_id, created_at, updated_at
		FROM organization_members
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByOrgAndUser retrieves the membership for a user in an organization.
func (r *MembershipsRepository) GetByOrgAndUser(ctx context.Context, orgID, userID uuid.UUID) (*domain.Member, error) {
	query := `
		SELECT id, organization_id, user_id, role, parent_member_id, created_at, updated_at
		FROM organization_members
		WHERE organization_id = $1 AND user_id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, orgID, userID))
}

// ListByOrganization retrieves all members of an organization, newest first.
func (r *MembershipsRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Member, error) {
	query := `
		SELECT id, organization_id, user_id, role, parent_member_id, created_at, updated_at
		FROM organization_members
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		var member domain.Member
		err := rows.Scan(
			&member.ID, &member.OrganizationID, &member.UserID, &member.Role,
			&member.ParentMemberID, &member.CreatedAt, &member.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		members = append(members, &member)
	}
	return members, rows.Err()
}

// UpdateRole changes a member's role.
func (r *MembershipsRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.MemberRole) error {
	query := `
		UPDATE organization_members
		SET role = $1, updated_at = NOW()
		WHERE id = $2
	`
	return r.exec(ctx, query, role, id)
}

// UpdateParent changes a member's parent reference.
func (r *MembershipsRepository) UpdateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	query := `
		UPDATE organization_members
		SET parent_member_id = $1, updated_at = NOW()
		WHERE id = $2
	`
	return r.exec(ctx, query, parentID, id)
}

// Delete hard deletes a membership.
func (r *MembershipsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM organization_members WHERE id = $1`, id)
}

func (r *MembershipsRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}
	return nil
}

func (r *MembershipsRepository) scanOne(row *sql.Row) (*domain.Member, error) {
	member := &domain.Member{}
	err := row.Scan(
		&member.ID, &member.OrganizationID, &member.UserID, &member.Role,
		&member.ParentMemberID, &member.CreatedAt, &member.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}
