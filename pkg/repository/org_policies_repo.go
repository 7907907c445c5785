package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// OrgPoliciesRepository handles organization policy persistence.
type OrgPoliciesRepository struct {
	db *sql.DB
}

// NewOrgPoliciesRepository creates a new organization policies repository.
func NewOrgPoliciesRepository(db *sql.DB) *OrgPoliciesRepository {
	return &OrgPoliciesRepository{db: db}
}

// Create creates an organization policy.
func (r *OrgPoliciesRepository) Create(ctx context.Context, policy *domain.OrganizationPolicy) error {
	query := `
		INSERT INTO organization_policies (id, organization_id, policy_id, title, type, status, content, assigned_at, created_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		policy.ID, policy.OrganizationID, policy.PolicyID, policy.Title, policy.Type,
		policy.Status, policy.Content, policy.AssignedAt, policy.CreatedBy, policy.UpdatedAt,
	)
	return err
}

// GetByID retrieves an organization policy by ID.
func (r *OrgPoliciesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrganizationPolicy, error) {
	query := `
		SELECT id, organization_id, policy_id, title, type, status, content, assigned_at, created_by, updated_at
		FROM organization_policies
		WHERE id = $1
	`
	policy := &domain.OrganizationPolicy{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&policy.ID, &policy.OrganizationID, &policy.PolicyID, &policy.Title, &policy.Type,
		&policy.Status, &policy.Content, &policy.AssignedAt, &policy.CreatedBy, &policy.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return policy, nil
}

// ListByOrganization retrieves an organization's policies ordered by
// assignment time, newest first.
func (r *OrgPoliciesRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.OrganizationPolicy, error) {
	query := `
		SELECT id, organization_id, policy_id, title, type, status, content, assigned_at, created_by, updated_at
		FROM organization_policies
		WHERE organization_id = $1
		ORDER BY assigned_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*domain.OrganizationPolicy
	for rows.Next() {
		var policy domain.OrganizationPolicy
		err := rows.Scan(
			&policy.ID, &policy.OrganizationID, &policy.PolicyID, &policy.Title, &policy.Type,
			&policy.Status, &policy.Content, &policy.AssignedAt, &policy.CreatedBy, &policy.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		policies = append(policies, &policy)
	}
	return policies, rows.Err()
}

// UpdateTitle renames a policy and bumps updated_at.
func (r *OrgPoliciesRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	return r.exec(ctx, `UPDATE organization_policies SET title = $1, updated_at = NOW() WHERE id = $2`, title, id)
}

// UpdateType changes a policy's type and bumps updated_at.
func (r *OrgPoliciesRepository) UpdateType(ctx context.Context, id uuid.UUID, policyType domain.PolicyType) error {
	return r.exec(ctx, `UPDATE organization_policies SET type = $1, updated_at = NOW() WHERE id = $2`, policyType, id)
}

// UpdateContent replaces a policy's document content and bumps updated_at.
func (r *OrgPoliciesRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	return r.exec(ctx, `UPDATE organization_policies SET content = $1, updated_at = NOW() WHERE id = $2`, content, id)
}

// UpdateStatus overwrites a policy's status. No transition validation:
// callers can move a published policy back to draft.
func (r *OrgPoliciesRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PolicyStatus) error {
	return r.exec(ctx, `UPDATE organization_policies SET status = $1 WHERE id = $2`, status, id)
}

// Delete hard deletes an organization policy.
func (r *OrgPoliciesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM organization_policies WHERE id = $1`, id)
}

func (r *OrgPoliciesRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrPolicyNotFound
	}
	return nil
}
