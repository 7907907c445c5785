package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// PoliciesRepository handles user-level template policy persistence.
type PoliciesRepository struct {
	db *sql.DB
}

// NewPoliciesRepository creates a new policies repository.
func NewPoliciesRepository(db *sql.DB) *PoliciesRepository {
	return &PoliciesRepository{db: db}
}

// Create creates a template policy.
func (r *PoliciesRepository) Create(ctx context.Context, policy *domain.Policy) error {
	query := `
		INSERT INTO policies (id, user_id, title, description, content, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		policy.ID, policy.UserID, policy.Title, policy.Description,
		policy.Content, policy.Status, policy.CreatedAt, policy.UpdatedAt,
	)
	return err
}

// GetByID retrieves a template policy by ID.
func (r *PoliciesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Policy, error) {
	query := `
		SELECT id, user_id, title, description, content, status, created_at, updated_at
		FROM policies
		WHERE id = $1
	`
	policy := &domain.Policy{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&policy.ID, &policy.UserID, &policy.Title, &policy.Description,
		&policy.Content, &policy.Status, &policy.CreatedAt, &policy.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPolicyNotFound
	}
	if err != nil {
		return nil, err
	}
	return policy, nil
}

// ListByUser retrieves a user's template policies, newest first.
func (r *PoliciesRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Policy, error) {
	query := `
		SELECT id, user_id, title, description, content, status, created_at, updated_at
		FROM policies
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*domain.Policy
	for rows.Next() {
		var policy domain.Policy
		err := rows.Scan(
			&policy.ID, &policy.UserID, &policy.Title, &policy.Description,
			&policy.Content, &policy.Status, &policy.CreatedAt, &policy.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		policies = append(policies, &policy)
	}
	return policies, rows.Err()
}

// Delete hard deletes a template policy. Organization policies assigned
// from it keep their copy; the FK is set null by the schema.
func (r *PoliciesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM policies WHERE id = $1`, id)
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
