package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// OrganizationsRepository handles organization persistence.
type OrganizationsRepository struct {
	db *sql.DB
}

// NewOrganizationsRepository creates a new organizations repository.
func NewOrganizationsRepository(db *sql.DB) *OrganizationsRepository {
	return &OrganizationsRepository{db: db}
}

// Create creates a new organization.
func (r *OrganizationsRepository) Create(ctx context.Context, org *domain.Organization) error {
	return r.CreateTx(ctx, r.db, org)
}

// CreateTx creates a new organization within a transaction.
func (r *OrganizationsRepository) CreateTx(ctx context.Context, q Querier, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (id, name, owner_id, description, logo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		org.ID, org.Name, org.OwnerID, org.Description, org.LogoURL, org.CreatedAt, org.UpdatedAt,
	)
	return err
}

// GetByID retrieves an organization by ID.
func (r *OrganizationsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	query := `
		SELECT id, name, owner_id, description, logo_url, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	org := &domain.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.OwnerID, &org.Description, &org.LogoURL,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return org, nil
}

// ListForUser retrieves organizations the user owns or is a member of,
// de-duplicated, owned ones first.
func (r *OrganizationsRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Organization, error) {
	query := `
		SELECT DISTINCT o.id, o.name, o.owner_id, o.description, o.logo_url, o.created_at, o.updated_at,
		       (o.owner_id = $1) AS owned
		FROM organizations o
		LEFT JOIN organization_members m ON m.organization_id = o.id
		WHERE o.owner_id = $1 OR m.user_id = $1
		ORDER BY owned DESC, o.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*domain.Organization
	for rows.Next() {
		var org domain.Organization
		var owned bool
		err := rows.Scan(
			&org.ID, &org.Name, &org.OwnerID, &org.Description, &org.LogoURL,
			&org.CreatedAt, &org.UpdatedAt, &owned,
		)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, &org)
	}
	return orgs, rows.Err()
}

// UpdateName renames an organization.
func (r *OrganizationsRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := `
		UPDATE organizations
		SET name = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, name, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

// Delete removes an organization. Memberships, invitations, and
// organization policies go with it via FK cascade.
func (r *OrganizationsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOrganizationNotFound
	}
	return nil
}
