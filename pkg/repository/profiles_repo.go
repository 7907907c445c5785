package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// ProfilesRepository handles profile persistence.
type ProfilesRepository struct {
	db *sql.DB
}

// NewProfilesRepository creates a new profiles repository.
func NewProfilesRepository(db *sql.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

// Create creates a new profile.
func (r *ProfilesRepository) Create(ctx context.Context, profile *domain.Profile) error {
	return r.CreateTx(ctx, r.db, profile)
}

// CreateTx creates a new profile within a transaction.
func (r *ProfilesRepository) CreateTx(ctx context.Context, q Querier, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, name, role, plan, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		profile.ID, profile.UserID, profile.Name, profile.Role, profile.Plan,
		profile.CreatedAt, profile.UpdatedAt,
	)
	return err
}

// GetByUserID retrieves the profile for a user.
func (r *ProfilesRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, user_id, name, role, plan, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	profile := &domain.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.UserID, &profile.Name, &profile.Role, &profile.Plan,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Update updates a profile.
func (r *ProfilesRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET name = $2, role = $3, plan = $4, updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		profile.UserID, profile.Name, profile.Role, profile.Plan,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
