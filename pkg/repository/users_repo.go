package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// UsersRepository handles user persistence.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create creates a new user.
func (r *UsersRepository) Create(ctx context.Context, user *domain.User) error {
	return r.CreateTx(ctx, r.db, user)
}

// CreateTx creates a new user within a transaction.
func (r *UsersRepository) CreateTx(ctx context.Context, q Querier, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, stripe_customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.StripeCustomerID, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// GetByID retrieves a user by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, stripe_customer_id, created_at, updated_at, deleted_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, stripe_customer_id, created_at, updated_at, deleted_at
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetByStripeCustomerID retrieves a user by their billing customer id.
func (r *UsersRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, stripe_customer_id, created_at, updated_at, deleted_at
		FROM users
		WHERE stripe_customer_id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, customerID))
}

// SetStripeCustomerID records the billing customer id for a user.
func (r *UsersRepository) SetStripeCustomerID(ctx context.Context, userID uuid.UUID, customerID string) error {
	query := `
		UPDATE users
		SET stripe_customer_id = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, customerID, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Update updates a user's mutable fields.
func (r *UsersRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, time.Now())
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UsersRepository) scanOne(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.StripeCustomerID,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
