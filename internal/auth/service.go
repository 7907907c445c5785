// Package auth provides the slim session layer: email+password login
// issuing stateless JWT access tokens.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// ErrWeakPassword is returned when a registration password is too short.
var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", minPasswordLen)

// Service handles registration, login, and token validation.
type Service struct {
	db       *sql.DB
	tokens   TokenConfig
	users    *repository.UsersRepository
	profiles *repository.ProfilesRepository
}

// NewService creates a new auth service.
func NewService(db *sql.DB, tokens TokenConfig, users *repository.UsersRepository, profiles *repository.ProfilesRepository) *Service {
	return &Service{db: db, tokens: tokens, users: users, profiles: profiles}
}

// Register creates a user and their profile in one transaction.
func (s *Service) Register(ctx context.Context, email, password string, name *string) (*domain.User, error) {
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	displayName := email
	if name != nil && *name != "" {
		displayName = *name
	}
	profile := &domain.Profile{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      displayName,
		Role:      domain.RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.users.CreateTx(ctx, tx, user); err != nil {
		return nil, err
	}
	if err := s.profiles.CreateTx(ctx, tx, profile); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return user, nil
}

// Login checks credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := NewAccessToken(s.tokens, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ValidateAccessToken validates a raw token and returns its claims.
func (s *Service) ValidateAccessToken(raw string) (*AccessTokenClaims, error) {
	return ParseAccessToken(s.tokens, raw)
}

// AccessTokenTTL returns the configured token lifetime.
func (s *Service) AccessTokenTTL() time.Duration {
	return s.tokens.TTL
}
