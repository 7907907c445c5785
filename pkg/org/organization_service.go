// Package org implements the organization-scoped services: organizations,
// memberships, invitations, and policies.
package org

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

// OrganizationService handles organization lifecycle.
type OrganizationService struct {
	db            *sql.DB
	organizations *repository.OrganizationsRepository
	memberships   *repository.MembershipsRepository
}

// NewOrganizationService creates a new organization service.
func NewOrganizationService(db *sql.DB, organizations *repository.OrganizationsRepository, memberships *repository.MembershipsRepository) *OrganizationService {
	return &OrganizationService{db: db, organizations: organizations, memberships: memberships}
}

// Create creates an organization owned by ownerID and, in the same
// transaction, an admin membership for the owner.
func (s *OrganizationService) Create(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Organization, error) {
	now := time.Now()
	org := &domain.Organization{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	member := &domain.Member{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		UserID:         ownerID,
		Role:           domain.RoleAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.organizations.CreateTx(ctx, tx, org); err != nil {
		return nil, err
	}
	if err := s.memberships.CreateTx(ctx, tx, member); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return org, nil
}

// GetByID retrieves an organization.
func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	return s.organizations.GetByID(ctx, id)
}

// ListForUser retrieves the organizations a user owns or belongs to.
func (s *OrganizationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Organization, error) {
	return s.organizations.ListForUser(ctx, userID)
}

// Rename renames an organization.
func (s *OrganizationService) Rename(ctx context.Context, id uuid.UUID, name string) error {
	return s.organizations.UpdateName(ctx, id, name)
}

// Delete removes an organization. Only the owner may delete; memberships,
// invitations, and policies cascade at the database.
func (s *OrganizationService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	org, err := s.organizations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if org.OwnerID != callerID {
		return domain.ErrNotOrganizationOwner
	}
	return s.organizations.Delete(ctx, id)
}
