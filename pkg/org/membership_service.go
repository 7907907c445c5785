package org

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

// MembershipService handles organization membership operations.
type MembershipService struct {
	memberships *repository.MembershipsRepository
	users       *repository.UsersRepository
}

// NewMembershipService creates a new membership service.
func NewMembershipService(memberships *repository.MembershipsRepository, users *repository.UsersRepository) *MembershipService {
	return &MembershipService{memberships: memberships, users: users}
}

// Create adds a user to an organization with the given role. The role
// defaults to member when empty.
func (s *MembershipService) Create(ctx context.Context, orgID, userID uuid.UUID, role domain.MemberRole, parentID *uuid.UUID) (*domain.Member, error) {
	if role == "" {
		role = domain.RoleMember
	}
	now := time.Now()
	member := &domain.Member{
		ID:             uuid.New(),
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		ParentMemberID: parentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.memberships.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateRole changes a member's role.
func (s *MembershipService) UpdateRole(ctx context.Context, id uuid.UUID, role domain.MemberRole) error {
	return s.memberships.UpdateRole(ctx, id, role)
}

// UpdateParent changes a member's parent reference.
func (s *MembershipService) UpdateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	return s.memberships.UpdateParent(ctx, id, parentID)
}

// ListByOrganization returns an organization's members, newest first.
func (s *MembershipService) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Member, error) {
	return s.memberships.ListByOrganization(ctx, orgID)
}

// Remove hard deletes a membership.
func (s *MembershipService) Remove(ctx context.Context, id uuid.UUID) error {
	return s.memberships.Delete(ctx, id)
}

// CurrentUserRole returns the caller's role in an organization, or nil
// with no error when the caller has no membership row there.
func (s *MembershipService) CurrentUserRole(ctx context.Context, orgID, userID uuid.UUID) (*domain.MemberRole, error) {
	member, err := s.memberships.GetByOrgAndUser(ctx, orgID, userID)
	if errors.Is(err, domain.ErrMembershipNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member.Role, nil
}

// InviteMember directly adds an existing account to an organization by
// email. This is the direct-add path: the email must resolve to an
// existing user, otherwise the operation fails with ErrUserNotFound and
// nothing is created. Inviting addresses without an account is the
// invitation flow's job.
func (s *MembershipService) InviteMember(ctx context.Context, orgID uuid.UUID, email string, role domain.MemberRole) (*domain.Member, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, orgID, user.ID, role, nil)
}
