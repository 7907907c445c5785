package org

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

const invitationTokenLen = 32

// InvitationService handles the invite-by-email flow.
type InvitationService struct {
	db          *sql.DB
	invitations *repository.InvitationsRepository
	memberships *repository.MembershipsRepository
}

// NewInvitationService creates a new invitation service.
func NewInvitationService(db *sql.DB, invitations *repository.InvitationsRepository, memberships *repository.MembershipsRepository) *InvitationService {
	return &InvitationService{db: db, invitations: invitations, memberships: memberships}
}

// Create issues a pending invitation to an email address. The address
// does not need to belong to an existing account.
func (s *InvitationService) Create(ctx context.Context, orgID uuid.UUID, email string, role domain.MemberRole, inviterID uuid.UUID) (*domain.Invitation, error) {
	if role == "" {
		role = domain.RoleMember
	}
	token, err := newInvitationToken()
	if err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		ID:             uuid.New(),
		OrganizationID: orgID,
		InvitedEmail:   email,
		Role:           role,
		Token:          token,
		Status:         domain.InvitationPending,
		InvitedBy:      inviterID,
		CreatedAt:      time.Now(),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// PendingForEmail returns the pending invitations addressed to an email.
func (s *InvitationService) PendingForEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	return s.invitations.ListPendingForEmail(ctx, email)
}

// ListByOrganization returns an organization's invitations, newest first.
func (s *InvitationService) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Invitation, error) {
	return s.invitations.ListByOrganization(ctx, orgID)
}

// Accept marks the invitation accepted and creates the membership with
// the invitation's stored role, in one transaction. If the membership
// insert fails the status update rolls back and the invitation stays
// pending.
func (s *InvitationService) Accept(ctx context.Context, token string, userID uuid.UUID) (*domain.Member, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inv, err := s.invitations.GetByTokenForUpdateTx(ctx, tx, token)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvitationPending {
		return nil, domain.ErrInvitationNotPending
	}

	if err := s.invitations.UpdateStatusTx(ctx, tx, inv.ID, domain.InvitationAccepted); err != nil {
		return nil, err
	}

	now := time.Now()
	member := &domain.Member{
		ID:             uuid.New(),
		OrganizationID: inv.OrganizationID,
		UserID:         userID,
		Role:           inv.Role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.memberships.CreateTx(ctx, tx, member); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return member, nil
}

// Reject marks the invitation rejected. The row is kept and membership
// is untouched.
func (s *InvitationService) Reject(ctx context.Context, token string) error {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if inv.Status != domain.InvitationPending {
		return domain.ErrInvitationNotPending
	}
	return s.invitations.UpdateStatus(ctx, inv.ID, domain.InvitationRejected)
}

// Cancel hard deletes an invitation.
func (s *InvitationService) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.invitations.Delete(ctx, id)
}

// newInvitationToken returns a random opaque token.
func newInvitationToken() (string, error) {
	b := make([]byte, invitationTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invitation token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
