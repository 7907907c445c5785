package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// InvitationsRepository handles organization invitation persistence.
type InvitationsRepository struct {
	db *sql.DB
}

// NewInvitationsRepository creates a new invitations repository.
func NewInvitationsRepository(db *sql.DB) *InvitationsRepository {
	return &InvitationsRepository{db: db}
}

// Create creates a new invitation.
func (r *InvitationsRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO organization_invitations (id, organization_id, invited_email, role, token, status, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.OrganizationID, inv.InvitedEmail, inv.Role,
		inv.Token, inv.Status, inv.InvitedBy, inv.CreatedAt,
	)
	return err
}

// GetByID retrieves an invitation by ID.
func (r *InvitationsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	query := `
		SELECT id, organization_id, invited_email, role, token, status, invited_by, created_at
		FROM organization_invitations
		WHERE id = $1
	`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id))
}

// GetByToken retrieves an invitation by its opaque token.
func (r *InvitationsRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `
		SELECT id, organization_id, invited_email, role, token, status, invited_by, created_at
		FROM organization_invitations
		WHERE token = $1
	`
	return scanInvitation(r.db.QueryRowContext(ctx, query, token))
}

// GetByTokenForUpdateTx retrieves an invitation by token with a row lock,
// for use inside the accept transaction.
func (r *InvitationsRepository) GetByTokenForUpdateTx(ctx context.Context, q Querier, token string) (*domain.Invitation, error) {
	query := `
		SELECT id, organization_id, invited_email, role, token, status, invited_by, created_at
		FROM organization_invitations
		WHERE token = $1
		FOR UPDATE
	`
	return scanInvitation(q.QueryRowContext(ctx, query, token))
}

// ListPendingForEmail retrieves pending invitations addressed to an email.
func (r *InvitationsRepository) ListPendingForEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	query := `
		SELECT id, organization_id, invited_email, role, token, status, invited_by, created_at
		FROM organization_invitations
		WHERE invited_email = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, email)
}

// ListByOrganization retrieves all invitations for an organization, newest first.
func (r *InvitationsRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Invitation, error) {
	query := `
		SELECT id, organization_id, invited_email, role, token, status, invited_by, created_at
		FROM organization_invitations
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, orgID)
}

// UpdateStatus sets the invitation status.
func (r *InvitationsRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.InvitationStatus) error {
	return r.UpdateStatusTx(ctx, r.db, id, status)
}

// UpdateStatusTx sets the invitation status within a transaction.
func (r *InvitationsRepository) UpdateStatusTx(ctx context.Context, q Querier, id uuid.UUID, status domain.InvitationStatus) error {
	query := `
		UPDATE organization_invitations
		SET status = $1
		WHERE id = $2
	`
	result, err := q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

// Delete hard deletes an invitation (cancel).
func (r *InvitationsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM organization_invitations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

func (r *InvitationsRepository) list(ctx context.Context, query string, arg any) ([]*domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		err := rows.Scan(
			&inv.ID, &inv.OrganizationID, &inv.InvitedEmail, &inv.Role,
			&inv.Token, &inv.Status, &inv.InvitedBy, &inv.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, &inv)
	}
	return invitations, rows.Err()
}

func scanInvitation(row *sql.Row) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := row.Scan(
		&inv.ID, &inv.OrganizationID, &inv.InvitedEmail, &inv.Role,
		&inv.Token, &inv.Status, &inv.InvitedBy, &inv.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}
