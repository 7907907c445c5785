package org

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/db/migrate"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

// testDB opens the database named by TEST_DATABASE_URL with migrations
// applied. Tests calling it are skipped when the variable is unset.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("set TEST_DATABASE_URL to run database tests")
	}
	if err := migrate.Run(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	conn, err := repository.NewDBFromURL(dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func seedUser(t *testing.T, conn *sql.DB) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "not-a-real-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repository.NewUsersRepository(conn).Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedOrganization(t *testing.T, conn *sql.DB, ownerID uuid.UUID) *domain.Organization {
	t.Helper()
	now := time.Now().UTC()
	org := &domain.Organization{
		ID:        uuid.New(),
		Name:      "Acme " + uuid.NewString()[:8],
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repository.NewOrganizationsRepository(conn).Create(context.Background(), org); err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return org
}

func TestAccept_CreatesMembershipAndMarksAccepted(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()
	invitations := repository.NewInvitationsRepository(conn)
	memberships := repository.NewMembershipsRepository(conn)
	svc := NewInvitationService(conn, invitations, memberships)

	inviter := seedUser(t, conn)
	invitee := seedUser(t, conn)
	org := seedOrganization(t, conn, inviter.ID)

	inv, err := svc.Create(ctx, org.ID, invitee.Email, domain.RoleAdmin, inviter.ID)
	if err != nil {
		t.Fatalf("Create invitation failed: %v", err)
	}

	member, err := svc.Accept(ctx, inv.Token, invitee.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if member.Role != domain.RoleAdmin {
		t.Errorf("member role = %q, want %q from the invitation", member.Role, domain.RoleAdmin)
	}

	stored, err := invitations.GetByToken(ctx, inv.Token)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if stored.Status != domain.InvitationAccepted {
		t.Errorf("invitation status = %q, want %q", stored.Status, domain.InvitationAccepted)
	}

	got, err := memberships.GetByOrgAndUser(ctx, org.ID, invitee.ID)
	if err != nil {
		t.Fatalf("GetByOrgAndUser failed: %v", err)
	}
	if got.Role != domain.RoleAdmin {
		t.Errorf("stored member role = %q, want %q", got.Role, domain.RoleAdmin)
	}

	// The token is single-use.
	if _, err := svc.Accept(ctx, inv.Token, invitee.ID); !errors.Is(err, domain.ErrInvitationNotPending) {
		t.Errorf("second Accept error = %v, want %v", err, domain.ErrInvitationNotPending)
	}
}

func TestAccept_RollsBackWhenMembershipInsertFails(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()
	invitations := repository.NewInvitationsRepository(conn)
	memberships := repository.NewMembershipsRepository(conn)
	svc := NewInvitationService(conn, invitations, memberships)

	inviter := seedUser(t, conn)
	invitee := seedUser(t, conn)
	org := seedOrganization(t, conn, inviter.ID)

	// The invitee already belongs to the organization, so the membership
	// insert inside Accept hits the unique constraint.
	now := time.Now().UTC()
	existing := &domain.Member{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		UserID:         invitee.ID,
		Role:           domain.RoleMember,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := memberships.Create(ctx, existing); err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	inv, err := svc.Create(ctx, org.ID, invitee.Email, domain.RoleMember, inviter.ID)
	if err != nil {
		t.Fatalf("Create invitation failed: %v", err)
	}

	if _, err := svc.Accept(ctx, inv.Token, invitee.ID); !errors.Is(err, domain.ErrMemberAlreadyExists) {
		t.Fatalf("Accept error = %v, want %v", err, domain.ErrMemberAlreadyExists)
	}

	// The status update rolled back with the failed insert, so the
	// invitation is still pending.
	stored, err := invitations.GetByToken(ctx, inv.Token)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if stored.Status != domain.InvitationPending {
		t.Errorf("invitation status = %q, want %q after rollback", stored.Status, domain.InvitationPending)
	}
}
