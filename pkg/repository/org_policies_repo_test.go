package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/policyflow/policyflow/pkg/domain"
)

func TestOrgPoliciesUpdateStatus_RoundTrip(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()
	repo := NewOrgPoliciesRepository(conn)

	owner := seedUser(t, conn)
	org := seedOrganization(t, conn, owner.ID)

	policy := &domain.OrganizationPolicy{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Title:          "Privacy policy",
		Type:           domain.PolicyTypePrivacy,
		Status:         domain.PolicyDraft,
		Content:        "# Privacy policy\n\nWe collect nothing.",
		AssignedAt:     time.Now().UTC(),
		CreatedBy:      &owner.ID,
	}
	if err := repo.Create(ctx, policy); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Status is a direct overwrite, so every known value must survive a
	// write-then-read cycle, including going back to draft.
	for _, status := range []domain.PolicyStatus{
		domain.PolicyPublished,
		domain.PolicyArchived,
		domain.PolicyDraft,
	} {
		if err := repo.UpdateStatus(ctx, policy.ID, status); err != nil {
			t.Fatalf("UpdateStatus(%q) failed: %v", status, err)
		}
		got, err := repo.GetByID(ctx, policy.ID)
		if err != nil {
			t.Fatalf("GetByID after UpdateStatus(%q) failed: %v", status, err)
		}
		if got.Status != status {
			t.Errorf("Status = %q, want %q", got.Status, status)
		}
		if got.Title != policy.Title {
			t.Errorf("Title = %q, want %q unchanged", got.Title, policy.Title)
		}
		if got.Content != policy.Content {
			t.Errorf("Content changed across status update")
		}
	}
}
