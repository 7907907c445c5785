package org

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

// PolicyService handles organization policy documents and the user-level
// templates they can be assigned from.
type PolicyService struct {
	policies    *repository.PoliciesRepository
	orgPolicies *repository.OrgPoliciesRepository
}

// NewPolicyService creates a new policy service.
func NewPolicyService(policies *repository.PoliciesRepository, orgPolicies *repository.OrgPoliciesRepository) *PolicyService {
	return &PolicyService{policies: policies, orgPolicies: orgPolicies}
}

// CreateInput holds the fields for a new organization policy.
type CreateInput struct {
	OrganizationID uuid.UUID
	Title          string
	Type           domain.PolicyType
	Content        string
	CreatedBy      uuid.UUID
}

// Create creates an organization policy in draft status, stamping the
// assignment time and creator.
func (s *PolicyService) Create(ctx context.Context, in CreateInput) (*domain.OrganizationPolicy, error) {
	createdBy := in.CreatedBy
	policy := &domain.OrganizationPolicy{
		ID:             uuid.New(),
		OrganizationID: in.OrganizationID,
		Title:          in.Title,
		Type:           in.Type,
		Status:         domain.PolicyDraft,
		Content:        in.Content,
		AssignedAt:     time.Now(),
		CreatedBy:      &createdBy,
	}
	if err := s.orgPolicies.Create(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// Rename changes the policy title.
func (s *PolicyService) Rename(ctx context.Context, id uuid.UUID, title string) error {
	return s.orgPolicies.UpdateTitle(ctx, id, title)
}

// SetType changes the policy type.
func (s *PolicyService) SetType(ctx context.Context, id uuid.UUID, policyType domain.PolicyType) error {
	return s.orgPolicies.UpdateType(ctx, id, policyType)
}

// SetContent replaces the policy document content.
func (s *PolicyService) SetContent(ctx context.Context, id uuid.UUID, content string) error {
	return s.orgPolicies.UpdateContent(ctx, id, content)
}

// GetByID retrieves an organization policy.
func (s *PolicyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrganizationPolicy, error) {
	return s.orgPolicies.GetByID(ctx, id)
}

// ListByOrganization returns an organization's policies ordered by
// assignment time, newest first.
func (s *PolicyService) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.OrganizationPolicy, error) {
	return s.orgPolicies.ListByOrganization(ctx, orgID)
}

// UpdateStatus overwrites the policy status directly. Transitions are not
// validated here; the UI only offers forward moves but callers of this
// service can set any known status.
func (s *PolicyService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PolicyStatus) error {
	return s.orgPolicies.UpdateStatus(ctx, id, status)
}

// Delete hard deletes an organization policy.
func (s *PolicyService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.orgPolicies.Delete(ctx, id)
}

// AssignToOrganization links an existing template policy to an
// organization as a new draft policy, copying the template content.
func (s *PolicyService) AssignToOrganization(ctx context.Context, policyID, orgID uuid.UUID, title string, policyType domain.PolicyType, createdBy uuid.UUID) (*domain.OrganizationPolicy, error) {
	template, err := s.policies.GetByID(ctx, policyID)
	if err != nil {
		return nil, err
	}

	creator := createdBy
	templateID := template.ID
	policy := &domain.OrganizationPolicy{
		ID:             uuid.New(),
		OrganizationID: orgID,
		PolicyID:       &templateID,
		Title:          title,
		Type:           policyType,
		Status:         domain.PolicyDraft,
		Content:        template.Content,
		AssignedAt:     time.Now(),
		CreatedBy:      &creator,
	}
	if err := s.orgPolicies.Create(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// CreateTemplate creates a user-level template policy.
func (s *PolicyService) CreateTemplate(ctx context.Context, userID uuid.UUID, title, content string, description *string) (*domain.Policy, error) {
	now := time.Now()
	policy := &domain.Policy{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Content:     content,
		Status:      domain.PolicyDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// ListTemplates returns a user's template policies.
func (s *PolicyService) ListTemplates(ctx context.Context, userID uuid.UUID) ([]*domain.Policy, error) {
	return s.policies.ListByUser(ctx, userID)
}
