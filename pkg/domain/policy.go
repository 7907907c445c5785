package domain

import (
	"time"

	"github.com/google/uuid"
)

// PolicyStatus tracks a policy document through its lifecycle. The UI
// only moves status forward (draft -> published, any -> archived), but
// UpdateStatus is a direct overwrite and does not validate transitions.
type PolicyStatus string

const (
	PolicyDraft     PolicyStatus = "draft"
	PolicyPublished PolicyStatus = "published"
	PolicyArchived  PolicyStatus = "archived"
)

// Valid reports whether the status is one of the known values.
func (s PolicyStatus) Valid() bool {
	return s == PolicyDraft || s == PolicyPublished || s == PolicyArchived
}

// PolicyType classifies a policy document.
type PolicyType string

const (
	PolicyTypeAI      PolicyType = "ai"
	PolicyTypePrivacy PolicyType = "privacy"
	PolicyTypeTerms   PolicyType = "terms"
	PolicyTypeCookie  PolicyType = "cookie"
	PolicyTypeCustom  PolicyType = "custom"
)

// Valid reports whether the type is one of the known values.
func (t PolicyType) Valid() bool {
	switch t {
	case PolicyTypeAI, PolicyTypePrivacy, PolicyTypeTerms, PolicyTypeCookie, PolicyTypeCustom:
		return true
	}
	return false
}

// Policy is a user-level template policy. Organization policies may link
// back to the template they were assigned from.
type Policy struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description *string
	Content     string
	Status      PolicyStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrganizationPolicy is an organization-scoped policy document.
type OrganizationPolicy struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	PolicyID       *uuid.UUID
	Title          string
	Type           PolicyType
	Status         PolicyStatus
	Content        string
	AssignedAt     time.Time
	CreatedBy      *uuid.UUID
	UpdatedAt      *time.Time
}
