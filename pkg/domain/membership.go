package domain

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole is the role a user holds within an organization.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Valid reports whether the role is one of the known values.
func (r MemberRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Member represents a user's membership in an organization. At most one
// row exists per (organization, user) pair. ParentMemberID models a
// reporting hierarchy; it is stored but not interpreted anywhere.
type Member struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Role           MemberRole
	ParentMemberID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
