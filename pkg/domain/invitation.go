package domain

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is a pending offer of organization membership sent to an
// email address. It is created pending and transitions once, to accepted
// or rejected. Nothing expires invitations automatically.
type Invitation struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	InvitedEmail   string
	Role           MemberRole
	Token          string
	Status         InvitationStatus
	InvitedBy      uuid.UUID
	CreatedAt      time.Time
}
