package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary owning members, invitations, and policies.
type Organization struct {
	ID          uuid.UUID
	Name        string
	OwnerID     uuid.UUID
	Description *string
	LogoURL     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
