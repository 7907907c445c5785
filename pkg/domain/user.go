package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents the account.
type User struct {
	ID               uuid.UUID
	Email            string
	Name             *string
	PasswordHash     string
	StripeCustomerID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// Profile holds per-user display data (name, plan, role). It is
// denormalized and is not kept consistent with the subscriptions table.
type Profile struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Role      MemberRole
	Plan      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
