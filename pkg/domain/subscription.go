package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlanTier is a named billing level gating feature access.
type PlanTier string

const (
	PlanFoundational PlanTier = "FOUNDATIONAL"
	PlanOperational  PlanTier = "OPERATIONAL"
	PlanStrategic    PlanTier = "STRATEGIC"
)

// Billing intervals.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Subscription status strings as reported by the billing provider.
const (
	SubscriptionActive = "active"
)

// Subscription mirrors a provider subscription. Rows are written only by
// the billing webhook handler, upserted on StripeSubscriptionID.
type Subscription struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	StripeCustomerID     string
	StripeSubscriptionID string
	Status               string
	PriceID              string
	Quantity             int64
	CancelAtPeriodEnd    bool
	CancelAt             *time.Time
	CanceledAt           *time.Time
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
	CreatedAt            time.Time
	EndedAt              *time.Time
	TrialStart           *time.Time
	TrialEnd             *time.Time
	Interval             string
}

// SubscriptionStatus is the normalized view of a user's subscription
// consumed by the tier gate and the API.
type SubscriptionStatus struct {
	IsActive         bool       `json:"is_active"`
	Plan             *PlanTier  `json:"plan"`
	Interval         string     `json:"interval"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	IsCanceled       bool       `json:"is_canceled"`
}

// DefaultSubscriptionStatus is the inactive status used when a user has
// no subscription row or resolution fails.
func DefaultSubscriptionStatus() SubscriptionStatus {
	return SubscriptionStatus{
		IsActive:         false,
		Plan:             nil,
		Interval:         IntervalMonth,
		CurrentPeriodEnd: nil,
		IsCanceled:       false,
	}
}
