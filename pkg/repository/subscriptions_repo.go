package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
)

// SubscriptionsRepository handles subscription persistence. Rows are
// written only by the billing webhook, upserted on the provider's
// subscription id, and read everywhere else.
type SubscriptionsRepository struct {
	db *sql.DB
}

// NewSubscriptionsRepository creates a new subscriptions repository.
func NewSubscriptionsRepository(db *sql.DB) *SubscriptionsRepository {
	return &SubscriptionsRepository{db: db}
}

// Upsert inserts or replaces the subscription row keyed on
// stripe_subscription_id. Delivering the same provider event twice is a
// no-op beyond rewriting identical values.
func (r *SubscriptionsRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, stripe_customer_id, stripe_subscription_id, status, price_id,
			quantity, cancel_at_period_end, cancel_at, canceled_at,
			current_period_start, current_period_end, created_at, ended_at,
			trial_start, trial_end, interval
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (stripe_subscription_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			status = EXCLUDED.status,
			price_id = EXCLUDED.price_id,
			quantity = EXCLUDED.quantity,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			cancel_at = EXCLUDED.cancel_at,
			canceled_at = EXCLUDED.canceled_at,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			ended_at = EXCLUDED.ended_at,
			trial_start = EXCLUDED.trial_start,
			trial_end = EXCLUDED.trial_end,
			interval = EXCLUDED.interval
	`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.StripeCustomerID, sub.StripeSubscriptionID, sub.Status, sub.PriceID,
		sub.Quantity, sub.CancelAtPeriodEnd, sub.CancelAt, sub.CanceledAt,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CreatedAt, sub.EndedAt,
		sub.TrialStart, sub.TrialEnd, sub.Interval,
	)
	return err
}

// GetByUserID retrieves the subscription for a user. Each user holds at
// most one row.
func (r *SubscriptionsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, stripe_customer_id, stripe_subscription_id, status, price_id,
		       quantity, cancel_at_period_end, cancel_at, canceled_at,
		       current_period_start, current_period_end, created_at, ended_at,
		       trial_start, trial_end, interval
		FROM subscriptions
		WHERE user_id = $1
	`
	sub := &domain.Subscription{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&sub.ID, &sub.UserID, &sub.StripeCustomerID, &sub.StripeSubscriptionID, &sub.Status, &sub.PriceID,
		&sub.Quantity, &sub.CancelAtPeriodEnd, &sub.CancelAt, &sub.CanceledAt,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.EndedAt,
		&sub.TrialStart, &sub.TrialEnd, &sub.Interval,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
