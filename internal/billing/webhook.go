package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"

	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

// SyncService applies Stripe subscription webhook events to the local
// subscriptions table.
type SyncService struct {
	users         *repository.UsersRepository
	subscriptions *repository.SubscriptionsRepository
	logger        *slog.Logger
}

func NewSyncService(users *repository.UsersRepository, subscriptions *repository.SubscriptionsRepository, logger *slog.Logger) *SyncService {
	return &SyncService{users: users, subscriptions: subscriptions, logger: logger}
}

// HandleEvent processes a verified webhook event. Event types outside
// the subscription lifecycle are ignored. Events whose customer has no
// local user are logged and dropped so Stripe does not retry them.
func (s *SyncService) HandleEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
	default:
		s.logger.Debug("ignoring webhook event", "type", event.Type)
		return nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("unmarshal subscription event: %w", err)
	}

	if sub.Customer == nil || sub.Customer.ID == "" {
		s.logger.Warn("dropping subscription event without customer",
			"subscription_id", sub.ID)
		return nil
	}

	user, err := s.users.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		s.logger.Warn("dropping subscription event for unknown customer",
			"customer_id", sub.Customer.ID,
			"subscription_id", sub.ID,
			"error", err)
		return nil
	}

	row := translateSubscription(&sub)
	row.ID = uuid.New()
	row.UserID = user.ID

	if err := s.subscriptions.Upsert(ctx, row); err != nil {
		return fmt.Errorf("upsert subscription %s: %w", sub.ID, err)
	}

	s.logger.Info("subscription synced",
		"user_id", user.ID,
		"subscription_id", sub.ID,
		"status", sub.Status)
	return nil
}

// translateSubscription maps a Stripe subscription into a local row.
// UserID is left for the caller to fill in.
func translateSubscription(sub *stripe.Subscription) *domain.Subscription {
	row := &domain.Subscription{
		StripeCustomerID:     sub.Customer.ID,
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		CancelAt:             unixTime(sub.CancelAt),
		CanceledAt:           unixTime(sub.CanceledAt),
		CurrentPeriodStart:   unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:     unixTime(sub.CurrentPeriodEnd),
		EndedAt:              unixTime(sub.EndedAt),
		TrialStart:           unixTime(sub.TrialStart),
		TrialEnd:             unixTime(sub.TrialEnd),
		Interval:             domain.IntervalMonth,
	}
	if created := unixTime(sub.Created); created != nil {
		row.CreatedAt = *created
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		row.Quantity = item.Quantity
		if item.Price != nil {
			row.PriceID = item.Price.ID
			if item.Price.Recurring != nil && item.Price.Recurring.Interval != "" {
				row.Interval = string(item.Price.Recurring.Interval)
			}
		}
	}
	return row
}

// unixTime converts Stripe's Unix-second timestamps, with 0 meaning
// not set.
func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
