package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

// Service resolves a user's subscription row into a normalized status.
type Service struct {
	subscriptions *repository.SubscriptionsRepository
	catalog       *Catalog
}

// NewService creates a new billing service.
func NewService(subscriptions *repository.SubscriptionsRepository, catalog *Catalog) *Service {
	return &Service{subscriptions: subscriptions, catalog: catalog}
}

// Catalog returns the plan catalog.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Resolve looks up the user's subscription and normalizes it. A missing
// row resolves to the default inactive status with a nil error; any
// other lookup failure is returned to the caller, who is expected to
// log it and fall back to the default.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID) (domain.SubscriptionStatus, error) {
	sub, err := s.subscriptions.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		return domain.DefaultSubscriptionStatus(), nil
	}
	if err != nil {
		return domain.DefaultSubscriptionStatus(), err
	}
	return s.statusFromRow(sub), nil
}

func (s *Service) statusFromRow(sub *domain.Subscription) domain.SubscriptionStatus {
	status := domain.DefaultSubscriptionStatus()
	status.IsActive = sub.Status == domain.SubscriptionActive
	status.Plan = s.catalog.PlanForPrice(sub.PriceID)
	if sub.Interval != "" {
		status.Interval = sub.Interval
	}
	status.CurrentPeriodEnd = sub.CurrentPeriodEnd
	status.IsCanceled = sub.CancelAtPeriodEnd
	return status
}
