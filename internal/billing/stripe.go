// Package billing integrates the subscription lifecycle with Stripe:
// checkout and portal session creation plus webhook-driven sync of
// subscription rows.
package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	billingportalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"

	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

// CheckoutService creates Stripe checkout and billing-portal sessions
// for authenticated users, lazily provisioning the Stripe customer.
type CheckoutService struct {
	users      *repository.UsersRepository
	appBaseURL string
}

func NewCheckoutService(users *repository.UsersRepository, appBaseURL string) *CheckoutService {
	return &CheckoutService{users: users, appBaseURL: appBaseURL}
}

// ensureCustomer returns the user's Stripe customer id, creating the
// customer and persisting the id on first use.
func (s *CheckoutService) ensureCustomer(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
	}
	if user.Name != nil {
		params.Name = stripe.String(*user.Name)
	}
	params.AddMetadata("user_id", userID.String())

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.users.SetStripeCustomerID(ctx, userID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a subscription checkout for the given
// price and returns the hosted page URL.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID uuid.UUID, priceID string) (string, error) {
	custID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(custID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.appBaseURL + "/dashboard?checkout=success"),
		CancelURL:  stripe.String(s.appBaseURL + "/pricing?checkout=canceled"),
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens the Stripe billing portal for the user.
// Users without a Stripe customer have nothing to manage and get
// domain.ErrNoBillingCustomer.
func (s *CheckoutService) CreatePortalSession(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return "", domain.ErrNoBillingCustomer
	}

	sess, err := billingportalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*user.StripeCustomerID),
		ReturnURL: stripe.String(s.appBaseURL + "/dashboard"),
	})
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}
