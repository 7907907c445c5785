package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v76/webhook"

	internalbilling "github.com/policyflow/policyflow/internal/billing"
	"github.com/policyflow/policyflow/internal/http/middleware"
	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/pkg/billing"
	"github.com/policyflow/policyflow/pkg/domain"
)

// Stripe recommends capping webhook payloads at 64KB.
const maxWebhookBody = 65536

// Handler handles Stripe webhook and session endpoints.
type Handler struct {
	logger        *slog.Logger
	sync          *internalbilling.SyncService
	checkout      *internalbilling.CheckoutService
	catalog       *billing.Catalog
	webhookSecret string
}

// NewHandler creates a new billing handler.
func NewHandler(
	logger *slog.Logger,
	sync *internalbilling.SyncService,
	checkout *internalbilling.CheckoutService,
	catalog *billing.Catalog,
	webhookSecret string,
) *Handler {
	return &Handler{
		logger:        logger,
		sync:          sync,
		checkout:      checkout,
		catalog:       catalog,
		webhookSecret: webhookSecret,
	}
}

// CheckoutRequest represents a checkout session request.
type CheckoutRequest struct {
	PriceID string `json:"price_id"`
}

// SessionResponse carries a hosted Stripe page URL.
type SessionResponse struct {
	URL string `json:"url"`
}

// Webhook handles Stripe webhook deliveries. Signature failures are
// 400 with no processing; unknown customers are dropped with 200 so
// Stripe stops retrying; processing failures are 500 so it retries.
// POST /api/stripe/webhooks
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		httputil.Error(w, http.StatusBadRequest, "invalid signature")
		return
	}

	if err := h.sync.HandleEvent(r.Context(), event); err != nil {
		h.logger.Error("webhook processing failed", "error", err, "event_type", event.Type)
		httputil.Error(w, http.StatusInternalServerError, "webhook processing failed")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]bool{"received": true})
}

// CreateCheckoutSession starts a subscription checkout.
// POST /api/stripe/create-checkout-session
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PriceID == "" {
		httputil.Error(w, http.StatusBadRequest, "price_id is required")
		return
	}
	if h.catalog.PlanForPrice(req.PriceID) == nil {
		httputil.Error(w, http.StatusBadRequest, "unknown price_id")
		return
	}

	url, err := h.checkout.CreateCheckoutSession(r.Context(), userID, req.PriceID)
	if err != nil {
		h.logger.Error("checkout session failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	httputil.JSON(w, http.StatusOK, SessionResponse{URL: url})
}

// CreatePortalSession opens the billing portal for the caller.
// POST /api/stripe/create-portal-session
func (h *Handler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	url, err := h.checkout.CreatePortalSession(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoBillingCustomer) || errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "no billing account")
			return
		}
		h.logger.Error("portal session failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create portal session")
		return
	}

	httputil.JSON(w, http.StatusOK, SessionResponse{URL: url})
}
