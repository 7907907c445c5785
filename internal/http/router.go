package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/policyflow/policyflow/internal/auth"
	internalbilling "github.com/policyflow/policyflow/internal/billing"
	"github.com/policyflow/policyflow/internal/config"
	"github.com/policyflow/policyflow/internal/generation"
	"github.com/policyflow/policyflow/internal/http/features/auth"
	"github.com/policyflow/policyflow/internal/http/features/billing"
	"github.com/policyflow/policyflow/internal/http/features/invitations"
	"github.com/policyflow/policyflow/internal/http/features/me"
	"github.com/policyflow/policyflow/internal/http/features/members"
	"github.com/policyflow/policyflow/internal/http/features/organizations"
	"github.com/policyflow/policyflow/internal/http/features/policies"
	"github.com/policyflow/policyflow/internal/http/middleware"
	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/internal/notification"
	pkgbilling "github.com/policyflow/policyflow/pkg/billing"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/org"
	"github.com/policyflow/policyflow/pkg/repository"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger              *slog.Logger
	AuthService         *authsvc.Service
	BillingService      *pkgbilling.Service
	Catalog             *pkgbilling.Catalog
	OrganizationService *org.OrganizationService
	MembershipService   *org.MembershipService
	InvitationService   *org.InvitationService
	PolicyService       *org.PolicyService
	SyncService         *internalbilling.SyncService
	CheckoutService     *internalbilling.CheckoutService
	Generator           *generation.Generator
	EmailService        *notification.EmailService
	UsersRepo           *repository.UsersRepository
	ProfilesRepo        *repository.ProfilesRepository
	AppBaseURL          string
	StripeWebhookSecret string
	RateLimitConfig     config.RateLimitConfig
	SecurityHeaders     config.SecurityHeadersConfig
	MaxRequestBodySize  int64
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)
	requireAuth := middleware.Auth(cfg.AuthService)
	requireFoundational := middleware.RequireTier(cfg.BillingService, domain.PlanFoundational, cfg.Logger)
	requireOperational := middleware.RequireTier(cfg.BillingService, domain.PlanOperational, cfg.Logger)

	// Authentication
	authHandler := auth.NewHandler(cfg.Logger, cfg.AuthService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/register", authHandler.Register)
		r.Post("/v1/auth/login", authHandler.Login)
	})

	// Current user
	meHandler := me.NewHandler(cfg.Logger, cfg.UsersRepo, cfg.ProfilesRepo, cfg.BillingService)
	invitationHandler := invitations.NewHandler(
		cfg.Logger,
		cfg.InvitationService,
		cfg.OrganizationService,
		cfg.UsersRepo,
		cfg.EmailService,
		cfg.AppBaseURL,
	)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/v1/me", meHandler.GetMe)
		r.Patch("/v1/me", meHandler.UpdateMe)
		r.Get("/v1/me/subscription", meHandler.GetSubscription)
		r.Get("/v1/me/invitations", invitationHandler.ListMine)
		r.Post("/v1/invitations/{token}/accept", invitationHandler.Accept)
		r.Post("/v1/invitations/{token}/reject", invitationHandler.Reject)
	})

	// Organizations and nested resources. These require an active
	// subscription at the Foundational tier or above.
	orgHandler := organizations.NewHandler(cfg.Logger, cfg.OrganizationService)
	memberHandler := members.NewHandler(cfg.Logger, cfg.MembershipService)
	policyHandler := policies.NewHandler(cfg.Logger, cfg.PolicyService, cfg.Generator)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireFoundational)

		r.Post("/v1/organizations", orgHandler.Create)
		r.Get("/v1/organizations", orgHandler.List)

		r.Get("/v1/policies", policyHandler.ListTemplates)
		r.Post("/v1/policies", policyHandler.CreateTemplate)

		r.Route("/v1/organizations/{orgID}", func(r chi.Router) {
			r.Get("/", orgHandler.Get)
			r.Patch("/", orgHandler.Update)
			r.Delete("/", orgHandler.Delete)

			r.Get("/members", memberHandler.List)
			r.Post("/members", memberHandler.Add)
			r.Post("/members/invite", memberHandler.Invite)
			r.Patch("/members/{id}", memberHandler.Update)
			r.Delete("/members/{id}", memberHandler.Remove)

			r.Get("/invitations", invitationHandler.List)
			r.Post("/invitations", invitationHandler.Create)
			r.Delete("/invitations/{id}", invitationHandler.Cancel)

			r.Get("/policies", policyHandler.List)
			r.Post("/policies", policyHandler.Create)
			r.Post("/policies/assign", policyHandler.Assign)
			r.With(requireOperational, rateLimiters["generate"]).Post("/policies/generate", policyHandler.Generate)
			r.Get("/policies/{id}", policyHandler.Get)
			r.Patch("/policies/{id}", policyHandler.Update)
			r.Put("/policies/{id}/status", policyHandler.UpdateStatus)
			r.Delete("/policies/{id}", policyHandler.Delete)
		})
	})

	// Stripe
	billingHandler := billing.NewHandler(cfg.Logger, cfg.SyncService, cfg.CheckoutService, cfg.Catalog, cfg.StripeWebhookSecret)
	r.With(rateLimiters["webhook"]).Post("/api/stripe/webhooks", billingHandler.Webhook)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/api/stripe/create-checkout-session", billingHandler.CreateCheckoutSession)
		r.Post("/api/stripe/create-portal-session", billingHandler.CreatePortalSession)
	})

	return r
}
