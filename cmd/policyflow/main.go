package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/stripe/stripe-go/v76"

	authsvc "github.com/policyflow/policyflow/internal/auth"
	internalbilling "github.com/policyflow/policyflow/internal/billing"
	"github.com/policyflow/policyflow/internal/config"
	"github.com/policyflow/policyflow/internal/generation"
	httpserver "github.com/policyflow/policyflow/internal/http"
	"github.com/policyflow/policyflow/internal/notification"
	pkgbilling "github.com/policyflow/policyflow/pkg/billing"
	"github.com/policyflow/policyflow/pkg/org"
	"github.com/policyflow/policyflow/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDBFromURL(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	profilesRepo := repository.NewProfilesRepository(db)
	organizationsRepo := repository.NewOrganizationsRepository(db)
	membershipsRepo := repository.NewMembershipsRepository(db)
	invitationsRepo := repository.NewInvitationsRepository(db)
	policiesRepo := repository.NewPoliciesRepository(db)
	orgPoliciesRepo := repository.NewOrgPoliciesRepository(db)
	subscriptionsRepo := repository.NewSubscriptionsRepository(db)

	// Initialize services
	authService := authsvc.NewService(db, authsvc.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.AccessTokenTTL,
	}, usersRepo, profilesRepo)

	// Stripe integration. A configured Stripe instance must carry the
	// three plan price ids; without Stripe the catalog is empty, every
	// subscription resolves without a plan, and tier-gated routes deny.
	var catalog *pkgbilling.Catalog
	if cfg.HasStripe() {
		stripe.Key = cfg.StripeSecretKey
		catalog, err = pkgbilling.NewCatalog(cfg.FoundationalPriceID, cfg.OperationalPriceID, cfg.StrategicPriceID)
		if err != nil {
			logger.Error("invalid price configuration", "error", err)
			os.Exit(1)
		}
		logger.Info("stripe billing enabled")
	} else {
		catalog = pkgbilling.EmptyCatalog()
		logger.Warn("stripe is not configured; subscriptions resolve inactive and checkout is disabled")
	}
	billingService := pkgbilling.NewService(subscriptionsRepo, catalog)

	organizationService := org.NewOrganizationService(db, organizationsRepo, membershipsRepo)
	membershipService := org.NewMembershipService(membershipsRepo, usersRepo)
	invitationService := org.NewInvitationService(db, invitationsRepo, membershipsRepo)
	policyService := org.NewPolicyService(policiesRepo, orgPoliciesRepo)
	syncService := internalbilling.NewSyncService(usersRepo, subscriptionsRepo, logger)
	checkoutService := internalbilling.NewCheckoutService(usersRepo, cfg.AppBaseURL)

	// Policy generation if configured
	var generator *generation.Generator
	if cfg.HasOpenAI() {
		generator = generation.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		logger.Info("policy generation enabled", "model", cfg.OpenAIModel)
	}

	// Email service if configured
	var emailService *notification.EmailService
	if cfg.HasSMTP() {
		emailService = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		logger.Info("email service enabled")
	}

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:              logger,
		AuthService:         authService,
		BillingService:      billingService,
		Catalog:             catalog,
		OrganizationService: organizationService,
		MembershipService:   membershipService,
		InvitationService:   invitationService,
		PolicyService:       policyService,
		SyncService:         syncService,
		CheckoutService:     checkoutService,
		Generator:           generator,
		EmailService:        emailService,
		UsersRepo:           usersRepo,
		ProfilesRepo:        profilesRepo,
		AppBaseURL:          cfg.AppBaseURL,
		StripeWebhookSecret: cfg.StripeWebhookSecret,
		RateLimitConfig:     cfg.RateLimit,
		SecurityHeaders:     cfg.SecurityHeaders,
		MaxRequestBodySize:  cfg.MaxRequestBodySize,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
