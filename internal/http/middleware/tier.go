package middleware

import (
	"log/slog"
	"net/http"

	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/pkg/billing"
	"github.com/policyflow/policyflow/pkg/domain"
)

// RequireTier creates middleware that rejects requests from users whose
// subscription does not reach the minimum plan tier. Must be used after
// Auth middleware. Resolution failures fall back to the inactive
// default, so a broken billing lookup denies rather than grants.
func RequireTier(billingService *billing.Service, minimum domain.PlanTier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}

			status, err := billingService.Resolve(r.Context(), userID)
			if err != nil {
				logger.Error("subscription resolution failed", "user_id", userID, "error", err)
			}

			if !billing.Allows(status, minimum) {
				if !status.IsActive {
					httputil.Error(w, http.StatusForbidden, "active subscription required")
					return
				}
				httputil.Error(w, http.StatusForbidden, "plan upgrade required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
