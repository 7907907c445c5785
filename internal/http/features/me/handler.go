package me

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/policyflow/policyflow/internal/http/middleware"
	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/pkg/billing"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/repository"
)

// Handler handles current-user profile and subscription endpoints.
type Handler struct {
	logger         *slog.Logger
	users          *repository.UsersRepository
	profiles       *repository.ProfilesRepository
	billingService *billing.Service
}

// NewHandler creates a new me handler.
func NewHandler(logger *slog.Logger, users *repository.UsersRepository, profiles *repository.ProfilesRepository, billingService *billing.Service) *Handler {
	return &Handler{logger: logger, users: users, profiles: profiles, billingService: billingService}
}

// ProfileResponse represents the current user's profile.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Role      string    `json:"role"`
	Plan      *string   `json:"plan,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateRequest represents a profile update request.
type UpdateRequest struct {
	Name *string `json:"name,omitempty"`
}

// GetMe returns the current user's profile.
// GET /v1/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "user not found")
		return
	}

	resp := ProfileResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(domain.RoleMember),
		CreatedAt: user.CreatedAt,
	}
	if profile, err := h.profiles.GetByUserID(r.Context(), userID); err == nil {
		resp.Role = string(profile.Role)
		resp.Plan = profile.Plan
		if profile.Name != "" {
			resp.Name = &profile.Name
		}
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// UpdateMe updates the current user's display profile.
// PATCH /v1/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == nil || *req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "user not found")
		return
	}
	user.Name = req.Name
	if err := h.users.Update(r.Context(), user); err != nil {
		h.logger.Error("user update failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "update failed")
		return
	}

	profile, err := h.profiles.GetByUserID(r.Context(), userID)
	if err == nil {
		profile.Name = *req.Name
		if err := h.profiles.Update(r.Context(), profile); err != nil {
			h.logger.Error("profile update failed", "error", err, "user_id", userID)
			httputil.Error(w, http.StatusInternalServerError, "update failed")
			return
		}
	} else if !errors.Is(err, domain.ErrProfileNotFound) {
		h.logger.Error("profile lookup failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "update failed")
		return
	}

	h.GetMe(w, r)
}

// GetSubscription returns the resolved subscription status for the
// current user. Resolution failures degrade to the inactive default so
// the endpoint never breaks the client.
// GET /v1/me/subscription
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.billingService.Resolve(r.Context(), userID)
	if err != nil {
		h.logger.Error("subscription resolution failed", "error", err, "user_id", userID)
	}

	httputil.JSON(w, http.StatusOK, status)
}
