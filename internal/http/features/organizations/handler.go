package organizations

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/http/middleware"
	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/org"
)

// Handler handles organization CRUD endpoints.
type Handler struct {
	logger        *slog.Logger
	organizations *org.OrganizationService
}

// NewHandler creates a new organizations handler.
func NewHandler(logger *slog.Logger, organizations *org.OrganizationService) *Handler {
	return &Handler{logger: logger, organizations: organizations}
}

// CreateRequest represents an organization creation request.
type CreateRequest struct {
	Name string `json:"name"`
}

// UpdateRequest represents an organization update request.
type UpdateRequest struct {
	Name string `json:"name"`
}

// Response represents an organization.
type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	Description *string   `json:"description,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toResponse(o *domain.Organization) Response {
	return Response{
		ID:          o.ID.String(),
		Name:        o.Name,
		OwnerID:     o.OwnerID.String(),
		Description: o.Description,
		LogoURL:     o.LogoURL,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// Create creates an organization owned by the caller.
// POST /v1/organizations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	organization, err := h.organizations.Create(r.Context(), userID, req.Name)
	if err != nil {
		h.logger.Error("organization create failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create organization")
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(organization))
}

// List returns all organizations the caller owns or belongs to.
// GET /v1/organizations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orgs, err := h.organizations.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("organization list failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list organizations")
		return
	}

	resp := make([]Response, 0, len(orgs))
	for _, o := range orgs {
		resp = append(resp, toResponse(o))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Get returns a single organization.
// GET /v1/organizations/{orgID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	organization, err := h.organizations.GetByID(r.Context(), orgID)
	if err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			httputil.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.logger.Error("organization get failed", "error", err, "org_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to get organization")
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(organization))
}

// Update renames an organization.
// PATCH /v1/organizations/{orgID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.organizations.Rename(r.Context(), orgID, req.Name); err != nil {
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			httputil.Error(w, http.StatusNotFound, "organization not found")
			return
		}
		h.logger.Error("organization rename failed", "error", err, "org_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update organization")
		return
	}

	h.Get(w, r)
}

// Delete deletes an organization. Only the owner may delete; the schema
// cascades to members, invitations, and policies.
// DELETE /v1/organizations/{orgID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	if err := h.organizations.Delete(r.Context(), orgID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrOrganizationNotFound):
			httputil.Error(w, http.StatusNotFound, "organization not found")
		case errors.Is(err, domain.ErrNotOrganizationOwner):
			httputil.Error(w, http.StatusForbidden, "only the owner can delete an organization")
		default:
			h.logger.Error("organization delete failed", "error", err, "org_id", orgID)
			httputil.Error(w, http.StatusInternalServerError, "failed to delete organization")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
