package invitations

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/http/middleware"
	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/internal/notification"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/org"
	"github.com/policyflow/policyflow/pkg/repository"
)

// Handler handles email-based invitation endpoints.
type Handler struct {
	logger        *slog.Logger
	invitations   *org.InvitationService
	organizations *org.OrganizationService
	users         *repository.UsersRepository
	emailService  *notification.EmailService
	appBaseURL    string
}

// NewHandler creates a new invitations handler. emailService may be nil
// when SMTP is not configured; invitations are still created and the
// token is returned in the response.
func NewHandler(
	logger *slog.Logger,
	invitations *org.InvitationService,
	organizations *org.OrganizationService,
	users *repository.UsersRepository,
	emailService *notification.EmailService,
	appBaseURL string,
) *Handler {
	return &Handler{
		logger:        logger,
		invitations:   invitations,
		organizations: organizations,
		users:         users,
		emailService:  emailService,
		appBaseURL:    appBaseURL,
	}
}

// CreateRequest represents an invitation creation request.
type CreateRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// Response represents an invitation.
type Response struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	InvitedEmail   string    `json:"invited_email"`
	Role           string    `json:"role"`
	Token          string    `json:"token"`
	Status         string    `json:"status"`
	InvitedBy      string    `json:"invited_by"`
	CreatedAt      time.Time `json:"created_at"`
}

func toResponse(inv *domain.Invitation) Response {
	return Response{
		ID:             inv.ID.String(),
		OrganizationID: inv.OrganizationID.String(),
		InvitedEmail:   inv.InvitedEmail,
		Role:           string(inv.Role),
		Token:          inv.Token,
		Status:         string(inv.Status),
		InvitedBy:      inv.InvitedBy.String(),
		CreatedAt:      inv.CreatedAt,
	}
}

// Create creates a pending invitation and emails the accept link.
// POST /v1/organizations/{orgID}/invitations
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		httputil.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	role := domain.MemberRole(req.Role)
	if req.Role != "" && !role.Valid() {
		httputil.Error(w, http.StatusBadRequest, "invalid role")
		return
	}

	inv, err := h.invitations.Create(r.Context(), orgID, req.Email, role, userID)
	if err != nil {
		h.logger.Error("invitation create failed", "error", err, "org_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create invitation")
		return
	}

	if h.emailService != nil {
		orgName := "an organization"
		if organization, err := h.organizations.GetByID(r.Context(), orgID); err == nil {
			orgName = organization.Name
		}
		acceptURL := fmt.Sprintf("%s/invitations/accept?token=%s", h.appBaseURL, inv.Token)
		if err := h.emailService.SendInvitationEmail(inv.InvitedEmail, orgName, acceptURL); err != nil {
			h.logger.Error("invitation email failed", "error", err, "invitation_id", inv.ID)
		}
	}

	httputil.JSON(w, http.StatusCreated, toResponse(inv))
}

// List returns the organization's invitations, newest first.
// GET /v1/organizations/{orgID}/invitations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	list, err := h.invitations.ListByOrganization(r.Context(), orgID)
	if err != nil {
		h.logger.Error("invitation list failed", "error", err, "org_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list invitations")
		return
	}

	resp := make([]Response, 0, len(list))
	for _, inv := range list {
		resp = append(resp, toResponse(inv))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// ListMine returns pending invitations addressed to the caller's email.
// GET /v1/me/invitations
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.invitations.PendingForEmail(r.Context(), user.Email)
	if err != nil {
		h.logger.Error("pending invitation list failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list invitations")
		return
	}

	resp := make([]Response, 0, len(list))
	for _, inv := range list {
		resp = append(resp, toResponse(inv))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Accept accepts a pending invitation, creating the membership.
// POST /v1/invitations/{token}/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	member, err := h.invitations.Accept(r.Context(), token, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvitationNotFound):
			httputil.Error(w, http.StatusNotFound, "invitation not found")
		case errors.Is(err, domain.ErrInvitationNotPending):
			httputil.Error(w, http.StatusConflict, "invitation is no longer pending")
		case errors.Is(err, domain.ErrMemberAlreadyExists):
			httputil.Error(w, http.StatusConflict, "user is already a member")
		default:
			h.logger.Error("invitation accept failed", "error", err, "user_id", userID)
			httputil.Error(w, http.StatusInternalServerError, "failed to accept invitation")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"status":          "accepted",
		"organization_id": member.OrganizationID.String(),
		"member_id":       member.ID.String(),
	})
}

// Reject rejects a pending invitation.
// POST /v1/invitations/{token}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		httputil.Error(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.invitations.Reject(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvitationNotFound):
			httputil.Error(w, http.StatusNotFound, "invitation not found")
		case errors.Is(err, domain.ErrInvitationNotPending):
			httputil.Error(w, http.StatusConflict, "invitation is no longer pending")
		default:
			h.logger.Error("invitation reject failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to reject invitation")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// Cancel deletes an invitation.
// DELETE /v1/organizations/{orgID}/invitations/{id}
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	invID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid invitation id")
		return
	}

	if err := h.invitations.Cancel(r.Context(), invID); err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			httputil.Error(w, http.StatusNotFound, "invitation not found")
			return
		}
		h.logger.Error("invitation cancel failed", "error", err, "invitation_id", invID)
		httputil.Error(w, http.StatusInternalServerError, "failed to cancel invitation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
