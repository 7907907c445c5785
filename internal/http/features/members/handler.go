package members

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/org"
)

// Handler handles organization membership endpoints.
type Handler struct {
	logger      *slog.Logger
	memberships *org.MembershipService
}

// NewHandler creates a new members handler.
func NewHandler(logger *slog.Logger, memberships *org.MembershipService) *Handler {
	return &Handler{logger: logger, memberships: memberships}
}

// AddRequest represents a direct member addition by user id.
type AddRequest struct {
	UserID string  `json:"user_id"`
	Role   string  `json:"role,omitempty"`
	Parent *string `json:"parent_member_id,omitempty"`
}

// InviteRequest represents a direct addition of an existing account by
// email. The account must already exist; use invitations for everyone
// else.
type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// UpdateRequest represents a membership update.
type UpdateRequest struct {
	Role   *string `json:"role,omitempty"`
	Parent *string `json:"parent_member_id,omitempty"`
}

// Response represents an organization member.
type Response struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	ParentMemberID *string   `json:"parent_member_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toResponse(m *domain.Member) Response {
	resp := Response{
		ID:             m.ID.String(),
		OrganizationID: m.OrganizationID.String(),
		UserID:         m.UserID.String(),
		Role:           string(m.Role),
		CreatedAt:      m.CreatedAt,
	}
	if m.ParentMemberID != nil {
		s := m.ParentMemberID.String()
		resp.ParentMemberID = &s
	}
	return resp
}

// List returns the organization's members, newest first.
// GET /v1/organizations/{orgID}/members
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	list, err := h.memberships.ListByOrganization(r.Context(), orgID)
	if err != nil {
		h.logger.Error("member list failed", "error", err, "org_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	resp := make([]Response, 0, len(list))
	for _, m := range list {
		resp = append(resp, toResponse(m))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Add adds a member by user id.
// POST /v1/organizations/{orgID}/members
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	role := domain.MemberRole(req.Role)
	if req.Role != "" && !role.Valid() {
		httputil.Error(w, http.StatusBadRequest, "invalid role")
		return
	}

	var parentID *uuid.UUID
	if req.Parent != nil {
		id, err := uuid.Parse(*req.Parent)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, "invalid parent member id")
			return
		}
		parentID = &id
	}

	member, err := h.memberships.Create(r.Context(), orgID, userID, role, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "user is already a member")
			return
		}
		h.logger.Error("member add failed", "error", err, "org_id", orgID, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(member))
}

// Invite adds an existing account as a member by email.
// POST /v1/organizations/{orgID}/members/invite
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	var req InviteRequest
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

	member, err := h.memberships.InviteMember(r.Context(), orgID, req.Email, role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			httputil.Error(w, http.StatusNotFound, "no account exists for that email")
		case errors.Is(err, domain.ErrMemberAlreadyExists):
			httputil.Error(w, http.StatusConflict, "user is already a member")
		default:
			h.logger.Error("member invite failed", "error", err, "org_id", orgID)
			httputil.Error(w, http.StatusInternalServerError, "failed to add member")
		}
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(member))
}

// Update changes a member's role or parent.
// PATCH /v1/organizations/{orgID}/members/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == nil && req.Parent == nil {
		httputil.Error(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.Role != nil {
		role := domain.MemberRole(*req.Role)
		if !role.Valid() {
			httputil.Error(w, http.StatusBadRequest, "invalid role")
			return
		}
		if err := h.memberships.UpdateRole(r.Context(), memberID, role); err != nil {
			if errors.Is(err, domain.ErrMembershipNotFound) {
				httputil.Error(w, http.StatusNotFound, "member not found")
				return
			}
			h.logger.Error("member role update failed", "error", err, "member_id", memberID)
			httputil.Error(w, http.StatusInternalServerError, "failed to update member")
			return
		}
	}

	if req.Parent != nil {
		var parentID *uuid.UUID
		if *req.Parent != "" {
			id, err := uuid.Parse(*req.Parent)
			if err != nil {
				httputil.Error(w, http.StatusBadRequest, "invalid parent member id")
				return
			}
			parentID = &id
		}
		if err := h.memberships.UpdateParent(r.Context(), memberID, parentID); err != nil {
			if errors.Is(err, domain.ErrMembershipNotFound) {
				httputil.Error(w, http.StatusNotFound, "member not found")
				return
			}
			h.logger.Error("member parent update failed", "error", err, "member_id", memberID)
			httputil.Error(w, http.StatusInternalServerError, "failed to update member")
			return
		}
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Remove removes a member from the organization.
// DELETE /v1/organizations/{orgID}/members/{id}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid member id")
		return
	}

	if err := h.memberships.Remove(r.Context(), memberID); err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			httputil.Error(w, http.StatusNotFound, "member not found")
			return
		}
		h.logger.Error("member remove failed", "error", err, "member_id", memberID)
		httputil.Error(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
