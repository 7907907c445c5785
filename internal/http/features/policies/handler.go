package policies

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/policyflow/policyflow/internal/generation"
	"github.com/policyflow/policyflow/internal/http/middleware"
	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/pkg/domain"
	"github.com/policyflow/policyflow/pkg/org"
)

// Handler handles organization policy endpoints.
type Handler struct {
	logger    *slog.Logger
	policies  *org.PolicyService
	generator *generation.Generator
}

// NewHandler creates a new policies handler. generator may be nil when
// no completion provider is configured; the generate endpoint then
// returns 503.
func NewHandler(logger *slog.Logger, policies *org.PolicyService, generator *generation.Generator) *Handler {
	return &Handler{logger: logger, policies: policies, generator: generator}
}

// CreateRequest represents a policy creation request.
type CreateRequest struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// UpdateRequest represents an explicit-field policy update. Absent
// fields are left untouched.
type UpdateRequest struct {
	Title   *string `json:"title,omitempty"`
	Type    *string `json:"type,omitempty"`
	Content *string `json:"content,omitempty"`
}

// StatusRequest represents a policy status change.
type StatusRequest struct {
	Status string `json:"status"`
}

// AssignRequest represents assignment of a template policy to the
// organization.
type AssignRequest struct {
	PolicyID string `json:"policy_id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
}

// GenerateRequest represents a policy generation request.
type GenerateRequest struct {
	Title                  string                  `json:"title"`
	Type                   string                  `json:"type"`
	CompanyName            string                  `json:"company_name"`
	Website                string                  `json:"website"`
	ComplianceRequirements []string                `json:"compliance_requirements,omitempty"`
	Frameworks             []string                `json:"frameworks,omitempty"`
	Regulations            []string                `json:"regulations,omitempty"`
	EffectiveDate          string                  `json:"effective_date,omitempty"`
	ScrapedData            *generation.ScrapedData `json:"scraped_data,omitempty"`
}

// TemplateRequest represents a user-level template policy creation
// request.
type TemplateRequest struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Description *string `json:"description,omitempty"`
}

// TemplateResponse represents a user-level template policy.
type TemplateResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTemplateResponse(p *domain.Policy) TemplateResponse {
	return TemplateResponse{
		ID:          p.ID.String(),
		UserID:      p.UserID.String(),
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Response represents an organization policy.
type Response struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	PolicyID       *string    `json:"policy_id,omitempty"`
	Title          string     `json:"title"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	Content        string     `json:"content"`
	AssignedAt     time.Time  `json:"assigned_at"`
	CreatedBy      *string    `json:"created_by,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toResponse(p *domain.OrganizationPolicy) Response {
	resp := Response{
		ID:             p.ID.String(),
		OrganizationID: p.OrganizationID.String(),
		Title:          p.Title,
		Type:           string(p.Type),
		Status:         string(p.Status),
		Content:        p.Content,
		AssignedAt:     p.AssignedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.PolicyID != nil {
		s := p.PolicyID.String()
		resp.PolicyID = &s
	}
	if p.CreatedBy != nil {
		s := p.CreatedBy.String()
		resp.CreatedBy = &s
	}
	return resp
}

// List returns the organization's policies, newest assignment first.
// GET /v1/organizations/{orgID}/policies
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	// List failures degrade to an empty list so the dashboard still
	// renders; the error is kept in the logs.
	list, err := h.policies.ListByOrganization(r.Context(), orgID)
	if err != nil {
		h.logger.Error("policy list failed", "error", err, "org_id", orgID)
		list = nil
	}

	resp := make([]Response, 0, len(list))
	for _, p := range list {
		resp = append(resp, toResponse(p))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Create creates a draft policy.
// POST /v1/organizations/{orgID}/policies
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
	if req.Title == "" {
		httputil.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	policyType := domain.PolicyType(req.Type)
	if !policyType.Valid() {
		httputil.Error(w, http.StatusBadRequest, "invalid policy type")
		return
	}

	policy, err := h.policies.Create(r.Context(), org.CreateInput{
		OrganizationID: orgID,
		Title:          req.Title,
		Type:           policyType,
		Content:        req.Content,
		CreatedBy:      userID,
	})
	if err != nil {
		h.logger.Error("policy create failed", "error", err, "org_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create policy")
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(policy))
}

// Get returns a single policy.
// GET /v1/organizations/{orgID}/policies/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	policy, err := h.policies.GetByID(r.Context(), policyID)
	if err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			httputil.Error(w, http.StatusNotFound, "policy not found")
			return
		}
		h.logger.Error("policy get failed", "error", err, "policy_id", policyID)
		httputil.Error(w, http.StatusInternalServerError, "failed to get policy")
		return
	}

	httputil.JSON(w, http.StatusOK, toResponse(policy))
}

// Update applies explicit per-field changes to a policy.
// PATCH /v1/organizations/{orgID}/policies/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == nil && req.Type == nil && req.Content == nil {
		httputil.Error(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			httputil.Error(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		if err := h.policies.Rename(r.Context(), policyID, *req.Title); err != nil {
			h.updateError(w, err, policyID)
			return
		}
	}
	if req.Type != nil {
		policyType := domain.PolicyType(*req.Type)
		if !policyType.Valid() {
			httputil.Error(w, http.StatusBadRequest, "invalid policy type")
			return
		}
		if err := h.policies.SetType(r.Context(), policyID, policyType); err != nil {
			h.updateError(w, err, policyID)
			return
		}
	}
	if req.Content != nil {
		if err := h.policies.SetContent(r.Context(), policyID, *req.Content); err != nil {
			h.updateError(w, err, policyID)
			return
		}
	}

	h.Get(w, r)
}

func (h *Handler) updateError(w http.ResponseWriter, err error, policyID uuid.UUID) {
	if errors.Is(err, domain.ErrPolicyNotFound) {
		httputil.Error(w, http.StatusNotFound, "policy not found")
		return
	}
	h.logger.Error("policy update failed", "error", err, "policy_id", policyID)
	httputil.Error(w, http.StatusInternalServerError, "failed to update policy")
}

// UpdateStatus overwrites the policy status. Any valid status is
// accepted regardless of the current one.
// PUT /v1/organizations/{orgID}/policies/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status := domain.PolicyStatus(req.Status)
	if !status.Valid() {
		httputil.Error(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := h.policies.UpdateStatus(r.Context(), policyID, status); err != nil {
		h.updateError(w, err, policyID)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// Assign copies a user-level template policy into the organization.
// POST /v1/organizations/{orgID}/policies/assign
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
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

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	templateID, err := uuid.Parse(req.PolicyID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid policy id")
		return
	}
	policyType := domain.PolicyType(req.Type)
	if !policyType.Valid() {
		httputil.Error(w, http.StatusBadRequest, "invalid policy type")
		return
	}

	policy, err := h.policies.AssignToOrganization(r.Context(), templateID, orgID, req.Title, policyType, userID)
	if err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			httputil.Error(w, http.StatusNotFound, "template policy not found")
			return
		}
		h.logger.Error("policy assign failed", "error", err, "org_id", orgID, "template_id", templateID)
		httputil.Error(w, http.StatusInternalServerError, "failed to assign policy")
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(policy))
}

// Generate produces a policy draft from a chat completion and stores it.
// POST /v1/organizations/{orgID}/policies/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if h.generator == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "policy generation is not configured")
		return
	}

	orgID, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CompanyName == "" {
		httputil.Error(w, http.StatusBadRequest, "company_name is required")
		return
	}
	policyType := domain.PolicyType(req.Type)
	if !policyType.Valid() {
		httputil.Error(w, http.StatusBadRequest, "invalid policy type")
		return
	}

	content, err := h.generator.Generate(r.Context(), generation.Input{
		PolicyTypeName:         req.Type,
		CompanyName:            req.CompanyName,
		Website:                req.Website,
		ComplianceRequirements: req.ComplianceRequirements,
		Frameworks:             req.Frameworks,
		Regulations:            req.Regulations,
		EffectiveDate:          req.EffectiveDate,
		ScrapedData:            req.ScrapedData,
	})
	if err != nil {
		h.logger.Error("policy generation failed", "error", err, "org_id", orgID)
		httputil.Error(w, http.StatusBadGateway, "policy generation failed")
		return
	}

	title := req.Title
	if title == "" {
		title = req.CompanyName + " " + req.Type + " policy"
	}

	policy, err := h.policies.Create(r.Context(), org.CreateInput{
		OrganizationID: orgID,
		Title:          title,
		Type:           policyType,
		Content:        content,
		CreatedBy:      userID,
	})
	if err != nil {
		h.logger.Error("generated policy save failed", "error", err, "org_id", orgID)
		httputil.Error(w, http.StatusInternalServerError, "failed to save generated policy")
		return
	}

	httputil.JSON(w, http.StatusCreated, toResponse(policy))
}

// ListTemplates returns the caller's template policies.
// GET /v1/policies
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.policies.ListTemplates(r.Context(), userID)
	if err != nil {
		h.logger.Error("template list failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list templates")
		return
	}

	resp := make([]TemplateResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, toTemplateResponse(p))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// CreateTemplate creates a template policy owned by the caller.
// POST /v1/policies
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		httputil.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	policy, err := h.policies.CreateTemplate(r.Context(), userID, req.Title, req.Content, req.Description)
	if err != nil {
		h.logger.Error("template create failed", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	httputil.JSON(w, http.StatusCreated, toTemplateResponse(policy))
}

// Delete removes a policy.
// DELETE /v1/organizations/{orgID}/policies/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	policyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	if err := h.policies.Delete(r.Context(), policyID); err != nil {
		if errors.Is(err, domain.ErrPolicyNotFound) {
			httputil.Error(w, http.StatusNotFound, "policy not found")
			return
		}
		h.logger.Error("policy delete failed", "error", err, "policy_id", policyID)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete policy")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
