package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	authsvc "github.com/policyflow/policyflow/internal/auth"
	"github.com/policyflow/policyflow/internal/httputil"
	"github.com/policyflow/policyflow/pkg/domain"
)

// Handler handles registration and login endpoints.
type Handler struct {
	logger      *slog.Logger
	authService *authsvc.Service
}

// NewHandler creates a new auth handler.
func NewHandler(logger *slog.Logger, authService *authsvc.Service) *Handler {
	return &Handler{logger: logger, authService: authService}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents a successful login response.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// UserResponse represents the authenticated user.
type UserResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

// Register handles user registration.
// POST /v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "user already exists")
			return
		}
		if errors.Is(err, authsvc.ErrWeakPassword) {
			httputil.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
			return
		}
		h.logger.Error("registration failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	httputil.JSON(w, http.StatusCreated, UserResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
	})
}

// Login handles email/password login.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	httputil.JSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
		User: UserResponse{
			ID:    user.ID.String(),
			Email: user.Email,
			Name:  user.Name,
		},
	})
}
