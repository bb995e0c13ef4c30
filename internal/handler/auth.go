package handler

import (
	"net/http"

	"github.com/stitch/cms/internal/middleware"
	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// AuthHandler handles authentication and user management endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// ChangePasswordRequest represents the change-password endpoint request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// SessionResponse pairs a user with a token set
type SessionResponse struct {
	User  *model.User        `json:"user"`
	Token *service.TokenPair `json:"token"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, model.NewMethodNotAllowedError("POST"))
		return
	}

	var req model.RegisterRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, SessionResponse{
		User:  result.User,
		Token: result.TokenPair,
	}, map[string]string{
		"self": "/v1/auth/me",
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, model.NewMethodNotAllowedError("POST"))
		return
	}

	var req model.LoginRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, SessionResponse{
		User:  result.User,
		Token: result.TokenPair,
	}, map[string]string{
		"self": "/v1/auth/me",
	})
}

// Refresh handles POST /v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, model.NewMethodNotAllowedError("POST"))
		return
	}

	var req model.RefreshRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if req.RefreshToken == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "refresh_token", Message: "refresh_token is required"},
		}))
		return
	}

	tokenPair, err := h.authService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, tokenPair, nil)
}

// Logout handles POST /v1/auth/logout.
// Revokes the refresh token named in the body, or every session for
// the authenticated user when the body is empty.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, model.NewMethodNotAllowedError("POST"))
		return
	}

	var req model.RefreshRequest
	_ = DecodeJSON(r, &req)

	if req.RefreshToken != "" {
		if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
			WriteError(w, model.NewInternalError("logout failed"))
			return
		}
		WriteNoContent(w)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.authService.LogoutAll(r.Context(), userID); err != nil {
		WriteError(w, model.NewInternalError("logout failed"))
		return
	}

	WriteNoContent(w)
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, model.NewMethodNotAllowedError("GET"))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, map[string]string{
		"self": "/v1/auth/me",
	})
}

// ChangePassword handles POST /v1/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, model.NewMethodNotAllowedError("POST"))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.authService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// ListUsers handles GET /v1/users (admin only)
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, model.NewMethodNotAllowedError("GET"))
		return
	}

	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		WriteError(w, model.NewInternalError("failed to list users"))
		return
	}

	WriteCollection(w, http.StatusOK, users, nil, nil)
}

// GetUser handles GET /v1/users/{userId} (admin only)
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// UpdateUser handles PATCH /v1/users/{userId} (admin only)
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	var req model.UpdateUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	actorID := middleware.GetUserID(r.Context())
	user, err := h.authService.UpdateUser(r.Context(), actorID, userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}

// DeleteUser handles DELETE /v1/users/{userId} (admin only)
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, model.NewBadRequestError("user ID required"))
		return
	}

	if err := h.authService.DeleteUser(r.Context(), userID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
