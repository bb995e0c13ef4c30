package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stitch/cms/internal/middleware"
	"github.com/stitch/cms/internal/model"
)

// ============================================================================
// Test Helpers
// ============================================================================

func makeJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUserContext(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func parseErrorResponse(t *testing.T, body []byte) *model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	if err := json.Unmarshal(body, &problem); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return &problem
}

// ============================================================================
// Register / Login Tests
// ============================================================================

func TestRegister_WrongMethod_ReturnsMethodNotAllowed(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/register", nil)
	rr := httptest.NewRecorder()

	handler.Register(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestRegister_InvalidBody_ReturnsBadRequest(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	problem := parseErrorResponse(t, rr.Body.Bytes())
	if problem.Status != http.StatusBadRequest {
		t.Errorf("expected problem status %d, got %d", http.StatusBadRequest, problem.Status)
	}
}

func TestRegister_UnknownFields_ReturnsBadRequest(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", map[string]string{
		"email":      "test@example.com",
		"password":   "securepassword123",
		"bogusfield": "nope",
	})
	rr := httptest.NewRecorder()

	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestLogin_WrongMethod_ReturnsMethodNotAllowed(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/auth/login", nil)
	rr := httptest.NewRecorder()

	handler.Login(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

// ============================================================================
// Refresh Tests
// ============================================================================

func TestRefresh_MissingToken_ReturnsValidationError(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/refresh", model.RefreshRequest{})
	rr := httptest.NewRecorder()

	handler.Refresh(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}

	problem := parseErrorResponse(t, rr.Body.Bytes())
	if len(problem.Errors) == 0 {
		t.Error("expected field errors in validation response")
	}
}

// ============================================================================
// Authenticated Endpoint Tests
// ============================================================================

func TestMe_NoAuthContext_ReturnsUnauthorized(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	rr := httptest.NewRecorder()

	handler.Me(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestChangePassword_NoAuthContext_ReturnsUnauthorized(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/password", ChangePasswordRequest{
		OldPassword: "oldpass123",
		NewPassword: "newpass123",
	})
	rr := httptest.NewRecorder()

	handler.ChangePassword(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestLogout_NoTokenNoAuthContext_ReturnsUnauthorized(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/logout", nil)
	rr := httptest.NewRecorder()

	handler.Logout(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

// ============================================================================
// User Management Tests
// ============================================================================

func TestGetUser_MissingPathValue_ReturnsBadRequest(t *testing.T) {
	handler := NewAuthHandler(nil)

	// Request built outside a ServeMux has no path values
	req := withUserContext(httptest.NewRequest(http.MethodGet, "/v1/users/", nil), "user:admin")
	rr := httptest.NewRecorder()

	handler.GetUser(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestUpdateUser_MissingPathValue_ReturnsBadRequest(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := makeJSONRequest(http.MethodPatch, "/v1/users/", model.UpdateUserRequest{})
	rr := httptest.NewRecorder()

	handler.UpdateUser(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestDeleteUser_MissingPathValue_ReturnsBadRequest(t *testing.T) {
	handler := NewAuthHandler(nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/", nil)
	rr := httptest.NewRecorder()

	handler.DeleteUser(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}
