package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/pkg/jwt"
)

// AuthService defines the interface for token validation
type AuthService interface {
	ValidateAccessToken(token string) (*model.TokenClaims, error)
}

// Auth returns a middleware that validates JWT tokens
func Auth(authService AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				model.NewUnauthorizedError("missing authorization header").WriteJSON(w)
				return
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				model.NewUnauthorizedError("invalid authorization header format").WriteJSON(w)
				return
			}

			token := parts[1]

			// Validate token
			claims, err := authService.ValidateAccessToken(token)
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					model.NewUnauthorizedError("token expired").WriteJSON(w)
				case errors.Is(err, jwt.ErrInvalidSignature):
					model.NewUnauthorizedError("invalid token signature").WriteJSON(w)
				default:
					model.NewUnauthorizedError("invalid token").WriteJSON(w)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// ClaimsKey is the context key for token claims
const ClaimsKey contextKey = "claims"

// UserEmailKey is the context key for user email
const UserEmailKey contextKey = "userEmail"

// UserRoleKey is the context key for the user's role
const UserRoleKey contextKey = "userRole"

func withClaims(ctx context.Context, claims *model.TokenClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
	ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetUserID extracts the user ID from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserEmail extracts the user email from context
func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

// GetUserRole extracts the user's role from context
func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

// GetClaims extracts the token claims from context
func GetClaims(ctx context.Context) *model.TokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*model.TokenClaims); ok {
		return claims
	}
	return nil
}

// OptionalAuth is like Auth but doesn't require authentication.
// It will set user info in context if a token is present and valid.
func OptionalAuth(authService AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				next.ServeHTTP(w, r)
				return
			}

			token := parts[1]
			claims, err := authService.ValidateAccessToken(token)
			if err != nil {
				// Invalid token, but optional so continue without auth
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// RequireRole returns a middleware that rejects requests whose token role
// is below the required one. Must run after Auth. Role order is
// viewer < editor < admin.
func RequireRole(required model.UserRole) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetUserRole(r.Context())
			if role == "" {
				model.NewUnauthorizedError("authentication required").WriteJSON(w)
				return
			}

			if roleRank(model.UserRole(role)) < roleRank(required) {
				model.NewForbiddenError("insufficient permissions").WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for RequireRole(admin)
func RequireAdmin() Middleware {
	return RequireRole(model.UserRoleAdmin)
}

// RequireEditor is shorthand for RequireRole(editor)
func RequireEditor() Middleware {
	return RequireRole(model.UserRoleEditor)
}

func roleRank(role model.UserRole) int {
	switch role {
	case model.UserRoleAdmin:
		return 3
	case model.UserRoleEditor:
		return 2
	case model.UserRoleViewer:
		return 1
	default:
		return 0
	}
}
