package model

import "time"

// UserRole represents the role of a user in the system
type UserRole string

const (
	UserRoleViewer UserRole = "viewer" // Read-only access
	UserRoleEditor UserRole = "editor" // Can manage content and events
	UserRoleAdmin  UserRole = "admin"  // Full access including settings, modules, users
)

// ValidUserRoles lists every accepted role value
var ValidUserRoles = []UserRole{UserRoleViewer, UserRoleEditor, UserRoleAdmin}

// IsValidUserRole reports whether r is a known role
func IsValidUserRole(r UserRole) bool {
	for _, v := range ValidUserRoles {
		if r == v {
			return true
		}
	}
	return false
}

// User represents an account in the CMS
type User struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Username    string         `json:"username"`
	Hash        *string        `json:"-"` // Never expose password hash
	FullName    *string        `json:"full_name,omitempty"`
	Role        UserRole       `json:"role"`
	IsActive    bool           `json:"is_active"`
	Preferences map[string]any `json:"preferences,omitempty"`
	CreatedOn   time.Time      `json:"created_on"`
	UpdatedOn   time.Time      `json:"updated_on"`
	LoginOn     *time.Time     `json:"login_on,omitempty"`
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CanEdit returns true if the user can create or modify content
func (u *User) CanEdit() bool {
	return u.Role == UserRoleEditor || u.Role == UserRoleAdmin
}

// TokenClaims represents extracted JWT claims
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// RegisterRequest represents a request to create an account
type RegisterRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// LoginRequest represents a credential login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries an opaque refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"` // always "Bearer"
	ExpiresOn    time.Time `json:"expires_on"`
	User         *User     `json:"user,omitempty"`
}

// UpdateUserRequest represents a PATCH to a user record
type UpdateUserRequest struct {
	Username    *string        `json:"username,omitempty"`
	FullName    *string        `json:"full_name,omitempty"`
	Role        *UserRole      `json:"role,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// Constraints
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxUsernameLength = 50
)
