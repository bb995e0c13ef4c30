package service

import (
	"context"
	"strings"

	"github.com/stitch/cms/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Error definitions moved to errors.go

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID, hash string) error
	TouchLogin(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	SetRole(ctx context.Context, userID string, role model.UserRole) error
}

// AuthService handles authentication and user management
type AuthService struct {
	userRepo     UserRepository
	tokenService *TokenService
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo     UserRepository
	TokenService *TokenService
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		userRepo:     cfg.UserRepo,
		tokenService: cfg.TokenService,
	}
}

// RegisterResult represents a successful registration
type RegisterResult struct {
	User      *model.User
	TokenPair *TokenPair
}

// Register creates a new user account with email/password.
// The first account in the system becomes admin, everyone after is an editor.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*RegisterResult, error) {
	// Validate email
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	// Validate password
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		// Fall back to the local part of the email
		username = email[:strings.Index(email, "@")]
	}

	// Check if email already exists
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrEmailAlreadyExists
	}

	// Hash password
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// First user becomes admin
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	role := model.UserRoleEditor
	if count == 0 {
		role = model.UserRoleAdmin
	}

	user := &model.User{
		Email:    email,
		Username: username,
		Hash:     &hash,
		FullName: stringPtr(strings.TrimSpace(stringValue(req.FullName))),
		Role:     role,
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Generate tokens
	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		User:      user,
		TokenPair: tokenPair,
	}, nil
}

// LoginResult represents a successful login
type LoginResult struct {
	User      *model.User
	TokenPair *TokenPair
}

// Login authenticates a user with email/password
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	// Find user by email
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Hash == nil || *user.Hash == "" {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if !checkPassword(req.Password, *user.Hash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// Generate tokens
	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	_ = s.userRepo.TouchLogin(ctx, user.ID)

	return &LoginResult{
		User:      user,
		TokenPair: tokenPair,
	}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers retrieves all users
func (s *AuthService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.List(ctx)
}

// UpdateUser applies a partial update to a user record.
// Role changes require admin and cannot target the caller's own account.
func (s *AuthService) UpdateUser(ctx context.Context, actorID, userID string, req model.UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Preferences != nil {
		user.Preferences = req.Preferences
	}
	if req.Role != nil {
		if !model.IsValidUserRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		if actorID == userID && *req.Role != user.Role {
			return nil, ErrCannotDemoteSelf
		}
		user.Role = *req.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes a user and revokes their sessions
func (s *AuthService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.tokenService.RevokeAllUserTokens(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}

// RefreshTokens validates a refresh token and issues new tokens
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokenService.GetUserIDForRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// Refresh tokens (handles validation and rotation)
	return s.tokenService.RefreshTokens(ctx, refreshToken, user)
}

// Logout revokes a single refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenService.RevokeRefreshToken(ctx, refreshToken)
}

// LogoutAll revokes every refresh token for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	return s.tokenService.RevokeAllUserTokens(ctx, userID)
}

// ValidateAccessToken validates an access token and returns the claims
func (s *AuthService) ValidateAccessToken(token string) (*model.TokenClaims, error) {
	claims, err := s.tokenService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	return &model.TokenClaims{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// ChangePassword changes a user's password
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.Hash != nil && *user.Hash != "" {
		if !checkPassword(oldPassword, *user.Hash) {
			return ErrInvalidCredentials
		}
	}

	// Validate new password
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	// Hash new password
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	// Update password and revoke all tokens (force re-login)
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.tokenService.RevokeAllUserTokens(ctx, userID)
}

// Helper functions

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < model.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > model.MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func isValidEmail(email string) bool {
	return model.IsValidEmail(email)
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// stringValue safely dereferences a string pointer
func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
