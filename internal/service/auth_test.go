package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stitch/cms/internal/model"
)

// Mock implementations

type mockUserRepo struct {
	users      map[string]*model.User
	emailIndex map[string]*model.User
	nextID     int
	createErr  error
	getErr     error
	updateErr  error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:      make(map[string]*model.User),
		emailIndex: make(map[string]*model.User),
	}
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	user.ID = "user:" + user.Email
	user.CreatedOn = time.Now()
	user.UpdatedOn = time.Now()
	m.users[user.ID] = user
	m.emailIndex[user.Email] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.users[id], nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.emailIndex[email], nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	var result []*model.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.users[user.ID] = user
	m.emailIndex[user.Email] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	if user, ok := m.users[userID]; ok {
		user.Hash = &hash
	}
	return nil
}

func (m *mockUserRepo) TouchLogin(ctx context.Context, userID string) error {
	if user, ok := m.users[userID]; ok {
		now := time.Now()
		user.LoginOn = &now
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if user, ok := m.users[id]; ok {
		delete(m.emailIndex, user.Email)
		delete(m.users, id)
	}
	return nil
}

func (m *mockUserRepo) SetRole(ctx context.Context, userID string, role model.UserRole) error {
	if user, ok := m.users[userID]; ok {
		user.Role = role
	}
	return nil
}

// Helper functions

func newTestAuthService(t *testing.T, userRepo UserRepository) *AuthService {
	t.Helper()

	tokenService := NewTokenService(TokenServiceConfig{
		JWTService: createTestJWTService(t),
		TokenRepo:  &mockTokenRepo{},
	})

	return NewAuthService(AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})
}

func registerTestUser(t *testing.T, svc *AuthService, email string) *model.User {
	t.Helper()

	result, err := svc.Register(context.Background(), model.RegisterRequest{
		Email:    email,
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	return result.User
}

// Register Tests

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	result, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "first@example.com",
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.Role != model.UserRoleAdmin {
		t.Errorf("expected first user to be admin, got %s", result.User.Role)
	}
	if !result.User.IsActive {
		t.Error("expected new user to be active")
	}
	if result.TokenPair == nil || result.TokenPair.AccessToken == "" {
		t.Error("expected a token pair after registration")
	}
}

func TestRegister_SubsequentUsersBecomeEditors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())
	registerTestUser(t, svc, "first@example.com")

	result, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "second@example.com",
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.Role != model.UserRoleEditor {
		t.Errorf("expected second user to be editor, got %s", result.User.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())
	registerTestUser(t, svc, "dup@example.com")

	_, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "dup@example.com",
		Password: "secure-password-123",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	_, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "not-an-email",
		Password: "secure-password-123",
	})
	if !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestRegister_PasswordTooShort(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	_, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "user@example.com",
		Password: "short",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestRegister_UsernameFallsBackToEmailLocalPart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	result, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "jordan@example.com",
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.Username != "jordan" {
		t.Errorf("expected username 'jordan', got %q", result.User.Username)
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	result, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "  Mixed.Case@Example.COM  ",
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.User.Email != "mixed.case@example.com" {
		t.Errorf("expected normalized email, got %q", result.User.Email)
	}
}

// Login Tests

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())
	registerTestUser(t, svc, "login@example.com")

	result, err := svc.Login(ctx, model.LoginRequest{
		Email:    "login@example.com",
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TokenPair.AccessToken == "" {
		t.Error("expected access token")
	}
	if result.User.Email != "login@example.com" {
		t.Errorf("unexpected user: %s", result.User.Email)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())
	registerTestUser(t, svc, "login@example.com")

	_, err := svc.Login(ctx, model.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	_, err := svc.Login(ctx, model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "secure-password-123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	svc := newTestAuthService(t, userRepo)
	user := registerTestUser(t, svc, "inactive@example.com")

	userRepo.users[user.ID].IsActive = false

	_, err := svc.Login(ctx, model.LoginRequest{
		Email:    "inactive@example.com",
		Password: "secure-password-123",
	})
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("expected ErrUserInactive, got %v", err)
	}
}

// UpdateUser Tests

func TestUpdateUser_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	svc := newTestAuthService(t, userRepo)
	admin := registerTestUser(t, svc, "admin@example.com")
	editor := registerTestUser(t, svc, "editor@example.com")

	newName := "New Name"
	updated, err := svc.UpdateUser(ctx, admin.ID, editor.ID, model.UpdateUserRequest{
		FullName: &newName,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.FullName == nil || *updated.FullName != "New Name" {
		t.Error("expected full name to be updated")
	}
}

func TestUpdateUser_RoleChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	svc := newTestAuthService(t, userRepo)
	admin := registerTestUser(t, svc, "admin@example.com")
	editor := registerTestUser(t, svc, "editor@example.com")

	role := model.UserRoleViewer
	updated, err := svc.UpdateUser(ctx, admin.ID, editor.ID, model.UpdateUserRequest{
		Role: &role,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Role != model.UserRoleViewer {
		t.Errorf("expected role viewer, got %s", updated.Role)
	}
}

func TestUpdateUser_CannotChangeOwnRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	svc := newTestAuthService(t, userRepo)
	admin := registerTestUser(t, svc, "admin@example.com")

	role := model.UserRoleViewer
	_, err := svc.UpdateUser(ctx, admin.ID, admin.ID, model.UpdateUserRequest{
		Role: &role,
	})
	if !errors.Is(err, ErrCannotDemoteSelf) {
		t.Errorf("expected ErrCannotDemoteSelf, got %v", err)
	}
}

func TestUpdateUser_InvalidRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	svc := newTestAuthService(t, userRepo)
	admin := registerTestUser(t, svc, "admin@example.com")
	editor := registerTestUser(t, svc, "editor@example.com")

	role := model.UserRole("superuser")
	_, err := svc.UpdateUser(ctx, admin.ID, editor.ID, model.UpdateUserRequest{
		Role: &role,
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	_, err := svc.UpdateUser(ctx, "actor", "user:missing", model.UpdateUserRequest{})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ChangePassword Tests

func TestChangePassword_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	svc := newTestAuthService(t, userRepo)
	user := registerTestUser(t, svc, "pw@example.com")

	err := svc.ChangePassword(ctx, user.ID, "secure-password-123", "new-secure-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Old password no longer works
	_, err = svc.Login(ctx, model.LoginRequest{
		Email:    "pw@example.com",
		Password: "secure-password-123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected old password to be rejected, got %v", err)
	}

	// New password works
	if _, err := svc.Login(ctx, model.LoginRequest{
		Email:    "pw@example.com",
		Password: "new-secure-password",
	}); err != nil {
		t.Errorf("expected new password to work, got %v", err)
	}
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	svc := newTestAuthService(t, userRepo)
	user := registerTestUser(t, svc, "pw@example.com")

	err := svc.ChangePassword(ctx, user.ID, "wrong-old-password", "new-secure-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

// DeleteUser Tests

func TestDeleteUser_RemovesUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	userRepo := newMockUserRepo()
	svc := newTestAuthService(t, userRepo)
	user := registerTestUser(t, svc, "gone@example.com")

	if err := svc.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.GetUserByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	err := svc.DeleteUser(ctx, "user:missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ValidateAccessToken Tests

func TestValidateAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestAuthService(t, newMockUserRepo())

	result, err := svc.Register(ctx, model.RegisterRequest{
		Email:    "claims@example.com",
		Password: "secure-password-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateAccessToken(result.TokenPair.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claims.Email != "claims@example.com" {
		t.Errorf("unexpected email claim: %s", claims.Email)
	}
	if claims.Role != string(model.UserRoleAdmin) {
		t.Errorf("expected admin role claim, got %q", claims.Role)
	}
}

// Password helper tests

func TestValidatePassword_Boundaries(t *testing.T) {
	t.Parallel()

	if err := validatePassword(""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}
	if err := validatePassword("1234567"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := validatePassword(strings.Repeat("a", model.MaxPasswordLength+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
	if err := validatePassword("a-valid-password"); err != nil {
		t.Errorf("expected valid password, got %v", err)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := hashPassword("my-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !checkPassword("my-password", hash) {
		t.Error("expected password to verify against its hash")
	}
	if checkPassword("other-password", hash) {
		t.Error("expected wrong password to fail verification")
	}
}
