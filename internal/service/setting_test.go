package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// mockSettingRepo keeps settings in a map, closer to the real thing than
// per-method function fields since most tests exercise seed-then-read flows
type mockSettingRepo struct {
	settings  map[string]*model.SiteSetting
	createErr error
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{settings: make(map[string]*model.SiteSetting)}
}

func (m *mockSettingRepo) Create(ctx context.Context, setting *model.SiteSetting) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.settings[setting.Key]; exists {
		return database.ErrDuplicate
	}
	setting.ID = "site_setting:" + setting.Key
	m.settings[setting.Key] = setting
	return nil
}

func (m *mockSettingRepo) GetByKey(ctx context.Context, key string) (*model.SiteSetting, error) {
	return m.settings[key], nil
}

func (m *mockSettingRepo) List(ctx context.Context) ([]*model.SiteSetting, error) {
	var result []*model.SiteSetting
	for _, s := range m.settings {
		result = append(result, s)
	}
	return result, nil
}

func (m *mockSettingRepo) UpdateByKey(ctx context.Context, key string, value any, description *string) (*model.SiteSetting, error) {
	setting, ok := m.settings[key]
	if !ok {
		return nil, nil
	}
	setting.Value = value
	if description != nil {
		setting.Description = description
	}
	return setting, nil
}

func (m *mockSettingRepo) DeleteByKey(ctx context.Context, key string) error {
	delete(m.settings, key)
	return nil
}

// Create Tests

func TestSettingCreate_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewSettingService(SettingServiceConfig{SettingRepo: newMockSettingRepo()})

	setting, err := svc.Create(ctx, model.CreateSettingRequest{Key: "site_name", Value: "My Site"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setting.Value != "My Site" {
		t.Errorf("unexpected value: %v", setting.Value)
	}
}

func TestSettingCreate_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewSettingService(SettingServiceConfig{SettingRepo: newMockSettingRepo()})

	if _, err := svc.Create(ctx, model.CreateSettingRequest{Key: "  "}); !errors.Is(err, ErrSettingKeyRequired) {
		t.Errorf("expected ErrSettingKeyRequired, got %v", err)
	}

	long := strings.Repeat("k", model.MaxSettingKeyLength+1)
	if _, err := svc.Create(ctx, model.CreateSettingRequest{Key: long}); !errors.Is(err, ErrSettingKeyTooLong) {
		t.Errorf("expected ErrSettingKeyTooLong, got %v", err)
	}
}

func TestSettingCreate_DuplicateKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewSettingService(SettingServiceConfig{SettingRepo: newMockSettingRepo()})

	if _, err := svc.Create(ctx, model.CreateSettingRequest{Key: "dup", Value: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, model.CreateSettingRequest{Key: "dup", Value: 2}); !errors.Is(err, ErrSettingKeyExists) {
		t.Errorf("expected ErrSettingKeyExists, got %v", err)
	}
}

// Masking Tests

func TestSettingGet_MasksSecretValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMockSettingRepo()
	svc := NewSettingService(SettingServiceConfig{SettingRepo: repo})

	if _, err := svc.Create(ctx, model.CreateSettingRequest{
		Key:   "smtp_password",
		Value: "super-secret-password",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	setting, err := svc.Get(ctx, "smtp_password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	masked, ok := setting.Value.(string)
	if !ok || strings.Contains(masked, "super-secret") {
		t.Errorf("expected masked value, got %v", setting.Value)
	}
	if !strings.HasPrefix(masked, "****") {
		t.Errorf("expected mask prefix, got %q", masked)
	}

	// Raw value stays intact in storage
	if repo.settings["smtp_password"].Value != "super-secret-password" {
		t.Error("expected stored value to be untouched")
	}
}

func TestSettingGet_MasksNestedSecrets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewSettingService(SettingServiceConfig{SettingRepo: newMockSettingRepo()})

	if _, err := svc.Create(ctx, model.CreateSettingRequest{
		Key: "integrations",
		Value: map[string]any{
			"api_key":  "sk-hidden-value",
			"endpoint": "https://example.com",
		},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	setting, err := svc.Get(ctx, "integrations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nested := setting.Value.(map[string]any)
	if key := nested["api_key"].(string); strings.Contains(key, "hidden") {
		t.Errorf("expected nested secret to be masked, got %q", key)
	}
	if nested["endpoint"] != "https://example.com" {
		t.Errorf("expected non-secret value untouched, got %v", nested["endpoint"])
	}
}

func TestSettingGet_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewSettingService(SettingServiceConfig{SettingRepo: newMockSettingRepo()})

	if _, err := svc.Get(ctx, "nope"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("expected ErrSettingNotFound, got %v", err)
	}
}

// SiteConfig Tests

func TestGetSiteConfig_DefaultsWhenUnset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewSettingService(SettingServiceConfig{SettingRepo: newMockSettingRepo()})

	config, err := svc.GetSiteConfig(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := model.DefaultSiteConfig()
	if config.SiteTitle != defaults.SiteTitle {
		t.Errorf("expected default site title, got %q", config.SiteTitle)
	}
}

func TestSiteConfig_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewSettingService(SettingServiceConfig{SettingRepo: newMockSettingRepo()})

	updated := model.DefaultSiteConfig()
	updated.SiteTitle = "Rebranded"

	if _, err := svc.UpdateSiteConfig(ctx, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	config, err := svc.GetSiteConfig(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.SiteTitle != "Rebranded" {
		t.Errorf("expected stored title, got %q", config.SiteTitle)
	}
}

// InitializeDefaults Tests

func TestInitializeDefaults_SeedsMissingOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMockSettingRepo()
	svc := NewSettingService(SettingServiceConfig{SettingRepo: repo})

	// Pre-existing value must survive
	if _, err := svc.Create(ctx, model.CreateSettingRequest{Key: "posts_per_page", Value: 25}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := svc.InitializeDefaults(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 4 remaining defaults plus the composite config
	if created != 5 {
		t.Errorf("expected 5 seeded settings, got %d", created)
	}
	if repo.settings["posts_per_page"].Value != 25 {
		t.Error("expected existing setting to be preserved")
	}
	if repo.settings["timezone"] == nil {
		t.Error("expected timezone default to be seeded")
	}

	// A second run seeds nothing
	created, err = svc.InitializeDefaults(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 0 {
		t.Errorf("expected idempotent second run, got %d", created)
	}
}
