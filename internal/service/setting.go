package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/pkg/secrets"
)

// SettingRepository defines the interface for site setting storage
type SettingRepository interface {
	Create(ctx context.Context, setting *model.SiteSetting) error
	GetByKey(ctx context.Context, key string) (*model.SiteSetting, error)
	List(ctx context.Context) ([]*model.SiteSetting, error)
	UpdateByKey(ctx context.Context, key string, value any, description *string) (*model.SiteSetting, error)
	DeleteByKey(ctx context.Context, key string) error
}

// SettingService manages site settings and the composite site config
type SettingService struct {
	settingRepo SettingRepository
}

// SettingServiceConfig holds configuration for the setting service
type SettingServiceConfig struct {
	SettingRepo SettingRepository
}

// NewSettingService creates a new setting service
func NewSettingService(cfg SettingServiceConfig) *SettingService {
	return &SettingService{settingRepo: cfg.SettingRepo}
}

// siteConfigKey stores the composite site configuration
const siteConfigKey = "site_config"

// List retrieves all settings with secret-looking values masked
func (s *SettingService) List(ctx context.Context) ([]*model.SiteSetting, error) {
	settings, err := s.settingRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	masked := make([]*model.SiteSetting, 0, len(settings))
	for _, setting := range settings {
		masked = append(masked, maskSetting(setting))
	}
	return masked, nil
}

// Get retrieves one setting by key with secrets masked
func (s *SettingService) Get(ctx context.Context, key string) (*model.SiteSetting, error) {
	setting, err := s.settingRepo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, ErrSettingNotFound
	}
	return maskSetting(setting), nil
}

// Create creates a new setting
func (s *SettingService) Create(ctx context.Context, req model.CreateSettingRequest) (*model.SiteSetting, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, ErrSettingKeyRequired
	}
	if len(key) > model.MaxSettingKeyLength {
		return nil, ErrSettingKeyTooLong
	}

	setting := &model.SiteSetting{
		Key:         key,
		Value:       req.Value,
		Description: req.Description,
	}

	if err := s.settingRepo.Create(ctx, setting); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrSettingKeyExists
		}
		return nil, err
	}

	return maskSetting(setting), nil
}

// Update replaces a setting's value
func (s *SettingService) Update(ctx context.Context, key string, req model.UpdateSettingRequest) (*model.SiteSetting, error) {
	updated, err := s.settingRepo.UpdateByKey(ctx, key, req.Value, req.Description)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSettingNotFound
	}
	return maskSetting(updated), nil
}

// Delete removes a setting
func (s *SettingService) Delete(ctx context.Context, key string) error {
	existing, err := s.settingRepo.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrSettingNotFound
	}
	return s.settingRepo.DeleteByKey(ctx, key)
}

// GetSiteConfig returns the stored site configuration merged over defaults
func (s *SettingService) GetSiteConfig(ctx context.Context) (*model.SiteConfig, error) {
	config := model.DefaultSiteConfig()

	setting, err := s.settingRepo.GetByKey(ctx, siteConfigKey)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return &config, nil
	}

	// Merge the stored value over the defaults via JSON round-trip
	stored, err := json.Marshal(setting.Value)
	if err != nil {
		return &config, nil
	}
	if err := json.Unmarshal(stored, &config); err != nil {
		return &config, nil
	}

	return &config, nil
}

// UpdateSiteConfig replaces the composite site configuration
func (s *SettingService) UpdateSiteConfig(ctx context.Context, config model.SiteConfig) (*model.SiteConfig, error) {
	// Store as a generic map so the setting value stays plain JSON
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	var value map[string]any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}

	updated, err := s.settingRepo.UpdateByKey(ctx, siteConfigKey, value, nil)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		setting := &model.SiteSetting{
			Key:         siteConfigKey,
			Value:       value,
			Description: stringPtr("Composite site configuration"),
		}
		if err := s.settingRepo.Create(ctx, setting); err != nil {
			return nil, err
		}
	}

	return &config, nil
}

// defaultSettings are seeded by InitializeDefaults when absent
var defaultSettings = []model.CreateSettingRequest{
	{Key: "posts_per_page", Value: 10, Description: stringPtr("Items per page on public listings")},
	{Key: "allow_comments", Value: false, Description: stringPtr("Whether public comments are enabled")},
	{Key: "maintenance_mode", Value: false, Description: stringPtr("Serve a maintenance page to visitors")},
	{Key: "timezone", Value: "UTC", Description: stringPtr("Display timezone for dates")},
	{Key: "date_format", Value: "2006-01-02", Description: stringPtr("Display format for dates")},
}

// InitializeDefaults seeds missing default settings. Existing keys are
// never overwritten.
func (s *SettingService) InitializeDefaults(ctx context.Context) (int, error) {
	created := 0

	for _, def := range defaultSettings {
		existing, err := s.settingRepo.GetByKey(ctx, def.Key)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		setting := &model.SiteSetting{
			Key:         def.Key,
			Value:       def.Value,
			Description: def.Description,
		}
		if err := s.settingRepo.Create(ctx, setting); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				continue
			}
			return created, err
		}
		created++
	}

	// The composite config is seeded as a setting too
	existing, err := s.settingRepo.GetByKey(ctx, siteConfigKey)
	if err != nil {
		return created, err
	}
	if existing == nil {
		if _, err := s.UpdateSiteConfig(ctx, model.DefaultSiteConfig()); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// maskSetting returns a copy with secret-looking values masked
func maskSetting(setting *model.SiteSetting) *model.SiteSetting {
	masked := *setting

	if secrets.IsSensitiveKey(setting.Key) {
		if str, ok := setting.Value.(string); ok {
			masked.Value = secrets.MaskValue(str)
			return &masked
		}
	}
	if nested, ok := setting.Value.(map[string]any); ok {
		masked.Value = secrets.MaskSecrets(nested)
	}

	return &masked
}
