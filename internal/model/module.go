package model

import (
	"strings"
	"time"
)

// AvailableModule describes an installable module in the static catalog
type AvailableModule struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	Description     string   `json:"description"`
	Version         string   `json:"version"`
	Category        string   `json:"category"`
	Features        []string `json:"features"`
	RequiredConfig  []string `json:"required_config"`  // keys that must be set before activation
	APIRequirements []string `json:"api_requirements"` // external keys the module needs
}

// AvailableModules is the static catalog of installable modules
var AvailableModules = []AvailableModule{
	{
		Name:            "google_analytics",
		DisplayName:     "Google Analytics",
		Description:     "Track site traffic and visitor behaviour with Google Analytics 4",
		Version:         "1.0.0",
		Category:        "analytics",
		Features:        []string{"pageview tracking", "event tracking", "audience reports"},
		RequiredConfig:  []string{"measurement_id"},
		APIRequirements: []string{"google_api_key"},
	},
	{
		Name:            "seo_optimizer",
		DisplayName:     "SEO Optimizer",
		Description:     "Automated SEO analysis and metadata suggestions for published content",
		Version:         "1.0.0",
		Category:        "seo",
		Features:        []string{"meta tag analysis", "keyword density", "sitemap generation"},
		RequiredConfig:  []string{"site_url"},
		APIRequirements: nil,
	},
	{
		Name:            "social_media",
		DisplayName:     "Social Media Integration",
		Description:     "Cross-post published content to connected social accounts",
		Version:         "1.0.0",
		Category:        "marketing",
		Features:        []string{"auto posting", "share buttons", "open graph tags"},
		RequiredConfig:  []string{"platforms"},
		APIRequirements: []string{"twitter_api_key", "facebook_api_key"},
	},
	{
		Name:            "email_marketing",
		DisplayName:     "Email Marketing",
		Description:     "Newsletter subscriptions and campaign delivery",
		Version:         "1.0.0",
		Category:        "marketing",
		Features:        []string{"subscriber lists", "campaign scheduling", "open tracking"},
		RequiredConfig:  []string{"sender_email", "provider"},
		APIRequirements: []string{"smtp_credentials"},
	},
	{
		Name:            "backup_manager",
		DisplayName:     "Backup Manager",
		Description:     "Scheduled backups of content and settings to external storage",
		Version:         "1.0.0",
		Category:        "system",
		Features:        []string{"scheduled backups", "retention policy", "restore points"},
		RequiredConfig:  []string{"backup_schedule", "storage_path"},
		APIRequirements: nil,
	},
}

// FindAvailableModule looks up a catalog entry by name
func FindAvailableModule(name string) *AvailableModule {
	for i := range AvailableModules {
		if AvailableModules[i].Name == name {
			return &AvailableModules[i]
		}
	}
	return nil
}

// Module represents an installed module instance
type Module struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   *string        `json:"description,omitempty"`
	Version       string         `json:"version"`
	IsActive      bool           `json:"is_active"`
	Configuration map[string]any `json:"configuration,omitempty"`
	APIKeys       map[string]any `json:"-"` // encrypted at rest, never serialized
	CreatedOn     time.Time      `json:"created_on"`
	UpdatedOn     time.Time      `json:"updated_on"`
}

// ModulePublic is the API representation of an installed module.
// API key material is reduced to a presence flag.
type ModulePublic struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	DisplayName   string         `json:"display_name"`
	Description   *string        `json:"description,omitempty"`
	Version       string         `json:"version"`
	Category      string         `json:"category"`
	IsActive      bool           `json:"is_active"`
	Configuration map[string]any `json:"configuration,omitempty"`
	HasAPIKeys    bool           `json:"has_api_keys"`
	CreatedOn     time.Time      `json:"created_on"`
	UpdatedOn     time.Time      `json:"updated_on"`
}

// ToPublic converts a Module to its API representation
func (m *Module) ToPublic() *ModulePublic {
	pub := &ModulePublic{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Version:       m.Version,
		IsActive:      m.IsActive,
		Configuration: m.Configuration,
		HasAPIKeys:    len(m.APIKeys) > 0,
		CreatedOn:     m.CreatedOn,
		UpdatedOn:     m.UpdatedOn,
	}
	if cat := FindAvailableModule(m.Name); cat != nil {
		pub.DisplayName = cat.DisplayName
		pub.Category = cat.Category
	}
	return pub
}

// MissingConfigKeys returns the required_config keys that are absent or empty
func (m *Module) MissingConfigKeys(catalog *AvailableModule) []string {
	var missing []string
	for _, key := range catalog.RequiredConfig {
		v, ok := m.Configuration[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// UpdateModuleRequest represents a PATCH to an installed module
type UpdateModuleRequest struct {
	Description   *string        `json:"description,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
	APIKeys       map[string]any `json:"api_keys,omitempty"`
}
