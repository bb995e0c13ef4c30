package model

import "time"

// SiteSetting is one key/value pair of site configuration.
// Value holds arbitrary JSON.
type SiteSetting struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Value       any       `json:"value"`
	Description *string   `json:"description,omitempty"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// CreateSettingRequest creates a new setting
type CreateSettingRequest struct {
	Key         string  `json:"key"`
	Value       any     `json:"value"`
	Description *string `json:"description,omitempty"`
}

// UpdateSettingRequest replaces a setting's value
type UpdateSettingRequest struct {
	Value       any     `json:"value"`
	Description *string `json:"description,omitempty"`
}

// SiteConfig is the composite site configuration assembled from settings,
// merged over defaults.
type SiteConfig struct {
	SiteTitle       string         `json:"site_title"`
	SiteDescription string         `json:"site_description"`
	LogoURL         *string        `json:"logo_url,omitempty"`
	FaviconURL      *string        `json:"favicon_url,omitempty"`
	FooterText      *string        `json:"footer_text,omitempty"`
	ContactEmail    *string        `json:"contact_email,omitempty"`
	SocialLinks     map[string]string `json:"social_links,omitempty"`
	Theme           ThemeSettings  `json:"theme"`
}

// ThemeSettings controls front-end presentation
type ThemeSettings struct {
	PrimaryColor    string `json:"primary_color"`
	SecondaryColor  string `json:"secondary_color"`
	DarkModeEnabled bool   `json:"dark_mode_enabled"`
	FontFamily      string `json:"font_family"`
}

// DefaultSiteConfig returns the baseline configuration seeded on first run
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		SiteTitle:       "Stitch CMS",
		SiteDescription: "A lightweight content management system",
		SocialLinks:     map[string]string{},
		Theme: ThemeSettings{
			PrimaryColor:    "#2563eb",
			SecondaryColor:  "#64748b",
			DarkModeEnabled: false,
			FontFamily:      "Inter",
		},
	}
}

// Constraints
const (
	MaxSettingKeyLength = 100
)
