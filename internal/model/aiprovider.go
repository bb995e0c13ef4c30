package model

import "time"

// AI provider name constants
const (
	AIProviderOpenAI     = "openai"
	AIProviderAnthropic  = "anthropic"
	AIProviderOpenRouter = "openrouter"
	AIProviderGoogle     = "google"
)

// ValidAIProviders lists supported provider names
var ValidAIProviders = []string{
	AIProviderOpenAI, AIProviderAnthropic, AIProviderOpenRouter, AIProviderGoogle,
}

// AIProvider stores credentials and configuration for one upstream AI service.
// At most one provider is active at a time.
type AIProvider struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	APIKey      *string `json:"-"` // encrypted at rest
	BaseURL     *string `json:"base_url,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsDefault   bool    `json:"is_default"`

	Configuration map[string]any `json:"configuration,omitempty"` // model, temperature, max_tokens

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// AIProviderPublic is the API representation of a provider.
// The key itself never leaves the server.
type AIProviderPublic struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	DisplayName   string         `json:"display_name"`
	BaseURL       *string        `json:"base_url,omitempty"`
	IsActive      bool           `json:"is_active"`
	IsDefault     bool           `json:"is_default"`
	HasAPIKey     bool           `json:"has_api_key"`
	Configuration map[string]any `json:"configuration,omitempty"`
	CreatedOn     time.Time      `json:"created_on"`
	UpdatedOn     time.Time      `json:"updated_on"`
}

// ToPublic converts a provider to its API representation
func (p *AIProvider) ToPublic() *AIProviderPublic {
	return &AIProviderPublic{
		ID:            p.ID,
		Name:          p.Name,
		DisplayName:   p.DisplayName,
		BaseURL:       p.BaseURL,
		IsActive:      p.IsActive,
		IsDefault:     p.IsDefault,
		HasAPIKey:     p.APIKey != nil && *p.APIKey != "",
		Configuration: p.Configuration,
		CreatedOn:     p.CreatedOn,
		UpdatedOn:     p.UpdatedOn,
	}
}

// UpsertAIProviderRequest creates or replaces a provider configuration by name
type UpsertAIProviderRequest struct {
	Name          string         `json:"name"`
	DisplayName   *string        `json:"display_name,omitempty"`
	APIKey        *string        `json:"api_key,omitempty"`
	BaseURL       *string        `json:"base_url,omitempty"`
	IsActive      *bool          `json:"is_active,omitempty"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// GenerateRequest asks the active provider for a completion
type GenerateRequest struct {
	Prompt      string   `json:"prompt"`
	System      *string  `json:"system,omitempty"`
	Model       *string  `json:"model,omitempty"`       // overrides provider default
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// GenerateResponse carries the completion and usage back to the caller
type GenerateResponse struct {
	Content  string         `json:"content"`
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Usage    map[string]int `json:"usage,omitempty"` // prompt_tokens, completion_tokens
}

// ContentSuggestions holds generated SEO and readability advice for a piece of content
type ContentSuggestions struct {
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
	Keywords        []string `json:"keywords"`
	Readability     []string `json:"readability"` // improvement notes
	Source          string   `json:"source"`      // provider name or "heuristic"
	GeneratedOn     time.Time `json:"generated_on"`
}
