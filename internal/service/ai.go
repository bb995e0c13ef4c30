package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/pkg/secrets"
)

// AIProviderRepository defines the interface for AI provider storage
type AIProviderRepository interface {
	Create(ctx context.Context, provider *model.AIProvider) error
	GetByName(ctx context.Context, name string) (*model.AIProvider, error)
	GetActive(ctx context.Context) (*model.AIProvider, error)
	List(ctx context.Context) ([]*model.AIProvider, error)
	Update(ctx context.Context, providerID string, updates map[string]interface{}) (*model.AIProvider, error)
	DeactivateAll(ctx context.Context) error
	Delete(ctx context.Context, providerID string) error
}

// AIService manages provider credentials and dispatches generation requests
type AIService struct {
	providerRepo AIProviderRepository
	cipher       *secrets.Cipher // nil when no encryption key is configured
	httpClient   *http.Client
}

// AIServiceConfig holds configuration for the AI service
type AIServiceConfig struct {
	ProviderRepo AIProviderRepository
	Cipher       *secrets.Cipher
	// HTTPClient overrides the default client, used in tests
	HTTPClient *http.Client
}

// NewAIService creates a new AI service
func NewAIService(cfg AIServiceConfig) *AIService {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return &AIService{
		providerRepo: cfg.ProviderRepo,
		cipher:       cfg.Cipher,
		httpClient:   httpClient,
	}
}

var defaultDisplayNames = map[string]string{
	model.AIProviderOpenAI:     "OpenAI",
	model.AIProviderAnthropic:  "Anthropic",
	model.AIProviderOpenRouter: "OpenRouter",
	model.AIProviderGoogle:     "Google Gemini",
}

var defaultModels = map[string]string{
	model.AIProviderOpenAI:     "gpt-4o-mini",
	model.AIProviderAnthropic:  "claude-3-5-sonnet-20241022",
	model.AIProviderOpenRouter: "openai/gpt-4o-mini",
	model.AIProviderGoogle:     "gemini-2.0-flash",
}

// ListProviders returns all configured providers without key material
func (s *AIService) ListProviders(ctx context.Context) ([]*model.AIProviderPublic, error) {
	providers, err := s.providerRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*model.AIProviderPublic, 0, len(providers))
	for _, p := range providers {
		result = append(result, p.ToPublic())
	}
	return result, nil
}

// UpsertProvider creates or updates a provider configuration by name.
// A new API key is encrypted before storage. Activating a provider
// deactivates every other one first.
func (s *AIService) UpsertProvider(ctx context.Context, req model.UpsertAIProviderRequest) (*model.AIProviderPublic, error) {
	if !contains(model.ValidAIProviders, req.Name) {
		return nil, ErrUnknownAIProvider
	}

	var encryptedKey *string
	if req.APIKey != nil && *req.APIKey != "" {
		key := *req.APIKey
		if s.cipher != nil {
			enc, err := s.cipher.Encrypt(key)
			if err != nil {
				return nil, fmt.Errorf("encrypting api key: %w", err)
			}
			key = enc
		}
		encryptedKey = &key
	}

	activate := req.IsActive != nil && *req.IsActive
	if activate {
		if err := s.providerRepo.DeactivateAll(ctx); err != nil {
			return nil, err
		}
	}

	existing, err := s.providerRepo.GetByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		displayName := defaultDisplayNames[req.Name]
		if req.DisplayName != nil {
			displayName = *req.DisplayName
		}

		provider := &model.AIProvider{
			Name:          req.Name,
			DisplayName:   displayName,
			APIKey:        encryptedKey,
			BaseURL:       req.BaseURL,
			IsActive:      activate,
			Configuration: req.Configuration,
		}
		if err := s.providerRepo.Create(ctx, provider); err != nil {
			return nil, err
		}
		return provider.ToPublic(), nil
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if encryptedKey != nil {
		updates["api_key"] = *encryptedKey
	}
	if req.BaseURL != nil {
		updates["base_url"] = *req.BaseURL
	}
	if req.Configuration != nil {
		updates["configuration"] = req.Configuration
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return existing.ToPublic(), nil
	}

	updated, err := s.providerRepo.Update(ctx, existing.ID, updates)
	if err != nil {
		return nil, err
	}
	return updated.ToPublic(), nil
}

// ActivateProvider makes the named provider the single active one
func (s *AIService) ActivateProvider(ctx context.Context, name string) (*model.AIProviderPublic, error) {
	provider, err := s.providerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrAIProviderNotFound
	}

	if err := s.providerRepo.DeactivateAll(ctx); err != nil {
		return nil, err
	}

	updated, err := s.providerRepo.Update(ctx, provider.ID, map[string]interface{}{"is_active": true})
	if err != nil {
		return nil, err
	}
	return updated.ToPublic(), nil
}

// DeleteProvider removes a provider configuration
func (s *AIService) DeleteProvider(ctx context.Context, name string) error {
	provider, err := s.providerRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if provider == nil {
		return ErrAIProviderNotFound
	}
	return s.providerRepo.Delete(ctx, provider.ID)
}

// Generate sends a completion request to the active provider
func (s *AIService) Generate(ctx context.Context, req model.GenerateRequest) (*model.GenerateResponse, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, ErrPromptRequired
	}

	provider, err := s.providerRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrNoActiveAIProvider
	}

	apiKey, err := s.decryptKey(provider)
	if err != nil {
		return nil, err
	}

	modelName := defaultModels[provider.Name]
	if m, ok := provider.Configuration["model"].(string); ok && m != "" {
		modelName = m
	}
	if req.Model != nil && *req.Model != "" {
		modelName = *req.Model
	}

	maxTokens := 1024
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		maxTokens = *req.MaxTokens
	}
	temperature := 0.7
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	switch provider.Name {
	case model.AIProviderOpenAI, model.AIProviderOpenRouter:
		return s.generateChatCompletions(ctx, provider, apiKey, modelName, req, maxTokens, temperature)
	case model.AIProviderAnthropic:
		return s.generateAnthropic(ctx, provider, apiKey, modelName, req, maxTokens, temperature)
	case model.AIProviderGoogle:
		return s.generateGoogle(ctx, apiKey, modelName, req, maxTokens, temperature)
	default:
		return nil, ErrUnknownAIProvider
	}
}

func (s *AIService) decryptKey(provider *model.AIProvider) (string, error) {
	if provider.APIKey == nil || *provider.APIKey == "" {
		return "", ErrAIKeyMissing
	}
	if s.cipher == nil {
		return *provider.APIKey, nil
	}
	key, err := s.cipher.Decrypt(*provider.APIKey)
	if err != nil {
		// Keys stored before encryption was enabled are kept as-is
		return *provider.APIKey, nil
	}
	return key, nil
}

// Chat-completions wire format, shared by OpenAI and OpenRouter

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (s *AIService) generateChatCompletions(ctx context.Context, provider *model.AIProvider, apiKey, modelName string, req model.GenerateRequest, maxTokens int, temperature float64) (*model.GenerateResponse, error) {
	baseURL := "https://api.openai.com/v1"
	if provider.Name == model.AIProviderOpenRouter {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if provider.BaseURL != nil && *provider.BaseURL != "" {
		baseURL = strings.TrimRight(*provider.BaseURL, "/")
	}

	messages := []chatMessage{}
	if req.System != nil && *req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: *req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       modelName,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	respBody, err := s.doUpstream(httpReq, provider.Name)
	if err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response from %s", ErrAIUpstreamFailed, provider.Name)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response from %s", ErrAIUpstreamFailed, provider.Name)
	}

	return &model.GenerateResponse{
		Content:  parsed.Choices[0].Message.Content,
		Provider: provider.Name,
		Model:    modelName,
		Usage: map[string]int{
			"prompt_tokens":     parsed.Usage.PromptTokens,
			"completion_tokens": parsed.Usage.CompletionTokens,
		},
	}, nil
}

// Anthropic messages wire format

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
	Temperature float64       `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (s *AIService) generateAnthropic(ctx context.Context, provider *model.AIProvider, apiKey, modelName string, req model.GenerateRequest, maxTokens int, temperature float64) (*model.GenerateResponse, error) {
	baseURL := "https://api.anthropic.com"
	if provider.BaseURL != nil && *provider.BaseURL != "" {
		baseURL = strings.TrimRight(*provider.BaseURL, "/")
	}

	payload := anthropicRequest{
		Model:       modelName,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
	}
	if req.System != nil {
		payload.System = *req.System
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", apiKey)
	httpReq.Header.Set("Anthropic-Version", "2023-06-01")

	respBody, err := s.doUpstream(httpReq, provider.Name)
	if err != nil {
		return nil, err
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response from anthropic", ErrAIUpstreamFailed)
	}
	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("%w: empty response from anthropic", ErrAIUpstreamFailed)
	}

	return &model.GenerateResponse{
		Content:  parsed.Content[0].Text,
		Provider: provider.Name,
		Model:    modelName,
		Usage: map[string]int{
			"prompt_tokens":     parsed.Usage.InputTokens,
			"completion_tokens": parsed.Usage.OutputTokens,
		},
	}, nil
}

func (s *AIService) generateGoogle(ctx context.Context, apiKey, modelName string, req model.GenerateRequest, maxTokens int, temperature float64) (*model.GenerateResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUpstreamFailed, err)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}
	if req.System != nil && *req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(*req.System, genai.RoleUser)
	}

	result, err := client.Models.GenerateContent(ctx, modelName, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUpstreamFailed, err)
	}

	resp := &model.GenerateResponse{
		Content:  result.Text(),
		Provider: model.AIProviderGoogle,
		Model:    modelName,
	}
	if result.UsageMetadata != nil {
		resp.Usage = map[string]int{
			"prompt_tokens":     int(result.UsageMetadata.PromptTokenCount),
			"completion_tokens": int(result.UsageMetadata.CandidatesTokenCount),
		}
	}
	return resp, nil
}

func (s *AIService) doUpstream(req *http.Request, providerName string) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIUpstreamFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response from %s", ErrAIUpstreamFailed, providerName)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrAIUpstreamFailed, providerName, resp.StatusCode)
	}

	return body, nil
}

// SuggestForContent generates SEO and readability suggestions for a piece of
// content. When no provider is active, or the provider fails, heuristic
// suggestions keep the editing flow working.
func (s *AIService) SuggestForContent(ctx context.Context, title, body string) (*model.ContentSuggestions, error) {
	prompt := fmt.Sprintf(`Analyze this content and respond with JSON only, no other text.
Schema: {"meta_title": string (max 60 chars), "meta_description": string (max 160 chars), "keywords": [string] (max 5), "readability": [string] (improvement notes)}

Title: %s

Content:
%s`, title, truncate(body, 6000))

	system := "You are an SEO and readability assistant for a content management system."
	resp, err := s.Generate(ctx, model.GenerateRequest{Prompt: prompt, System: &system})
	if err != nil {
		return heuristicSuggestions(title, body), nil
	}

	var suggestions model.ContentSuggestions
	raw := extractJSONObject(resp.Content)
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return heuristicSuggestions(title, body), nil
	}

	suggestions.Source = resp.Provider
	suggestions.GeneratedOn = time.Now().UTC()
	return &suggestions, nil
}

// extractJSONObject pulls the first JSON object out of a model response,
// which may wrap it in markdown fences or prose
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	return text[start : end+1]
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "from": true, "have": true, "are": true, "was": true,
	"you": true, "your": true, "not": true, "but": true, "can": true,
	"will": true, "more": true, "they": true, "their": true, "its": true,
}

func heuristicSuggestions(title, body string) *model.ContentSuggestions {
	suggestions := &model.ContentSuggestions{
		MetaTitle:   truncate(title, 60),
		Source:      "heuristic",
		GeneratedOn: time.Now().UTC(),
	}

	plain := stripMarkdown(body)

	// First sentence or two for the description
	desc := plain
	if idx := strings.Index(desc, ". "); idx > 0 && idx < 150 {
		if next := strings.Index(desc[idx+2:], ". "); next > 0 && idx+2+next < 155 {
			idx = idx + 2 + next
		}
		desc = desc[:idx+1]
	}
	suggestions.MetaDescription = truncate(strings.TrimSpace(desc), 160)

	// Most frequent meaningful words
	freq := map[string]int{}
	for _, word := range strings.Fields(strings.ToLower(plain)) {
		word = strings.Trim(word, ".,!?;:\"'()[]")
		if len(word) < 4 || stopwords[word] {
			continue
		}
		freq[word]++
	}
	type wordCount struct {
		word  string
		count int
	}
	counts := make([]wordCount, 0, len(freq))
	for w, c := range freq {
		if c > 1 {
			counts = append(counts, wordCount{w, c})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})
	for i := 0; i < len(counts) && i < 5; i++ {
		suggestions.Keywords = append(suggestions.Keywords, counts[i].word)
	}

	// Readability notes
	words := len(strings.Fields(plain))
	sentences := strings.Count(plain, ". ") + strings.Count(plain, "! ") + strings.Count(plain, "? ") + 1
	if words/sentences > 25 {
		suggestions.Readability = append(suggestions.Readability, "Sentences average over 25 words, consider splitting long ones")
	}
	if words < 300 {
		suggestions.Readability = append(suggestions.Readability, "Content is under 300 words, longer articles tend to rank better")
	}
	if !strings.Contains(body, "#") && !strings.Contains(body, "<h") {
		suggestions.Readability = append(suggestions.Readability, "No headings found, headings make long content easier to scan")
	}
	for _, para := range strings.Split(plain, "\n\n") {
		if len(strings.Fields(para)) > 150 {
			suggestions.Readability = append(suggestions.Readability, "Some paragraphs exceed 150 words, consider breaking them up")
			break
		}
	}

	return suggestions
}

func stripMarkdown(s string) string {
	replacer := strings.NewReplacer("#", "", "*", "", "_", "", "`", "", ">", "")
	return replacer.Replace(s)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max])
}
