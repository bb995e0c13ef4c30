package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// AIProviderRepository handles AI provider configuration data access
type AIProviderRepository struct {
	db database.Database
}

// NewAIProviderRepository creates a new AI provider repository
func NewAIProviderRepository(db database.Database) *AIProviderRepository {
	return &AIProviderRepository{db: db}
}

// Create stores a provider configuration
func (r *AIProviderRepository) Create(ctx context.Context, provider *model.AIProvider) error {
	vars := map[string]interface{}{
		"name":         provider.Name,
		"display_name": provider.DisplayName,
		"is_active":    provider.IsActive,
		"is_default":   provider.IsDefault,
	}

	setClause := `
		name = $name,
		display_name = $display_name,
		is_active = $is_active,
		is_default = $is_default,
		created_on = time::now(),
		updated_on = time::now()`

	if provider.APIKey != nil {
		setClause += ", api_key = $api_key"
		vars["api_key"] = *provider.APIKey
	}
	if provider.BaseURL != nil {
		setClause += ", base_url = $base_url"
		vars["base_url"] = *provider.BaseURL
	}
	if len(provider.Configuration) > 0 {
		setClause += ", configuration = $configuration"
		vars["configuration"] = provider.Configuration
	}

	query := "CREATE ai_provider SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	provider.ID = created.ID
	provider.CreatedOn = created.CreatedOn
	provider.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByName retrieves a provider configuration by name
func (r *AIProviderRepository) GetByName(ctx context.Context, name string) (*model.AIProvider, error) {
	query := `SELECT * FROM ai_provider WHERE name = $name LIMIT 1`
	vars := map[string]interface{}{"name": name}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseProviderResult(result)
}

// GetActive retrieves the active provider, if any
func (r *AIProviderRepository) GetActive(ctx context.Context) (*model.AIProvider, error) {
	query := `SELECT * FROM ai_provider WHERE is_active = true LIMIT 1`

	result, err := r.db.QueryOne(ctx, query, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseProviderResult(result)
}

// List retrieves all provider configurations
func (r *AIProviderRepository) List(ctx context.Context) ([]*model.AIProvider, error) {
	query := `SELECT * FROM ai_provider ORDER BY name ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return r.parseProvidersResult(result)
}

// Update applies field updates and returns the updated provider
func (r *AIProviderRepository) Update(ctx context.Context, providerID string, updates map[string]interface{}) (*model.AIProvider, error) {
	query := `UPDATE ai_provider SET updated_on = time::now()`
	vars := map[string]interface{}{"provider_id": providerID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($provider_id) RETURN AFTER`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseProviderResult(result)
}

// DeactivateAll clears the active flag on every provider.
// At most one provider is active, activation goes through this first.
func (r *AIProviderRepository) DeactivateAll(ctx context.Context) error {
	query := `UPDATE ai_provider SET is_active = false, updated_on = time::now() WHERE is_active = true`

	return r.db.Execute(ctx, query, nil)
}

// Delete removes a provider configuration
func (r *AIProviderRepository) Delete(ctx context.Context, providerID string) error {
	query := `DELETE ai_provider WHERE id = type::record($provider_id)`
	vars := map[string]interface{}{"provider_id": providerID}

	return r.db.Execute(ctx, query, vars)
}

// Helper functions

func (r *AIProviderRepository) parseProviderResult(result interface{}) (*model.AIProvider, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	if id, ok := data["id"]; ok {
		data["id"] = convertSurrealID(id)
	}

	// api_key is excluded from JSON serialization, extract it first
	apiKey := getStringPtr(data, "api_key")

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var provider model.AIProvider
	if err := json.Unmarshal(jsonBytes, &provider); err != nil {
		return nil, err
	}

	provider.APIKey = apiKey

	if t := getTime(data, "created_on"); t != nil {
		provider.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		provider.UpdatedOn = *t
	}

	return &provider, nil
}

func (r *AIProviderRepository) parseProvidersResult(result []interface{}) ([]*model.AIProvider, error) {
	providers := make([]*model.AIProvider, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					provider, err := r.parseProviderResult(item)
					if err != nil {
						continue
					}
					providers = append(providers, provider)
				}
				continue
			}
		}

		provider, err := r.parseProviderResult(res)
		if err != nil {
			continue
		}
		providers = append(providers, provider)
	}

	return providers, nil
}
