package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// SettingRepository handles site setting data access
type SettingRepository struct {
	db database.Database
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db database.Database) *SettingRepository {
	return &SettingRepository{db: db}
}

// Create creates a new setting. Keys are unique.
func (r *SettingRepository) Create(ctx context.Context, setting *model.SiteSetting) error {
	existing, err := r.GetByKey(ctx, setting.Key)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: setting %s already exists", database.ErrDuplicate, setting.Key)
	}

	vars := map[string]interface{}{
		"key":   setting.Key,
		"value": setting.Value,
	}

	setClause := `
		key = $key,
		value = $value,
		created_on = time::now(),
		updated_on = time::now()`

	if setting.Description != nil {
		setClause += ", description = $description"
		vars["description"] = *setting.Description
	}

	query := "CREATE site_setting SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: setting %s already exists", database.ErrDuplicate, setting.Key)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	setting.ID = created.ID
	setting.CreatedOn = created.CreatedOn
	setting.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByKey retrieves a setting by key
func (r *SettingRepository) GetByKey(ctx context.Context, key string) (*model.SiteSetting, error) {
	query := `SELECT * FROM site_setting WHERE key = $key LIMIT 1`
	vars := map[string]interface{}{"key": key}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseSettingResult(result)
}

// List retrieves all settings
func (r *SettingRepository) List(ctx context.Context) ([]*model.SiteSetting, error) {
	query := `SELECT * FROM site_setting ORDER BY key ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return r.parseSettingsResult(result)
}

// UpdateByKey replaces a setting's value and returns the updated setting
func (r *SettingRepository) UpdateByKey(ctx context.Context, key string, value any, description *string) (*model.SiteSetting, error) {
	query := `UPDATE site_setting SET value = $value, updated_on = time::now()`
	vars := map[string]interface{}{
		"key":   key,
		"value": value,
	}

	if description != nil {
		query += `, description = $description`
		vars["description"] = *description
	}

	query += ` WHERE key = $key RETURN AFTER`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseSettingResult(result)
}

// DeleteByKey removes a setting
func (r *SettingRepository) DeleteByKey(ctx context.Context, key string) error {
	query := `DELETE site_setting WHERE key = $key`
	vars := map[string]interface{}{"key": key}

	return r.db.Execute(ctx, query, vars)
}

// Helper functions

func (r *SettingRepository) parseSettingResult(result interface{}) (*model.SiteSetting, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	setting := &model.SiteSetting{
		ID:          convertSurrealID(data["id"]),
		Key:         getString(data, "key"),
		Value:       data["value"],
		Description: getStringPtr(data, "description"),
	}

	if t := getTime(data, "created_on"); t != nil {
		setting.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		setting.UpdatedOn = *t
	}

	return setting, nil
}

func (r *SettingRepository) parseSettingsResult(result []interface{}) ([]*model.SiteSetting, error) {
	settings := make([]*model.SiteSetting, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					setting, err := r.parseSettingResult(item)
					if err != nil {
						continue
					}
					settings = append(settings, setting)
				}
				continue
			}
		}

		setting, err := r.parseSettingResult(res)
		if err != nil {
			continue
		}
		settings = append(settings, setting)
	}

	return settings, nil
}
