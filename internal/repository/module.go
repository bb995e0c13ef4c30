package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// ModuleRepository handles installed module data access
type ModuleRepository struct {
	db database.Database
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db database.Database) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// Create installs a module
func (r *ModuleRepository) Create(ctx context.Context, module *model.Module) error {
	existing, err := r.GetByName(ctx, module.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: module %s is already installed", database.ErrDuplicate, module.Name)
	}

	vars := map[string]interface{}{
		"name":      module.Name,
		"version":   module.Version,
		"is_active": module.IsActive,
	}

	setClause := `
		name = $name,
		version = $version,
		is_active = $is_active,
		created_on = time::now(),
		updated_on = time::now()`

	if module.Description != nil {
		setClause += ", description = $description"
		vars["description"] = *module.Description
	}
	if len(module.Configuration) > 0 {
		setClause += ", configuration = $configuration"
		vars["configuration"] = module.Configuration
	}
	if len(module.APIKeys) > 0 {
		setClause += ", api_keys = $api_keys"
		vars["api_keys"] = module.APIKeys
	}

	query := "CREATE module SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: module %s is already installed", database.ErrDuplicate, module.Name)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	module.ID = created.ID
	module.CreatedOn = created.CreatedOn
	module.UpdatedOn = created.UpdatedOn
	return nil
}

// Get retrieves an installed module by ID
func (r *ModuleRepository) Get(ctx context.Context, moduleID string) (*model.Module, error) {
	query := `SELECT * FROM module WHERE id = type::record($module_id)`
	vars := map[string]interface{}{"module_id": moduleID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseModuleResult(result)
}

// GetByName retrieves an installed module by its catalog name
func (r *ModuleRepository) GetByName(ctx context.Context, name string) (*model.Module, error) {
	query := `SELECT * FROM module WHERE name = $name LIMIT 1`
	vars := map[string]interface{}{"name": name}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseModuleResult(result)
}

// List retrieves all installed modules
func (r *ModuleRepository) List(ctx context.Context) ([]*model.Module, error) {
	query := `SELECT * FROM module ORDER BY name ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return r.parseModulesResult(result)
}

// Update applies field updates and returns the updated module
func (r *ModuleRepository) Update(ctx context.Context, moduleID string, updates map[string]interface{}) (*model.Module, error) {
	query := `UPDATE module SET updated_on = time::now()`
	vars := map[string]interface{}{"module_id": moduleID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($module_id) RETURN AFTER`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseModuleResult(result)
}

// SetActive toggles a module's activation state
func (r *ModuleRepository) SetActive(ctx context.Context, moduleID string, active bool) error {
	query := `
		UPDATE module
		SET is_active = $active, updated_on = time::now()
		WHERE id = type::record($module_id)
	`
	vars := map[string]interface{}{
		"module_id": moduleID,
		"active":    active,
	}

	return r.db.Execute(ctx, query, vars)
}

// Delete uninstalls a module
func (r *ModuleRepository) Delete(ctx context.Context, moduleID string) error {
	query := `DELETE module WHERE id = type::record($module_id)`
	vars := map[string]interface{}{"module_id": moduleID}

	return r.db.Execute(ctx, query, vars)
}

// CountActive counts active modules
func (r *ModuleRepository) CountActive(ctx context.Context) (int, error) {
	query := `SELECT count() FROM module WHERE is_active = true GROUP ALL`

	result, err := r.db.QueryOne(ctx, query, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return extractCount(result), nil
}

// Helper functions

func (r *ModuleRepository) parseModuleResult(result interface{}) (*model.Module, error) {
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

	// api_keys is excluded from JSON serialization, extract it first
	var apiKeys map[string]any
	if keys, ok := data["api_keys"].(map[string]interface{}); ok {
		apiKeys = keys
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var module model.Module
	if err := json.Unmarshal(jsonBytes, &module); err != nil {
		return nil, err
	}

	module.APIKeys = apiKeys

	if t := getTime(data, "created_on"); t != nil {
		module.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		module.UpdatedOn = *t
	}

	return &module, nil
}

func (r *ModuleRepository) parseModulesResult(result []interface{}) ([]*model.Module, error) {
	modules := make([]*model.Module, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					module, err := r.parseModuleResult(item)
					if err != nil {
						continue
					}
					modules = append(modules, module)
				}
				continue
			}
		}

		module, err := r.parseModuleResult(res)
		if err != nil {
			continue
		}
		modules = append(modules, module)
	}

	return modules, nil
}
