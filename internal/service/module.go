package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/pkg/secrets"
)

// ModuleRepository defines the interface for installed module storage
type ModuleRepository interface {
	Create(ctx context.Context, module *model.Module) error
	Get(ctx context.Context, moduleID string) (*model.Module, error)
	GetByName(ctx context.Context, name string) (*model.Module, error)
	List(ctx context.Context) ([]*model.Module, error)
	Update(ctx context.Context, moduleID string, updates map[string]interface{}) (*model.Module, error)
	SetActive(ctx context.Context, moduleID string, active bool) error
	Delete(ctx context.Context, moduleID string) error
	CountActive(ctx context.Context) (int, error)
}

// ModuleService manages the plugin catalog and installed modules
type ModuleService struct {
	moduleRepo ModuleRepository
	cipher     *secrets.Cipher // nil when no encryption key is configured
}

// ModuleServiceConfig holds configuration for the module service
type ModuleServiceConfig struct {
	ModuleRepo ModuleRepository
	Cipher     *secrets.Cipher
}

// NewModuleService creates a new module service
func NewModuleService(cfg ModuleServiceConfig) *ModuleService {
	return &ModuleService{
		moduleRepo: cfg.ModuleRepo,
		cipher:     cfg.Cipher,
	}
}

// ListAvailable returns the static catalog, optionally filtered by category
func (s *ModuleService) ListAvailable(category string) []model.AvailableModule {
	if category == "" {
		return model.AvailableModules
	}

	filtered := make([]model.AvailableModule, 0)
	for _, mod := range model.AvailableModules {
		if mod.Category == category {
			filtered = append(filtered, mod)
		}
	}
	return filtered
}

// ListInstalled returns all installed modules in their API representation
func (s *ModuleService) ListInstalled(ctx context.Context) ([]*model.ModulePublic, error) {
	modules, err := s.moduleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*model.ModulePublic, 0, len(modules))
	for _, mod := range modules {
		result = append(result, mod.ToPublic())
	}
	return result, nil
}

// Install installs a catalog module. New installs start inactive.
func (s *ModuleService) Install(ctx context.Context, name string) (*model.ModulePublic, error) {
	catalog := model.FindAvailableModule(name)
	if catalog == nil {
		return nil, ErrModuleNotFound
	}

	module := &model.Module{
		Name:        catalog.Name,
		Description: stringPtr(catalog.Description),
		Version:     catalog.Version,
		IsActive:    false,
	}

	if err := s.moduleRepo.Create(ctx, module); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrModuleAlreadyInstalled
		}
		return nil, err
	}

	return module.ToPublic(), nil
}

// GetModule retrieves one installed module
func (s *ModuleService) GetModule(ctx context.Context, moduleID string) (*model.ModulePublic, error) {
	module, err := s.moduleRepo.Get(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, ErrModuleNotInstalled
	}
	return module.ToPublic(), nil
}

// UpdateModule applies a partial update. New API key values are encrypted
// before they reach storage, and merge over existing keys.
func (s *ModuleService) UpdateModule(ctx context.Context, moduleID string, req model.UpdateModuleRequest) (*model.ModulePublic, error) {
	existing, err := s.moduleRepo.Get(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrModuleNotInstalled
	}

	updates := map[string]interface{}{}

	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Configuration != nil {
		merged := map[string]any{}
		for k, v := range existing.Configuration {
			merged[k] = v
		}
		for k, v := range req.Configuration {
			merged[k] = v
		}
		updates["configuration"] = merged
	}
	if req.APIKeys != nil {
		merged := map[string]any{}
		for k, v := range existing.APIKeys {
			merged[k] = v
		}
		for k, v := range req.APIKeys {
			str, ok := v.(string)
			if !ok || s.cipher == nil {
				merged[k] = v
				continue
			}
			encrypted, err := s.cipher.Encrypt(str)
			if err != nil {
				return nil, fmt.Errorf("encrypting api key %s: %w", k, err)
			}
			merged[k] = encrypted
		}
		updates["api_keys"] = merged
	}

	if len(updates) == 0 {
		return existing.ToPublic(), nil
	}

	updated, err := s.moduleRepo.Update(ctx, moduleID, updates)
	if err != nil {
		return nil, err
	}
	return updated.ToPublic(), nil
}

// Activate enables a module. Activation is refused while any required
// configuration key is missing or empty.
func (s *ModuleService) Activate(ctx context.Context, moduleID string) (*model.ModulePublic, error) {
	module, err := s.moduleRepo.Get(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, ErrModuleNotInstalled
	}

	catalog := model.FindAvailableModule(module.Name)
	if catalog == nil {
		return nil, ErrModuleNotFound
	}

	if missing := module.MissingConfigKeys(catalog); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", ErrModuleConfigIncomplete, missing)
	}

	if err := s.moduleRepo.SetActive(ctx, moduleID, true); err != nil {
		return nil, err
	}

	module.IsActive = true
	return module.ToPublic(), nil
}

// Deactivate disables a module
func (s *ModuleService) Deactivate(ctx context.Context, moduleID string) (*model.ModulePublic, error) {
	module, err := s.moduleRepo.Get(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if module == nil {
		return nil, ErrModuleNotInstalled
	}

	if err := s.moduleRepo.SetActive(ctx, moduleID, false); err != nil {
		return nil, err
	}

	module.IsActive = false
	return module.ToPublic(), nil
}

// Uninstall removes an installed module
func (s *ModuleService) Uninstall(ctx context.Context, moduleID string) error {
	module, err := s.moduleRepo.Get(ctx, moduleID)
	if err != nil {
		return err
	}
	if module == nil {
		return ErrModuleNotInstalled
	}
	return s.moduleRepo.Delete(ctx, moduleID)
}

// CountActive counts active modules, used by the dashboard
func (s *ModuleService) CountActive(ctx context.Context) (int, error) {
	return s.moduleRepo.CountActive(ctx)
}
