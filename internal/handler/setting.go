package handler

import (
	"net/http"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// SettingHandler handles site setting endpoints
type SettingHandler struct {
	svc *service.SettingService
}

// NewSettingHandler creates a new setting handler
func NewSettingHandler(svc *service.SettingService) *SettingHandler {
	return &SettingHandler{svc: svc}
}

// List handles GET /v1/settings - sensitive values come back masked
func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.List(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, settings, nil)
}

// Create handles POST /v1/settings
func (h *SettingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateSettingRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	setting, err := h.svc.Create(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, setting, map[string]string{
		"self": "/v1/settings/" + setting.Key,
	})
}

// Get handles GET /v1/settings/{key}
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		WriteError(w, model.NewBadRequestError("setting key required"))
		return
	}

	setting, err := h.svc.Get(r.Context(), key)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, setting, nil)
}

// Update handles PUT /v1/settings/{key}
func (h *SettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		WriteError(w, model.NewBadRequestError("setting key required"))
		return
	}

	var req model.UpdateSettingRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	setting, err := h.svc.Update(r.Context(), key, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, setting, nil)
}

// Delete handles DELETE /v1/settings/{key}
func (h *SettingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		WriteError(w, model.NewBadRequestError("setting key required"))
		return
	}

	if err := h.svc.Delete(r.Context(), key); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// GetSiteConfig handles GET /v1/settings/site-config
func (h *SettingHandler) GetSiteConfig(w http.ResponseWriter, r *http.Request) {
	config, err := h.svc.GetSiteConfig(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, config, nil)
}

// UpdateSiteConfig handles PUT /v1/settings/site-config
func (h *SettingHandler) UpdateSiteConfig(w http.ResponseWriter, r *http.Request) {
	var req model.SiteConfig
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	config, err := h.svc.UpdateSiteConfig(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, config, nil)
}

// InitializeDefaults handles POST /v1/settings/initialize.
// Seeds missing default settings, leaving existing ones alone.
func (h *SettingHandler) InitializeDefaults(w http.ResponseWriter, r *http.Request) {
	created, err := h.svc.InitializeDefaults(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, map[string]int{"created": created}, nil)
}
