package handler

import (
	"net/http"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// ModuleHandler handles module catalog and lifecycle endpoints
type ModuleHandler struct {
	svc *service.ModuleService
}

// NewModuleHandler creates a new module handler
func NewModuleHandler(svc *service.ModuleService) *ModuleHandler {
	return &ModuleHandler{svc: svc}
}

// InstallRequest names a catalog module to install
type InstallRequest struct {
	Name string `json:"name"`
}

// ListAvailable handles GET /v1/modules/available
func (h *ModuleHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	WriteData(w, http.StatusOK, h.svc.ListAvailable(category), nil)
}

// ListInstalled handles GET /v1/modules
func (h *ModuleHandler) ListInstalled(w http.ResponseWriter, r *http.Request) {
	modules, err := h.svc.ListInstalled(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, modules, nil)
}

// Install handles POST /v1/modules
func (h *ModuleHandler) Install(w http.ResponseWriter, r *http.Request) {
	var req InstallRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if req.Name == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "name", Message: "name is required"},
		}))
		return
	}

	module, err := h.svc.Install(r.Context(), req.Name)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, module, map[string]string{
		"self": "/v1/modules/" + module.ID,
	})
}

// Get handles GET /v1/modules/{moduleId}
func (h *ModuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	moduleID := r.PathValue("moduleId")
	if moduleID == "" {
		WriteError(w, model.NewBadRequestError("module ID required"))
		return
	}

	module, err := h.svc.GetModule(r.Context(), moduleID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, module, nil)
}

// Update handles PATCH /v1/modules/{moduleId} - merge configuration changes
func (h *ModuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	moduleID := r.PathValue("moduleId")
	if moduleID == "" {
		WriteError(w, model.NewBadRequestError("module ID required"))
		return
	}

	var req model.UpdateModuleRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	module, err := h.svc.UpdateModule(r.Context(), moduleID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, module, nil)
}

// Activate handles POST /v1/modules/{moduleId}/activate
func (h *ModuleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	moduleID := r.PathValue("moduleId")
	if moduleID == "" {
		WriteError(w, model.NewBadRequestError("module ID required"))
		return
	}

	module, err := h.svc.Activate(r.Context(), moduleID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, module, nil)
}

// Deactivate handles POST /v1/modules/{moduleId}/deactivate
func (h *ModuleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	moduleID := r.PathValue("moduleId")
	if moduleID == "" {
		WriteError(w, model.NewBadRequestError("module ID required"))
		return
	}

	module, err := h.svc.Deactivate(r.Context(), moduleID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, module, nil)
}

// Uninstall handles DELETE /v1/modules/{moduleId}
func (h *ModuleHandler) Uninstall(w http.ResponseWriter, r *http.Request) {
	moduleID := r.PathValue("moduleId")
	if moduleID == "" {
		WriteError(w, model.NewBadRequestError("module ID required"))
		return
	}

	if err := h.svc.Uninstall(r.Context(), moduleID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
