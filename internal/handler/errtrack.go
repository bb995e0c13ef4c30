package handler

import (
	"net/http"
	"strconv"

	"github.com/stitch/cms/internal/middleware"
	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// ErrorTrackingHandler handles error log endpoints
type ErrorTrackingHandler struct {
	svc *service.ErrorTrackingService
}

// NewErrorTrackingHandler creates a new error tracking handler
func NewErrorTrackingHandler(svc *service.ErrorTrackingService) *ErrorTrackingHandler {
	return &ErrorTrackingHandler{svc: svc}
}

// Report handles POST /v1/errors - record a client or server error
func (h *ErrorTrackingHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req model.ReportErrorRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	record, err := h.svc.Report(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, record, nil)
}

// List handles GET /v1/errors
func (h *ErrorTrackingHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters model.ErrorFilters

	q := r.URL.Query()
	if v := q.Get("severity"); v != "" {
		filters.Severity = &v
	}
	if v := q.Get("category"); v != "" {
		filters.Category = &v
	}
	if v := q.Get("resolved"); v != "" {
		resolved := v == "true"
		filters.Resolved = &resolved
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Limit = n
		}
	}

	records, err := h.svc.List(r.Context(), filters)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, records, nil, nil)
}

// Get handles GET /v1/errors/{errorId}
func (h *ErrorTrackingHandler) Get(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("errorId")
	if recordID == "" {
		WriteError(w, model.NewBadRequestError("error ID required"))
		return
	}

	record, err := h.svc.Get(r.Context(), recordID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, record, nil)
}

// Resolve handles POST /v1/errors/{errorId}/resolve
func (h *ErrorTrackingHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("errorId")
	if recordID == "" {
		WriteError(w, model.NewBadRequestError("error ID required"))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.ResolveErrorRequest
	_ = DecodeJSON(r, &req)

	record, err := h.svc.Resolve(r.Context(), recordID, userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, record, nil)
}

// Summary handles GET /v1/errors/summary
func (h *ErrorTrackingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, summary, nil)
}

// Cleanup handles POST /v1/errors/cleanup - purge old resolved records now
func (h *ErrorTrackingHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	log, err := h.svc.Cleanup(r.Context(), model.CleanupTypeManual)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, log, nil)
}

// CleanupHistory handles GET /v1/errors/cleanup/history
func (h *ErrorTrackingHandler) CleanupHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	logs, err := h.svc.CleanupHistory(r.Context(), limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, logs, nil)
}
