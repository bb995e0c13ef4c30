package handler

import (
	"net/http"
	"strconv"

	"github.com/stitch/cms/internal/service"
)

// DashboardHandler handles admin dashboard endpoints
type DashboardHandler struct {
	svc *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats handles GET /v1/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}

// QuickActions handles GET /v1/dashboard/quick-actions
func (h *DashboardHandler) QuickActions(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, h.svc.GetQuickActions(), nil)
}

// ContentAnalytics handles GET /v1/dashboard/analytics
func (h *DashboardHandler) ContentAnalytics(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}

	analytics, err := h.svc.GetContentAnalytics(r.Context(), days)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, analytics, nil)
}
