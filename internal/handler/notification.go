package handler

import (
	"net/http"
	"strconv"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// NotificationHandler handles email notification endpoints
type NotificationHandler struct {
	svc *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// SendReminders handles POST /v1/events/{eventId}/reminders - send reminders now
func (h *NotificationHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	result, err := h.svc.SendEventReminders(r.Context(), eventID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// ListCommunications handles GET /v1/events/{eventId}/communications
func (h *NotificationHandler) ListCommunications(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	comms, err := h.svc.GetCommunications(r.Context(), eventID, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, comms, nil, map[string]string{
		"self": "/v1/events/" + eventID + "/communications",
	})
}

// Stats handles GET /v1/events/{eventId}/notifications/stats
func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	stats, err := h.svc.GetStats(r.Context(), eventID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}

// ListTemplates handles GET /v1/notifications/templates
func (h *NotificationHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, h.svc.ListTemplates(), nil)
}

// SendTest handles POST /v1/notifications/test - verify SMTP configuration
func (h *NotificationHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	var req model.TestEmailRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.svc.SendTestEmail(r.Context(), req.Recipient); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, map[string]string{
		"status":    "sent",
		"recipient": req.Recipient,
	}, nil)
}
