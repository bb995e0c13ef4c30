package handler

import (
	"net/http"
	"strconv"

	"github.com/stitch/cms/internal/middleware"
	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// EventHandler handles event and RSVP HTTP requests
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// List handles GET /v1/events - list events with RSVP stats
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}

	events, err := h.svc.ListEvents(r.Context(), status)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, events, nil)
}

// Create handles POST /v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateEventRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req, userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, event, map[string]string{
		"self": "/v1/events/" + event.ID,
	})
}

// Get handles GET /v1/events/{eventId}. Authenticated users get the
// full RSVP list, anonymous visitors only the aggregates.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	links := map[string]string{"self": "/v1/events/" + eventID}

	if middleware.GetUserID(r.Context()) != "" {
		event, err := h.svc.GetEventWithRSVPs(r.Context(), eventID)
		if err != nil {
			WriteError(w, MapServiceError(err))
			return
		}
		WriteData(w, http.StatusOK, event, links)
		return
	}

	event, err := h.svc.GetEvent(r.Context(), eventID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, event, links)
}

// Update handles PATCH /v1/events/{eventId}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var req model.UpdateEventRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), eventID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, event, map[string]string{
		"self": "/v1/events/" + eventID,
	})
}

// Delete handles DELETE /v1/events/{eventId} - removes the event and its RSVPs
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	if err := h.svc.DeleteEvent(r.Context(), eventID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// ListRSVPs handles GET /v1/events/{eventId}/rsvps
func (h *EventHandler) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}

	rsvps, err := h.svc.ListRSVPs(r.Context(), eventID, status)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, rsvps, nil, map[string]string{
		"self": "/v1/events/" + eventID + "/rsvps",
	})
}

// CreateRSVP handles POST /v1/events/{eventId}/rsvps.
// Authenticated editors create RSVPs with the manual source, which
// bypasses the deadline and approval gates. Anonymous submissions from
// the public form come in through the api source.
func (h *EventHandler) CreateRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var req model.CreateRSVPRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	source := model.RSVPSourceAPI
	if middleware.GetUserID(r.Context()) != "" {
		source = model.RSVPSourceManual
	}

	rsvp, err := h.svc.CreateRSVP(r.Context(), eventID, req, source)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, rsvp, nil)
}

// UpdateRSVP handles PATCH /v1/rsvps/{rsvpId}
func (h *EventHandler) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	rsvpID := r.PathValue("rsvpId")
	if rsvpID == "" {
		WriteError(w, model.NewBadRequestError("RSVP ID required"))
		return
	}

	var req model.UpdateRSVPRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	rsvp, err := h.svc.UpdateRSVP(r.Context(), rsvpID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, rsvp, nil)
}

// DeleteRSVP handles DELETE /v1/rsvps/{rsvpId}
func (h *EventHandler) DeleteRSVP(w http.ResponseWriter, r *http.Request) {
	rsvpID := r.PathValue("rsvpId")
	if rsvpID == "" {
		WriteError(w, model.NewBadRequestError("RSVP ID required"))
		return
	}

	if err := h.svc.DeleteRSVP(r.Context(), rsvpID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// BulkInvite handles POST /v1/events/{eventId}/invite
func (h *EventHandler) BulkInvite(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var req model.BulkInviteRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.BulkInvite(r.Context(), eventID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// Analytics handles GET /v1/events/{eventId}/analytics
func (h *EventHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}

	analytics, err := h.svc.Analytics(r.Context(), eventID, days)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, analytics, nil)
}
