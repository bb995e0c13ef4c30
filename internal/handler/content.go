package handler

import (
	"net/http"
	"strconv"

	"github.com/stitch/cms/internal/middleware"
	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// ContentHandler handles content HTTP requests
type ContentHandler struct {
	svc *service.ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(svc *service.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// List handles GET /v1/content - list content with optional filters
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &model.ContentFilters{}

	q := r.URL.Query()
	if v := q.Get("type"); v != "" {
		filters.ContentType = &v
	}
	if v := q.Get("status"); v != "" {
		filters.Status = &v
	}
	if v := q.Get("search"); v != "" {
		filters.Search = &v
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filters.Offset = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.Limit = n
		}
	}

	items, total, err := h.svc.List(r.Context(), filters)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, items, &PaginationInfo{
		HasMore: filters.Offset+len(items) < total,
	}, nil)
}

// Create handles POST /v1/content
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.GetUserID(r.Context())
	if authorID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.CreateContentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	content, err := h.svc.Create(r.Context(), req, authorID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, content, map[string]string{
		"self": "/v1/content/" + content.ID,
	})
}

// Get handles GET /v1/content/{contentId}
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	contentID := r.PathValue("contentId")
	if contentID == "" {
		WriteError(w, model.NewBadRequestError("content ID required"))
		return
	}

	content, err := h.svc.Get(r.Context(), contentID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, content, nil)
}

// GetBySlug handles GET /v1/content/slug/{slug}.
// Unauthenticated callers only see published content.
func (h *ContentHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		WriteError(w, model.NewBadRequestError("slug required"))
		return
	}

	publishedOnly := middleware.GetUserID(r.Context()) == ""

	content, err := h.svc.GetBySlug(r.Context(), slug, publishedOnly)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, content, nil)
}

// Update handles PATCH /v1/content/{contentId}
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	contentID := r.PathValue("contentId")
	if contentID == "" {
		WriteError(w, model.NewBadRequestError("content ID required"))
		return
	}

	var req model.UpdateContentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	content, err := h.svc.Update(r.Context(), contentID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, content, nil)
}

// Delete handles DELETE /v1/content/{contentId}
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	contentID := r.PathValue("contentId")
	if contentID == "" {
		WriteError(w, model.NewBadRequestError("content ID required"))
		return
	}

	if err := h.svc.Delete(r.Context(), contentID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Render handles GET /v1/content/{contentId}/render - markdown body as HTML
func (h *ContentHandler) Render(w http.ResponseWriter, r *http.Request) {
	contentID := r.PathValue("contentId")
	if contentID == "" {
		WriteError(w, model.NewBadRequestError("content ID required"))
		return
	}

	rendered, err := h.svc.Render(r.Context(), contentID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, rendered, nil)
}
