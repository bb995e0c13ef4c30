package handler

import (
	"net/http"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// AIHandler handles AI provider and generation endpoints
type AIHandler struct {
	aiService      *service.AIService
	contentService *service.ContentService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(aiService *service.AIService, contentService *service.ContentService) *AIHandler {
	return &AIHandler{
		aiService:      aiService,
		contentService: contentService,
	}
}

// SuggestRequest asks for SEO suggestions, either for stored content
// or for an ad-hoc title and body.
type SuggestRequest struct {
	ContentID *string `json:"content_id,omitempty"`
	Title     string  `json:"title,omitempty"`
	Body      string  `json:"body,omitempty"`
	Store     bool    `json:"store,omitempty"` // persist onto the content record
}

// ListProviders handles GET /v1/ai/providers - keys are never returned
func (h *AIHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.aiService.ListProviders(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, providers, nil)
}

// UpsertProvider handles PUT /v1/ai/providers
func (h *AIHandler) UpsertProvider(w http.ResponseWriter, r *http.Request) {
	var req model.UpsertAIProviderRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	provider, err := h.aiService.UpsertProvider(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, provider, nil)
}

// ActivateProvider handles POST /v1/ai/providers/{name}/activate
func (h *AIHandler) ActivateProvider(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		WriteError(w, model.NewBadRequestError("provider name required"))
		return
	}

	provider, err := h.aiService.ActivateProvider(r.Context(), name)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, provider, nil)
}

// DeleteProvider handles DELETE /v1/ai/providers/{name}
func (h *AIHandler) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		WriteError(w, model.NewBadRequestError("provider name required"))
		return
	}

	if err := h.aiService.DeleteProvider(r.Context(), name); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// Generate handles POST /v1/ai/generate - freeform completion via the active provider
func (h *AIHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.aiService.Generate(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// Suggest handles POST /v1/ai/suggest - SEO metadata suggestions.
// Falls back to heuristics when no provider is configured, so the
// editor experience degrades instead of breaking.
func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	title := req.Title
	body := req.Body

	if req.ContentID != nil {
		content, err := h.contentService.Get(r.Context(), *req.ContentID)
		if err != nil {
			WriteError(w, MapServiceError(err))
			return
		}
		title = content.Title
		if content.Body != nil {
			body = *content.Body
		}
	}

	if title == "" && body == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "content", Message: "content_id or title/body is required"},
		}))
		return
	}

	suggestions, err := h.aiService.SuggestForContent(r.Context(), title, body)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	if req.Store && req.ContentID != nil {
		if _, err := h.contentService.StoreSuggestions(r.Context(), *req.ContentID, suggestions); err != nil {
			WriteError(w, MapServiceError(err))
			return
		}
	}

	WriteData(w, http.StatusOK, suggestions, nil)
}
