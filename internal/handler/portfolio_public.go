package handler

import (
	"net/http"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// PortfolioPublicHandler serves the unauthenticated portfolio site
type PortfolioPublicHandler struct {
	svc *service.PortfolioService
}

// NewPortfolioPublicHandler creates a new public portfolio handler
func NewPortfolioPublicHandler(svc *service.PortfolioService) *PortfolioPublicHandler {
	return &PortfolioPublicHandler{svc: svc}
}

// Homepage handles GET /v1/portfolio - composite homepage payload
func (h *PortfolioPublicHandler) Homepage(w http.ResponseWriter, r *http.Request) {
	homepage, err := h.svc.GetHomepage(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, homepage, nil)
}

// Profile handles GET /v1/portfolio/profile
func (h *PortfolioPublicHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetProfile(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, profile, nil)
}

// Skills handles GET /v1/portfolio/skills
func (h *PortfolioPublicHandler) Skills(w http.ResponseWriter, r *http.Request) {
	filters := portfolioFilters(r)

	skills, err := h.svc.GetSkills(r.Context(), filters)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, skills, nil)
}

// Projects handles GET /v1/portfolio/projects - published projects only
func (h *PortfolioPublicHandler) Projects(w http.ResponseWriter, r *http.Request) {
	filters := portfolioFilters(r)

	projects, err := h.svc.GetPublishedProjects(r.Context(), filters)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, projects, nil)
}

// Project handles GET /v1/portfolio/projects/{projectId}
func (h *PortfolioPublicHandler) Project(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		WriteError(w, model.NewBadRequestError("project ID required"))
		return
	}

	project, err := h.svc.GetProject(r.Context(), projectID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, project, nil)
}

// Categories handles GET /v1/portfolio/categories
func (h *PortfolioPublicHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.GetCategories(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, categories, nil)
}

// Experience handles GET /v1/portfolio/experience
func (h *PortfolioPublicHandler) Experience(w http.ResponseWriter, r *http.Request) {
	experience, err := h.svc.GetExperience(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, experience, nil)
}

// Testimonials handles GET /v1/portfolio/testimonials - approved only
func (h *PortfolioPublicHandler) Testimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.svc.GetApprovedTestimonials(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, testimonials, nil)
}

// Stats handles GET /v1/portfolio/stats
func (h *PortfolioPublicHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}

func portfolioFilters(r *http.Request) model.PortfolioFilters {
	var filters model.PortfolioFilters
	if v := r.URL.Query().Get("category"); v != "" {
		filters.Category = &v
	}
	if r.URL.Query().Get("featured") == "true" {
		filters.FeaturedOnly = true
	}
	return filters
}
