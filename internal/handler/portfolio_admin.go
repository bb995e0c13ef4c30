package handler

import (
	"net/http"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/service"
)

// PortfolioAdminHandler handles authenticated portfolio management
type PortfolioAdminHandler struct {
	svc *service.PortfolioService
}

// NewPortfolioAdminHandler creates a new portfolio admin handler
func NewPortfolioAdminHandler(svc *service.PortfolioService) *PortfolioAdminHandler {
	return &PortfolioAdminHandler{svc: svc}
}

// UpsertProfile handles PUT /v1/admin/portfolio/profile
func (h *PortfolioAdminHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var profile model.ProfileInfo
	if err := DecodeJSON(r, &profile); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.UpsertProfile(r.Context(), &profile)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// CreateStat handles POST /v1/admin/portfolio/stats
func (h *PortfolioAdminHandler) CreateStat(w http.ResponseWriter, r *http.Request) {
	var stat model.ProfileStat
	if err := DecodeJSON(r, &stat); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.CreateStat(r.Context(), &stat)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// ListStats handles GET /v1/admin/portfolio/stats
func (h *PortfolioAdminHandler) ListStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}

// UpdateStat handles PATCH /v1/admin/portfolio/stats/{statId}
func (h *PortfolioAdminHandler) UpdateStat(w http.ResponseWriter, r *http.Request) {
	statID := r.PathValue("statId")
	if statID == "" {
		WriteError(w, model.NewBadRequestError("stat ID required"))
		return
	}

	var updates map[string]interface{}
	if err := DecodeJSON(r, &updates); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.svc.UpdateStat(r.Context(), statID, updates); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// DeleteStat handles DELETE /v1/admin/portfolio/stats/{statId}
func (h *PortfolioAdminHandler) DeleteStat(w http.ResponseWriter, r *http.Request) {
	statID := r.PathValue("statId")
	if statID == "" {
		WriteError(w, model.NewBadRequestError("stat ID required"))
		return
	}

	if err := h.svc.DeleteStat(r.Context(), statID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// ListSkills handles GET /v1/admin/portfolio/skills - includes unfeatured
func (h *PortfolioAdminHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := h.svc.ListAllSkills(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, skills, nil)
}

// CreateSkill handles POST /v1/admin/portfolio/skills
func (h *PortfolioAdminHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var skill model.Skill
	if err := DecodeJSON(r, &skill); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.CreateSkill(r.Context(), &skill)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// UpdateSkill handles PATCH /v1/admin/portfolio/skills/{skillId}
func (h *PortfolioAdminHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	skillID := r.PathValue("skillId")
	if skillID == "" {
		WriteError(w, model.NewBadRequestError("skill ID required"))
		return
	}

	var updates map[string]interface{}
	if err := DecodeJSON(r, &updates); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.svc.UpdateSkill(r.Context(), skillID, updates); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// DeleteSkill handles DELETE /v1/admin/portfolio/skills/{skillId}
func (h *PortfolioAdminHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	skillID := r.PathValue("skillId")
	if skillID == "" {
		WriteError(w, model.NewBadRequestError("skill ID required"))
		return
	}

	if err := h.svc.DeleteSkill(r.Context(), skillID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// CreateCategory handles POST /v1/admin/portfolio/categories
func (h *PortfolioAdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category model.ProjectCategory
	if err := DecodeJSON(r, &category); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.CreateCategory(r.Context(), &category)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// DeleteCategory handles DELETE /v1/admin/portfolio/categories/{categoryId}
func (h *PortfolioAdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("categoryId")
	if categoryID == "" {
		WriteError(w, model.NewBadRequestError("category ID required"))
		return
	}

	if err := h.svc.DeleteCategory(r.Context(), categoryID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// ListProjects handles GET /v1/admin/portfolio/projects - includes drafts
func (h *PortfolioAdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.ListAllProjects(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, projects, nil)
}

// CreateProject handles POST /v1/admin/portfolio/projects
func (h *PortfolioAdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var project model.Project
	if err := DecodeJSON(r, &project); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.CreateProject(r.Context(), &project)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// UpdateProject handles PATCH /v1/admin/portfolio/projects/{projectId}
func (h *PortfolioAdminHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		WriteError(w, model.NewBadRequestError("project ID required"))
		return
	}

	var updates map[string]interface{}
	if err := DecodeJSON(r, &updates); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	project, err := h.svc.UpdateProject(r.Context(), projectID, updates)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, project, nil)
}

// DeleteProject handles DELETE /v1/admin/portfolio/projects/{projectId}
func (h *PortfolioAdminHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		WriteError(w, model.NewBadRequestError("project ID required"))
		return
	}

	if err := h.svc.DeleteProject(r.Context(), projectID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// CreateExperience handles POST /v1/admin/portfolio/experience
func (h *PortfolioAdminHandler) CreateExperience(w http.ResponseWriter, r *http.Request) {
	var exp model.Experience
	if err := DecodeJSON(r, &exp); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.CreateExperience(r.Context(), &exp)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// UpdateExperience handles PATCH /v1/admin/portfolio/experience/{experienceId}
func (h *PortfolioAdminHandler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	expID := r.PathValue("experienceId")
	if expID == "" {
		WriteError(w, model.NewBadRequestError("experience ID required"))
		return
	}

	var updates map[string]interface{}
	if err := DecodeJSON(r, &updates); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.svc.UpdateExperience(r.Context(), expID, updates); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// DeleteExperience handles DELETE /v1/admin/portfolio/experience/{experienceId}
func (h *PortfolioAdminHandler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	expID := r.PathValue("experienceId")
	if expID == "" {
		WriteError(w, model.NewBadRequestError("experience ID required"))
		return
	}

	if err := h.svc.DeleteExperience(r.Context(), expID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// ListTestimonials handles GET /v1/admin/portfolio/testimonials - includes unapproved
func (h *PortfolioAdminHandler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.svc.ListAllTestimonials(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, testimonials, nil)
}

// CreateTestimonial handles POST /v1/admin/portfolio/testimonials
func (h *PortfolioAdminHandler) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var tst model.Testimonial
	if err := DecodeJSON(r, &tst); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.svc.CreateTestimonial(r.Context(), &tst)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, result, nil)
}

// UpdateTestimonial handles PATCH /v1/admin/portfolio/testimonials/{testimonialId}
func (h *PortfolioAdminHandler) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	tstID := r.PathValue("testimonialId")
	if tstID == "" {
		WriteError(w, model.NewBadRequestError("testimonial ID required"))
		return
	}

	var updates map[string]interface{}
	if err := DecodeJSON(r, &updates); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	if err := h.svc.UpdateTestimonial(r.Context(), tstID, updates); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}

// DeleteTestimonial handles DELETE /v1/admin/portfolio/testimonials/{testimonialId}
func (h *PortfolioAdminHandler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	tstID := r.PathValue("testimonialId")
	if tstID == "" {
		WriteError(w, model.NewBadRequestError("testimonial ID required"))
		return
	}

	if err := h.svc.DeleteTestimonial(r.Context(), tstID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
