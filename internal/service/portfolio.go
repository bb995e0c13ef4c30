package service

import (
	"context"
	"errors"
	"strings"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// PortfolioRepository defines the interface for portfolio storage
type PortfolioRepository interface {
	GetActiveProfile(ctx context.Context) (*model.ProfileInfo, error)
	CreateProfile(ctx context.Context, profile *model.ProfileInfo) error
	UpdateProfile(ctx context.Context, profileID string, updates map[string]interface{}) (*model.ProfileInfo, error)

	ListStats(ctx context.Context) ([]*model.ProfileStat, error)
	CreateStat(ctx context.Context, stat *model.ProfileStat) error
	UpdateStat(ctx context.Context, statID string, updates map[string]interface{}) error
	DeleteStat(ctx context.Context, statID string) error

	ListSkills(ctx context.Context, featuredOnly bool) ([]*model.Skill, error)
	CreateSkill(ctx context.Context, skill *model.Skill) error
	UpdateSkill(ctx context.Context, skillID string, updates map[string]interface{}) error
	DeleteSkill(ctx context.Context, skillID string) error

	ListCategories(ctx context.Context) ([]*model.ProjectCategory, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.ProjectCategory, error)
	CreateCategory(ctx context.Context, category *model.ProjectCategory) error
	DeleteCategory(ctx context.Context, categoryID string) error

	ListProjects(ctx context.Context, publishedOnly, featuredOnly bool, categoryID *string) ([]*model.Project, error)
	GetProject(ctx context.Context, projectID string) (*model.Project, error)
	CreateProject(ctx context.Context, project *model.Project) error
	UpdateProject(ctx context.Context, projectID string, updates map[string]interface{}) (*model.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	ListExperiences(ctx context.Context) ([]*model.Experience, error)
	CreateExperience(ctx context.Context, exp *model.Experience) error
	UpdateExperience(ctx context.Context, expID string, updates map[string]interface{}) error
	DeleteExperience(ctx context.Context, expID string) error

	ListTestimonials(ctx context.Context, approvedOnly, featuredOnly bool) ([]*model.Testimonial, error)
	CreateTestimonial(ctx context.Context, tst *model.Testimonial) error
	UpdateTestimonial(ctx context.Context, tstID string, updates map[string]interface{}) error
	DeleteTestimonial(ctx context.Context, tstID string) error
}

// PortfolioService serves the public portfolio pages and their admin CRUD
type PortfolioService struct {
	portfolioRepo PortfolioRepository
}

// PortfolioServiceConfig holds configuration for the portfolio service
type PortfolioServiceConfig struct {
	PortfolioRepo PortfolioRepository
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(cfg PortfolioServiceConfig) *PortfolioService {
	return &PortfolioService{portfolioRepo: cfg.PortfolioRepo}
}

// Public reads

// GetProfile retrieves the active profile
func (s *PortfolioService) GetProfile(ctx context.Context) (*model.ProfileInfo, error) {
	profile, err := s.portfolioRepo.GetActiveProfile(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// GetStats retrieves the headline metrics in display order
func (s *PortfolioService) GetStats(ctx context.Context) ([]*model.ProfileStat, error) {
	return s.portfolioRepo.ListStats(ctx)
}

// GetSkills retrieves skills, optionally narrowed by category and featured flag
func (s *PortfolioService) GetSkills(ctx context.Context, filters model.PortfolioFilters) ([]*model.Skill, error) {
	skills, err := s.portfolioRepo.ListSkills(ctx, filters.FeaturedOnly)
	if err != nil {
		return nil, err
	}
	if filters.Category == nil {
		return skills, nil
	}

	filtered := make([]*model.Skill, 0, len(skills))
	for _, skill := range skills {
		if skill.Category != nil && strings.EqualFold(*skill.Category, *filters.Category) {
			filtered = append(filtered, skill)
		}
	}
	return filtered, nil
}

// GetPublishedProjects retrieves published projects for the public site.
// A category filter accepts the category slug.
func (s *PortfolioService) GetPublishedProjects(ctx context.Context, filters model.PortfolioFilters) ([]*model.Project, error) {
	var categoryID *string
	if filters.Category != nil {
		category, err := s.portfolioRepo.GetCategoryBySlug(ctx, *filters.Category)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrCategoryNotFound
		}
		categoryID = &category.ID
	}

	return s.portfolioRepo.ListProjects(ctx, true, filters.FeaturedOnly, categoryID)
}

// GetProject retrieves one published project
func (s *PortfolioService) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	project, err := s.portfolioRepo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil || !project.IsPublished {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// GetCategories retrieves all project categories
func (s *PortfolioService) GetCategories(ctx context.Context) ([]*model.ProjectCategory, error) {
	return s.portfolioRepo.ListCategories(ctx)
}

// GetExperience retrieves the work history
func (s *PortfolioService) GetExperience(ctx context.Context) ([]*model.Experience, error) {
	return s.portfolioRepo.ListExperiences(ctx)
}

// GetApprovedTestimonials retrieves approved testimonials for the public site
func (s *PortfolioService) GetApprovedTestimonials(ctx context.Context) ([]*model.Testimonial, error) {
	return s.portfolioRepo.ListTestimonials(ctx, true, false)
}

// GetHomepage assembles the public landing page in one call
func (s *PortfolioService) GetHomepage(ctx context.Context) (*model.Homepage, error) {
	profile, err := s.portfolioRepo.GetActiveProfile(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.portfolioRepo.ListStats(ctx)
	if err != nil {
		return nil, err
	}

	skills, err := s.portfolioRepo.ListSkills(ctx, true)
	if err != nil {
		return nil, err
	}

	projects, err := s.portfolioRepo.ListProjects(ctx, true, true, nil)
	if err != nil {
		return nil, err
	}

	testimonials, err := s.portfolioRepo.ListTestimonials(ctx, true, true)
	if err != nil {
		return nil, err
	}

	return &model.Homepage{
		Profile:      profile,
		Stats:        stats,
		Skills:       skills,
		Projects:     projects,
		Testimonials: testimonials,
	}, nil
}

// Admin CRUD

// UpsertProfile creates or replaces the single active profile
func (s *PortfolioService) UpsertProfile(ctx context.Context, profile *model.ProfileInfo) (*model.ProfileInfo, error) {
	if strings.TrimSpace(profile.Name) == "" || strings.TrimSpace(profile.Title) == "" {
		return nil, errors.New("profile name and title are required")
	}

	existing, err := s.portfolioRepo.GetActiveProfile(ctx)
	if err != nil {
		return nil, err
	}

	profile.IsActive = true

	if existing == nil {
		if err := s.portfolioRepo.CreateProfile(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	updates := map[string]interface{}{
		"name":  profile.Name,
		"title": profile.Title,
	}
	setOptional(updates, "subtitle", profile.Subtitle)
	setOptional(updates, "bio", profile.Bio)
	setOptional(updates, "availability_status", profile.AvailabilityStatus)
	setOptional(updates, "resume_url", profile.ResumeURL)
	setOptional(updates, "contact_email", profile.ContactEmail)
	setOptional(updates, "location", profile.Location)
	setOptional(updates, "github_url", profile.GithubURL)
	setOptional(updates, "linkedin_url", profile.LinkedinURL)
	setOptional(updates, "website_url", profile.WebsiteURL)
	if profile.YearsExperience != nil {
		updates["years_experience"] = *profile.YearsExperience
	}

	return s.portfolioRepo.UpdateProfile(ctx, existing.ID, updates)
}

// CreateStat adds a headline metric
func (s *PortfolioService) CreateStat(ctx context.Context, stat *model.ProfileStat) (*model.ProfileStat, error) {
	if strings.TrimSpace(stat.MetricName) == "" || strings.TrimSpace(stat.MetricValue) == "" {
		return nil, errors.New("metric name and value are required")
	}
	if err := s.portfolioRepo.CreateStat(ctx, stat); err != nil {
		return nil, err
	}
	return stat, nil
}

// UpdateStat applies field updates to a headline metric
func (s *PortfolioService) UpdateStat(ctx context.Context, statID string, updates map[string]interface{}) error {
	if name, ok := updates["metric_name"].(string); ok && strings.TrimSpace(name) == "" {
		return errors.New("metric name cannot be blank")
	}
	if value, ok := updates["metric_value"].(string); ok && strings.TrimSpace(value) == "" {
		return errors.New("metric value cannot be blank")
	}
	if len(updates) == 0 {
		return nil
	}
	return s.portfolioRepo.UpdateStat(ctx, statID, updates)
}

// DeleteStat removes a headline metric
func (s *PortfolioService) DeleteStat(ctx context.Context, statID string) error {
	return s.portfolioRepo.DeleteStat(ctx, statID)
}

// ListAllSkills retrieves every skill including inactive ones
func (s *PortfolioService) ListAllSkills(ctx context.Context) ([]*model.Skill, error) {
	return s.portfolioRepo.ListSkills(ctx, false)
}

// CreateSkill adds a skill card
func (s *PortfolioService) CreateSkill(ctx context.Context, skill *model.Skill) (*model.Skill, error) {
	if strings.TrimSpace(skill.Title) == "" {
		return nil, errors.New("skill title is required")
	}
	if err := s.portfolioRepo.CreateSkill(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// UpdateSkill applies field updates to a skill
func (s *PortfolioService) UpdateSkill(ctx context.Context, skillID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return s.portfolioRepo.UpdateSkill(ctx, skillID, updates)
}

// DeleteSkill removes a skill
func (s *PortfolioService) DeleteSkill(ctx context.Context, skillID string) error {
	return s.portfolioRepo.DeleteSkill(ctx, skillID)
}

// CreateCategory adds a project category. Slugs are unique.
func (s *PortfolioService) CreateCategory(ctx context.Context, category *model.ProjectCategory) (*model.ProjectCategory, error) {
	if strings.TrimSpace(category.Name) == "" {
		return nil, errors.New("category name is required")
	}
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}

	if err := s.portfolioRepo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrCategorySlugExists
		}
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category. Its projects are detached, not deleted.
func (s *PortfolioService) DeleteCategory(ctx context.Context, categoryID string) error {
	return s.portfolioRepo.DeleteCategory(ctx, categoryID)
}

// ListAllProjects retrieves every project including drafts
func (s *PortfolioService) ListAllProjects(ctx context.Context) ([]*model.Project, error) {
	return s.portfolioRepo.ListProjects(ctx, false, false, nil)
}

// CreateProject adds a project
func (s *PortfolioService) CreateProject(ctx context.Context, project *model.Project) (*model.Project, error) {
	if strings.TrimSpace(project.Title) == "" {
		return nil, errors.New("project title is required")
	}
	if err := s.portfolioRepo.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies field updates to a project
func (s *PortfolioService) UpdateProject(ctx context.Context, projectID string, updates map[string]interface{}) (*model.Project, error) {
	existing, err := s.portfolioRepo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrProjectNotFound
	}
	if len(updates) == 0 {
		return existing, nil
	}
	return s.portfolioRepo.UpdateProject(ctx, projectID, updates)
}

// DeleteProject removes a project
func (s *PortfolioService) DeleteProject(ctx context.Context, projectID string) error {
	existing, err := s.portfolioRepo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProjectNotFound
	}
	return s.portfolioRepo.DeleteProject(ctx, projectID)
}

// CreateExperience adds a work history entry
func (s *PortfolioService) CreateExperience(ctx context.Context, exp *model.Experience) (*model.Experience, error) {
	if strings.TrimSpace(exp.Company) == "" || strings.TrimSpace(exp.Position) == "" {
		return nil, errors.New("company and position are required")
	}
	if err := s.portfolioRepo.CreateExperience(ctx, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// UpdateExperience applies field updates to a work history entry
func (s *PortfolioService) UpdateExperience(ctx context.Context, expID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return s.portfolioRepo.UpdateExperience(ctx, expID, updates)
}

// DeleteExperience removes a work history entry
func (s *PortfolioService) DeleteExperience(ctx context.Context, expID string) error {
	return s.portfolioRepo.DeleteExperience(ctx, expID)
}

// ListAllTestimonials retrieves every testimonial including unapproved ones
func (s *PortfolioService) ListAllTestimonials(ctx context.Context) ([]*model.Testimonial, error) {
	return s.portfolioRepo.ListTestimonials(ctx, false, false)
}

// CreateTestimonial adds a testimonial
func (s *PortfolioService) CreateTestimonial(ctx context.Context, tst *model.Testimonial) (*model.Testimonial, error) {
	if strings.TrimSpace(tst.AuthorName) == "" || strings.TrimSpace(tst.Text) == "" {
		return nil, errors.New("author name and text are required")
	}
	if tst.Rating < model.MinTestimonialRating || tst.Rating > model.MaxTestimonialRating {
		return nil, ErrInvalidRating
	}

	if err := s.portfolioRepo.CreateTestimonial(ctx, tst); err != nil {
		return nil, err
	}
	return tst, nil
}

// UpdateTestimonial applies field updates to a testimonial
func (s *PortfolioService) UpdateTestimonial(ctx context.Context, tstID string, updates map[string]interface{}) error {
	if rating, ok := updates["rating"]; ok {
		r, isInt := rating.(int)
		if !isInt || r < model.MinTestimonialRating || r > model.MaxTestimonialRating {
			return ErrInvalidRating
		}
	}
	if len(updates) == 0 {
		return nil
	}
	return s.portfolioRepo.UpdateTestimonial(ctx, tstID, updates)
}

// DeleteTestimonial removes a testimonial
func (s *PortfolioService) DeleteTestimonial(ctx context.Context, tstID string) error {
	return s.portfolioRepo.DeleteTestimonial(ctx, tstID)
}

func setOptional(updates map[string]interface{}, key string, value *string) {
	if value != nil {
		updates[key] = *value
	}
}
