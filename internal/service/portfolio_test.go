package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// Mock implementations

type mockPortfolioRepo struct {
	getActiveProfileFunc  func(ctx context.Context) (*model.ProfileInfo, error)
	createProfileFunc     func(ctx context.Context, profile *model.ProfileInfo) error
	updateProfileFunc     func(ctx context.Context, profileID string, updates map[string]interface{}) (*model.ProfileInfo, error)
	listStatsFunc         func(ctx context.Context) ([]*model.ProfileStat, error)
	createStatFunc        func(ctx context.Context, stat *model.ProfileStat) error
	updateStatFunc        func(ctx context.Context, statID string, updates map[string]interface{}) error
	deleteStatFunc        func(ctx context.Context, statID string) error
	listSkillsFunc        func(ctx context.Context, featuredOnly bool) ([]*model.Skill, error)
	createSkillFunc       func(ctx context.Context, skill *model.Skill) error
	updateSkillFunc       func(ctx context.Context, skillID string, updates map[string]interface{}) error
	deleteSkillFunc       func(ctx context.Context, skillID string) error
	listCategoriesFunc    func(ctx context.Context) ([]*model.ProjectCategory, error)
	getCategoryBySlugFunc func(ctx context.Context, slug string) (*model.ProjectCategory, error)
	createCategoryFunc    func(ctx context.Context, category *model.ProjectCategory) error
	deleteCategoryFunc    func(ctx context.Context, categoryID string) error
	listProjectsFunc      func(ctx context.Context, publishedOnly, featuredOnly bool, categoryID *string) ([]*model.Project, error)
	getProjectFunc        func(ctx context.Context, projectID string) (*model.Project, error)
	createProjectFunc     func(ctx context.Context, project *model.Project) error
	updateProjectFunc     func(ctx context.Context, projectID string, updates map[string]interface{}) (*model.Project, error)
	deleteProjectFunc     func(ctx context.Context, projectID string) error
	listExperiencesFunc   func(ctx context.Context) ([]*model.Experience, error)
	createExperienceFunc  func(ctx context.Context, exp *model.Experience) error
	updateExperienceFunc  func(ctx context.Context, expID string, updates map[string]interface{}) error
	deleteExperienceFunc  func(ctx context.Context, expID string) error
	listTestimonialsFunc  func(ctx context.Context, approvedOnly, featuredOnly bool) ([]*model.Testimonial, error)
	createTestimonialFunc func(ctx context.Context, tst *model.Testimonial) error
	updateTestimonialFunc func(ctx context.Context, tstID string, updates map[string]interface{}) error
	deleteTestimonialFunc func(ctx context.Context, tstID string) error
}

func (m *mockPortfolioRepo) GetActiveProfile(ctx context.Context) (*model.ProfileInfo, error) {
	if m.getActiveProfileFunc != nil {
		return m.getActiveProfileFunc(ctx)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) CreateProfile(ctx context.Context, profile *model.ProfileInfo) error {
	if m.createProfileFunc != nil {
		return m.createProfileFunc(ctx, profile)
	}
	profile.ID = "profile_info:test"
	return nil
}

func (m *mockPortfolioRepo) UpdateProfile(ctx context.Context, profileID string, updates map[string]interface{}) (*model.ProfileInfo, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, profileID, updates)
	}
	return &model.ProfileInfo{ID: profileID}, nil
}

func (m *mockPortfolioRepo) ListStats(ctx context.Context) ([]*model.ProfileStat, error) {
	if m.listStatsFunc != nil {
		return m.listStatsFunc(ctx)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) CreateStat(ctx context.Context, stat *model.ProfileStat) error {
	if m.createStatFunc != nil {
		return m.createStatFunc(ctx, stat)
	}
	stat.ID = "profile_stat:test"
	return nil
}

func (m *mockPortfolioRepo) UpdateStat(ctx context.Context, statID string, updates map[string]interface{}) error {
	if m.updateStatFunc != nil {
		return m.updateStatFunc(ctx, statID, updates)
	}
	return nil
}

func (m *mockPortfolioRepo) DeleteStat(ctx context.Context, statID string) error {
	if m.deleteStatFunc != nil {
		return m.deleteStatFunc(ctx, statID)
	}
	return nil
}

func (m *mockPortfolioRepo) ListSkills(ctx context.Context, featuredOnly bool) ([]*model.Skill, error) {
	if m.listSkillsFunc != nil {
		return m.listSkillsFunc(ctx, featuredOnly)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) CreateSkill(ctx context.Context, skill *model.Skill) error {
	if m.createSkillFunc != nil {
		return m.createSkillFunc(ctx, skill)
	}
	skill.ID = "skill:test"
	return nil
}

func (m *mockPortfolioRepo) UpdateSkill(ctx context.Context, skillID string, updates map[string]interface{}) error {
	if m.updateSkillFunc != nil {
		return m.updateSkillFunc(ctx, skillID, updates)
	}
	return nil
}

func (m *mockPortfolioRepo) DeleteSkill(ctx context.Context, skillID string) error {
	if m.deleteSkillFunc != nil {
		return m.deleteSkillFunc(ctx, skillID)
	}
	return nil
}

func (m *mockPortfolioRepo) ListCategories(ctx context.Context) ([]*model.ProjectCategory, error) {
	if m.listCategoriesFunc != nil {
		return m.listCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) GetCategoryBySlug(ctx context.Context, slug string) (*model.ProjectCategory, error) {
	if m.getCategoryBySlugFunc != nil {
		return m.getCategoryBySlugFunc(ctx, slug)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) CreateCategory(ctx context.Context, category *model.ProjectCategory) error {
	if m.createCategoryFunc != nil {
		return m.createCategoryFunc(ctx, category)
	}
	category.ID = "project_category:test"
	return nil
}

func (m *mockPortfolioRepo) DeleteCategory(ctx context.Context, categoryID string) error {
	if m.deleteCategoryFunc != nil {
		return m.deleteCategoryFunc(ctx, categoryID)
	}
	return nil
}

func (m *mockPortfolioRepo) ListProjects(ctx context.Context, publishedOnly, featuredOnly bool, categoryID *string) ([]*model.Project, error) {
	if m.listProjectsFunc != nil {
		return m.listProjectsFunc(ctx, publishedOnly, featuredOnly, categoryID)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	if m.getProjectFunc != nil {
		return m.getProjectFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) CreateProject(ctx context.Context, project *model.Project) error {
	if m.createProjectFunc != nil {
		return m.createProjectFunc(ctx, project)
	}
	project.ID = "project:test"
	return nil
}

func (m *mockPortfolioRepo) UpdateProject(ctx context.Context, projectID string, updates map[string]interface{}) (*model.Project, error) {
	if m.updateProjectFunc != nil {
		return m.updateProjectFunc(ctx, projectID, updates)
	}
	return &model.Project{ID: projectID}, nil
}

func (m *mockPortfolioRepo) DeleteProject(ctx context.Context, projectID string) error {
	if m.deleteProjectFunc != nil {
		return m.deleteProjectFunc(ctx, projectID)
	}
	return nil
}

func (m *mockPortfolioRepo) ListExperiences(ctx context.Context) ([]*model.Experience, error) {
	if m.listExperiencesFunc != nil {
		return m.listExperiencesFunc(ctx)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) CreateExperience(ctx context.Context, exp *model.Experience) error {
	if m.createExperienceFunc != nil {
		return m.createExperienceFunc(ctx, exp)
	}
	exp.ID = "experience:test"
	return nil
}

func (m *mockPortfolioRepo) UpdateExperience(ctx context.Context, expID string, updates map[string]interface{}) error {
	if m.updateExperienceFunc != nil {
		return m.updateExperienceFunc(ctx, expID, updates)
	}
	return nil
}

func (m *mockPortfolioRepo) DeleteExperience(ctx context.Context, expID string) error {
	if m.deleteExperienceFunc != nil {
		return m.deleteExperienceFunc(ctx, expID)
	}
	return nil
}

func (m *mockPortfolioRepo) ListTestimonials(ctx context.Context, approvedOnly, featuredOnly bool) ([]*model.Testimonial, error) {
	if m.listTestimonialsFunc != nil {
		return m.listTestimonialsFunc(ctx, approvedOnly, featuredOnly)
	}
	return nil, nil
}

func (m *mockPortfolioRepo) CreateTestimonial(ctx context.Context, tst *model.Testimonial) error {
	if m.createTestimonialFunc != nil {
		return m.createTestimonialFunc(ctx, tst)
	}
	tst.ID = "testimonial:test"
	return nil
}

func (m *mockPortfolioRepo) UpdateTestimonial(ctx context.Context, tstID string, updates map[string]interface{}) error {
	if m.updateTestimonialFunc != nil {
		return m.updateTestimonialFunc(ctx, tstID, updates)
	}
	return nil
}

func (m *mockPortfolioRepo) DeleteTestimonial(ctx context.Context, tstID string) error {
	if m.deleteTestimonialFunc != nil {
		return m.deleteTestimonialFunc(ctx, tstID)
	}
	return nil
}

// Profile Tests

func TestPortfolioGetProfile_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: &mockPortfolioRepo{}})

	_, err := svc.GetProfile(ctx)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestUpsertProfile_CreatesWhenNoneActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	created := false
	repo := &mockPortfolioRepo{
		createProfileFunc: func(ctx context.Context, profile *model.ProfileInfo) error {
			profile.ID = "profile_info:new"
			created = true
			return nil
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	profile, err := svc.UpsertProfile(ctx, &model.ProfileInfo{Name: "Alex", Title: "Engineer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !created {
		t.Error("expected profile to be created")
	}
	if !profile.IsActive {
		t.Error("expected upserted profile to be active")
	}
}

func TestUpsertProfile_UpdatesExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotUpdates map[string]interface{}
	repo := &mockPortfolioRepo{
		getActiveProfileFunc: func(ctx context.Context) (*model.ProfileInfo, error) {
			return &model.ProfileInfo{ID: "profile_info:old", Name: "Old", Title: "Developer", IsActive: true}, nil
		},
		updateProfileFunc: func(ctx context.Context, profileID string, updates map[string]interface{}) (*model.ProfileInfo, error) {
			gotUpdates = updates
			return &model.ProfileInfo{ID: profileID}, nil
		},
		createProfileFunc: func(ctx context.Context, profile *model.ProfileInfo) error {
			t.Error("expected update, not create")
			return nil
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	bio := "I build things"
	if _, err := svc.UpsertProfile(ctx, &model.ProfileInfo{Name: "Alex", Title: "Engineer", Bio: &bio}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUpdates["name"] != "Alex" || gotUpdates["bio"] != "I build things" {
		t.Errorf("unexpected updates: %v", gotUpdates)
	}
}

func TestUpsertProfile_RequiresNameAndTitle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: &mockPortfolioRepo{}})

	if _, err := svc.UpsertProfile(ctx, &model.ProfileInfo{Name: "  ", Title: "Engineer"}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := svc.UpsertProfile(ctx, &model.ProfileInfo{Name: "Alex", Title: ""}); err == nil {
		t.Error("expected error for missing title")
	}
}

// Skill Tests

func TestGetSkills_CategoryFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := "Backend"
	frontend := "Frontend"
	repo := &mockPortfolioRepo{
		listSkillsFunc: func(ctx context.Context, featuredOnly bool) ([]*model.Skill, error) {
			return []*model.Skill{
				{ID: "skill:1", Title: "Go", Category: &backend},
				{ID: "skill:2", Title: "React", Category: &frontend},
				{ID: "skill:3", Title: "Uncategorized"},
			}, nil
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	filter := "backend"
	skills, err := svc.GetSkills(ctx, model.PortfolioFilters{Category: &filter})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(skills) != 1 || skills[0].Title != "Go" {
		t.Errorf("expected case-insensitive category match, got %+v", skills)
	}
}

// Project Tests

func TestGetPublishedProjects_ResolvesCategorySlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotCategoryID *string
	var gotPublishedOnly bool
	repo := &mockPortfolioRepo{
		getCategoryBySlugFunc: func(ctx context.Context, slug string) (*model.ProjectCategory, error) {
			if slug == "web-apps" {
				return &model.ProjectCategory{ID: "project_category:web", Slug: slug}, nil
			}
			return nil, nil
		},
		listProjectsFunc: func(ctx context.Context, publishedOnly, featuredOnly bool, categoryID *string) ([]*model.Project, error) {
			gotPublishedOnly = publishedOnly
			gotCategoryID = categoryID
			return nil, nil
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	slug := "web-apps"
	if _, err := svc.GetPublishedProjects(ctx, model.PortfolioFilters{Category: &slug}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !gotPublishedOnly {
		t.Error("expected published-only listing")
	}
	if gotCategoryID == nil || *gotCategoryID != "project_category:web" {
		t.Errorf("expected resolved category id, got %v", gotCategoryID)
	}

	missing := "no-such-category"
	if _, err := svc.GetPublishedProjects(ctx, model.PortfolioFilters{Category: &missing}); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestGetProject_HidesUnpublished(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &mockPortfolioRepo{
		getProjectFunc: func(ctx context.Context, projectID string) (*model.Project, error) {
			return &model.Project{ID: projectID, Title: "Draft Project", IsPublished: false}, nil
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	_, err := svc.GetProject(ctx, "project:draft")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound for unpublished project, got %v", err)
	}
}

// Category Tests

func TestCreateCategory_SlugifiesName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: &mockPortfolioRepo{}})

	category, err := svc.CreateCategory(ctx, &model.ProjectCategory{Name: "Web Apps & APIs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if category.Slug != "web-apps-apis" {
		t.Errorf("expected derived slug, got %q", category.Slug)
	}
}

func TestCreateCategory_DuplicateSlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &mockPortfolioRepo{
		createCategoryFunc: func(ctx context.Context, category *model.ProjectCategory) error {
			return database.ErrDuplicate
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	_, err := svc.CreateCategory(ctx, &model.ProjectCategory{Name: "Web Apps"})
	if !errors.Is(err, ErrCategorySlugExists) {
		t.Errorf("expected ErrCategorySlugExists, got %v", err)
	}
}

// Testimonial Tests

func TestCreateTestimonial_RatingBounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: &mockPortfolioRepo{}})

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.CreateTestimonial(ctx, &model.Testimonial{
			AuthorName: "Jordan",
			Text:       "Great work",
			Rating:     rating,
		})
		if !errors.Is(err, ErrInvalidRating) {
			t.Errorf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}

	if _, err := svc.CreateTestimonial(ctx, &model.Testimonial{
		AuthorName: "Jordan",
		Text:       "Great work",
		Rating:     5,
	}); err != nil {
		t.Errorf("expected rating 5 to be valid, got %v", err)
	}
}

func TestUpdateTestimonial_RatingValidated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: &mockPortfolioRepo{}})

	err := svc.UpdateTestimonial(ctx, "testimonial:abc", map[string]interface{}{"rating": 9})
	if !errors.Is(err, ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating, got %v", err)
	}

	if err := svc.UpdateTestimonial(ctx, "testimonial:abc", map[string]interface{}{"rating": 3}); err != nil {
		t.Errorf("expected rating 3 to be valid, got %v", err)
	}
}

// Stat Tests

func TestUpdateStat_AppliesFieldUpdates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotStatID string
	var gotUpdates map[string]interface{}
	repo := &mockPortfolioRepo{
		updateStatFunc: func(ctx context.Context, statID string, updates map[string]interface{}) error {
			gotStatID = statID
			gotUpdates = updates
			return nil
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	updates := map[string]interface{}{"metric_value": "50+", "display_order": 2}
	if err := svc.UpdateStat(ctx, "profile_stat:abc", updates); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotStatID != "profile_stat:abc" {
		t.Errorf("expected stat ID to reach the repository, got %q", gotStatID)
	}
	if gotUpdates["metric_value"] != "50+" {
		t.Errorf("expected metric_value update, got %v", gotUpdates)
	}
}

func TestUpdateStat_RejectsBlankMetricFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &mockPortfolioRepo{
		updateStatFunc: func(ctx context.Context, statID string, updates map[string]interface{}) error {
			t.Error("repository must not be reached for blank metric fields")
			return nil
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	if err := svc.UpdateStat(ctx, "profile_stat:abc", map[string]interface{}{"metric_name": "  "}); err == nil {
		t.Error("expected blank metric_name to be rejected")
	}
	if err := svc.UpdateStat(ctx, "profile_stat:abc", map[string]interface{}{"metric_value": ""}); err == nil {
		t.Error("expected blank metric_value to be rejected")
	}
}

// Homepage Tests

func TestGetHomepage_AssemblesFeaturedContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &mockPortfolioRepo{
		getActiveProfileFunc: func(ctx context.Context) (*model.ProfileInfo, error) {
			return &model.ProfileInfo{ID: "profile_info:me", Name: "Alex", Title: "Engineer"}, nil
		},
		listSkillsFunc: func(ctx context.Context, featuredOnly bool) ([]*model.Skill, error) {
			if !featuredOnly {
				t.Error("expected featured-only skills on the homepage")
			}
			return []*model.Skill{{ID: "skill:1", Title: "Go"}}, nil
		},
		listProjectsFunc: func(ctx context.Context, publishedOnly, featuredOnly bool, categoryID *string) ([]*model.Project, error) {
			if !publishedOnly || !featuredOnly {
				t.Error("expected featured published projects on the homepage")
			}
			return []*model.Project{{ID: "project:1", Title: "CMS"}}, nil
		},
		listTestimonialsFunc: func(ctx context.Context, approvedOnly, featuredOnly bool) ([]*model.Testimonial, error) {
			if !approvedOnly || !featuredOnly {
				t.Error("expected featured approved testimonials on the homepage")
			}
			return nil, nil
		},
	}
	svc := NewPortfolioService(PortfolioServiceConfig{PortfolioRepo: repo})

	homepage, err := svc.GetHomepage(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if homepage.Profile == nil || homepage.Profile.Name != "Alex" {
		t.Error("expected profile on the homepage")
	}
	if len(homepage.Skills) != 1 || len(homepage.Projects) != 1 {
		t.Error("expected featured skills and projects")
	}
}
