package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// PortfolioRepository handles portfolio data access: profile, stats,
// skills, project categories, projects, experiences and testimonials.
type PortfolioRepository struct {
	db database.Database
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db database.Database) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// decodeRecord normalizes a SurrealDB row and unmarshals it into out.
// Timestamp fields are fixed up by the callers since their names vary.
func decodeRecord(result interface{}, out interface{}) (map[string]interface{}, error) {
	if result == nil {
		return nil, database.ErrNotFound
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	if id, ok := data["id"]; ok {
		data["id"] = convertSurrealID(id)
	}
	// Timestamps may come back as CustomDateTime which does not marshal
	// to RFC3339, drop them and let the caller restore via getTime
	normalized := make(map[string]interface{}, len(data))
	for k, v := range data {
		switch k {
		case "created_on", "updated_on", "start_date", "end_date":
			continue
		default:
			normalized[k] = v
		}
	}

	jsonBytes, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(jsonBytes, out); err != nil {
		return nil, err
	}

	return data, nil
}

// forEachRow walks a SurrealDB query response and invokes fn per row
func forEachRow(result []interface{}, fn func(row interface{})) {
	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					fn(item)
				}
				continue
			}
		}
		fn(res)
	}
}

// === Profile ===

// GetActiveProfile retrieves the active portfolio profile
func (r *PortfolioRepository) GetActiveProfile(ctx context.Context) (*model.ProfileInfo, error) {
	query := `SELECT * FROM profile_info WHERE is_active = true LIMIT 1`

	result, err := r.db.QueryOne(ctx, query, nil)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseProfileResult(result)
}

// CreateProfile creates a portfolio profile
func (r *PortfolioRepository) CreateProfile(ctx context.Context, profile *model.ProfileInfo) error {
	query := `
		CREATE profile_info CONTENT {
			name: $name,
			title: $title,
			subtitle: $subtitle,
			bio: $bio,
			years_experience: $years_experience,
			availability_status: $availability_status,
			resume_url: $resume_url,
			contact_email: $contact_email,
			location: $location,
			github_url: $github_url,
			linkedin_url: $linkedin_url,
			website_url: $website_url,
			is_active: $is_active,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"name":                profile.Name,
		"title":               profile.Title,
		"subtitle":            ptrToNone(profile.Subtitle),
		"bio":                 ptrToNone(profile.Bio),
		"years_experience":    profile.YearsExperience,
		"availability_status": ptrToNone(profile.AvailabilityStatus),
		"resume_url":          ptrToNone(profile.ResumeURL),
		"contact_email":       ptrToNone(profile.ContactEmail),
		"location":            ptrToNone(profile.Location),
		"github_url":          ptrToNone(profile.GithubURL),
		"linkedin_url":        ptrToNone(profile.LinkedinURL),
		"website_url":         ptrToNone(profile.WebsiteURL),
		"is_active":           profile.IsActive,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	profile.ID = created.ID
	profile.CreatedOn = created.CreatedOn
	profile.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateProfile applies field updates and returns the updated profile
func (r *PortfolioRepository) UpdateProfile(ctx context.Context, profileID string, updates map[string]interface{}) (*model.ProfileInfo, error) {
	query := `UPDATE profile_info SET updated_on = time::now()`
	vars := map[string]interface{}{"profile_id": profileID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($profile_id) RETURN AFTER`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseProfileResult(result)
}

func (r *PortfolioRepository) parseProfileResult(result interface{}) (*model.ProfileInfo, error) {
	var profile model.ProfileInfo
	data, err := decodeRecord(result, &profile)
	if err != nil {
		return nil, err
	}

	if t := getTime(data, "created_on"); t != nil {
		profile.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		profile.UpdatedOn = *t
	}

	return &profile, nil
}

// === Stats ===

// ListStats retrieves profile stats in display order
func (r *PortfolioRepository) ListStats(ctx context.Context) ([]*model.ProfileStat, error) {
	query := `SELECT * FROM profile_stat ORDER BY display_order ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	stats := make([]*model.ProfileStat, 0)
	forEachRow(result, func(row interface{}) {
		var stat model.ProfileStat
		data, err := decodeRecord(row, &stat)
		if err != nil {
			return
		}
		if t := getTime(data, "created_on"); t != nil {
			stat.CreatedOn = *t
		}
		if t := getTime(data, "updated_on"); t != nil {
			stat.UpdatedOn = *t
		}
		stats = append(stats, &stat)
	})

	return stats, nil
}

// CreateStat creates a profile stat
func (r *PortfolioRepository) CreateStat(ctx context.Context, stat *model.ProfileStat) error {
	query := `
		CREATE profile_stat CONTENT {
			metric_name: $metric_name,
			metric_value: $metric_value,
			description: $description,
			display_order: $display_order,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"metric_name":   stat.MetricName,
		"metric_value":  stat.MetricValue,
		"description":   ptrToNone(stat.Description),
		"display_order": stat.DisplayOrder,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	stat.ID = created.ID
	stat.CreatedOn = created.CreatedOn
	stat.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateStat applies field updates to a profile stat
func (r *PortfolioRepository) UpdateStat(ctx context.Context, statID string, updates map[string]interface{}) error {
	query := `UPDATE profile_stat SET updated_on = time::now()`
	vars := map[string]interface{}{"stat_id": statID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($stat_id)`

	return r.db.Execute(ctx, query, vars)
}

// DeleteStat removes a profile stat
func (r *PortfolioRepository) DeleteStat(ctx context.Context, statID string) error {
	query := `DELETE profile_stat WHERE id = type::record($stat_id)`
	vars := map[string]interface{}{"stat_id": statID}

	return r.db.Execute(ctx, query, vars)
}

// === Skills ===

// ListSkills retrieves active skills, optionally featured only, in display order
func (r *PortfolioRepository) ListSkills(ctx context.Context, featuredOnly bool) ([]*model.Skill, error) {
	query := `SELECT * FROM skill WHERE is_active = true`
	if featuredOnly {
		query += ` AND is_featured = true`
	}
	query += ` ORDER BY display_order ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	skills := make([]*model.Skill, 0)
	forEachRow(result, func(row interface{}) {
		var skill model.Skill
		data, err := decodeRecord(row, &skill)
		if err != nil {
			return
		}
		if t := getTime(data, "created_on"); t != nil {
			skill.CreatedOn = *t
		}
		if t := getTime(data, "updated_on"); t != nil {
			skill.UpdatedOn = *t
		}
		skills = append(skills, &skill)
	})

	return skills, nil
}

// CreateSkill creates a skill card
func (r *PortfolioRepository) CreateSkill(ctx context.Context, skill *model.Skill) error {
	query := `
		CREATE skill CONTENT {
			title: $title,
			description: $description,
			icon: $icon,
			gradient: $gradient,
			projects_count: $projects_count,
			impact_metric: $impact_metric,
			category: $category,
			level: $level,
			is_featured: $is_featured,
			is_active: $is_active,
			display_order: $display_order,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"title":          skill.Title,
		"description":    ptrToNone(skill.Description),
		"icon":           ptrToNone(skill.Icon),
		"gradient":       ptrToNone(skill.Gradient),
		"projects_count": skill.ProjectsCount,
		"impact_metric":  ptrToNone(skill.ImpactMetric),
		"category":       ptrToNone(skill.Category),
		"level":          ptrToNone(skill.Level),
		"is_featured":    skill.IsFeatured,
		"is_active":      skill.IsActive,
		"display_order":  skill.DisplayOrder,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	skill.ID = created.ID
	skill.CreatedOn = created.CreatedOn
	skill.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateSkill applies field updates to a skill
func (r *PortfolioRepository) UpdateSkill(ctx context.Context, skillID string, updates map[string]interface{}) error {
	query := `UPDATE skill SET updated_on = time::now()`
	vars := map[string]interface{}{"skill_id": skillID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($skill_id)`

	return r.db.Execute(ctx, query, vars)
}

// DeleteSkill removes a skill
func (r *PortfolioRepository) DeleteSkill(ctx context.Context, skillID string) error {
	query := `DELETE skill WHERE id = type::record($skill_id)`
	vars := map[string]interface{}{"skill_id": skillID}

	return r.db.Execute(ctx, query, vars)
}

// === Project categories ===

// ListCategories retrieves project categories
func (r *PortfolioRepository) ListCategories(ctx context.Context) ([]*model.ProjectCategory, error) {
	query := `SELECT * FROM project_category ORDER BY name ASC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	categories := make([]*model.ProjectCategory, 0)
	forEachRow(result, func(row interface{}) {
		var category model.ProjectCategory
		data, err := decodeRecord(row, &category)
		if err != nil {
			return
		}
		if t := getTime(data, "created_on"); t != nil {
			category.CreatedOn = *t
		}
		if t := getTime(data, "updated_on"); t != nil {
			category.UpdatedOn = *t
		}
		categories = append(categories, &category)
	})

	return categories, nil
}

// GetCategoryBySlug retrieves a category by slug
func (r *PortfolioRepository) GetCategoryBySlug(ctx context.Context, slug string) (*model.ProjectCategory, error) {
	query := `SELECT * FROM project_category WHERE slug = $slug LIMIT 1`
	vars := map[string]interface{}{"slug": slug}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var category model.ProjectCategory
	data, err := decodeRecord(result, &category)
	if err != nil {
		return nil, err
	}
	if t := getTime(data, "created_on"); t != nil {
		category.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		category.UpdatedOn = *t
	}

	return &category, nil
}

// CreateCategory creates a project category. Slugs are unique.
func (r *PortfolioRepository) CreateCategory(ctx context.Context, category *model.ProjectCategory) error {
	existing, err := r.GetCategoryBySlug(ctx, category.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: category slug %s already exists", database.ErrDuplicate, category.Slug)
	}

	query := `
		CREATE project_category CONTENT {
			name: $name,
			slug: $slug,
			icon: $icon,
			color: $color,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"name":  category.Name,
		"slug":  category.Slug,
		"icon":  ptrToNone(category.Icon),
		"color": ptrToNone(category.Color),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: category slug %s already exists", database.ErrDuplicate, category.Slug)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	category.ID = created.ID
	category.CreatedOn = created.CreatedOn
	category.UpdatedOn = created.UpdatedOn
	return nil
}

// DeleteCategory removes a category and detaches its projects
func (r *PortfolioRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	queries := []struct {
		Query string
		Vars  map[string]interface{}
	}{
		{`UPDATE project SET category_id = NONE WHERE category_id = $category_id`,
			map[string]interface{}{"category_id": categoryID}},
		{`DELETE project_category WHERE id = type::record($category_id)`,
			map[string]interface{}{"category_id": categoryID}},
	}

	return BatchExecute(ctx, r.db, queries)
}

// === Projects ===

// ListProjects retrieves projects, ordered by display order
func (r *PortfolioRepository) ListProjects(ctx context.Context, publishedOnly, featuredOnly bool, categoryID *string) ([]*model.Project, error) {
	query := `SELECT * FROM project WHERE true`
	vars := map[string]interface{}{}

	if publishedOnly {
		query += ` AND is_published = true`
	}
	if featuredOnly {
		query += ` AND is_featured = true`
	}
	if categoryID != nil {
		query += ` AND category_id = $category_id`
		vars["category_id"] = *categoryID
	}

	query += ` ORDER BY display_order ASC`

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	projects := make([]*model.Project, 0)
	forEachRow(result, func(row interface{}) {
		project, err := r.parseProjectResult(row)
		if err != nil {
			return
		}
		projects = append(projects, project)
	})

	return projects, nil
}

// GetProject retrieves a project by ID
func (r *PortfolioRepository) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	query := `SELECT * FROM type::record($project_id)`
	vars := map[string]interface{}{"project_id": projectID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseProjectResult(result)
}

// CreateProject creates a project
func (r *PortfolioRepository) CreateProject(ctx context.Context, project *model.Project) error {
	vars := map[string]interface{}{
		"title":         project.Title,
		"is_featured":   project.IsFeatured,
		"is_published":  project.IsPublished,
		"display_order": project.DisplayOrder,
	}

	setClause := `
		title = $title,
		is_featured = $is_featured,
		is_published = $is_published,
		display_order = $display_order,
		created_on = time::now(),
		updated_on = time::now()`

	if project.ShortDescription != nil {
		setClause += ", short_description = $short_description"
		vars["short_description"] = *project.ShortDescription
	}
	if project.FullDescription != nil {
		setClause += ", full_description = $full_description"
		vars["full_description"] = *project.FullDescription
	}
	if project.Impact != nil {
		setClause += ", impact = $impact"
		vars["impact"] = *project.Impact
	}
	if len(project.ImpactMetrics) > 0 {
		setClause += ", impact_metrics = $impact_metrics"
		vars["impact_metrics"] = project.ImpactMetrics
	}
	if len(project.Technologies) > 0 {
		setClause += ", technologies = $technologies"
		vars["technologies"] = project.Technologies
	}
	if project.ImageURL != nil {
		setClause += ", image_url = $image_url"
		vars["image_url"] = *project.ImageURL
	}
	if project.DemoURL != nil {
		setClause += ", demo_url = $demo_url"
		vars["demo_url"] = *project.DemoURL
	}
	if project.RepoURL != nil {
		setClause += ", repo_url = $repo_url"
		vars["repo_url"] = *project.RepoURL
	}
	if project.CategoryID != nil {
		setClause += ", category_id = $category_id"
		vars["category_id"] = *project.CategoryID
	}
	if project.StartDate != nil {
		setClause += ", start_date = $start_date"
		vars["start_date"] = *project.StartDate
	}
	if project.EndDate != nil {
		setClause += ", end_date = $end_date"
		vars["end_date"] = *project.EndDate
	}
	if project.Duration != nil {
		setClause += ", duration = $duration"
		vars["duration"] = *project.Duration
	}

	query := "CREATE project SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	project.ID = created.ID
	project.CreatedOn = created.CreatedOn
	project.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateProject applies field updates and returns the updated project
func (r *PortfolioRepository) UpdateProject(ctx context.Context, projectID string, updates map[string]interface{}) (*model.Project, error) {
	query := `UPDATE project SET updated_on = time::now()`
	vars := map[string]interface{}{"project_id": projectID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($project_id) RETURN AFTER`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseProjectResult(result)
}

// DeleteProject removes a project
func (r *PortfolioRepository) DeleteProject(ctx context.Context, projectID string) error {
	query := `DELETE project WHERE id = type::record($project_id)`
	vars := map[string]interface{}{"project_id": projectID}

	return r.db.Execute(ctx, query, vars)
}

func (r *PortfolioRepository) parseProjectResult(result interface{}) (*model.Project, error) {
	var project model.Project
	data, err := decodeRecord(result, &project)
	if err != nil {
		return nil, err
	}

	if cid, ok := data["category_id"]; ok {
		if cidStr := convertSurrealID(cid); cidStr != "" {
			project.CategoryID = &cidStr
		}
	}

	project.StartDate = getTime(data, "start_date")
	project.EndDate = getTime(data, "end_date")
	if t := getTime(data, "created_on"); t != nil {
		project.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		project.UpdatedOn = *t
	}

	return &project, nil
}

// === Experiences ===

// ListExperiences retrieves work history entries, current first
func (r *PortfolioRepository) ListExperiences(ctx context.Context) ([]*model.Experience, error) {
	query := `SELECT * FROM experience ORDER BY display_order ASC, start_date DESC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	experiences := make([]*model.Experience, 0)
	forEachRow(result, func(row interface{}) {
		var exp model.Experience
		data, err := decodeRecord(row, &exp)
		if err != nil {
			return
		}
		if t := getTime(data, "start_date"); t != nil {
			exp.StartDate = *t
		}
		exp.EndDate = getTime(data, "end_date")
		if t := getTime(data, "created_on"); t != nil {
			exp.CreatedOn = *t
		}
		if t := getTime(data, "updated_on"); t != nil {
			exp.UpdatedOn = *t
		}
		experiences = append(experiences, &exp)
	})

	return experiences, nil
}

// CreateExperience creates a work history entry
func (r *PortfolioRepository) CreateExperience(ctx context.Context, exp *model.Experience) error {
	vars := map[string]interface{}{
		"company":       exp.Company,
		"position":      exp.Position,
		"start_date":    exp.StartDate,
		"is_current":    exp.IsCurrent,
		"display_order": exp.DisplayOrder,
	}

	setClause := `
		company = $company,
		position = $position,
		start_date = $start_date,
		is_current = $is_current,
		display_order = $display_order,
		created_on = time::now(),
		updated_on = time::now()`

	if exp.EndDate != nil {
		setClause += ", end_date = $end_date"
		vars["end_date"] = *exp.EndDate
	}
	if exp.Location != nil {
		setClause += ", location = $location"
		vars["location"] = *exp.Location
	}
	if exp.WorkType != nil {
		setClause += ", work_type = $work_type"
		vars["work_type"] = *exp.WorkType
	}
	if len(exp.Responsibilities) > 0 {
		setClause += ", responsibilities = $responsibilities"
		vars["responsibilities"] = exp.Responsibilities
	}
	if len(exp.Achievements) > 0 {
		setClause += ", achievements = $achievements"
		vars["achievements"] = exp.Achievements
	}
	if len(exp.Technologies) > 0 {
		setClause += ", technologies = $technologies"
		vars["technologies"] = exp.Technologies
	}

	query := "CREATE experience SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	exp.ID = created.ID
	exp.CreatedOn = created.CreatedOn
	exp.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateExperience applies field updates to a work history entry
func (r *PortfolioRepository) UpdateExperience(ctx context.Context, expID string, updates map[string]interface{}) error {
	query := `UPDATE experience SET updated_on = time::now()`
	vars := map[string]interface{}{"exp_id": expID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($exp_id)`

	return r.db.Execute(ctx, query, vars)
}

// DeleteExperience removes a work history entry
func (r *PortfolioRepository) DeleteExperience(ctx context.Context, expID string) error {
	query := `DELETE experience WHERE id = type::record($exp_id)`
	vars := map[string]interface{}{"exp_id": expID}

	return r.db.Execute(ctx, query, vars)
}

// === Testimonials ===

// ListTestimonials retrieves testimonials, newest first
func (r *PortfolioRepository) ListTestimonials(ctx context.Context, approvedOnly, featuredOnly bool) ([]*model.Testimonial, error) {
	query := `SELECT * FROM testimonial WHERE true`
	if approvedOnly {
		query += ` AND is_approved = true`
	}
	if featuredOnly {
		query += ` AND is_featured = true`
	}
	query += ` ORDER BY created_on DESC`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	testimonials := make([]*model.Testimonial, 0)
	forEachRow(result, func(row interface{}) {
		var tst model.Testimonial
		data, err := decodeRecord(row, &tst)
		if err != nil {
			return
		}
		if t := getTime(data, "created_on"); t != nil {
			tst.CreatedOn = *t
		}
		if t := getTime(data, "updated_on"); t != nil {
			tst.UpdatedOn = *t
		}
		testimonials = append(testimonials, &tst)
	})

	return testimonials, nil
}

// CreateTestimonial creates a testimonial, unapproved by default
func (r *PortfolioRepository) CreateTestimonial(ctx context.Context, tst *model.Testimonial) error {
	query := `
		CREATE testimonial CONTENT {
			author_name: $author_name,
			author_title: $author_title,
			author_company: $author_company,
			author_image_url: $author_image_url,
			text: $text,
			rating: $rating,
			is_approved: $is_approved,
			is_featured: $is_featured,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"author_name":      tst.AuthorName,
		"author_title":     ptrToNone(tst.AuthorTitle),
		"author_company":   ptrToNone(tst.AuthorCompany),
		"author_image_url": ptrToNone(tst.AuthorImageURL),
		"text":             tst.Text,
		"rating":           tst.Rating,
		"is_approved":      tst.IsApproved,
		"is_featured":      tst.IsFeatured,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	tst.ID = created.ID
	tst.CreatedOn = created.CreatedOn
	tst.UpdatedOn = created.UpdatedOn
	return nil
}

// UpdateTestimonial applies field updates (approval, featuring) to a testimonial
func (r *PortfolioRepository) UpdateTestimonial(ctx context.Context, tstID string, updates map[string]interface{}) error {
	query := `UPDATE testimonial SET updated_on = time::now()`
	vars := map[string]interface{}{"tst_id": tstID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($tst_id)`

	return r.db.Execute(ctx, query, vars)
}

// DeleteTestimonial removes a testimonial
func (r *PortfolioRepository) DeleteTestimonial(ctx context.Context, tstID string) error {
	query := `DELETE testimonial WHERE id = type::record($tst_id)`
	vars := map[string]interface{}{"tst_id": tstID}

	return r.db.Execute(ctx, query, vars)
}
