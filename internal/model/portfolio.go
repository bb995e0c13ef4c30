package model

import "time"

// ProfileInfo is the single active portfolio profile shown on the public site
type ProfileInfo struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Title              string  `json:"title"`
	Subtitle           *string `json:"subtitle,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	YearsExperience    *int    `json:"years_experience,omitempty"`
	AvailabilityStatus *string `json:"availability_status,omitempty"`
	ResumeURL          *string `json:"resume_url,omitempty"`
	ContactEmail       *string `json:"contact_email,omitempty"`
	Location           *string `json:"location,omitempty"`
	GithubURL          *string `json:"github_url,omitempty"`
	LinkedinURL        *string `json:"linkedin_url,omitempty"`
	WebsiteURL         *string `json:"website_url,omitempty"`
	IsActive           bool    `json:"is_active"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// ProfileStat is one headline metric (e.g. "Projects shipped: 40+")
type ProfileStat struct {
	ID           string  `json:"id"`
	MetricName   string  `json:"metric_name"`
	MetricValue  string  `json:"metric_value"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder int     `json:"display_order"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Skill is one portfolio skill card
type Skill struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	Icon          *string `json:"icon,omitempty"`
	Gradient      *string `json:"gradient,omitempty"`
	ProjectsCount int     `json:"projects_count"`
	ImpactMetric  *string `json:"impact_metric,omitempty"`
	Category      *string `json:"category,omitempty"`
	Level         *string `json:"level,omitempty"` // beginner, intermediate, advanced, expert
	IsFeatured    bool    `json:"is_featured"`
	IsActive      bool    `json:"is_active"`
	DisplayOrder  int     `json:"display_order"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// ProjectCategory groups projects for filtering
type ProjectCategory struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"` // unique
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Project is one portfolio project entry
type Project struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	ShortDescription *string  `json:"short_description,omitempty"`
	FullDescription  *string  `json:"full_description,omitempty"`
	Impact           *string  `json:"impact,omitempty"`
	ImpactMetrics    map[string]any `json:"impact_metrics,omitempty"`
	Technologies     []string `json:"technologies,omitempty"`
	ImageURL         *string  `json:"image_url,omitempty"`
	DemoURL          *string  `json:"demo_url,omitempty"`
	RepoURL          *string  `json:"repo_url,omitempty"`
	CategoryID       *string  `json:"category_id,omitempty"`
	IsFeatured       bool     `json:"is_featured"`
	IsPublished      bool     `json:"is_published"`
	DisplayOrder     int      `json:"display_order"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	Duration         *string  `json:"duration,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Experience is one work history entry
type Experience struct {
	ID               string     `json:"id"`
	Company          string     `json:"company"`
	Position         string     `json:"position"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	IsCurrent        bool       `json:"is_current"`
	Location         *string    `json:"location,omitempty"`
	WorkType         *string    `json:"work_type,omitempty"` // remote, hybrid, onsite
	Responsibilities []string   `json:"responsibilities,omitempty"`
	Achievements     []string   `json:"achievements,omitempty"`
	Technologies     []string   `json:"technologies,omitempty"`
	DisplayOrder     int        `json:"display_order"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Testimonial is one client or colleague quote
type Testimonial struct {
	ID             string  `json:"id"`
	AuthorName     string  `json:"author_name"`
	AuthorTitle    *string `json:"author_title,omitempty"`
	AuthorCompany  *string `json:"author_company,omitempty"`
	AuthorImageURL *string `json:"author_image_url,omitempty"`
	Text           string  `json:"text"`
	Rating         int     `json:"rating"` // 1..5
	IsApproved     bool    `json:"is_approved"`
	IsFeatured     bool    `json:"is_featured"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Homepage is the one-request payload for the public landing page
type Homepage struct {
	Profile      *ProfileInfo   `json:"profile,omitempty"`
	Stats        []*ProfileStat `json:"stats"`
	Skills       []*Skill       `json:"skills"`       // featured only
	Projects     []*Project     `json:"projects"`     // featured, published
	Testimonials []*Testimonial `json:"testimonials"` // featured, approved
}

// PortfolioFilters narrows public skill/project listings
type PortfolioFilters struct {
	Category     *string `json:"category,omitempty"`
	FeaturedOnly bool    `json:"featured_only"`
}

// Constraints
const (
	MinTestimonialRating = 1
	MaxTestimonialRating = 5
)
