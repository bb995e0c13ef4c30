package model

import "time"

// ContentType constants
const (
	ContentTypeArticle  = "article"
	ContentTypePage     = "page"
	ContentTypeBlogPost = "blog_post"
)

// ContentStatus constants
const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
	ContentStatusArchived  = "archived"
)

// ValidContentTypes lists accepted content_type values
var ValidContentTypes = []string{ContentTypeArticle, ContentTypePage, ContentTypeBlogPost}

// ValidContentStatuses lists accepted status values
var ValidContentStatuses = []string{ContentStatusDraft, ContentStatusPublished, ContentStatusArchived}

// Content represents a managed piece of content (article, page or blog post)
type Content struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"` // unique, derived from title
	ContentType string  `json:"content_type"`
	Body        *string `json:"body,omitempty"`
	Excerpt     *string `json:"excerpt,omitempty"`
	Status      string  `json:"status"`
	AuthorID    *string `json:"author_id,omitempty"`
	// SEO metadata
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	MetaKeywords    *string `json:"meta_keywords,omitempty"`
	// AI assistance
	AIGenerated   bool           `json:"ai_generated"`
	AISuggestions map[string]any `json:"ai_suggestions,omitempty"`

	CreatedOn   time.Time  `json:"created_on"`
	UpdatedOn   time.Time  `json:"updated_on"`
	PublishedOn *time.Time `json:"published_on,omitempty"`
}

// IsPublished returns true if the content is publicly visible
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}

// CreateContentRequest represents a request to create content
type CreateContentRequest struct {
	Title           string  `json:"title"`
	ContentType     string  `json:"content_type"`
	Body            *string `json:"body,omitempty"`
	Excerpt         *string `json:"excerpt,omitempty"`
	Status          string  `json:"status,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	MetaKeywords    *string `json:"meta_keywords,omitempty"`
	AIGenerated     bool    `json:"ai_generated,omitempty"`
}

// UpdateContentRequest represents a PATCH to content. Nil fields are left alone.
type UpdateContentRequest struct {
	Title           *string `json:"title,omitempty"`
	ContentType     *string `json:"content_type,omitempty"`
	Body            *string `json:"body,omitempty"`
	Excerpt         *string `json:"excerpt,omitempty"`
	Status          *string `json:"status,omitempty"`
	MetaTitle       *string `json:"meta_title,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	MetaKeywords    *string `json:"meta_keywords,omitempty"`
}

// ContentFilters narrows content listing
type ContentFilters struct {
	ContentType *string `json:"content_type,omitempty"`
	Status      *string `json:"status,omitempty"`
	Search      *string `json:"search,omitempty"` // substring over title/body/excerpt
	Offset      int     `json:"offset"`
	Limit       int     `json:"limit"`
}

// RenderedContent is the HTML form of a content body
type RenderedContent struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	HTML     string `json:"html"`
	Rendered time.Time `json:"rendered"`
}

// Constraints
const (
	MaxContentTitleLength    = 200
	MaxMetaDescriptionLength = 160
	MaxExcerptLength         = 500
	DefaultContentPageSize   = 20
	MaxContentPageSize       = 100
)
