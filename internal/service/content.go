package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/stitch/cms/internal/model"
)

// ContentRepository defines the interface for content storage
type ContentRepository interface {
	Create(ctx context.Context, content *model.Content) error
	GetByID(ctx context.Context, contentID string) (*model.Content, error)
	GetBySlug(ctx context.Context, slug string) (*model.Content, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filters *model.ContentFilters) ([]*model.Content, error)
	Count(ctx context.Context, filters *model.ContentFilters) (int, error)
	Update(ctx context.Context, contentID string, updates map[string]interface{}) (*model.Content, error)
	Delete(ctx context.Context, contentID string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountByType(ctx context.Context) (map[string]int, error)
	RecentlyUpdated(ctx context.Context, limit int) ([]*model.Content, error)
	CreatedSince(ctx context.Context, cutoff string) ([]*model.Content, error)
}

// ContentService handles content management
type ContentService struct {
	contentRepo ContentRepository
	markdown    goldmark.Markdown
}

// ContentServiceConfig holds configuration for the content service
type ContentServiceConfig struct {
	ContentRepo ContentRepository
}

// NewContentService creates a new content service
func NewContentService(cfg ContentServiceConfig) *ContentService {
	return &ContentService{
		contentRepo: cfg.ContentRepo,
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Create creates a new content record. The slug is derived from the title,
// with a numeric suffix appended when the base slug is taken.
func (s *ContentService) Create(ctx context.Context, req model.CreateContentRequest, authorID string) (*model.Content, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrContentTitleRequired
	}
	if len(title) > model.MaxContentTitleLength {
		return nil, ErrContentTitleTooLong
	}
	if !contains(model.ValidContentTypes, req.ContentType) {
		return nil, ErrInvalidContentType
	}

	status := req.Status
	if status == "" {
		status = model.ContentStatusDraft
	}
	if !contains(model.ValidContentStatuses, status) {
		return nil, ErrInvalidContentStatus
	}
	if req.MetaDescription != nil && len(*req.MetaDescription) > model.MaxMetaDescriptionLength {
		return nil, ErrMetaDescriptionTooLong
	}

	slug, err := s.uniqueSlug(ctx, title)
	if err != nil {
		return nil, err
	}

	content := &model.Content{
		Title:           title,
		Slug:            slug,
		ContentType:     req.ContentType,
		Body:            req.Body,
		Excerpt:         req.Excerpt,
		Status:          status,
		AuthorID:        stringPtr(authorID),
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		AIGenerated:     req.AIGenerated,
	}

	if status == model.ContentStatusPublished {
		now := time.Now().UTC()
		content.PublishedOn = &now
	}

	if err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, err
	}

	return content, nil
}

// Get retrieves content by ID
func (s *ContentService) Get(ctx context.Context, contentID string) (*model.Content, error) {
	content, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrContentNotFound
	}
	return content, nil
}

// GetBySlug retrieves content by slug. When publishedOnly is set, drafts and
// archived entries are treated as missing.
func (s *ContentService) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Content, error) {
	content, err := s.contentRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrContentNotFound
	}
	if publishedOnly && !content.IsPublished() {
		return nil, ErrContentNotFound
	}
	return content, nil
}

// List retrieves content matching the filters along with the total count
func (s *ContentService) List(ctx context.Context, filters *model.ContentFilters) ([]*model.Content, int, error) {
	if filters == nil {
		filters = &model.ContentFilters{}
	}
	if filters.Limit <= 0 {
		filters.Limit = model.DefaultContentPageSize
	}
	if filters.Limit > model.MaxContentPageSize {
		filters.Limit = model.MaxContentPageSize
	}
	if filters.Status != nil && !contains(model.ValidContentStatuses, *filters.Status) {
		return nil, 0, ErrInvalidContentStatus
	}
	if filters.ContentType != nil && !contains(model.ValidContentTypes, *filters.ContentType) {
		return nil, 0, ErrInvalidContentType
	}

	items, err := s.contentRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.contentRepo.Count(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// Update applies a partial update. A title change regenerates the slug.
// Publishing stamps published_on once; re-publishing keeps the original stamp.
func (s *ContentService) Update(ctx context.Context, contentID string, req model.UpdateContentRequest) (*model.Content, error) {
	existing, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrContentNotFound
	}

	updates := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrContentTitleRequired
		}
		if len(title) > model.MaxContentTitleLength {
			return nil, ErrContentTitleTooLong
		}
		if title != existing.Title {
			slug, err := s.uniqueSlug(ctx, title)
			if err != nil {
				return nil, err
			}
			updates["slug"] = slug
		}
		updates["title"] = title
	}
	if req.ContentType != nil {
		if !contains(model.ValidContentTypes, *req.ContentType) {
			return nil, ErrInvalidContentType
		}
		updates["content_type"] = *req.ContentType
	}
	if req.Body != nil {
		updates["body"] = *req.Body
	}
	if req.Excerpt != nil {
		updates["excerpt"] = *req.Excerpt
	}
	if req.MetaTitle != nil {
		updates["meta_title"] = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		if len(*req.MetaDescription) > model.MaxMetaDescriptionLength {
			return nil, ErrMetaDescriptionTooLong
		}
		updates["meta_description"] = *req.MetaDescription
	}
	if req.MetaKeywords != nil {
		updates["meta_keywords"] = *req.MetaKeywords
	}
	if req.Status != nil {
		if !contains(model.ValidContentStatuses, *req.Status) {
			return nil, ErrInvalidContentStatus
		}
		updates["status"] = *req.Status
		if *req.Status == model.ContentStatusPublished && existing.PublishedOn == nil {
			updates["published_on"] = time.Now().UTC()
		}
	}

	if len(updates) == 0 {
		return existing, nil
	}

	return s.contentRepo.Update(ctx, contentID, updates)
}

// Delete removes a content record
func (s *ContentService) Delete(ctx context.Context, contentID string) error {
	existing, err := s.contentRepo.GetByID(ctx, contentID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrContentNotFound
	}
	return s.contentRepo.Delete(ctx, contentID)
}

// Render converts the content body from markdown to HTML
func (s *ContentService) Render(ctx context.Context, contentID string) (*model.RenderedContent, error) {
	content, err := s.Get(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content.Body == nil || strings.TrimSpace(*content.Body) == "" {
		return nil, ErrContentBodyEmpty
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(*content.Body), &buf); err != nil {
		return nil, fmt.Errorf("markdown conversion failed: %w", err)
	}

	return &model.RenderedContent{
		ID:       content.ID,
		Slug:     content.Slug,
		Title:    content.Title,
		HTML:     buf.String(),
		Rendered: time.Now().UTC(),
	}, nil
}

// StoreSuggestions attaches generated SEO advice to a content record
func (s *ContentService) StoreSuggestions(ctx context.Context, contentID string, suggestions *model.ContentSuggestions) (*model.Content, error) {
	if _, err := s.Get(ctx, contentID); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"meta_title":       suggestions.MetaTitle,
		"meta_description": suggestions.MetaDescription,
		"keywords":         suggestions.Keywords,
		"readability":      suggestions.Readability,
		"source":           suggestions.Source,
		"generated_on":     suggestions.GeneratedOn.Format(time.RFC3339),
	}

	return s.contentRepo.Update(ctx, contentID, map[string]interface{}{
		"ai_suggestions": payload,
	})
}

// CountByStatus returns content counts grouped by status
func (s *ContentService) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.contentRepo.CountByStatus(ctx)
}

// uniqueSlug derives a slug from the title and resolves collisions by
// appending -2, -3 and so on
func (s *ContentService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "untitled"
	}

	slug := base
	for n := 2; ; n++ {
		exists, err := s.contentRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

// Slugify lowercases a title and replaces runs of non-alphanumerics with
// single hyphens
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// contains reports whether list holds v
func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
