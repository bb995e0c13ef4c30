package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stitch/cms/internal/model"
)

// Mock implementations

type mockContentRepo struct {
	createFunc          func(ctx context.Context, content *model.Content) error
	getByIDFunc         func(ctx context.Context, contentID string) (*model.Content, error)
	getBySlugFunc       func(ctx context.Context, slug string) (*model.Content, error)
	slugExistsFunc      func(ctx context.Context, slug string) (bool, error)
	listFunc            func(ctx context.Context, filters *model.ContentFilters) ([]*model.Content, error)
	countFunc           func(ctx context.Context, filters *model.ContentFilters) (int, error)
	updateFunc          func(ctx context.Context, contentID string, updates map[string]interface{}) (*model.Content, error)
	deleteFunc          func(ctx context.Context, contentID string) error
	countByStatusFunc   func(ctx context.Context) (map[string]int, error)
	countByTypeFunc     func(ctx context.Context) (map[string]int, error)
	recentlyUpdatedFunc func(ctx context.Context, limit int) ([]*model.Content, error)
	createdSinceFunc    func(ctx context.Context, cutoff string) ([]*model.Content, error)
}

func (m *mockContentRepo) Create(ctx context.Context, content *model.Content) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, content)
	}
	content.ID = "content:test"
	return nil
}

func (m *mockContentRepo) GetByID(ctx context.Context, contentID string) (*model.Content, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, contentID)
	}
	return nil, nil
}

func (m *mockContentRepo) GetBySlug(ctx context.Context, slug string) (*model.Content, error) {
	if m.getBySlugFunc != nil {
		return m.getBySlugFunc(ctx, slug)
	}
	return nil, nil
}

func (m *mockContentRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	if m.slugExistsFunc != nil {
		return m.slugExistsFunc(ctx, slug)
	}
	return false, nil
}

func (m *mockContentRepo) List(ctx context.Context, filters *model.ContentFilters) ([]*model.Content, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filters)
	}
	return nil, nil
}

func (m *mockContentRepo) Count(ctx context.Context, filters *model.ContentFilters) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filters)
	}
	return 0, nil
}

func (m *mockContentRepo) Update(ctx context.Context, contentID string, updates map[string]interface{}) (*model.Content, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, contentID, updates)
	}
	return &model.Content{ID: contentID}, nil
}

func (m *mockContentRepo) Delete(ctx context.Context, contentID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, contentID)
	}
	return nil
}

func (m *mockContentRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx)
	}
	return map[string]int{}, nil
}

func (m *mockContentRepo) CountByType(ctx context.Context) (map[string]int, error) {
	if m.countByTypeFunc != nil {
		return m.countByTypeFunc(ctx)
	}
	return map[string]int{}, nil
}

func (m *mockContentRepo) RecentlyUpdated(ctx context.Context, limit int) ([]*model.Content, error) {
	if m.recentlyUpdatedFunc != nil {
		return m.recentlyUpdatedFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockContentRepo) CreatedSince(ctx context.Context, cutoff string) ([]*model.Content, error) {
	if m.createdSinceFunc != nil {
		return m.createdSinceFunc(ctx, cutoff)
	}
	return nil, nil
}

// Create Tests

func TestContentCreate_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var created *model.Content
	repo := &mockContentRepo{
		createFunc: func(ctx context.Context, content *model.Content) error {
			content.ID = "content:abc"
			created = content
			return nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	content, err := svc.Create(ctx, model.CreateContentRequest{
		Title:       "Hello World",
		ContentType: model.ContentTypeArticle,
	}, "user:author")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if content.Slug != "hello-world" {
		t.Errorf("expected slug 'hello-world', got %q", content.Slug)
	}
	if content.Status != model.ContentStatusDraft {
		t.Errorf("expected default draft status, got %s", content.Status)
	}
	if content.PublishedOn != nil {
		t.Error("draft content should not carry a publish timestamp")
	}
	if created.AuthorID == nil || *created.AuthorID != "user:author" {
		t.Error("expected author to be recorded")
	}
}

func TestContentCreate_PublishedStampsTimestamp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewContentService(ContentServiceConfig{ContentRepo: &mockContentRepo{}})

	content, err := svc.Create(ctx, model.CreateContentRequest{
		Title:       "Launch Post",
		ContentType: model.ContentTypeBlogPost,
		Status:      model.ContentStatusPublished,
	}, "user:author")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if content.PublishedOn == nil {
		t.Error("expected published_on to be stamped")
	}
}

func TestContentCreate_SlugCollisionAppendsSuffix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	taken := map[string]bool{"hello-world": true, "hello-world-2": true}
	repo := &mockContentRepo{
		slugExistsFunc: func(ctx context.Context, slug string) (bool, error) {
			return taken[slug], nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	content, err := svc.Create(ctx, model.CreateContentRequest{
		Title:       "Hello World",
		ContentType: model.ContentTypeArticle,
	}, "user:author")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if content.Slug != "hello-world-3" {
		t.Errorf("expected slug 'hello-world-3', got %q", content.Slug)
	}
}

func TestContentCreate_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewContentService(ContentServiceConfig{ContentRepo: &mockContentRepo{}})
	longDesc := strings.Repeat("x", model.MaxMetaDescriptionLength+1)

	tests := []struct {
		name    string
		req     model.CreateContentRequest
		wantErr error
	}{
		{
			name:    "missing title",
			req:     model.CreateContentRequest{Title: "   ", ContentType: model.ContentTypeArticle},
			wantErr: ErrContentTitleRequired,
		},
		{
			name: "title too long",
			req: model.CreateContentRequest{
				Title:       strings.Repeat("a", model.MaxContentTitleLength+1),
				ContentType: model.ContentTypeArticle,
			},
			wantErr: ErrContentTitleTooLong,
		},
		{
			name:    "unknown content type",
			req:     model.CreateContentRequest{Title: "Hi", ContentType: "newsletter"},
			wantErr: ErrInvalidContentType,
		},
		{
			name: "unknown status",
			req: model.CreateContentRequest{
				Title:       "Hi",
				ContentType: model.ContentTypeArticle,
				Status:      "pending",
			},
			wantErr: ErrInvalidContentStatus,
		},
		{
			name: "meta description too long",
			req: model.CreateContentRequest{
				Title:           "Hi",
				ContentType:     model.ContentTypeArticle,
				MetaDescription: &longDesc,
			},
			wantErr: ErrMetaDescriptionTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req, "user:author")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// GetBySlug Tests

func TestContentGetBySlug_PublishedOnlyHidesDrafts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := &mockContentRepo{
		getBySlugFunc: func(ctx context.Context, slug string) (*model.Content, error) {
			return &model.Content{ID: "content:draft", Slug: slug, Status: model.ContentStatusDraft}, nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	_, err := svc.GetBySlug(ctx, "draft-post", true)
	if !errors.Is(err, ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound for draft, got %v", err)
	}

	// Without the flag the draft is visible
	content, err := svc.GetBySlug(ctx, "draft-post", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.ID != "content:draft" {
		t.Errorf("unexpected content: %s", content.ID)
	}
}

// List Tests

func TestContentList_ClampsPageSize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotLimit int
	repo := &mockContentRepo{
		listFunc: func(ctx context.Context, filters *model.ContentFilters) ([]*model.Content, error) {
			gotLimit = filters.Limit
			return nil, nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	if _, _, err := svc.List(ctx, &model.ContentFilters{Limit: 10000}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != model.MaxContentPageSize {
		t.Errorf("expected limit clamped to %d, got %d", model.MaxContentPageSize, gotLimit)
	}

	if _, _, err := svc.List(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != model.DefaultContentPageSize {
		t.Errorf("expected default limit %d, got %d", model.DefaultContentPageSize, gotLimit)
	}
}

func TestContentList_RejectsUnknownStatusFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewContentService(ContentServiceConfig{ContentRepo: &mockContentRepo{}})

	bad := "pending"
	_, _, err := svc.List(ctx, &model.ContentFilters{Status: &bad})
	if !errors.Is(err, ErrInvalidContentStatus) {
		t.Errorf("expected ErrInvalidContentStatus, got %v", err)
	}
}

// Update Tests

func TestContentUpdate_TitleChangeRegeneratesSlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var gotUpdates map[string]interface{}
	repo := &mockContentRepo{
		getByIDFunc: func(ctx context.Context, contentID string) (*model.Content, error) {
			return &model.Content{ID: contentID, Title: "Old Title", Slug: "old-title"}, nil
		},
		updateFunc: func(ctx context.Context, contentID string, updates map[string]interface{}) (*model.Content, error) {
			gotUpdates = updates
			return &model.Content{ID: contentID}, nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	newTitle := "New Title"
	if _, err := svc.Update(ctx, "content:abc", model.UpdateContentRequest{Title: &newTitle}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUpdates["slug"] != "new-title" {
		t.Errorf("expected regenerated slug, got %v", gotUpdates["slug"])
	}
	if gotUpdates["title"] != "New Title" {
		t.Errorf("expected title update, got %v", gotUpdates["title"])
	}
}

func TestContentUpdate_FirstPublishStampsTimestampOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	existing := &model.Content{ID: "content:abc", Title: "Post", Status: model.ContentStatusDraft}
	var gotUpdates map[string]interface{}
	repo := &mockContentRepo{
		getByIDFunc: func(ctx context.Context, contentID string) (*model.Content, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, contentID string, updates map[string]interface{}) (*model.Content, error) {
			gotUpdates = updates
			return existing, nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	published := model.ContentStatusPublished
	if _, err := svc.Update(ctx, "content:abc", model.UpdateContentRequest{Status: &published}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gotUpdates["published_on"]; !ok {
		t.Error("expected published_on on first publish")
	}

	// Re-publishing keeps the original stamp
	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing.PublishedOn = &stamp
	if _, err := svc.Update(ctx, "content:abc", model.UpdateContentRequest{Status: &published}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gotUpdates["published_on"]; ok {
		t.Error("expected published_on to be left alone on re-publish")
	}
}

func TestContentUpdate_NoChangesReturnsExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	updateCalled := false
	repo := &mockContentRepo{
		getByIDFunc: func(ctx context.Context, contentID string) (*model.Content, error) {
			return &model.Content{ID: contentID, Title: "Post"}, nil
		},
		updateFunc: func(ctx context.Context, contentID string, updates map[string]interface{}) (*model.Content, error) {
			updateCalled = true
			return nil, nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	content, err := svc.Update(ctx, "content:abc", model.UpdateContentRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updateCalled {
		t.Error("expected no repository update for an empty request")
	}
	if content.Title != "Post" {
		t.Errorf("expected existing record back, got %+v", content)
	}
}

func TestContentUpdate_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewContentService(ContentServiceConfig{ContentRepo: &mockContentRepo{}})

	_, err := svc.Update(ctx, "content:missing", model.UpdateContentRequest{})
	if !errors.Is(err, ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

// Render Tests

func TestContentRender_ConvertsMarkdown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	body := "# Heading\n\nSome **bold** text."
	repo := &mockContentRepo{
		getByIDFunc: func(ctx context.Context, contentID string) (*model.Content, error) {
			return &model.Content{ID: contentID, Title: "Post", Slug: "post", Body: &body}, nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	rendered, err := svc.Render(ctx, "content:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(rendered.HTML, "<h1") {
		t.Errorf("expected heading in output, got %q", rendered.HTML)
	}
	if !strings.Contains(rendered.HTML, "<strong>bold</strong>") {
		t.Errorf("expected bold text in output, got %q", rendered.HTML)
	}
}

func TestContentRender_EmptyBody(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	empty := "   "
	repo := &mockContentRepo{
		getByIDFunc: func(ctx context.Context, contentID string) (*model.Content, error) {
			return &model.Content{ID: contentID, Body: &empty}, nil
		},
	}
	svc := NewContentService(ContentServiceConfig{ContentRepo: repo})

	_, err := svc.Render(ctx, "content:abc")
	if !errors.Is(err, ErrContentBodyEmpty) {
		t.Errorf("expected ErrContentBodyEmpty, got %v", err)
	}
}

// Slugify Tests

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Lots   of   Spaces  ", "lots-of-spaces"},
		{"Already-Hyphenated Title", "already-hyphenated-title"},
		{"Symbols & Punctuation!?", "symbols-punctuation"},
		{"Numbers 123 stay", "numbers-123-stay"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
