package tests

import (
	"context"
	"testing"

	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/repository"
	"github.com/stitch/cms/internal/service"
	"github.com/stitch/cms/internal/testing/fixtures"
	"github.com/stitch/cms/internal/testing/helpers"
	"github.com/stitch/cms/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
FEATURE: Content Management
DOMAIN: Content

ACCEPTANCE CRITERIA:
===================

AC-CONTENT-001: Create Content with Generated Slug
  GIVEN a title
  WHEN an editor creates content
  THEN a URL-safe slug is derived from the title
  AND the content starts in draft status unless stated otherwise

AC-CONTENT-002: Slug Collision Gets Suffix
  GIVEN existing content with slug X
  WHEN new content would produce slug X
  THEN the new slug gets a numeric suffix

AC-CONTENT-003: Publish Sets Timestamp
  GIVEN draft content
  WHEN status changes to published
  THEN published_on is set

AC-CONTENT-004: Slug Lookup Respects Visibility
  GIVEN draft content
  WHEN an anonymous reader looks it up by slug
  THEN it is not found
  AND an authenticated lookup returns it

AC-CONTENT-005: Filtered Listing
  GIVEN mixed content
  WHEN listing with type/status filters
  THEN only matching entries return with a total count

AC-CONTENT-006: Markdown Rendering
  GIVEN content with a markdown body
  WHEN rendered
  THEN HTML is produced
*/

func createContentService(tdb *testdb.TestDB) *service.ContentService {
	return service.NewContentService(service.ContentServiceConfig{
		ContentRepo: repository.NewContentRepository(tdb.DB),
	})
}

func TestContent_CreateWithGeneratedSlug(t *testing.T) {
	// AC-CONTENT-001: Create Content with Generated Slug
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createContentService(tdb)
	ctx := context.Background()

	editor := f.CreateEditor(t)

	content, err := svc.Create(ctx, model.CreateContentRequest{
		Title:       "Hello, World! A First Post",
		ContentType: model.ContentTypeBlogPost,
		Body:        helpers.StringPtr("Some body text."),
	}, editor.ID)

	require.NoError(t, err)
	assert.Equal(t, "hello-world-a-first-post", content.Slug)
	assert.Equal(t, model.ContentStatusDraft, content.Status)
	require.NotNil(t, content.AuthorID)
	assert.Equal(t, editor.ID, *content.AuthorID)

	helpers.AssertRecordExists(t, tdb.DB, "content", content.ID)
}

func TestContent_SlugCollisionGetsSuffix(t *testing.T) {
	// AC-CONTENT-002: Slug Collision Gets Suffix
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createContentService(tdb)
	ctx := context.Background()

	editor := f.CreateEditor(t)

	first, err := svc.Create(ctx, model.CreateContentRequest{
		Title:       "Release Notes",
		ContentType: model.ContentTypeArticle,
	}, editor.ID)
	require.NoError(t, err)

	second, err := svc.Create(ctx, model.CreateContentRequest{
		Title:       "Release Notes",
		ContentType: model.ContentTypeArticle,
	}, editor.ID)
	require.NoError(t, err)

	assert.Equal(t, "release-notes", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "release-notes")
}

func TestContent_PublishSetsTimestamp(t *testing.T) {
	// AC-CONTENT-003: Publish Sets Timestamp
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createContentService(tdb)
	ctx := context.Background()

	editor := f.CreateEditor(t)
	draft := f.CreateContent(t, editor)

	status := model.ContentStatusPublished
	updated, err := svc.Update(ctx, draft.ID, model.UpdateContentRequest{
		Status: &status,
	})

	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPublished, updated.Status)
	require.NotNil(t, updated.PublishedOn)
	assert.False(t, updated.PublishedOn.IsZero())
}

func TestContent_SlugLookupRespectsVisibility(t *testing.T) {
	// AC-CONTENT-004: Slug Lookup Respects Visibility
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createContentService(tdb)
	ctx := context.Background()

	editor := f.CreateEditor(t)
	draft := f.CreateContent(t, editor)

	// Anonymous lookup only sees published content
	_, err := svc.GetBySlug(ctx, draft.Slug, true)
	require.ErrorIs(t, err, service.ErrContentNotFound)

	// Authenticated lookup sees drafts
	found, err := svc.GetBySlug(ctx, draft.Slug, false)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, found.ID)

	// Published content is visible to everyone
	published := f.CreatePublishedContent(t, editor)
	found, err = svc.GetBySlug(ctx, published.Slug, true)
	require.NoError(t, err)
	assert.Equal(t, published.ID, found.ID)
}

func TestContent_FilteredListing(t *testing.T) {
	// AC-CONTENT-005: Filtered Listing
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createContentService(tdb)
	ctx := context.Background()

	editor := f.CreateEditor(t)

	f.CreateContent(t, editor) // draft article
	f.CreatePublishedContent(t, editor)
	f.CreateContent(t, editor, func(o *fixtures.ContentOpts) {
		o.ContentType = model.ContentTypePage
	})

	// Filter by status
	status := model.ContentStatusPublished
	items, total, err := svc.List(ctx, &model.ContentFilters{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, model.ContentStatusPublished, items[0].Status)

	// Filter by type
	pageType := model.ContentTypePage
	items, total, err = svc.List(ctx, &model.ContentFilters{ContentType: &pageType})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, model.ContentTypePage, items[0].ContentType)

	// No filters returns everything
	_, total, err = svc.List(ctx, &model.ContentFilters{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestContent_MarkdownRendering(t *testing.T) {
	// AC-CONTENT-006: Markdown Rendering
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createContentService(tdb)
	ctx := context.Background()

	editor := f.CreateEditor(t)
	content := f.CreateContent(t, editor, func(o *fixtures.ContentOpts) {
		o.Body = "# Title\n\nSome **bold** text."
	})

	rendered, err := svc.Render(ctx, content.ID)
	require.NoError(t, err)
	assert.Contains(t, rendered.HTML, "<h1")
	assert.Contains(t, rendered.HTML, "<strong>")
}

func TestContent_DeleteRemovesRecord(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	svc := createContentService(tdb)
	ctx := context.Background()

	editor := f.CreateEditor(t)
	content := f.CreateContent(t, editor)

	require.NoError(t, svc.Delete(ctx, content.ID))
	helpers.AssertRecordNotExists(t, tdb.DB, "content", content.ID)

	_, err := svc.Get(ctx, content.ID)
	require.ErrorIs(t, err, service.ErrContentNotFound)
}
