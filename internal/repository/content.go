package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// ContentRepository handles content data access
type ContentRepository struct {
	db database.Database
}

// NewContentRepository creates a new content repository
func NewContentRepository(db database.Database) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create creates a new content record
func (c *ContentRepository) Create(ctx context.Context, content *model.Content) error {
	// Build query dynamically to handle optional fields (SurrealDB option<T> requires NONE, not NULL)
	vars := map[string]interface{}{
		"title":        content.Title,
		"slug":         content.Slug,
		"content_type": content.ContentType,
		"status":       content.Status,
		"ai_generated": content.AIGenerated,
	}

	setClause := `
		title = $title,
		slug = $slug,
		content_type = $content_type,
		status = $status,
		ai_generated = $ai_generated,
		created_on = time::now(),
		updated_on = time::now()`

	if content.Body != nil {
		setClause += ", body = $body"
		vars["body"] = *content.Body
	}
	if content.Excerpt != nil {
		setClause += ", excerpt = $excerpt"
		vars["excerpt"] = *content.Excerpt
	}
	if content.AuthorID != nil {
		setClause += ", author_id = type::record($author_id)"
		vars["author_id"] = *content.AuthorID
	}
	if content.MetaTitle != nil {
		setClause += ", meta_title = $meta_title"
		vars["meta_title"] = *content.MetaTitle
	}
	if content.MetaDescription != nil {
		setClause += ", meta_description = $meta_description"
		vars["meta_description"] = *content.MetaDescription
	}
	if content.MetaKeywords != nil {
		setClause += ", meta_keywords = $meta_keywords"
		vars["meta_keywords"] = *content.MetaKeywords
	}
	if len(content.AISuggestions) > 0 {
		setClause += ", ai_suggestions = $ai_suggestions"
		vars["ai_suggestions"] = content.AISuggestions
	}
	if content.PublishedOn != nil {
		setClause += ", published_on = time::now()"
	}

	query := "CREATE content SET " + setClause

	result, err := c.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: content with slug %s already exists", database.ErrDuplicate, content.Slug)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	content.ID = created.ID
	content.CreatedOn = created.CreatedOn
	content.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves content by ID
func (c *ContentRepository) GetByID(ctx context.Context, contentID string) (*model.Content, error) {
	query := `SELECT * FROM type::record($content_id)`
	vars := map[string]interface{}{"content_id": contentID}

	result, err := c.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return c.parseContentResult(result)
}

// GetBySlug retrieves content by its slug
func (c *ContentRepository) GetBySlug(ctx context.Context, slug string) (*model.Content, error) {
	query := `SELECT * FROM content WHERE slug = $slug LIMIT 1`
	vars := map[string]interface{}{"slug": slug}

	result, err := c.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return c.parseContentResult(result)
}

// SlugExists reports whether any content already claims the slug
func (c *ContentRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT count() FROM content WHERE slug = $slug GROUP ALL`
	vars := map[string]interface{}{"slug": slug}

	result, err := c.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return extractCount(result) > 0, nil
}

// List retrieves content matching the filters, newest first
func (c *ContentRepository) List(ctx context.Context, filters *model.ContentFilters) ([]*model.Content, error) {
	query := `SELECT * FROM content WHERE true`
	vars := map[string]interface{}{}

	query, vars = applyContentFilters(query, vars, filters)

	query += ` ORDER BY created_on DESC`

	limit := model.DefaultContentPageSize
	offset := 0
	if filters != nil {
		if filters.Limit > 0 {
			limit = filters.Limit
		}
		if filters.Offset > 0 {
			offset = filters.Offset
		}
	}
	query += ` LIMIT $limit START $offset`
	vars["limit"] = limit
	vars["offset"] = offset

	result, err := c.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return c.parseContentsResult(result)
}

// Count counts content matching the filters
func (c *ContentRepository) Count(ctx context.Context, filters *model.ContentFilters) (int, error) {
	query := `SELECT count() FROM content WHERE true`
	vars := map[string]interface{}{}

	query, vars = applyContentFilters(query, vars, filters)
	query += ` GROUP ALL`

	result, err := c.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return extractCount(result), nil
}

func applyContentFilters(query string, vars map[string]interface{}, filters *model.ContentFilters) (string, map[string]interface{}) {
	if filters == nil {
		return query, vars
	}
	if filters.ContentType != nil {
		query += ` AND content_type = $content_type`
		vars["content_type"] = *filters.ContentType
	}
	if filters.Status != nil {
		query += ` AND status = $status`
		vars["status"] = *filters.Status
	}
	if filters.Search != nil && *filters.Search != "" {
		query += ` AND (string::lowercase(title) CONTAINS string::lowercase($search)
			OR string::lowercase(body ?? "") CONTAINS string::lowercase($search)
			OR string::lowercase(excerpt ?? "") CONTAINS string::lowercase($search))`
		vars["search"] = *filters.Search
	}
	return query, vars
}

// Update applies field updates and returns the updated content
func (c *ContentRepository) Update(ctx context.Context, contentID string, updates map[string]interface{}) (*model.Content, error) {
	query := `UPDATE content SET updated_on = time::now()`
	vars := map[string]interface{}{"content_id": contentID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($content_id) RETURN AFTER`

	result, err := c.db.QueryOne(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: slug already in use", database.ErrDuplicate)
		}
		return nil, err
	}

	return c.parseContentResult(result)
}

// Delete deletes a content record
func (c *ContentRepository) Delete(ctx context.Context, contentID string) error {
	query := `DELETE content WHERE id = type::record($content_id)`
	vars := map[string]interface{}{"content_id": contentID}

	return c.db.Execute(ctx, query, vars)
}

// CountByStatus returns content counts grouped by status
func (c *ContentRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, count() FROM content GROUP BY status`

	result, err := c.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return c.parseGroupCounts(result, "status")
}

// CountByType returns content counts grouped by content type
func (c *ContentRepository) CountByType(ctx context.Context) (map[string]int, error) {
	query := `SELECT content_type, count() FROM content GROUP BY content_type`

	result, err := c.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return c.parseGroupCounts(result, "content_type")
}

// RecentlyUpdated retrieves the most recently updated content records
func (c *ContentRepository) RecentlyUpdated(ctx context.Context, limit int) ([]*model.Content, error) {
	query := `SELECT * FROM content ORDER BY updated_on DESC LIMIT $limit`
	vars := map[string]interface{}{"limit": limit}

	result, err := c.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return c.parseContentsResult(result)
}

// CreatedSince retrieves content created on or after the cutoff, oldest first.
// Used by the analytics timeline which buckets by day in the service layer.
func (c *ContentRepository) CreatedSince(ctx context.Context, cutoff string) ([]*model.Content, error) {
	query := `
		SELECT * FROM content
		WHERE created_on >= <datetime>$cutoff
		ORDER BY created_on ASC
	`
	vars := map[string]interface{}{"cutoff": cutoff}

	result, err := c.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return c.parseContentsResult(result)
}

// Helper functions

func (c *ContentRepository) parseContentResult(result interface{}) (*model.Content, error) {
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
	if author, ok := data["author_id"]; ok {
		if authorStr := convertSurrealID(author); authorStr != "" {
			data["author_id"] = authorStr
		}
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var content model.Content
	if err := json.Unmarshal(jsonBytes, &content); err != nil {
		return nil, err
	}

	if t := getTime(data, "created_on"); t != nil {
		content.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		content.UpdatedOn = *t
	}
	content.PublishedOn = getTime(data, "published_on")

	return &content, nil
}

func (c *ContentRepository) parseContentsResult(result []interface{}) ([]*model.Content, error) {
	contents := make([]*model.Content, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					content, err := c.parseContentResult(item)
					if err != nil {
						continue
					}
					contents = append(contents, content)
				}
				continue
			}
		}

		content, err := c.parseContentResult(res)
		if err != nil {
			continue
		}
		contents = append(contents, content)
	}

	return contents, nil
}

func (c *ContentRepository) parseGroupCounts(result []interface{}, key string) (map[string]int, error) {
	counts := make(map[string]int)

	rows, ok := extractQueryResults(result)
	if !ok {
		return counts, nil
	}

	for _, row := range rows {
		if data, ok := row.(map[string]interface{}); ok {
			label := getString(data, key)
			if label == "" {
				continue
			}
			counts[label] = getInt(data, "count")
		}
	}

	return counts, nil
}
