// Package fixtures provides test data factories for e2e testing.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories handle database insertion
// and return fully populated models.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	editor := f.CreateEditor(t)
//	content := f.CreateContent(t, editor)
//	event := f.CreateEvent(t, editor)
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// Factory creates test entities in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// Store cancel to prevent leak warning
	_ = cancel
	return c
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Email    string
	Username string
	Password string
	Role     model.UserRole
	IsActive bool
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	o := &UserOpts{
		Email:    fmt.Sprintf("user_%s@test.local", randomID()),
		Username: fmt.Sprintf("user_%s", randomID()),
		Password: "testpass123",
		Role:     model.UserRoleViewer,
		IsActive: true,
	}
	for _, fn := range opts {
		fn(o)
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}

	query := `
		CREATE user CONTENT {
			email: $email,
			username: $username,
			hash: $hash,
			role: $role,
			is_active: $is_active,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"email":     o.Email,
		"username":  o.Username,
		"hash":      string(hash),
		"role":      string(o.Role),
		"is_active": o.IsActive,
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}

	user := parseUserResult(t, results)
	user.Hash = nil // Don't expose hash in fixture
	return user
}

// CreateEditor creates a user with the editor role
func (f *Factory) CreateEditor(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.UserRoleEditor
	})
}

// CreateAdmin creates an admin user
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.UserRoleAdmin
	})
}

// ============================================================================
// Content Fixtures
// ============================================================================

// ContentOpts customizes content creation
type ContentOpts struct {
	Title       string
	Slug        string
	ContentType string
	Body        string
	Status      string
}

// CreateContent creates a content entry authored by the given user
func (f *Factory) CreateContent(t *testing.T, author *model.User, opts ...func(*ContentOpts)) *model.Content {
	t.Helper()

	id := randomID()
	o := &ContentOpts{
		Title:       fmt.Sprintf("Test Article %s", id),
		Slug:        fmt.Sprintf("test-article-%s", id),
		ContentType: model.ContentTypeArticle,
		Body:        "# Heading\n\nSome **markdown** body text.",
		Status:      model.ContentStatusDraft,
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE content CONTENT {
			title: $title,
			slug: $slug,
			content_type: $content_type,
			body: $body,
			status: $status,
			author_id: $author_id,
			ai_generated: false,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"title":        o.Title,
		"slug":         o.Slug,
		"content_type": o.ContentType,
		"body":         o.Body,
		"status":       o.Status,
		"author_id":    author.ID,
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create content: %v", err)
	}

	return parseContentResult(t, results)
}

// CreatePublishedContent creates content in the published state
func (f *Factory) CreatePublishedContent(t *testing.T, author *model.User) *model.Content {
	return f.CreateContent(t, author, func(o *ContentOpts) {
		o.Status = model.ContentStatusPublished
	})
}

// ============================================================================
// Event Fixtures
// ============================================================================

// EventOpts customizes event creation
type EventOpts struct {
	Title           string
	EventType       string
	StartDate       time.Time
	Status          string
	RequireApproval bool
	AllowGuests     bool
	SendReminders   bool
	RSVPDeadline    *time.Time
	MaxAttendees    *int
}

// CreateEvent creates an event owned by the given user
func (f *Factory) CreateEvent(t *testing.T, creator *model.User, opts ...func(*EventOpts)) *model.Event {
	t.Helper()

	o := &EventOpts{
		Title:         fmt.Sprintf("Test Event %s", randomID()),
		EventType:     "meetup",
		StartDate:     time.Now().Add(14 * 24 * time.Hour),
		Status:        model.EventStatusPublished,
		AllowGuests:   true,
		SendReminders: true,
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE event CONTENT {
			title: $title,
			event_type: $event_type,
			start_date: $start_date,
			status: $status,
			require_approval: $require_approval,
			allow_guests: $allow_guests,
			send_reminders: $send_reminders,
			reminder_days_before: [7, 1],
			rsvp_deadline: IF $rsvp_deadline IS NOT NULL THEN $rsvp_deadline ELSE NONE END,
			max_attendees: IF $max_attendees IS NOT NULL THEN $max_attendees ELSE NONE END,
			created_by: $created_by,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"title":            o.Title,
		"event_type":       o.EventType,
		"start_date":       o.StartDate.UTC(),
		"status":           o.Status,
		"require_approval": o.RequireApproval,
		"allow_guests":     o.AllowGuests,
		"send_reminders":   o.SendReminders,
		"created_by":       creator.ID,
	}
	if o.RSVPDeadline != nil {
		vars["rsvp_deadline"] = o.RSVPDeadline.UTC().Format(time.RFC3339)
	} else {
		vars["rsvp_deadline"] = nil
	}
	if o.MaxAttendees != nil {
		vars["max_attendees"] = *o.MaxAttendees
	} else {
		vars["max_attendees"] = nil
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create event: %v", err)
	}

	return parseEventResult(t, results)
}

// CreateDraftEvent creates an event still in draft
func (f *Factory) CreateDraftEvent(t *testing.T, creator *model.User) *model.Event {
	return f.CreateEvent(t, creator, func(o *EventOpts) {
		o.Status = model.EventStatusDraft
	})
}

// ============================================================================
// RSVP Fixtures
// ============================================================================

// RSVPOpts customizes RSVP creation
type RSVPOpts struct {
	Email      string
	Name       string
	Status     string
	GuestCount int
	Source     string
}

// CreateRSVP creates an RSVP for the given event
func (f *Factory) CreateRSVP(t *testing.T, event *model.Event, opts ...func(*RSVPOpts)) *model.RSVP {
	t.Helper()

	id := randomID()
	o := &RSVPOpts{
		Email:  fmt.Sprintf("guest_%s@test.local", id),
		Name:   fmt.Sprintf("Guest %s", id),
		Status: model.RSVPStatusPending,
		Source: model.RSVPSourceManual,
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE rsvp CONTENT {
			event_id: $event_id,
			email: $email,
			name: $name,
			status: $status,
			guest_count: $guest_count,
			source: $source,
			reminder_count: 0,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"event_id":    event.ID,
		"email":       o.Email,
		"name":        o.Name,
		"status":      o.Status,
		"guest_count": o.GuestCount,
		"source":      o.Source,
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create rsvp: %v", err)
	}

	return parseRSVPResult(t, results)
}

// CreateAcceptedRSVP creates an RSVP that has already accepted
func (f *Factory) CreateAcceptedRSVP(t *testing.T, event *model.Event) *model.RSVP {
	return f.CreateRSVP(t, event, func(o *RSVPOpts) {
		o.Status = model.RSVPStatusAccepted
		o.GuestCount = 1
	})
}

// ============================================================================
// Module Fixtures
// ============================================================================

// ModuleOpts customizes module creation
type ModuleOpts struct {
	Name     string
	Version  string
	IsActive bool
}

// CreateModule creates an installed module record
func (f *Factory) CreateModule(t *testing.T, opts ...func(*ModuleOpts)) *model.Module {
	t.Helper()

	o := &ModuleOpts{
		Name:    "events",
		Version: "1.0.0",
	}
	for _, fn := range opts {
		fn(o)
	}

	query := `
		CREATE module CONTENT {
			name: $name,
			version: $version,
			is_active: $is_active,
			configuration: {},
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"name":      o.Name,
		"version":   o.Version,
		"is_active": o.IsActive,
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create module: %v", err)
	}

	return parseModuleResult(t, results)
}

// ============================================================================
// Setting Fixtures
// ============================================================================

// CreateSetting creates a site setting with the given key and value
func (f *Factory) CreateSetting(t *testing.T, key string, value any) *model.SiteSetting {
	t.Helper()

	query := `
		CREATE site_setting CONTENT {
			key: $key,
			value: $value,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	results, err := f.db.Query(ctx(), query, map[string]interface{}{
		"key":   key,
		"value": value,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create setting: %v", err)
	}

	data := firstResult(t, results)
	return &model.SiteSetting{
		ID:        getString(data, "id"),
		Key:       getString(data, "key"),
		Value:     data["value"],
		CreatedOn: getTime(data, "created_on"),
		UpdatedOn: getTime(data, "updated_on"),
	}
}

// ============================================================================
// Error Record Fixtures
// ============================================================================

// ErrorOpts customizes error record creation
type ErrorOpts struct {
	Severity string
	Category string
	Source   string
	Message  string
	Resolved bool
	Age      time.Duration
}

// CreateErrorRecord creates a tracked error record
func (f *Factory) CreateErrorRecord(t *testing.T, opts ...func(*ErrorOpts)) *model.ErrorRecord {
	t.Helper()

	o := &ErrorOpts{
		Severity: model.ErrorSeverityMedium,
		Category: model.ErrorCategorySystem,
		Source:   model.ErrorSourceBackend,
		Message:  fmt.Sprintf("test error %s", randomID()),
	}
	for _, fn := range opts {
		fn(o)
	}

	when := time.Now().Add(-o.Age).UTC().Format(time.RFC3339)
	query := `
		CREATE error_record CONTENT {
			timestamp: $when,
			severity: $severity,
			category: $category,
			source: $source,
			message: $message,
			resolved: $resolved,
			resolved_on: IF $resolved THEN $when ELSE NONE END,
			occurrence_count: 1,
			first_occurrence: $when,
			last_occurrence: $when
		}
	`
	vars := map[string]interface{}{
		"when":     when,
		"severity": o.Severity,
		"category": o.Category,
		"source":   o.Source,
		"message":  o.Message,
		"resolved": o.Resolved,
	}

	results, err := f.db.Query(ctx(), query, vars)
	if err != nil {
		t.Fatalf("fixtures: failed to create error record: %v", err)
	}

	data := firstResult(t, results)
	return &model.ErrorRecord{
		ID:              getString(data, "id"),
		Timestamp:       getTime(data, "timestamp"),
		Severity:        getString(data, "severity"),
		Category:        getString(data, "category"),
		Source:          getString(data, "source"),
		Message:         getString(data, "message"),
		Resolved:        getBool(data, "resolved"),
		OccurrenceCount: getInt(data, "occurrence_count"),
		FirstOccurrence: getTime(data, "first_occurrence"),
		LastOccurrence:  getTime(data, "last_occurrence"),
	}
}

// ============================================================================
// Result Parsing Helpers
// ============================================================================

func parseUserResult(t *testing.T, results []interface{}) *model.User {
	t.Helper()
	data := firstResult(t, results)

	return &model.User{
		ID:        getString(data, "id"),
		Email:     getString(data, "email"),
		Username:  getString(data, "username"),
		Role:      model.UserRole(getString(data, "role")),
		IsActive:  getBool(data, "is_active"),
		CreatedOn: getTime(data, "created_on"),
		UpdatedOn: getTime(data, "updated_on"),
	}
}

func parseContentResult(t *testing.T, results []interface{}) *model.Content {
	t.Helper()
	data := firstResult(t, results)

	return &model.Content{
		ID:          getString(data, "id"),
		Title:       getString(data, "title"),
		Slug:        getString(data, "slug"),
		ContentType: getString(data, "content_type"),
		Body:        getStringPtr(data, "body"),
		Status:      getString(data, "status"),
		AuthorID:    getStringPtr(data, "author_id"),
		AIGenerated: getBool(data, "ai_generated"),
		CreatedOn:   getTime(data, "created_on"),
		UpdatedOn:   getTime(data, "updated_on"),
	}
}

func parseEventResult(t *testing.T, results []interface{}) *model.Event {
	t.Helper()
	data := firstResult(t, results)

	return &model.Event{
		ID:              getString(data, "id"),
		Title:           getString(data, "title"),
		EventType:       getString(data, "event_type"),
		StartDate:       getTime(data, "start_date"),
		Status:          getString(data, "status"),
		RequireApproval: getBool(data, "require_approval"),
		AllowGuests:     getBool(data, "allow_guests"),
		SendReminders:   getBool(data, "send_reminders"),
		CreatedBy:       getStringPtr(data, "created_by"),
		CreatedOn:       getTime(data, "created_on"),
		UpdatedOn:       getTime(data, "updated_on"),
	}
}

func parseRSVPResult(t *testing.T, results []interface{}) *model.RSVP {
	t.Helper()
	data := firstResult(t, results)

	return &model.RSVP{
		ID:         getString(data, "id"),
		EventID:    getString(data, "event_id"),
		Email:      getString(data, "email"),
		Name:       getStringPtr(data, "name"),
		Status:     getString(data, "status"),
		GuestCount: getInt(data, "guest_count"),
		Source:     getString(data, "source"),
		CreatedOn:  getTime(data, "created_on"),
		UpdatedOn:  getTime(data, "updated_on"),
	}
}

func parseModuleResult(t *testing.T, results []interface{}) *model.Module {
	t.Helper()
	data := firstResult(t, results)

	return &model.Module{
		ID:        getString(data, "id"),
		Name:      getString(data, "name"),
		Version:   getString(data, "version"),
		IsActive:  getBool(data, "is_active"),
		CreatedOn: getTime(data, "created_on"),
		UpdatedOn: getTime(data, "updated_on"),
	}
}

// ============================================================================
// Low-level Result Extraction
// ============================================================================

func firstResult(t *testing.T, results []interface{}) map[string]interface{} {
	t.Helper()

	if len(results) == 0 {
		t.Fatal("fixtures: no results returned")
	}

	resp, ok := results[0].(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", results[0])
	}

	result, ok := resp["result"]
	if !ok {
		t.Fatal("fixtures: no result in response")
	}

	// Handle array result
	if arr, ok := result.([]interface{}); ok {
		if len(arr) == 0 {
			t.Fatal("fixtures: empty result array")
		}
		data, ok := arr[0].(map[string]interface{})
		if !ok {
			t.Fatalf("fixtures: unexpected array item type: %T", arr[0])
		}
		return data
	}

	// Handle single result
	data, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("fixtures: unexpected result type: %T", result)
	}
	return data
}

func getString(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	// Handle SurrealDB 3 record ID type - could be a struct or map
	if v := data[key]; v != nil {
		// Try to get the ID as a map with "tb" (table) and "id" fields
		if m, ok := v.(map[string]interface{}); ok {
			if tb, ok := m["tb"].(string); ok {
				if id := m["id"]; id != nil {
					return fmt.Sprintf("%s:%v", tb, id)
				}
			}
		}
		// Fallback: use string conversion but fix the format if needed
		s := fmt.Sprintf("%v", v)
		// Convert "{table id}" to "table:id"
		if len(s) > 2 && s[0] == '{' && s[len(s)-1] == '}' {
			inner := s[1 : len(s)-1]
			for i, c := range inner {
				if c == ' ' {
					return inner[:i] + ":" + inner[i+1:]
				}
			}
		}
		return s
	}
	return ""
}

func getStringPtr(data map[string]interface{}, key string) *string {
	if v, ok := data[key].(string); ok {
		return &v
	}
	return nil
}

func getBool(data map[string]interface{}, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func getInt(data map[string]interface{}, key string) int {
	if v, ok := data[key].(float64); ok {
		return int(v)
	}
	return 0
}

func getTime(data map[string]interface{}, key string) time.Time {
	if v, ok := data[key].(string); ok {
		t, _ := time.Parse(time.RFC3339Nano, v)
		return t
	}
	return time.Time{}
}
