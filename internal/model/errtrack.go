package model

import "time"

// ErrorSeverity constants
const (
	ErrorSeverityCritical = "critical"
	ErrorSeverityHigh     = "high"
	ErrorSeverityMedium   = "medium"
	ErrorSeverityLow      = "low"
	ErrorSeverityInfo     = "info"
)

// ErrorCategory constants
const (
	ErrorCategorySystem          = "system"
	ErrorCategoryBusinessLogic   = "business_logic"
	ErrorCategoryUserInput       = "user_input"
	ErrorCategoryExternalService = "external_service"
	ErrorCategorySecurity        = "security"
)

// ErrorSource constants
const (
	ErrorSourceFrontend    = "frontend"
	ErrorSourceBackend     = "backend"
	ErrorSourceDatabase    = "database"
	ErrorSourceExternalAPI = "external_api"
	ErrorSourceSystem      = "system"
)

// ValidErrorSeverities lists accepted severity values
var ValidErrorSeverities = []string{
	ErrorSeverityCritical, ErrorSeverityHigh, ErrorSeverityMedium,
	ErrorSeverityLow, ErrorSeverityInfo,
}

// ValidErrorCategories lists accepted category values
var ValidErrorCategories = []string{
	ErrorCategorySystem, ErrorCategoryBusinessLogic, ErrorCategoryUserInput,
	ErrorCategoryExternalService, ErrorCategorySecurity,
}

// ValidErrorSources lists accepted source values
var ValidErrorSources = []string{
	ErrorSourceFrontend, ErrorSourceBackend, ErrorSourceDatabase,
	ErrorSourceExternalAPI, ErrorSourceSystem,
}

// ErrorRecord is a tracked application error. Repeat reports with the same
// fingerprint (severity + source + error_type + message) increment
// OccurrenceCount instead of inserting a new record.
type ErrorRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"`
	Category  string    `json:"category"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	ErrorType *string   `json:"error_type,omitempty"`

	StackTrace *string        `json:"stack_trace,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	RequestID  *string        `json:"request_id,omitempty"`
	UserID     *string        `json:"user_id,omitempty"`
	SessionID  *string        `json:"session_id,omitempty"`
	URL        *string        `json:"url,omitempty"`
	Method     *string        `json:"method,omitempty"`
	StatusCode *int           `json:"status_code,omitempty"`

	Resolved        bool       `json:"resolved"`
	ResolvedOn      *time.Time `json:"resolved_on,omitempty"`
	ResolvedBy      *string    `json:"resolved_by,omitempty"`
	ResolutionNotes *string    `json:"resolution_notes,omitempty"`

	OccurrenceCount int       `json:"occurrence_count"`
	FirstOccurrence time.Time `json:"first_occurrence"`
	LastOccurrence  time.Time `json:"last_occurrence"`
}

// ReportErrorRequest is the public error-report payload (UI error boundaries post here)
type ReportErrorRequest struct {
	Severity   string         `json:"severity"`
	Category   string         `json:"category"`
	Source     string         `json:"source"`
	Message    string         `json:"message"`
	ErrorType  *string        `json:"error_type,omitempty"`
	StackTrace *string        `json:"stack_trace,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	RequestID  *string        `json:"request_id,omitempty"`
	UserID     *string        `json:"user_id,omitempty"`
	SessionID  *string        `json:"session_id,omitempty"`
	URL        *string        `json:"url,omitempty"`
	Method     *string        `json:"method,omitempty"`
	StatusCode *int           `json:"status_code,omitempty"`
}

// Validate validates a ReportErrorRequest
func (r *ReportErrorRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Message == "" {
		errors = append(errors, FieldError{Field: "message", Message: "message is required"})
	}
	if !contains(ValidErrorSeverities, r.Severity) {
		errors = append(errors, FieldError{Field: "severity", Message: "invalid severity"})
	}
	if !contains(ValidErrorCategories, r.Category) {
		errors = append(errors, FieldError{Field: "category", Message: "invalid category"})
	}
	if !contains(ValidErrorSources, r.Source) {
		errors = append(errors, FieldError{Field: "source", Message: "invalid source"})
	}

	return errors
}

// ResolveErrorRequest marks an error record resolved
type ResolveErrorRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// ErrorFilters narrows error listings
type ErrorFilters struct {
	Severity *string `json:"severity,omitempty"`
	Category *string `json:"category,omitempty"`
	Resolved *bool   `json:"resolved,omitempty"`
	Limit    int     `json:"limit"`
}

// ErrorSummary aggregates tracked errors for the dashboard
type ErrorSummary struct {
	Total       int            `json:"total"`
	Unresolved  int            `json:"unresolved"`
	Last24h     int            `json:"last_24h"`
	BySeverity  map[string]int `json:"by_severity"`
	ByCategory  map[string]int `json:"by_category"`
	GeneratedOn time.Time      `json:"generated_on"`
}

// CleanupLog records one maintenance run over tracked errors
type CleanupLog struct {
	ID               string         `json:"id"`
	CleanupType      string         `json:"cleanup_type"` // manual, scheduled
	Operation        string         `json:"operation"`
	RecordsProcessed int            `json:"records_processed"`
	RecordsAffected  int            `json:"records_affected"`
	Success          bool           `json:"success"`
	ErrorMessage     *string        `json:"error_message,omitempty"`
	StartedOn        time.Time      `json:"started_on"`
	CompletedOn      *time.Time     `json:"completed_on,omitempty"`
	DurationSeconds  float64        `json:"duration_seconds"`
	Details          map[string]any `json:"details,omitempty"`
}

// CleanupType constants
const (
	CleanupTypeManual    = "manual"
	CleanupTypeScheduled = "scheduled"
)

// Constraints
const (
	DefaultErrorListLimit = 50
	MaxErrorListLimit     = 500
)
