package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// ErrorRepository handles tracked error and cleanup log data access
type ErrorRepository struct {
	db database.Database
}

// NewErrorRepository creates a new error repository
func NewErrorRepository(db database.Database) *ErrorRepository {
	return &ErrorRepository{db: db}
}

// FindByFingerprint looks up an unresolved record matching the dedup
// fingerprint (severity + source + error_type + message)
func (r *ErrorRepository) FindByFingerprint(ctx context.Context, severity, source, message string, errorType *string) (*model.ErrorRecord, error) {
	query := `
		SELECT * FROM error_record
		WHERE severity = $severity
		AND source = $source
		AND message = $message
		AND resolved = false
	`
	vars := map[string]interface{}{
		"severity": severity,
		"source":   source,
		"message":  message,
	}

	if errorType != nil {
		query += ` AND error_type = $error_type`
		vars["error_type"] = *errorType
	} else {
		query += ` AND error_type = NONE`
	}

	query += ` LIMIT 1`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseErrorResult(result)
}

// Create inserts a new error record
func (r *ErrorRepository) Create(ctx context.Context, record *model.ErrorRecord) error {
	vars := map[string]interface{}{
		"severity": record.Severity,
		"category": record.Category,
		"source":   record.Source,
		"message":  record.Message,
	}

	setClause := `
		timestamp = time::now(),
		severity = $severity,
		category = $category,
		source = $source,
		message = $message,
		resolved = false,
		occurrence_count = 1,
		first_occurrence = time::now(),
		last_occurrence = time::now()`

	if record.ErrorType != nil {
		setClause += ", error_type = $error_type"
		vars["error_type"] = *record.ErrorType
	}
	if record.StackTrace != nil {
		setClause += ", stack_trace = $stack_trace"
		vars["stack_trace"] = *record.StackTrace
	}
	if len(record.Context) > 0 {
		setClause += ", context = $context"
		vars["context"] = record.Context
	}
	if record.RequestID != nil {
		setClause += ", request_id = $request_id"
		vars["request_id"] = *record.RequestID
	}
	if record.UserID != nil {
		setClause += ", user_id = $user_id"
		vars["user_id"] = *record.UserID
	}
	if record.SessionID != nil {
		setClause += ", session_id = $session_id"
		vars["session_id"] = *record.SessionID
	}
	if record.URL != nil {
		setClause += ", url = $url"
		vars["url"] = *record.URL
	}
	if record.Method != nil {
		setClause += ", method = $method"
		vars["method"] = *record.Method
	}
	if record.StatusCode != nil {
		setClause += ", status_code = $status_code"
		vars["status_code"] = *record.StatusCode
	}

	query := "CREATE error_record SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	record.ID = created.ID
	record.Timestamp = created.CreatedOn
	record.FirstOccurrence = created.CreatedOn
	record.LastOccurrence = created.CreatedOn
	record.OccurrenceCount = 1
	return nil
}

// IncrementOccurrence bumps the occurrence counter on a deduplicated record
func (r *ErrorRepository) IncrementOccurrence(ctx context.Context, recordID string) error {
	query := `
		UPDATE error_record
		SET occurrence_count = occurrence_count + 1,
			last_occurrence = time::now(),
			timestamp = time::now()
		WHERE id = type::record($record_id)
	`
	vars := map[string]interface{}{"record_id": recordID}

	return r.db.Execute(ctx, query, vars)
}

// Get retrieves an error record by ID
func (r *ErrorRepository) Get(ctx context.Context, recordID string) (*model.ErrorRecord, error) {
	query := `SELECT * FROM type::record($record_id)`
	vars := map[string]interface{}{"record_id": recordID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseErrorResult(result)
}

// List retrieves error records matching the filters, newest first
func (r *ErrorRepository) List(ctx context.Context, filters *model.ErrorFilters) ([]*model.ErrorRecord, error) {
	query := `SELECT * FROM error_record WHERE true`
	vars := map[string]interface{}{}

	limit := model.DefaultErrorListLimit
	if filters != nil {
		if filters.Severity != nil {
			query += ` AND severity = $severity`
			vars["severity"] = *filters.Severity
		}
		if filters.Category != nil {
			query += ` AND category = $category`
			vars["category"] = *filters.Category
		}
		if filters.Resolved != nil {
			query += ` AND resolved = $resolved`
			vars["resolved"] = *filters.Resolved
		}
		if filters.Limit > 0 {
			limit = filters.Limit
		}
	}

	query += ` ORDER BY last_occurrence DESC LIMIT $limit`
	vars["limit"] = limit

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseErrorsResult(result)
}

// Resolve marks an error record resolved
func (r *ErrorRepository) Resolve(ctx context.Context, recordID, resolvedBy string, notes *string) error {
	query := `
		UPDATE error_record
		SET resolved = true,
			resolved_on = time::now(),
			resolved_by = $resolved_by
	`
	vars := map[string]interface{}{
		"record_id":   recordID,
		"resolved_by": resolvedBy,
	}

	if notes != nil {
		query += `, resolution_notes = $notes`
		vars["notes"] = *notes
	}

	query += ` WHERE id = type::record($record_id)`

	return r.db.Execute(ctx, query, vars)
}

// Summary aggregates tracked errors for the dashboard
func (r *ErrorRepository) Summary(ctx context.Context) (*model.ErrorSummary, error) {
	summary := &model.ErrorSummary{
		BySeverity:  make(map[string]int),
		ByCategory:  make(map[string]int),
		GeneratedOn: time.Now().UTC(),
	}

	severityQuery := `SELECT severity, count() FROM error_record GROUP BY severity`
	result, err := r.db.Query(ctx, severityQuery, nil)
	if err != nil {
		return nil, err
	}
	if rows, ok := extractQueryResults(result); ok {
		for _, row := range rows {
			if data, ok := row.(map[string]interface{}); ok {
				count := getInt(data, "count")
				summary.BySeverity[getString(data, "severity")] = count
				summary.Total += count
			}
		}
	}

	categoryQuery := `SELECT category, count() FROM error_record GROUP BY category`
	result, err = r.db.Query(ctx, categoryQuery, nil)
	if err != nil {
		return nil, err
	}
	if rows, ok := extractQueryResults(result); ok {
		for _, row := range rows {
			if data, ok := row.(map[string]interface{}); ok {
				summary.ByCategory[getString(data, "category")] = getInt(data, "count")
			}
		}
	}

	unresolvedQuery := `SELECT count() FROM error_record WHERE resolved = false GROUP ALL`
	one, err := r.db.QueryOne(ctx, unresolvedQuery, nil)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		summary.Unresolved = extractCount(one)
	}

	recentQuery := `SELECT count() FROM error_record WHERE last_occurrence > time::now() - 24h GROUP ALL`
	one, err = r.db.QueryOne(ctx, recentQuery, nil)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if err == nil {
		summary.Last24h = extractCount(one)
	}

	return summary, nil
}

// CountOlderThan counts resolved records older than the cutoff
func (r *ErrorRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		SELECT count() FROM error_record
		WHERE resolved = true AND resolved_on < $cutoff
		GROUP ALL
	`
	vars := map[string]interface{}{"cutoff": cutoff}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return extractCount(result), nil
}

// DeleteOlderThan removes resolved records older than the cutoff
func (r *ErrorRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	query := `DELETE error_record WHERE resolved = true AND resolved_on < $cutoff`
	vars := map[string]interface{}{"cutoff": cutoff}

	return r.db.Execute(ctx, query, vars)
}

// CreateCleanupLog records one maintenance run
func (r *ErrorRepository) CreateCleanupLog(ctx context.Context, log *model.CleanupLog) error {
	vars := map[string]interface{}{
		"cleanup_type":      log.CleanupType,
		"operation":         log.Operation,
		"records_processed": log.RecordsProcessed,
		"records_affected":  log.RecordsAffected,
		"success":           log.Success,
		"started_on":        log.StartedOn,
		"duration_seconds":  log.DurationSeconds,
	}

	setClause := `
		cleanup_type = $cleanup_type,
		operation = $operation,
		records_processed = $records_processed,
		records_affected = $records_affected,
		success = $success,
		started_on = $started_on,
		completed_on = time::now(),
		duration_seconds = $duration_seconds`

	if log.ErrorMessage != nil {
		setClause += ", error_message = $error_message"
		vars["error_message"] = *log.ErrorMessage
	}
	if len(log.Details) > 0 {
		setClause += ", details = $details"
		vars["details"] = log.Details
	}

	query := "CREATE cleanup_log SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	log.ID = created.ID
	return nil
}

// ListCleanupLogs retrieves maintenance history, newest first
func (r *ErrorRepository) ListCleanupLogs(ctx context.Context, limit int) ([]*model.CleanupLog, error) {
	query := `SELECT * FROM cleanup_log ORDER BY started_on DESC LIMIT $limit`
	vars := map[string]interface{}{"limit": limit}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	logs := make([]*model.CleanupLog, 0)
	forEachRow(result, func(row interface{}) {
		log, err := r.parseCleanupLogResult(row)
		if err != nil {
			return
		}
		logs = append(logs, log)
	})

	return logs, nil
}

// Helper functions

func (r *ErrorRepository) parseErrorResult(result interface{}) (*model.ErrorRecord, error) {
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

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var record model.ErrorRecord
	if err := json.Unmarshal(jsonBytes, &record); err != nil {
		return nil, err
	}

	record.OccurrenceCount = getInt(data, "occurrence_count")

	if t := getTime(data, "timestamp"); t != nil {
		record.Timestamp = *t
	}
	if t := getTime(data, "first_occurrence"); t != nil {
		record.FirstOccurrence = *t
	}
	if t := getTime(data, "last_occurrence"); t != nil {
		record.LastOccurrence = *t
	}
	record.ResolvedOn = getTime(data, "resolved_on")

	return &record, nil
}

func (r *ErrorRepository) parseErrorsResult(result []interface{}) ([]*model.ErrorRecord, error) {
	records := make([]*model.ErrorRecord, 0)

	forEachRow(result, func(row interface{}) {
		record, err := r.parseErrorResult(row)
		if err != nil {
			return
		}
		records = append(records, record)
	})

	return records, nil
}

func (r *ErrorRepository) parseCleanupLogResult(result interface{}) (*model.CleanupLog, error) {
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

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var log model.CleanupLog
	if err := json.Unmarshal(jsonBytes, &log); err != nil {
		return nil, err
	}

	if t := getTime(data, "started_on"); t != nil {
		log.StartedOn = *t
	}
	log.CompletedOn = getTime(data, "completed_on")

	return &log, nil
}
