package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stitch/cms/internal/model"
)

// ErrorRepository defines the interface for error record storage
type ErrorRepository interface {
	FindByFingerprint(ctx context.Context, severity, source, message string, errorType *string) (*model.ErrorRecord, error)
	Create(ctx context.Context, record *model.ErrorRecord) error
	IncrementOccurrence(ctx context.Context, recordID string) error
	Get(ctx context.Context, recordID string) (*model.ErrorRecord, error)
	List(ctx context.Context, filters *model.ErrorFilters) ([]*model.ErrorRecord, error)
	Resolve(ctx context.Context, recordID, resolvedBy string, notes *string) error
	Summary(ctx context.Context) (*model.ErrorSummary, error)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
	CreateCleanupLog(ctx context.Context, log *model.CleanupLog) error
	ListCleanupLogs(ctx context.Context, limit int) ([]*model.CleanupLog, error)
}

// ErrorTrackingService records, lists and maintains application errors
type ErrorTrackingService struct {
	errorRepo     ErrorRepository
	retentionDays int
}

// ErrorTrackingServiceConfig holds configuration for the error tracking service
type ErrorTrackingServiceConfig struct {
	ErrorRepo     ErrorRepository
	RetentionDays int
}

// NewErrorTrackingService creates a new error tracking service
func NewErrorTrackingService(cfg ErrorTrackingServiceConfig) *ErrorTrackingService {
	retention := cfg.RetentionDays
	if retention <= 0 {
		retention = 30
	}
	return &ErrorTrackingService{
		errorRepo:     cfg.ErrorRepo,
		retentionDays: retention,
	}
}

// Report records an error. Repeat reports of the same fingerprint increment
// the occurrence count on the existing record instead of inserting a new one.
func (s *ErrorTrackingService) Report(ctx context.Context, req model.ReportErrorRequest) (*model.ErrorRecord, error) {
	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeverity, fieldErrors[0].Message)
	}

	existing, err := s.errorRepo.FindByFingerprint(ctx, req.Severity, req.Source, req.Message, req.ErrorType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.errorRepo.IncrementOccurrence(ctx, existing.ID); err != nil {
			return nil, err
		}
		existing.OccurrenceCount++
		existing.LastOccurrence = time.Now().UTC()
		return existing, nil
	}

	record := &model.ErrorRecord{
		Timestamp:  time.Now().UTC(),
		Severity:   req.Severity,
		Category:   req.Category,
		Source:     req.Source,
		Message:    req.Message,
		ErrorType:  req.ErrorType,
		StackTrace: req.StackTrace,
		Context:    req.Context,
		RequestID:  req.RequestID,
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		URL:        req.URL,
		Method:     req.Method,
		StatusCode: req.StatusCode,
	}

	if err := s.errorRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves error records, newest occurrence first
func (s *ErrorTrackingService) List(ctx context.Context, filters model.ErrorFilters) ([]*model.ErrorRecord, error) {
	if filters.Severity != nil && !contains(model.ValidErrorSeverities, *filters.Severity) {
		return nil, ErrInvalidErrorFilter
	}
	if filters.Category != nil && !contains(model.ValidErrorCategories, *filters.Category) {
		return nil, ErrInvalidErrorFilter
	}

	if filters.Limit <= 0 {
		filters.Limit = model.DefaultErrorListLimit
	}
	if filters.Limit > model.MaxErrorListLimit {
		filters.Limit = model.MaxErrorListLimit
	}

	return s.errorRepo.List(ctx, &filters)
}

// Get retrieves one error record
func (s *ErrorTrackingService) Get(ctx context.Context, recordID string) (*model.ErrorRecord, error) {
	record, err := s.errorRepo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrErrorRecordNotFound
	}
	return record, nil
}

// Resolve marks an error record resolved
func (s *ErrorTrackingService) Resolve(ctx context.Context, recordID, resolvedBy string, req model.ResolveErrorRequest) (*model.ErrorRecord, error) {
	record, err := s.errorRepo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrErrorRecordNotFound
	}

	if err := s.errorRepo.Resolve(ctx, recordID, resolvedBy, req.Notes); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record.Resolved = true
	record.ResolvedOn = &now
	record.ResolvedBy = &resolvedBy
	record.ResolutionNotes = req.Notes
	return record, nil
}

// Summary aggregates tracked errors for the dashboard
func (s *ErrorTrackingService) Summary(ctx context.Context) (*model.ErrorSummary, error) {
	return s.errorRepo.Summary(ctx)
}

// Cleanup purges resolved records older than the retention window and
// records a CleanupLog for the run
func (s *ErrorTrackingService) Cleanup(ctx context.Context, cleanupType string) (*model.CleanupLog, error) {
	started := time.Now().UTC()
	cutoff := started.AddDate(0, 0, -s.retentionDays)

	cleanupLog := &model.CleanupLog{
		CleanupType: cleanupType,
		Operation:   "purge_resolved_errors",
		StartedOn:   started,
		Details: map[string]any{
			"retention_days": s.retentionDays,
			"cutoff":         cutoff.Format(time.RFC3339),
		},
	}

	count, err := s.errorRepo.CountOlderThan(ctx, cutoff)
	if err != nil {
		return s.finishCleanup(ctx, cleanupLog, 0, 0, err)
	}

	if count > 0 {
		if err := s.errorRepo.DeleteOlderThan(ctx, cutoff); err != nil {
			return s.finishCleanup(ctx, cleanupLog, count, 0, err)
		}
	}

	return s.finishCleanup(ctx, cleanupLog, count, count, nil)
}

func (s *ErrorTrackingService) finishCleanup(ctx context.Context, cleanupLog *model.CleanupLog, processed, affected int, runErr error) (*model.CleanupLog, error) {
	completed := time.Now().UTC()
	cleanupLog.RecordsProcessed = processed
	cleanupLog.RecordsAffected = affected
	cleanupLog.CompletedOn = &completed
	cleanupLog.DurationSeconds = completed.Sub(cleanupLog.StartedOn).Seconds()
	cleanupLog.Success = runErr == nil
	if runErr != nil {
		msg := runErr.Error()
		cleanupLog.ErrorMessage = &msg
	}

	if err := s.errorRepo.CreateCleanupLog(ctx, cleanupLog); err != nil {
		return nil, err
	}
	if runErr != nil {
		return cleanupLog, runErr
	}
	return cleanupLog, nil
}

// CleanupHistory retrieves recent cleanup runs
func (s *ErrorTrackingService) CleanupHistory(ctx context.Context, limit int) ([]*model.CleanupLog, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.errorRepo.ListCleanupLogs(ctx, limit)
}
