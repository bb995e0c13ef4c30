package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// Error definitions moved to errors.go

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	Get(ctx context.Context, eventID string) (*model.Event, error)
	List(ctx context.Context, status *string) ([]*model.Event, error)
	GetUpcomingWithReminders(ctx context.Context) ([]*model.Event, error)
	Update(ctx context.Context, eventID string, updates map[string]interface{}) (*model.Event, error)
	Delete(ctx context.Context, eventID string) error
	GetRSVPStats(ctx context.Context, eventID string) (*model.RSVPStats, error)
}

// RSVPRepository defines the interface for RSVP storage
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *model.RSVP) error
	Get(ctx context.Context, rsvpID string) (*model.RSVP, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*model.RSVP, error)
	GetByEvent(ctx context.Context, eventID string, status *string) ([]*model.RSVP, error)
	Update(ctx context.Context, rsvpID string, updates map[string]interface{}) (*model.RSVP, error)
	Delete(ctx context.Context, rsvpID string) error
	MarkReminderSent(ctx context.Context, rsvpID string) error
	RespondedSince(ctx context.Context, eventID string, cutoff time.Time) ([]*model.RSVP, error)
}

// EventMailer delivers invitation emails during bulk invites and
// confirmation emails when an invitee responds
type EventMailer interface {
	SendInvitation(ctx context.Context, event *model.Event, rsvp *model.RSVP, message *string) error
	SendConfirmation(ctx context.Context, event *model.Event, rsvp *model.RSVP) error
}

// EventService handles events and their RSVPs
type EventService struct {
	eventRepo EventRepository
	rsvpRepo  RSVPRepository
	sender    EventMailer // nil when SMTP is disabled
}

// EventServiceConfig holds configuration for the event service
type EventServiceConfig struct {
	EventRepo EventRepository
	RSVPRepo  RSVPRepository
	Sender    EventMailer
}

// NewEventService creates a new event service
func NewEventService(cfg EventServiceConfig) *EventService {
	return &EventService{
		eventRepo: cfg.EventRepo,
		rsvpRepo:  cfg.RSVPRepo,
		sender:    cfg.Sender,
	}
}

// SetSender wires the mailer after construction.
// The notification service depends on events, this breaks the cycle.
func (s *EventService) SetSender(sender EventMailer) {
	s.sender = sender
}

// CreateEvent creates a new event
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest, createdBy string) (*model.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrEventTitleRequired
	}
	if !contains(model.ValidEventTypes, req.EventType) {
		return nil, ErrInvalidEventType
	}

	status := req.Status
	if status == "" {
		status = model.EventStatusDraft
	}
	if !contains(model.ValidEventStatuses, status) {
		return nil, ErrInvalidEventStatus
	}
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, ErrInvalidDateRange
	}

	reminderDays := req.ReminderDaysBefore
	if req.SendReminders && len(reminderDays) == 0 {
		reminderDays = model.DefaultReminderDays
	}

	event := &model.Event{
		Title:              title,
		Description:        req.Description,
		EventType:          req.EventType,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Location:           req.Location,
		MaxAttendees:       req.MaxAttendees,
		RSVPDeadline:       req.RSVPDeadline,
		RequireApproval:    req.RequireApproval,
		AllowGuests:        req.AllowGuests,
		SendReminders:      req.SendReminders,
		ReminderDaysBefore: reminderDays,
		Status:             status,
		CreatedBy:          stringPtr(createdBy),
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// GetEvent retrieves an event with its RSVP aggregates
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*model.EventWithStats, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	stats, err := s.eventRepo.GetRSVPStats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &model.EventWithStats{Event: *event, Stats: *stats}, nil
}

// GetEventWithRSVPs retrieves an event with its full RSVP list
func (s *EventService) GetEventWithRSVPs(ctx context.Context, eventID string) (*model.EventWithRSVPs, error) {
	withStats, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rsvps, err := s.rsvpRepo.GetByEvent(ctx, eventID, nil)
	if err != nil {
		return nil, err
	}

	return &model.EventWithRSVPs{
		Event: withStats.Event,
		Stats: withStats.Stats,
		RSVPs: rsvps,
	}, nil
}

// ListEvents retrieves events with their RSVP aggregates
func (s *EventService) ListEvents(ctx context.Context, status *string) ([]*model.EventWithStats, error) {
	if status != nil && !contains(model.ValidEventStatuses, *status) {
		return nil, ErrInvalidEventStatus
	}

	events, err := s.eventRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}

	result := make([]*model.EventWithStats, 0, len(events))
	for _, event := range events {
		stats, err := s.eventRepo.GetRSVPStats(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &model.EventWithStats{Event: *event, Stats: *stats})
	}

	return result, nil
}

// UpdateEvent applies a partial update to an event
func (s *EventService) UpdateEvent(ctx context.Context, eventID string, req model.UpdateEventRequest) (*model.Event, error) {
	existing, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrEventNotFound
	}

	updates := map[string]interface{}{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrEventTitleRequired
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.EventType != nil {
		if !contains(model.ValidEventTypes, *req.EventType) {
			return nil, ErrInvalidEventType
		}
		updates["event_type"] = *req.EventType
	}
	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		start := existing.StartDate
		if req.StartDate != nil {
			start = *req.StartDate
		}
		if !req.EndDate.After(start) {
			return nil, ErrInvalidDateRange
		}
		updates["end_date"] = *req.EndDate
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.MaxAttendees != nil {
		updates["max_attendees"] = *req.MaxAttendees
	}
	if req.RSVPDeadline != nil {
		updates["rsvp_deadline"] = *req.RSVPDeadline
	}
	if req.RequireApproval != nil {
		updates["require_approval"] = *req.RequireApproval
	}
	if req.AllowGuests != nil {
		updates["allow_guests"] = *req.AllowGuests
	}
	if req.SendReminders != nil {
		updates["send_reminders"] = *req.SendReminders
		if *req.SendReminders && len(existing.ReminderDaysBefore) == 0 && len(req.ReminderDaysBefore) == 0 {
			updates["reminder_days_before"] = model.DefaultReminderDays
		}
	}
	if len(req.ReminderDaysBefore) > 0 {
		updates["reminder_days_before"] = req.ReminderDaysBefore
	}
	if req.Status != nil {
		if !contains(model.ValidEventStatuses, *req.Status) {
			return nil, ErrInvalidEventStatus
		}
		updates["status"] = *req.Status
	}

	if len(updates) == 0 {
		return existing, nil
	}

	return s.eventRepo.Update(ctx, eventID, updates)
}

// DeleteEvent removes an event and its RSVPs
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	existing, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrEventNotFound
	}
	return s.eventRepo.Delete(ctx, eventID)
}

// CreateRSVP registers a response for an event. Public self-service RSVPs
// respect the deadline and capacity; editor-created ones skip the deadline.
func (s *EventService) CreateRSVP(ctx context.Context, eventID string, req model.CreateRSVPRequest, source string) (*model.RSVP, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	if fieldErrors := req.Validate(); len(fieldErrors) > 0 {
		return nil, ErrInvalidRSVPStatus
	}

	if source == model.RSVPSourceAPI && !event.IsRSVPOpen() {
		return nil, ErrRSVPClosed
	}
	if req.GuestCount > 0 && !event.AllowGuests {
		return nil, ErrGuestsNotAllowed
	}

	status := req.Status
	if status == "" {
		status = model.RSVPStatusPending
	}
	// Approval-gated events hold every public response as pending
	if event.RequireApproval && source == model.RSVPSourceAPI {
		status = model.RSVPStatusPending
	}

	if status == model.RSVPStatusAccepted && event.MaxAttendees != nil {
		stats, err := s.eventRepo.GetRSVPStats(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if stats.TotalGuests+1+req.GuestCount > *event.MaxAttendees {
			return nil, ErrEventFull
		}
	}

	rsvp := &model.RSVP{
		EventID:             eventID,
		Email:               strings.TrimSpace(req.Email),
		Name:                req.Name,
		Phone:               req.Phone,
		Company:             req.Company,
		Status:              status,
		GuestCount:          req.GuestCount,
		DietaryRestrictions: req.DietaryRestrictions,
		SpecialRequests:     req.SpecialRequests,
		Source:              source,
	}

	if err := s.rsvpRepo.Create(ctx, rsvp); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrAlreadyRSVPd
		}
		return nil, err
	}

	return rsvp, nil
}

// UpdateRSVP applies a partial update to an RSVP. A status change stamps
// responded_on.
func (s *EventService) UpdateRSVP(ctx context.Context, rsvpID string, req model.UpdateRSVPRequest) (*model.RSVP, error) {
	existing, err := s.rsvpRepo.Get(ctx, rsvpID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrRSVPNotFound
	}

	updates := map[string]interface{}{}
	responded := false

	if req.Status != nil {
		if !contains(model.ValidRSVPStatuses, *req.Status) {
			return nil, ErrInvalidRSVPStatus
		}
		if *req.Status != existing.Status {
			updates["status"] = *req.Status
			if *req.Status != model.RSVPStatusPending {
				updates["responded_on"] = time.Now().UTC()
				responded = true
			}
		}
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.GuestCount != nil {
		if *req.GuestCount < 0 || *req.GuestCount > model.MaxGuestCount {
			return nil, ErrInvalidRSVPStatus
		}
		event, err := s.eventRepo.Get(ctx, existing.EventID)
		if err != nil {
			return nil, err
		}
		if event != nil && *req.GuestCount > 0 && !event.AllowGuests {
			return nil, ErrGuestsNotAllowed
		}
		updates["guest_count"] = *req.GuestCount
	}
	if req.DietaryRestrictions != nil {
		updates["dietary_restrictions"] = *req.DietaryRestrictions
	}
	if req.SpecialRequests != nil {
		updates["special_requests"] = *req.SpecialRequests
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		return existing, nil
	}

	updated, err := s.rsvpRepo.Update(ctx, rsvpID, updates)
	if err != nil {
		return nil, err
	}

	// Confirmation delivery is best effort. The response is recorded
	// either way.
	if responded && s.sender != nil {
		event, err := s.eventRepo.Get(ctx, existing.EventID)
		if err == nil && event != nil {
			if err := s.sender.SendConfirmation(ctx, event, updated); err != nil {
				log.Printf("[EventService] Confirmation to %s failed: %v", updated.Email, err)
			}
		}
	}

	return updated, nil
}

// DeleteRSVP removes an RSVP
func (s *EventService) DeleteRSVP(ctx context.Context, rsvpID string) error {
	existing, err := s.rsvpRepo.Get(ctx, rsvpID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrRSVPNotFound
	}
	return s.rsvpRepo.Delete(ctx, rsvpID)
}

// ListRSVPs retrieves RSVPs for an event, optionally filtered by status
func (s *EventService) ListRSVPs(ctx context.Context, eventID string, status *string) ([]*model.RSVP, error) {
	if status != nil && !contains(model.ValidRSVPStatuses, *status) {
		return nil, ErrInvalidRSVPStatus
	}

	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	return s.rsvpRepo.GetByEvent(ctx, eventID, status)
}

// BulkInvite creates pending RSVPs for a batch of addresses and sends
// invitation emails when a sender is configured
func (s *EventService) BulkInvite(ctx context.Context, eventID string, req model.BulkInviteRequest) (*model.BulkInviteResult, error) {
	if len(req.Emails) == 0 {
		return nil, ErrBulkInviteEmpty
	}
	if len(req.Emails) > model.MaxBulkInviteBatch {
		return nil, ErrBulkInviteTooLarge
	}

	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	result := &model.BulkInviteResult{
		Invited: []string{},
		Skipped: []string{},
		Failed:  []string{},
	}

	seen := map[string]bool{}
	for _, raw := range req.Emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || !model.IsValidEmail(email) || seen[email] {
			result.Failed = append(result.Failed, raw)
			continue
		}
		seen[email] = true

		existing, err := s.rsvpRepo.GetByEventAndEmail(ctx, eventID, email)
		if err != nil {
			result.Failed = append(result.Failed, email)
			continue
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, email)
			continue
		}

		now := time.Now().UTC()
		rsvp := &model.RSVP{
			EventID:          eventID,
			Email:            email,
			Status:           model.RSVPStatusPending,
			Source:           model.RSVPSourceImport,
			InvitationSentOn: &now,
		}

		if err := s.rsvpRepo.Create(ctx, rsvp); err != nil {
			result.Failed = append(result.Failed, email)
			continue
		}

		if s.sender != nil {
			if err := s.sender.SendInvitation(ctx, event, rsvp, req.Message); err != nil {
				result.Failed = append(result.Failed, email)
				continue
			}
		}

		result.Invited = append(result.Invited, email)
	}

	return result, nil
}

// Analytics builds response aggregates and a per-day timeline for an event
func (s *EventService) Analytics(ctx context.Context, eventID string, days int) (*model.EventAnalytics, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	stats, err := s.eventRepo.GetRSVPStats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	responded, err := s.rsvpRepo.RespondedSince(ctx, eventID, cutoff)
	if err != nil {
		return nil, err
	}

	byDay := map[string]int{}
	for _, rsvp := range responded {
		if rsvp.RespondedOn == nil {
			continue
		}
		byDay[rsvp.RespondedOn.UTC().Format("2006-01-02")]++
	}

	timeline := make([]model.TimelinePoint, 0, days)
	for d := days - 1; d >= 0; d-- {
		date := time.Now().UTC().AddDate(0, 0, -d).Format("2006-01-02")
		timeline = append(timeline, model.TimelinePoint{Date: date, Count: byDay[date]})
	}

	analytics := &model.EventAnalytics{
		EventID:  eventID,
		Stats:    *stats,
		Timeline: timeline,
	}
	if stats.Total > 0 {
		analytics.ResponseRate = float64(stats.Total-stats.Pending) / float64(stats.Total)
	}

	return analytics, nil
}

// UpcomingWithReminders lists published future events that have reminder
// scheduling enabled. Used by the reminder job.
func (s *EventService) UpcomingWithReminders(ctx context.Context) ([]*model.Event, error) {
	return s.eventRepo.GetUpcomingWithReminders(ctx)
}
