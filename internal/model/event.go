package model

import "time"

// EventType constants
const (
	EventTypeMeeting    = "meeting"
	EventTypeWebinar    = "webinar"
	EventTypeConference = "conference"
	EventTypeWorkshop   = "workshop"
	EventTypeSocial     = "social"
	EventTypeOther      = "other"
)

// EventStatus constants
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// ValidEventTypes lists accepted event_type values
var ValidEventTypes = []string{
	EventTypeMeeting, EventTypeWebinar, EventTypeConference,
	EventTypeWorkshop, EventTypeSocial, EventTypeOther,
}

// ValidEventStatuses lists accepted event status values
var ValidEventStatuses = []string{
	EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted,
}

// Event represents a scheduled event that collects RSVPs
type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	EventType    string     `json:"event_type"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Location     *string    `json:"location,omitempty"`
	MaxAttendees *int       `json:"max_attendees,omitempty"`
	RSVPDeadline *time.Time `json:"rsvp_deadline,omitempty"`
	// RSVP configuration
	RequireApproval bool `json:"require_approval"`
	AllowGuests     bool `json:"allow_guests"`
	// Reminder configuration
	SendReminders      bool  `json:"send_reminders"`
	ReminderDaysBefore []int `json:"reminder_days_before"` // default [7, 1]

	Status    string    `json:"status"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// DefaultReminderDays is used when an event enables reminders without a schedule
var DefaultReminderDays = []int{7, 1}

// IsRSVPOpen reports whether new RSVPs are still accepted
func (e *Event) IsRSVPOpen() bool {
	if e.Status != EventStatusPublished {
		return false
	}
	if e.RSVPDeadline != nil && time.Now().After(*e.RSVPDeadline) {
		return false
	}
	return true
}

// RSVPStats aggregates responses for one event.
// Total always equals Accepted + Declined + Pending + Maybe.
type RSVPStats struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Pending  int `json:"pending"`
	Maybe    int `json:"maybe"`
	// Guest headcount across accepted RSVPs (attendee plus their guests)
	TotalGuests int `json:"total_guests"`
}

// EventWithStats pairs an event with its RSVP aggregates for list views
type EventWithStats struct {
	Event Event     `json:"event"`
	Stats RSVPStats `json:"stats"`
}

// EventWithRSVPs includes the full RSVP list for detail views
type EventWithRSVPs struct {
	Event Event     `json:"event"`
	Stats RSVPStats `json:"stats"`
	RSVPs []*RSVP   `json:"rsvps"`
}

// EventAnalytics summarises response behaviour for one event
type EventAnalytics struct {
	EventID      string          `json:"event_id"`
	Stats        RSVPStats       `json:"stats"`
	ResponseRate float64         `json:"response_rate"` // responded / total, 0..1
	Timeline     []TimelinePoint `json:"timeline"`      // responses grouped by day
}

// TimelinePoint is one day in a response timeline
type TimelinePoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	EventType          string     `json:"event_type"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Location           *string    `json:"location,omitempty"`
	MaxAttendees       *int       `json:"max_attendees,omitempty"`
	RSVPDeadline       *time.Time `json:"rsvp_deadline,omitempty"`
	RequireApproval    bool       `json:"require_approval"`
	AllowGuests        bool       `json:"allow_guests"`
	SendReminders      bool       `json:"send_reminders"`
	ReminderDaysBefore []int      `json:"reminder_days_before,omitempty"`
	Status             string     `json:"status,omitempty"`
}

// UpdateEventRequest represents a PATCH to an event
type UpdateEventRequest struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	EventType          *string    `json:"event_type,omitempty"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Location           *string    `json:"location,omitempty"`
	MaxAttendees       *int       `json:"max_attendees,omitempty"`
	RSVPDeadline       *time.Time `json:"rsvp_deadline,omitempty"`
	RequireApproval    *bool      `json:"require_approval,omitempty"`
	AllowGuests        *bool      `json:"allow_guests,omitempty"`
	SendReminders      *bool      `json:"send_reminders,omitempty"`
	ReminderDaysBefore []int      `json:"reminder_days_before,omitempty"`
	Status             *string    `json:"status,omitempty"`
}

// Constraints
const (
	MaxEventTitleLength       = 200
	MaxEventDescriptionLength = 5000
	MaxEventLocationLength    = 300
)
