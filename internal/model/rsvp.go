package model

import "time"

// RSVPStatus constants
const (
	RSVPStatusPending  = "pending"  // Invited or awaiting approval, no answer yet
	RSVPStatusAccepted = "accepted" // Attending
	RSVPStatusDeclined = "declined" // Not attending
	RSVPStatusMaybe    = "maybe"    // Undecided
)

// RSVPSource constants
const (
	RSVPSourceManual = "manual" // Created by an editor
	RSVPSourceImport = "import" // Bulk invitation import
	RSVPSourceAPI    = "api"    // Self-service via the public form
)

// ValidRSVPStatuses lists accepted RSVP status values
var ValidRSVPStatuses = []string{
	RSVPStatusPending, RSVPStatusAccepted, RSVPStatusDeclined, RSVPStatusMaybe,
}

// RSVP represents a single invitee's response to an event.
// Email is unique per event.
type RSVP struct {
	ID      string  `json:"id"`
	EventID string  `json:"event_id"`
	Email   string  `json:"email"`
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`

	Status              string  `json:"status"`
	GuestCount          int     `json:"guest_count"`
	DietaryRestrictions *string `json:"dietary_restrictions,omitempty"`
	SpecialRequests     *string `json:"special_requests,omitempty"`
	Notes               *string `json:"notes,omitempty"`
	Source              string  `json:"source"`

	InvitationSentOn *time.Time `json:"invitation_sent_on,omitempty"`
	RespondedOn      *time.Time `json:"responded_on,omitempty"`
	ReminderCount    int        `json:"reminder_count"`
	LastReminderOn   *time.Time `json:"last_reminder_on,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// HasResponded reports whether the invitee has answered
func (r *RSVP) HasResponded() bool {
	return r.Status != RSVPStatusPending
}

// CreateRSVPRequest is the public RSVP form payload
type CreateRSVPRequest struct {
	Email               string  `json:"email"`
	Name                *string `json:"name,omitempty"`
	Phone               *string `json:"phone,omitempty"`
	Company             *string `json:"company,omitempty"`
	Status              string  `json:"status,omitempty"` // defaults to pending
	GuestCount          int     `json:"guest_count,omitempty"`
	DietaryRestrictions *string `json:"dietary_restrictions,omitempty"`
	SpecialRequests     *string `json:"special_requests,omitempty"`
}

// UpdateRSVPRequest represents an invitee's response or edit
type UpdateRSVPRequest struct {
	Status              *string `json:"status,omitempty"`
	Name                *string `json:"name,omitempty"`
	Phone               *string `json:"phone,omitempty"`
	Company             *string `json:"company,omitempty"`
	GuestCount          *int    `json:"guest_count,omitempty"`
	DietaryRestrictions *string `json:"dietary_restrictions,omitempty"`
	SpecialRequests     *string `json:"special_requests,omitempty"`
	Notes               *string `json:"notes,omitempty"`
}

// BulkInviteRequest carries a batch of invitation addresses
type BulkInviteRequest struct {
	Emails  []string `json:"emails"`
	Message *string  `json:"message,omitempty"` // optional custom note in the email
}

// BulkInviteResult reports the outcome of a bulk invitation
type BulkInviteResult struct {
	Invited []string `json:"invited"`
	Skipped []string `json:"skipped"` // already had an RSVP
	Failed  []string `json:"failed"`  // send error
}

// Constraints
const (
	MaxGuestCount      = 10
	MaxBulkInviteBatch = 500
)

// Validate validates a CreateRSVPRequest
func (r *CreateRSVPRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Email == "" {
		errors = append(errors, FieldError{Field: "email", Message: "email is required"})
	} else if !IsValidEmail(r.Email) {
		errors = append(errors, FieldError{Field: "email", Message: "invalid email address"})
	}

	if r.Status != "" && !contains(ValidRSVPStatuses, r.Status) {
		errors = append(errors, FieldError{Field: "status", Message: "invalid RSVP status"})
	}

	if r.GuestCount < 0 {
		errors = append(errors, FieldError{Field: "guest_count", Message: "guest_count must not be negative"})
	} else if r.GuestCount > MaxGuestCount {
		errors = append(errors, FieldError{Field: "guest_count", Message: "too many guests"})
	}

	return errors
}
