package model

import "time"

// CommunicationType constants
const (
	CommunicationTypeInvitation   = "invitation"
	CommunicationTypeReminder     = "reminder"
	CommunicationTypeConfirmation = "confirmation"
	CommunicationTypeFollowup     = "followup"
)

// DeliveryStatus constants
const (
	DeliveryStatusPending = "pending"
	DeliveryStatusSent    = "sent"
	DeliveryStatusFailed  = "failed"
)

// ValidCommunicationTypes lists accepted communication types
var ValidCommunicationTypes = []string{
	CommunicationTypeInvitation, CommunicationTypeReminder,
	CommunicationTypeConfirmation, CommunicationTypeFollowup,
}

// Communication is a log entry for one outbound email
type Communication struct {
	ID             string     `json:"id"`
	EventID        string     `json:"event_id"`
	RSVPID         *string    `json:"rsvp_id,omitempty"`
	Type           string     `json:"type"`
	Subject        string     `json:"subject"`
	Message        *string    `json:"message,omitempty"`
	Recipient      string     `json:"recipient"`
	DeliveryStatus string     `json:"delivery_status"`
	SentOn         *time.Time `json:"sent_on,omitempty"`
	CreatedOn      time.Time  `json:"created_on"`
}

// NotificationStats summarises delivery activity for one event
type NotificationStats struct {
	EventID       string         `json:"event_id"`
	TotalSent     int            `json:"total_sent"`
	TotalFailed   int            `json:"total_failed"`
	TotalPending  int            `json:"total_pending"`
	SentByType    map[string]int `json:"sent_by_type"`
	LastSentOn    *time.Time     `json:"last_sent_on,omitempty"`
}

// EmailTemplate describes one of the built-in notification templates
type EmailTemplate struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Variables   []string `json:"variables"`
}

// TestEmailRequest asks for a delivery check against the configured SMTP host
type TestEmailRequest struct {
	Recipient string `json:"recipient"`
}
