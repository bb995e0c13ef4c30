package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/gomail.v2"

	"github.com/stitch/cms/internal/config"
	"github.com/stitch/cms/internal/model"
)

// CommunicationRepository defines the interface for the outbound email log
type CommunicationRepository interface {
	Create(ctx context.Context, comm *model.Communication) error
	GetByEvent(ctx context.Context, eventID string, limit int) ([]*model.Communication, error)
	GetStats(ctx context.Context, eventID string) (*model.NotificationStats, error)
}

// Mailer delivers a single email
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type smtpMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

// ReminderRunResult reports the outcome of a reminder batch
type ReminderRunResult struct {
	EventID string `json:"event_id"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
}

// NotificationService sends event emails and keeps the communication log
type NotificationService struct {
	commRepo    CommunicationRepository
	eventRepo   EventRepository
	rsvpRepo    RSVPRepository
	mailer      Mailer
	enabled     bool
	concurrency int
	baseURL     string
}

// NotificationServiceConfig holds configuration for the notification service
type NotificationServiceConfig struct {
	CommRepo  CommunicationRepository
	EventRepo EventRepository
	RSVPRepo  RSVPRepository
	SMTP      config.SMTPConfig
	// BaseURL is the public site root used to build RSVP links
	BaseURL string
	// Mailer overrides the SMTP dialer, used in tests
	Mailer Mailer
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg NotificationServiceConfig) *NotificationService {
	mailer := cfg.Mailer
	if mailer == nil && cfg.SMTP.Enabled {
		mailer = &smtpMailer{
			dialer:   gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
			from:     cfg.SMTP.FromAddress,
			fromName: cfg.SMTP.FromName,
		}
	}

	concurrency := cfg.SMTP.SendConcurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	return &NotificationService{
		commRepo:    cfg.CommRepo,
		eventRepo:   cfg.EventRepo,
		rsvpRepo:    cfg.RSVPRepo,
		mailer:      mailer,
		enabled:     cfg.SMTP.Enabled || cfg.Mailer != nil,
		concurrency: concurrency,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// IsEnabled returns whether email delivery is configured
func (s *NotificationService) IsEnabled() bool {
	return s.enabled && s.mailer != nil
}

// SendInvitation sends an invitation email for one RSVP and logs it
func (s *NotificationService) SendInvitation(ctx context.Context, event *model.Event, rsvp *model.RSVP, message *string) error {
	if !s.IsEnabled() {
		return ErrSMTPDisabled
	}

	body, err := s.renderTemplate(invitationTemplate, s.templateData(event, rsvp, message, 0))
	if err != nil {
		return fmt.Errorf("rendering invitation: %w", err)
	}

	subject := fmt.Sprintf("You're invited: %s", event.Title)
	return s.deliver(ctx, event, rsvp, model.CommunicationTypeInvitation, subject, message, body)
}

// SendConfirmation sends a response confirmation email and logs it
func (s *NotificationService) SendConfirmation(ctx context.Context, event *model.Event, rsvp *model.RSVP) error {
	if !s.IsEnabled() {
		return ErrSMTPDisabled
	}

	body, err := s.renderTemplate(confirmationTemplate, s.templateData(event, rsvp, nil, 0))
	if err != nil {
		return fmt.Errorf("rendering confirmation: %w", err)
	}

	subject := fmt.Sprintf("RSVP confirmed: %s", event.Title)
	return s.deliver(ctx, event, rsvp, model.CommunicationTypeConfirmation, subject, nil, body)
}

// SendReminder sends a reminder email for one RSVP and logs it
func (s *NotificationService) SendReminder(ctx context.Context, event *model.Event, rsvp *model.RSVP, daysToGo int) error {
	if !s.IsEnabled() {
		return ErrSMTPDisabled
	}

	body, err := s.renderTemplate(reminderTemplate, s.templateData(event, rsvp, nil, daysToGo))
	if err != nil {
		return fmt.Errorf("rendering reminder: %w", err)
	}

	subject := fmt.Sprintf("Reminder: %s", event.Title)
	if daysToGo == 1 {
		subject = fmt.Sprintf("Tomorrow: %s", event.Title)
	}
	return s.deliver(ctx, event, rsvp, model.CommunicationTypeReminder, subject, nil, body)
}

// SendEventReminders sends a reminder to every open RSVP of an event.
// Sends run concurrently, bounded by the configured concurrency.
func (s *NotificationService) SendEventReminders(ctx context.Context, eventID string) (*ReminderRunResult, error) {
	if !s.IsEnabled() {
		return nil, ErrSMTPDisabled
	}

	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	rsvps, err := s.rsvpRepo.GetByEvent(ctx, eventID, nil)
	if err != nil {
		return nil, err
	}

	daysToGo := int(time.Until(event.StartDate).Hours() / 24)
	if daysToGo < 0 {
		daysToGo = 0
	}

	// The window for the current offset opened when days-to-event last
	// ticked down. An RSVP reminded at or after that point already got
	// this offset's email, so hourly re-runs must not mail it again.
	// Reminders from earlier offsets predate the window and do not block.
	reminderDate := event.StartDate.AddDate(0, 0, -(daysToGo + 1))

	result := &ReminderRunResult{EventID: eventID}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, rsvp := range rsvps {
		if rsvp.Status == model.RSVPStatusDeclined {
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			continue
		}
		if rsvp.LastReminderOn != nil && !rsvp.LastReminderOn.Before(reminderDate) {
			mu.Lock()
			result.Skipped++
			mu.Unlock()
			continue
		}

		rsvp := rsvp
		g.Go(func() error {
			err := s.SendReminder(gctx, event, rsvp, daysToGo)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				log.Printf("[NotificationService] Reminder to %s failed: %v", rsvp.Email, err)
				return nil
			}
			result.Sent++

			if err := s.rsvpRepo.MarkReminderSent(gctx, rsvp.ID); err != nil {
				log.Printf("[NotificationService] Failed to mark reminder for %s: %v", rsvp.Email, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// GetCommunications retrieves the email log for an event, newest first
func (s *NotificationService) GetCommunications(ctx context.Context, eventID string, limit int) ([]*model.Communication, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	return s.commRepo.GetByEvent(ctx, eventID, limit)
}

// GetStats retrieves delivery aggregates for an event
func (s *NotificationService) GetStats(ctx context.Context, eventID string) (*model.NotificationStats, error) {
	event, err := s.eventRepo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	return s.commRepo.GetStats(ctx, eventID)
}

// ListTemplates returns the built-in email templates
func (s *NotificationService) ListTemplates() []model.EmailTemplate {
	return []model.EmailTemplate{
		{
			Name:        "invitation",
			Type:        model.CommunicationTypeInvitation,
			Subject:     "You're invited: {{event_title}}",
			Description: "Sent when an invitee is added to an event",
			Variables:   []string{"event_title", "event_date", "location", "recipient_name", "message", "rsvp_url"},
		},
		{
			Name:        "reminder",
			Type:        model.CommunicationTypeReminder,
			Subject:     "Reminder: {{event_title}}",
			Description: "Sent ahead of the event, includes an RSVP link for pending invitees",
			Variables:   []string{"event_title", "event_date", "location", "recipient_name", "days_to_go", "rsvp_url"},
		},
		{
			Name:        "confirmation",
			Type:        model.CommunicationTypeConfirmation,
			Subject:     "RSVP confirmed: {{event_title}}",
			Description: "Sent after an invitee responds",
			Variables:   []string{"event_title", "event_date", "location", "recipient_name", "status"},
		},
	}
}

// SendTestEmail sends a delivery check to the given address
func (s *NotificationService) SendTestEmail(ctx context.Context, recipient string) error {
	if !s.IsEnabled() {
		return ErrSMTPDisabled
	}

	recipient = strings.TrimSpace(recipient)
	if recipient == "" || !model.IsValidEmail(recipient) {
		return ErrRecipientRequired
	}

	body := "<p>This is a test email. Your SMTP configuration is working.</p>"
	if err := s.mailer.Send(recipient, "Test email", body); err != nil {
		return fmt.Errorf("sending test email: %w", err)
	}
	return nil
}

// deliver sends one email and records the attempt in the communication log
func (s *NotificationService) deliver(ctx context.Context, event *model.Event, rsvp *model.RSVP, commType, subject string, message *string, body string) error {
	sendErr := s.mailer.Send(rsvp.Email, subject, body)

	comm := &model.Communication{
		EventID:        event.ID,
		RSVPID:         stringPtr(rsvp.ID),
		Type:           commType,
		Subject:        subject,
		Message:        message,
		Recipient:      rsvp.Email,
		DeliveryStatus: model.DeliveryStatusSent,
	}
	if sendErr != nil {
		comm.DeliveryStatus = model.DeliveryStatusFailed
	}

	if err := s.commRepo.Create(ctx, comm); err != nil {
		log.Printf("[NotificationService] Failed to log %s to %s: %v", commType, rsvp.Email, err)
	}

	if sendErr != nil {
		return fmt.Errorf("sending %s: %w", commType, sendErr)
	}
	return nil
}

type emailData struct {
	EventTitle    string
	EventDate     string
	Location      string
	RecipientName string
	Message       string
	DaysToGo      int
	Status        string
	RSVPURL       string
	ShowRSVPLink  bool
}

func (s *NotificationService) templateData(event *model.Event, rsvp *model.RSVP, message *string, daysToGo int) emailData {
	data := emailData{
		EventTitle:   event.Title,
		EventDate:    event.StartDate.Format("Monday, January 2, 2006 at 3:04 PM"),
		DaysToGo:     daysToGo,
		Status:       rsvp.Status,
		ShowRSVPLink: rsvp.Status == model.RSVPStatusPending,
	}
	if event.Location != nil {
		data.Location = *event.Location
	}
	if rsvp.Name != nil {
		data.RecipientName = *rsvp.Name
	}
	if data.RecipientName == "" {
		data.RecipientName = rsvp.Email
	}
	if message != nil {
		data.Message = *message
	}
	if s.baseURL != "" {
		data.RSVPURL = fmt.Sprintf("%s/events/%s/rsvp?email=%s", s.baseURL, event.ID, rsvp.Email)
	}
	return data
}

func (s *NotificationService) renderTemplate(tmpl *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`
<h2>You're invited to {{.EventTitle}}</h2>
<p>Hi {{.RecipientName}},</p>
<p>You are invited to <strong>{{.EventTitle}}</strong> on {{.EventDate}}{{if .Location}} at {{.Location}}{{end}}.</p>
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .RSVPURL}}<p><a href="{{.RSVPURL}}">Let us know if you can make it</a></p>{{end}}
`))

var reminderTemplate = template.Must(template.New("reminder").Parse(`
<h2>{{.EventTitle}} is coming up</h2>
<p>Hi {{.RecipientName}},</p>
{{if eq .DaysToGo 0}}<p><strong>{{.EventTitle}}</strong> is today, {{.EventDate}}{{if .Location}} at {{.Location}}{{end}}.</p>
{{else if eq .DaysToGo 1}}<p><strong>{{.EventTitle}}</strong> is tomorrow, {{.EventDate}}{{if .Location}} at {{.Location}}{{end}}.</p>
{{else}}<p><strong>{{.EventTitle}}</strong> is in {{.DaysToGo}} days, on {{.EventDate}}{{if .Location}} at {{.Location}}{{end}}.</p>{{end}}
{{if .ShowRSVPLink}}{{if .RSVPURL}}<p>We haven't heard from you yet. <a href="{{.RSVPURL}}">RSVP here</a>.</p>{{end}}{{end}}
`))

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`
<h2>Your RSVP is confirmed</h2>
<p>Hi {{.RecipientName}},</p>
<p>We recorded your response (<strong>{{.Status}}</strong>) for <strong>{{.EventTitle}}</strong> on {{.EventDate}}{{if .Location}} at {{.Location}}{{end}}.</p>
`))
