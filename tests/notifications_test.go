package tests

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stitch/cms/internal/handler"
	"github.com/stitch/cms/internal/middleware"
	"github.com/stitch/cms/internal/model"
	"github.com/stitch/cms/internal/repository"
	"github.com/stitch/cms/internal/service"
	"github.com/stitch/cms/internal/testing/fixtures"
	"github.com/stitch/cms/internal/testing/helpers"
	"github.com/stitch/cms/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
FEATURE: Event Notifications over HTTP
DOMAIN: Notifications

ACCEPTANCE CRITERIA:
===================

AC-NOTIF-001: Manual Reminder Trigger
  GIVEN a published event with open RSVPs
  WHEN an editor posts to the event's reminders endpoint
  THEN reminder emails go out to non-declined RSVPs
  AND the run result reports the counts

AC-NOTIF-002: Reminder Endpoints Are Editor-Only
  GIVEN no credentials
  WHEN the reminders endpoint is called
  THEN the request is rejected with 401

AC-NOTIF-003: Communication Log Per Event
  GIVEN reminders were sent for an event
  WHEN the editor fetches the event's communications
  THEN the log entries for that event are returned

AC-NOTIF-004: Anonymous RSVP Response
  GIVEN a pending RSVP created from the public form
  WHEN the invitee patches it without credentials
  THEN the status change is applied
  AND a confirmation email is delivered

AC-NOTIF-005: Event Detail Scoped By Auth
  GIVEN an event with RSVPs
  WHEN an editor fetches the event detail
  THEN the full RSVP list is included
  AND an anonymous fetch gets aggregates only
*/

// recordingMailer captures outbound mail instead of dialing SMTP
type recordingMailer struct {
	mu   sync.Mutex
	mail []recordedMail
}

type recordedMail struct {
	To      string
	Subject string
}

func (m *recordingMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mail = append(m.mail, recordedMail{To: to, Subject: subject})
	return nil
}

func (m *recordingMailer) sent() []recordedMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedMail(nil), m.mail...)
}

// staticTokenAuth resolves bearer tokens from a fixed table
type staticTokenAuth struct {
	tokens map[string]*model.TokenClaims
}

func (a *staticTokenAuth) ValidateAccessToken(token string) (*model.TokenClaims, error) {
	if claims, ok := a.tokens[token]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("unknown token")
}

// notificationTestServer wires real services behind the same route
// patterns and middleware chains the server registers.
type notificationTestServer struct {
	mux    *http.ServeMux
	mailer *recordingMailer
}

func newNotificationTestServer(tdb *testdb.TestDB, editor, admin *model.User) *notificationTestServer {
	eventRepo := repository.NewEventRepository(tdb.DB)
	rsvpRepo := repository.NewRSVPRepository(tdb.DB)
	commRepo := repository.NewCommunicationRepository(tdb.DB)

	mailer := &recordingMailer{}
	notificationService := service.NewNotificationService(service.NotificationServiceConfig{
		CommRepo:  commRepo,
		EventRepo: eventRepo,
		RSVPRepo:  rsvpRepo,
		BaseURL:   "https://stitchcms.test",
		Mailer:    mailer,
	})
	eventService := service.NewEventService(service.EventServiceConfig{
		EventRepo: eventRepo,
		RSVPRepo:  rsvpRepo,
		Sender:    notificationService,
	})

	eventHandler := handler.NewEventHandler(eventService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	auth := &staticTokenAuth{tokens: map[string]*model.TokenClaims{}}
	if editor != nil {
		auth.tokens["editor-token"] = &model.TokenClaims{
			UserID:   editor.ID,
			Email:    editor.Email,
			Username: editor.Username,
			Role:     string(editor.Role),
		}
	}
	if admin != nil {
		auth.tokens["admin-token"] = &model.TokenClaims{
			UserID:   admin.ID,
			Email:    admin.Email,
			Username: admin.Username,
			Role:     string(admin.Role),
		}
	}

	authMiddleware := middleware.Auth(auth)
	optionalAuthMiddleware := middleware.OptionalAuth(auth)
	editorMiddleware := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.RequireEditor()(h))
	}
	adminMiddleware := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.RequireAdmin()(h))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /v1/events/{eventId}", optionalAuthMiddleware(http.HandlerFunc(eventHandler.Get)))
	mux.Handle("POST /v1/events/{eventId}/rsvps", optionalAuthMiddleware(http.HandlerFunc(eventHandler.CreateRSVP)))
	mux.Handle("GET /v1/events/{eventId}/rsvps", editorMiddleware(http.HandlerFunc(eventHandler.ListRSVPs)))
	mux.Handle("PATCH /v1/events/{eventId}/rsvps/{rsvpId}", optionalAuthMiddleware(http.HandlerFunc(eventHandler.UpdateRSVP)))
	mux.Handle("POST /v1/events/{eventId}/reminders", editorMiddleware(http.HandlerFunc(notificationHandler.SendReminders)))
	mux.Handle("GET /v1/events/{eventId}/communications", editorMiddleware(http.HandlerFunc(notificationHandler.ListCommunications)))
	mux.Handle("GET /v1/events/{eventId}/notifications/stats", editorMiddleware(http.HandlerFunc(notificationHandler.Stats)))
	mux.Handle("GET /v1/notifications/templates", editorMiddleware(http.HandlerFunc(notificationHandler.ListTemplates)))
	mux.Handle("POST /v1/notifications/test", adminMiddleware(http.HandlerFunc(notificationHandler.SendTest)))

	return &notificationTestServer{mux: mux, mailer: mailer}
}

func (s *notificationTestServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func TestNotifications_ManualReminderTrigger(t *testing.T) {
	// AC-NOTIF-001: Manual Reminder Trigger
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	editor := f.CreateEditor(t)
	srv := newNotificationTestServer(tdb, editor, nil)

	event := f.CreateEvent(t, editor)
	f.CreateAcceptedRSVP(t, event)
	f.CreateRSVP(t, event, func(o *fixtures.RSVPOpts) {
		o.Status = model.RSVPStatusDeclined
	})

	req := helpers.NewRequest(t, http.MethodPost, "/v1/events/"+event.ID+"/reminders").
		WithHeader("Authorization", "Bearer editor-token").
		Build()
	resp := srv.do(req)

	helpers.AssertStatus(t, resp, http.StatusOK)
	data := helpers.GetDataFromResponse(t, resp)
	assert.Equal(t, event.ID, data["event_id"])
	assert.Equal(t, float64(1), data["sent"])
	assert.Equal(t, float64(1), data["skipped"])

	sent := srv.mailer.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Subject, event.Title)
}

func TestNotifications_ReminderTriggerRequiresEditor(t *testing.T) {
	// AC-NOTIF-002: Reminder Endpoints Are Editor-Only
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	editor := f.CreateEditor(t)
	srv := newNotificationTestServer(tdb, editor, nil)

	event := f.CreateEvent(t, editor)

	req := helpers.NewRequest(t, http.MethodPost, "/v1/events/"+event.ID+"/reminders").Build()
	resp := srv.do(req)

	helpers.AssertStatus(t, resp, http.StatusUnauthorized)
	assert.Empty(t, srv.mailer.sent())
}

func TestNotifications_CommunicationLogAndStats(t *testing.T) {
	// AC-NOTIF-003: Communication Log Per Event
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	editor := f.CreateEditor(t)
	srv := newNotificationTestServer(tdb, editor, nil)

	event := f.CreateEvent(t, editor)
	f.CreateAcceptedRSVP(t, event)

	req := helpers.NewRequest(t, http.MethodPost, "/v1/events/"+event.ID+"/reminders").
		WithHeader("Authorization", "Bearer editor-token").
		Build()
	helpers.AssertStatus(t, srv.do(req), http.StatusOK)

	req = helpers.NewRequest(t, http.MethodGet, "/v1/events/"+event.ID+"/communications").
		WithHeader("Authorization", "Bearer editor-token").
		Build()
	resp := srv.do(req)
	helpers.AssertStatus(t, resp, http.StatusOK)

	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	helpers.DecodeResponse(t, resp, &body)
	require.NotEmpty(t, body.Data)
	assert.Equal(t, model.CommunicationTypeReminder, body.Data[0]["type"])

	req = helpers.NewRequest(t, http.MethodGet, "/v1/events/"+event.ID+"/notifications/stats").
		WithHeader("Authorization", "Bearer editor-token").
		Build()
	resp = srv.do(req)
	helpers.AssertStatus(t, resp, http.StatusOK)
	stats := helpers.GetDataFromResponse(t, resp)
	assert.Equal(t, float64(1), stats["total_sent"])
}

func TestNotifications_AnonymousRSVPResponse(t *testing.T) {
	// AC-NOTIF-004: Anonymous RSVP Response
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	editor := f.CreateEditor(t)
	srv := newNotificationTestServer(tdb, editor, nil)

	event := f.CreateEvent(t, editor)
	rsvp := f.CreateRSVP(t, event)

	req := helpers.NewRequest(t, http.MethodPatch, "/v1/events/"+event.ID+"/rsvps/"+rsvp.ID).
		WithBody(map[string]string{"status": model.RSVPStatusAccepted}).
		Build()
	resp := srv.do(req)

	helpers.AssertStatus(t, resp, http.StatusOK)
	data := helpers.GetDataFromResponse(t, resp)
	assert.Equal(t, model.RSVPStatusAccepted, data["status"])

	sent := srv.mailer.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, rsvp.Email, sent[0].To)
	assert.Contains(t, sent[0].Subject, "confirmed")
}

func TestNotifications_EventDetailScopedByAuth(t *testing.T) {
	// AC-NOTIF-005: Event Detail Scoped By Auth
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	editor := f.CreateEditor(t)
	srv := newNotificationTestServer(tdb, editor, nil)

	event := f.CreateEvent(t, editor)
	f.CreateAcceptedRSVP(t, event)
	f.CreateAcceptedRSVP(t, event)

	req := helpers.NewRequest(t, http.MethodGet, "/v1/events/"+event.ID).
		WithHeader("Authorization", "Bearer editor-token").
		Build()
	resp := srv.do(req)
	helpers.AssertStatus(t, resp, http.StatusOK)
	data := helpers.GetDataFromResponse(t, resp)
	rsvps, ok := data["rsvps"].([]interface{})
	require.True(t, ok, "expected rsvps list for an authenticated fetch")
	assert.Len(t, rsvps, 2)

	req = helpers.NewRequest(t, http.MethodGet, "/v1/events/"+event.ID).Build()
	resp = srv.do(req)
	helpers.AssertStatus(t, resp, http.StatusOK)
	data = helpers.GetDataFromResponse(t, resp)
	_, hasList := data["rsvps"]
	assert.False(t, hasList, "anonymous fetch must not expose the RSVP list")
	assert.NotNil(t, data["stats"])
}

func TestNotifications_TestEmailIsAdminOnly(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	editor := f.CreateEditor(t)
	admin := f.CreateAdmin(t)
	srv := newNotificationTestServer(tdb, editor, admin)

	body := map[string]string{"recipient": "ops@stitchcms.test"}

	req := helpers.NewRequest(t, http.MethodPost, "/v1/notifications/test").
		WithHeader("Authorization", "Bearer editor-token").
		WithBody(body).
		Build()
	helpers.AssertStatus(t, srv.do(req), http.StatusForbidden)

	req = helpers.NewRequest(t, http.MethodPost, "/v1/notifications/test").
		WithHeader("Authorization", "Bearer admin-token").
		WithBody(body).
		Build()
	resp := srv.do(req)
	helpers.AssertStatus(t, resp, http.StatusOK)

	sent := srv.mailer.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ops@stitchcms.test", sent[0].To)
}
