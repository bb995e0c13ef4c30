package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// EventRepository handles event data access
type EventRepository struct {
	db database.Database
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.Database) *EventRepository {
	return &EventRepository{db: db}
}

// Create creates a new event
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	// Build query dynamically to handle optional fields (SurrealDB option<T> requires NONE, not NULL)
	vars := map[string]interface{}{
		"title":            event.Title,
		"event_type":       event.EventType,
		"start_date":       event.StartDate,
		"require_approval": event.RequireApproval,
		"allow_guests":     event.AllowGuests,
		"send_reminders":   event.SendReminders,
		"status":           event.Status,
	}

	setClause := `
		title = $title,
		event_type = $event_type,
		start_date = $start_date,
		require_approval = $require_approval,
		allow_guests = $allow_guests,
		send_reminders = $send_reminders,
		status = $status,
		created_on = time::now(),
		updated_on = time::now()`

	if event.Description != nil {
		setClause += ", description = $description"
		vars["description"] = *event.Description
	}
	if event.EndDate != nil {
		setClause += ", end_date = $end_date"
		vars["end_date"] = *event.EndDate
	}
	if event.Location != nil {
		setClause += ", location = $location"
		vars["location"] = *event.Location
	}
	if event.MaxAttendees != nil {
		setClause += ", max_attendees = $max_attendees"
		vars["max_attendees"] = *event.MaxAttendees
	}
	if event.RSVPDeadline != nil {
		setClause += ", rsvp_deadline = $rsvp_deadline"
		vars["rsvp_deadline"] = *event.RSVPDeadline
	}
	if len(event.ReminderDaysBefore) > 0 {
		setClause += ", reminder_days_before = $reminder_days_before"
		vars["reminder_days_before"] = event.ReminderDaysBefore
	}
	if event.CreatedBy != nil {
		setClause += ", created_by = type::record($created_by)"
		vars["created_by"] = *event.CreatedBy
	}

	query := "CREATE event SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	event.ID = created.ID
	event.CreatedOn = created.CreatedOn
	event.UpdatedOn = created.UpdatedOn
	return nil
}

// Get retrieves an event by ID
func (r *EventRepository) Get(ctx context.Context, eventID string) (*model.Event, error) {
	query := `SELECT * FROM type::record($event_id)`
	vars := map[string]interface{}{"event_id": eventID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseEventResult(result)
}

// List retrieves events, optionally filtered by status, soonest first
func (r *EventRepository) List(ctx context.Context, status *string) ([]*model.Event, error) {
	query := `SELECT * FROM event WHERE true`
	vars := map[string]interface{}{}

	if status != nil {
		query += ` AND status = $status`
		vars["status"] = *status
	}

	query += ` ORDER BY start_date ASC`

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseEventsResult(result)
}

// GetUpcomingWithReminders retrieves published events that have reminders
// enabled and have not started yet
func (r *EventRepository) GetUpcomingWithReminders(ctx context.Context) ([]*model.Event, error) {
	query := `
		SELECT * FROM event
		WHERE status = "published"
		AND send_reminders = true
		AND start_date > time::now()
		ORDER BY start_date ASC
	`

	result, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return r.parseEventsResult(result)
}

// Update applies field updates and returns the updated event
func (r *EventRepository) Update(ctx context.Context, eventID string, updates map[string]interface{}) (*model.Event, error) {
	query := `UPDATE event SET updated_on = time::now()`
	vars := map[string]interface{}{"event_id": eventID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($event_id) RETURN AFTER`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseEventResult(result)
}

// Delete deletes an event and its RSVPs
func (r *EventRepository) Delete(ctx context.Context, eventID string) error {
	queries := []struct {
		Query string
		Vars  map[string]interface{}
	}{
		{`DELETE rsvp WHERE event_id = $event_id`, map[string]interface{}{"event_id": eventID}},
		{`DELETE event WHERE id = type::record($event_id)`, map[string]interface{}{"event_id": eventID}},
	}

	return BatchExecute(ctx, r.db, queries)
}

// GetRSVPStats aggregates RSVP counts for an event
func (r *EventRepository) GetRSVPStats(ctx context.Context, eventID string) (*model.RSVPStats, error) {
	query := `
		SELECT status, count(), math::sum(guest_count) AS guests FROM rsvp
		WHERE event_id = $event_id
		GROUP BY status
	`
	vars := map[string]interface{}{"event_id": eventID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	stats := &model.RSVPStats{}
	rows, ok := extractQueryResults(result)
	if !ok {
		return stats, nil
	}

	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		count := getInt(data, "count")
		stats.Total += count

		switch getString(data, "status") {
		case model.RSVPStatusAccepted:
			stats.Accepted = count
			// Headcount is the attendee plus their guests
			stats.TotalGuests = count + getInt(data, "guests")
		case model.RSVPStatusDeclined:
			stats.Declined = count
		case model.RSVPStatusPending:
			stats.Pending = count
		case model.RSVPStatusMaybe:
			stats.Maybe = count
		}
	}

	return stats, nil
}

// Helper functions

func (r *EventRepository) parseEventResult(result interface{}) (*model.Event, error) {
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
	if cb, ok := data["created_by"]; ok {
		if cbStr := convertSurrealID(cb); cbStr != "" {
			data["created_by"] = cbStr
		}
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var event model.Event
	if err := json.Unmarshal(jsonBytes, &event); err != nil {
		return nil, err
	}

	if t := getTime(data, "start_date"); t != nil {
		event.StartDate = *t
	}
	event.EndDate = getTime(data, "end_date")
	event.RSVPDeadline = getTime(data, "rsvp_deadline")
	if t := getTime(data, "created_on"); t != nil {
		event.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		event.UpdatedOn = *t
	}

	if days, ok := data["reminder_days_before"].([]interface{}); ok {
		parsed := make([]int, 0, len(days))
		for _, d := range days {
			if f, ok := d.(float64); ok {
				parsed = append(parsed, int(f))
			} else if n, ok := d.(int64); ok {
				parsed = append(parsed, int(n))
			} else if n, ok := d.(uint64); ok {
				parsed = append(parsed, int(n))
			}
		}
		event.ReminderDaysBefore = parsed
	}

	return &event, nil
}

func (r *EventRepository) parseEventsResult(result []interface{}) ([]*model.Event, error) {
	events := make([]*model.Event, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					event, err := r.parseEventResult(item)
					if err != nil {
						continue
					}
					events = append(events, event)
				}
				continue
			}
		}

		event, err := r.parseEventResult(res)
		if err != nil {
			continue
		}
		events = append(events, event)
	}

	return events, nil
}
