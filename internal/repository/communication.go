package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// CommunicationRepository handles the outbound email log
type CommunicationRepository struct {
	db database.Database
}

// NewCommunicationRepository creates a new communication repository
func NewCommunicationRepository(db database.Database) *CommunicationRepository {
	return &CommunicationRepository{db: db}
}

// Create logs an outbound email
func (r *CommunicationRepository) Create(ctx context.Context, comm *model.Communication) error {
	vars := map[string]interface{}{
		"event_id":        comm.EventID,
		"type":            comm.Type,
		"subject":         comm.Subject,
		"recipient":       comm.Recipient,
		"delivery_status": comm.DeliveryStatus,
	}

	setClause := `
		event_id = $event_id,
		type = $type,
		subject = $subject,
		recipient = $recipient,
		delivery_status = $delivery_status,
		created_on = time::now()`

	if comm.RSVPID != nil {
		setClause += ", rsvp_id = $rsvp_id"
		vars["rsvp_id"] = *comm.RSVPID
	}
	if comm.Message != nil {
		setClause += ", message = $message"
		vars["message"] = *comm.Message
	}
	if comm.DeliveryStatus == model.DeliveryStatusSent {
		setClause += ", sent_on = time::now()"
	}

	query := "CREATE communication SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	comm.ID = created.ID
	comm.CreatedOn = created.CreatedOn
	return nil
}

// GetByEvent retrieves the email log for an event, newest first
func (r *CommunicationRepository) GetByEvent(ctx context.Context, eventID string, limit int) ([]*model.Communication, error) {
	query := `
		SELECT * FROM communication
		WHERE event_id = $event_id
		ORDER BY created_on DESC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"event_id": eventID,
		"limit":    limit,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseCommunicationsResult(result)
}

// GetStats aggregates delivery counts for an event
func (r *CommunicationRepository) GetStats(ctx context.Context, eventID string) (*model.NotificationStats, error) {
	query := `
		SELECT type, delivery_status, count() FROM communication
		WHERE event_id = $event_id
		GROUP BY type, delivery_status
	`
	vars := map[string]interface{}{"event_id": eventID}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	stats := &model.NotificationStats{
		EventID:    eventID,
		SentByType: make(map[string]int),
	}

	rows, ok := extractQueryResults(result)
	if ok {
		for _, row := range rows {
			data, ok := row.(map[string]interface{})
			if !ok {
				continue
			}
			count := getInt(data, "count")
			switch getString(data, "delivery_status") {
			case model.DeliveryStatusSent:
				stats.TotalSent += count
				stats.SentByType[getString(data, "type")] += count
			case model.DeliveryStatusFailed:
				stats.TotalFailed += count
			case model.DeliveryStatusPending:
				stats.TotalPending += count
			}
		}
	}

	lastSent, err := r.lastSentOn(ctx, eventID)
	if err != nil {
		return nil, err
	}
	stats.LastSentOn = lastSent

	return stats, nil
}

func (r *CommunicationRepository) lastSentOn(ctx context.Context, eventID string) (*time.Time, error) {
	query := `
		SELECT sent_on FROM communication
		WHERE event_id = $event_id AND delivery_status = "sent"
		ORDER BY sent_on DESC
		LIMIT 1
	`
	vars := map[string]interface{}{"event_id": eventID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if data, ok := result.(map[string]interface{}); ok {
		return getTime(data, "sent_on"), nil
	}
	return nil, nil
}

// Helper functions

func (r *CommunicationRepository) parseCommunicationResult(result interface{}) (*model.Communication, error) {
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

	var comm model.Communication
	if err := json.Unmarshal(jsonBytes, &comm); err != nil {
		return nil, err
	}

	if t := getTime(data, "created_on"); t != nil {
		comm.CreatedOn = *t
	}
	comm.SentOn = getTime(data, "sent_on")

	return &comm, nil
}

func (r *CommunicationRepository) parseCommunicationsResult(result []interface{}) ([]*model.Communication, error) {
	comms := make([]*model.Communication, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					comm, err := r.parseCommunicationResult(item)
					if err != nil {
						continue
					}
					comms = append(comms, comm)
				}
				continue
			}
		}

		comm, err := r.parseCommunicationResult(res)
		if err != nil {
			continue
		}
		comms = append(comms, comm)
	}

	return comms, nil
}
