package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stitch/cms/internal/database"
	"github.com/stitch/cms/internal/model"
)

// RSVPRepository handles RSVP data access
type RSVPRepository struct {
	db database.Database
}

// NewRSVPRepository creates a new RSVP repository
func NewRSVPRepository(db database.Database) *RSVPRepository {
	return &RSVPRepository{db: db}
}

// Create creates a new RSVP. Email is unique per event.
func (r *RSVPRepository) Create(ctx context.Context, rsvp *model.RSVP) error {
	existing, err := r.GetByEventAndEmail(ctx, rsvp.EventID, rsvp.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: RSVP already exists for %s", database.ErrDuplicate, rsvp.Email)
	}

	vars := map[string]interface{}{
		"event_id":    rsvp.EventID,
		"email":       strings.ToLower(rsvp.Email),
		"status":      rsvp.Status,
		"guest_count": rsvp.GuestCount,
		"source":      rsvp.Source,
	}

	setClause := `
		event_id = $event_id,
		email = $email,
		status = $status,
		guest_count = $guest_count,
		reminder_count = 0,
		source = $source,
		created_on = time::now(),
		updated_on = time::now()`

	if rsvp.Name != nil {
		setClause += ", name = $name"
		vars["name"] = *rsvp.Name
	}
	if rsvp.Phone != nil {
		setClause += ", phone = $phone"
		vars["phone"] = *rsvp.Phone
	}
	if rsvp.Company != nil {
		setClause += ", company = $company"
		vars["company"] = *rsvp.Company
	}
	if rsvp.DietaryRestrictions != nil {
		setClause += ", dietary_restrictions = $dietary_restrictions"
		vars["dietary_restrictions"] = *rsvp.DietaryRestrictions
	}
	if rsvp.SpecialRequests != nil {
		setClause += ", special_requests = $special_requests"
		vars["special_requests"] = *rsvp.SpecialRequests
	}
	if rsvp.Notes != nil {
		setClause += ", notes = $notes"
		vars["notes"] = *rsvp.Notes
	}
	if rsvp.Status != model.RSVPStatusPending {
		setClause += ", responded_on = time::now()"
	}
	if rsvp.InvitationSentOn != nil {
		setClause += ", invitation_sent_on = $invitation_sent_on"
		vars["invitation_sent_on"] = *rsvp.InvitationSentOn
	}

	query := "CREATE rsvp SET " + setClause

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: RSVP already exists for %s", database.ErrDuplicate, rsvp.Email)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	rsvp.ID = created.ID
	rsvp.Email = strings.ToLower(rsvp.Email)
	rsvp.CreatedOn = created.CreatedOn
	rsvp.UpdatedOn = created.UpdatedOn
	return nil
}

// Get retrieves an RSVP by ID
func (r *RSVPRepository) Get(ctx context.Context, rsvpID string) (*model.RSVP, error) {
	query := `SELECT * FROM type::record($rsvp_id)`
	vars := map[string]interface{}{"rsvp_id": rsvpID}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseRSVPResult(result)
}

// GetByEventAndEmail retrieves an RSVP by event and invitee email
func (r *RSVPRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*model.RSVP, error) {
	query := `
		SELECT * FROM rsvp
		WHERE event_id = $event_id AND email = $email
		LIMIT 1
	`
	vars := map[string]interface{}{
		"event_id": eventID,
		"email":    strings.ToLower(email),
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.parseRSVPResult(result)
}

// GetByEvent retrieves all RSVPs for an event, optionally filtered by status
func (r *RSVPRepository) GetByEvent(ctx context.Context, eventID string, status *string) ([]*model.RSVP, error) {
	query := `SELECT * FROM rsvp WHERE event_id = $event_id`
	vars := map[string]interface{}{"event_id": eventID}

	if status != nil {
		query += ` AND status = $status`
		vars["status"] = *status
	}

	query += ` ORDER BY created_on ASC`

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseRSVPsResult(result)
}

// Update applies field updates and returns the updated RSVP
func (r *RSVPRepository) Update(ctx context.Context, rsvpID string, updates map[string]interface{}) (*model.RSVP, error) {
	query := `UPDATE rsvp SET updated_on = time::now()`
	vars := map[string]interface{}{"rsvp_id": rsvpID}

	for key, value := range updates {
		query += ", " + key + " = $" + key
		vars[key] = value
	}

	query += ` WHERE id = type::record($rsvp_id) RETURN AFTER`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseRSVPResult(result)
}

// Delete deletes an RSVP
func (r *RSVPRepository) Delete(ctx context.Context, rsvpID string) error {
	query := `DELETE rsvp WHERE id = type::record($rsvp_id)`
	vars := map[string]interface{}{"rsvp_id": rsvpID}

	return r.db.Execute(ctx, query, vars)
}

// MarkReminderSent bumps the reminder bookkeeping for an RSVP
func (r *RSVPRepository) MarkReminderSent(ctx context.Context, rsvpID string) error {
	query := `
		UPDATE rsvp
		SET reminder_count = reminder_count + 1,
			last_reminder_on = time::now(),
			updated_on = time::now()
		WHERE id = type::record($rsvp_id)
	`
	vars := map[string]interface{}{"rsvp_id": rsvpID}

	return r.db.Execute(ctx, query, vars)
}

// RespondedSince retrieves RSVPs for an event that responded on or after the
// cutoff. Used to build response timelines.
func (r *RSVPRepository) RespondedSince(ctx context.Context, eventID string, cutoff time.Time) ([]*model.RSVP, error) {
	query := `
		SELECT * FROM rsvp
		WHERE event_id = $event_id
		AND responded_on != NONE
		AND responded_on >= $cutoff
		ORDER BY responded_on ASC
	`
	vars := map[string]interface{}{
		"event_id": eventID,
		"cutoff":   cutoff,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return r.parseRSVPsResult(result)
}

// Helper functions

func (r *RSVPRepository) parseRSVPResult(result interface{}) (*model.RSVP, error) {
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

	var rsvp model.RSVP
	if err := json.Unmarshal(jsonBytes, &rsvp); err != nil {
		return nil, err
	}

	rsvp.GuestCount = getInt(data, "guest_count")
	rsvp.ReminderCount = getInt(data, "reminder_count")

	if t := getTime(data, "created_on"); t != nil {
		rsvp.CreatedOn = *t
	}
	if t := getTime(data, "updated_on"); t != nil {
		rsvp.UpdatedOn = *t
	}
	rsvp.InvitationSentOn = getTime(data, "invitation_sent_on")
	rsvp.RespondedOn = getTime(data, "responded_on")
	rsvp.LastReminderOn = getTime(data, "last_reminder_on")

	return &rsvp, nil
}

func (r *RSVPRepository) parseRSVPsResult(result []interface{}) ([]*model.RSVP, error) {
	rsvps := make([]*model.RSVP, 0)

	for _, res := range result {
		if resp, ok := res.(map[string]interface{}); ok {
			if resultData, ok := resp["result"].([]interface{}); ok {
				for _, item := range resultData {
					rsvp, err := r.parseRSVPResult(item)
					if err != nil {
						continue
					}
					rsvps = append(rsvps, rsvp)
				}
				continue
			}
		}

		rsvp, err := r.parseRSVPResult(res)
		if err != nil {
			continue
		}
		rsvps = append(rsvps, rsvp)
	}

	return rsvps, nil
}
