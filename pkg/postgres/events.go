package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const eventColumns = `
	e.id, e.title, e.description, e.location_name, e.location_type, e.category,
	e.start_date, e.end_date, e.registration_deadline, e.thumbnail_image, e.status
`

const registrationColumns = `
	volunteer_id::text AS volunteer_id, event_id, status, updated_at, feedback, rating, feedback_at
`

// GetEvent retrieves an event by id
func (d *DB) GetEvent(ctx context.Context, id int64) (*db.Event, error) {
	rows, err := d.pool.Query(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	event, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[db.Event])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("event %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &event, nil
}

// ListEventsForVolunteer retrieves every event ordered by start date, with the
// volunteer's registration status where one exists
func (d *DB) ListEventsForVolunteer(ctx context.Context, volunteerID string) ([]db.ListedEvent, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+eventColumns+`, ve.status AS registration_status
		FROM events e
		LEFT JOIN volunteer_event ve ON ve.event_id = e.id AND ve.volunteer_id = $1
		ORDER BY e.start_date ASC, e.id ASC
	`, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.ListedEvent])
	if err != nil {
		return nil, fmt.Errorf("failed to scan events: %w", err)
	}
	return events, nil
}

// GetRegistration retrieves the registration for (volunteer, event)
func (d *DB) GetRegistration(ctx context.Context, volunteerID string, eventID int64) (*db.Registration, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+registrationColumns+`
		FROM volunteer_event
		WHERE volunteer_id = $1 AND event_id = $2
	`, volunteerID, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registration: %w", err)
	}
	reg, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[db.Registration])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("registration: %w", db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}
	return &reg, nil
}

// ListRegistrations retrieves every registration of a volunteer, most recently updated first
func (d *DB) ListRegistrations(ctx context.Context, volunteerID string) ([]db.Registration, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+registrationColumns+`
		FROM volunteer_event
		WHERE volunteer_id = $1
		ORDER BY updated_at DESC
	`, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	regs, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Registration])
	if err != nil {
		return nil, fmt.Errorf("failed to scan registrations: %w", err)
	}
	return regs, nil
}

// UpsertRegistration inserts or replaces the single row for (volunteer, event)
func (d *DB) UpsertRegistration(ctx context.Context, registration *db.Registration) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO volunteer_event (volunteer_id, event_id, status, updated_at, feedback, rating, feedback_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (volunteer_id, event_id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			feedback = EXCLUDED.feedback,
			rating = EXCLUDED.rating,
			feedback_at = EXCLUDED.feedback_at
	`,
		registration.VolunteerID,
		registration.EventID,
		registration.Status,
		registration.UpdatedAt.UTC(),
		registration.Feedback,
		registration.Rating,
		registration.FeedbackAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert registration: %w", err)
	}
	return nil
}

// CountRegisteredEvents counts the events a volunteer is currently registered for
func (d *DB) CountRegisteredEvents(ctx context.Context, volunteerID string) (int, error) {
	var count int
	err := d.pool.QueryRow(ctx, `
		SELECT count(*) FROM volunteer_event WHERE volunteer_id = $1 AND status = 'registered'
	`, volunteerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registered events: %w", err)
	}
	return count, nil
}
