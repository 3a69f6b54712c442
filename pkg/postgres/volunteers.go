package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const volunteerColumns = `
	v.id::text AS id, v.email, v.full_name, v.mobile_number, v.age, v.organization,
	v.work_types, v.preferred_location, v.availability_start_date, v.availability_end_date,
	v.time_preference, v.days_available, v.onboarding_step, v.onboarding_completed,
	COALESCE(
		(SELECT array_agg(vs.skill_id ORDER BY vs.skill_id) FROM volunteer_skills vs WHERE vs.volunteer_id = v.id),
		'{}'
	) AS skill_ids
`

// GetVolunteer retrieves a volunteer by id
func (d *DB) GetVolunteer(ctx context.Context, id string) (*db.Volunteer, error) {
	return d.getVolunteer(ctx, `SELECT `+volunteerColumns+` FROM volunteers v WHERE v.id = $1`, id)
}

// GetVolunteerByEmail retrieves a volunteer by email, case-insensitively
func (d *DB) GetVolunteerByEmail(ctx context.Context, email string) (*db.Volunteer, error) {
	return d.getVolunteer(ctx, `SELECT `+volunteerColumns+` FROM volunteers v WHERE lower(v.email) = lower($1)`, email)
}

func (d *DB) getVolunteer(ctx context.Context, query string, arg any) (*db.Volunteer, error) {
	rows, err := d.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query volunteer: %w", err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[db.Volunteer])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("volunteer: %w", db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan volunteer: %w", err)
	}
	return &v, nil
}

// InsertVolunteer creates the volunteer row at signup
func (d *DB) InsertVolunteer(ctx context.Context, volunteer *db.Volunteer) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO volunteers (id, email, full_name, onboarding_step, onboarding_completed)
		VALUES ($1, $2, $3, $4, $5)
	`, volunteer.ID, volunteer.Email, volunteer.FullName, volunteer.OnboardingStep, volunteer.OnboardingCompleted)
	if err != nil {
		return fmt.Errorf("failed to insert volunteer: %w", err)
	}
	return nil
}

// UpdateVolunteer writes every profile column of the volunteer
func (d *DB) UpdateVolunteer(ctx context.Context, volunteer *db.Volunteer) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE volunteers SET
			full_name = $2,
			mobile_number = $3,
			age = $4,
			organization = $5,
			work_types = $6,
			preferred_location = $7,
			availability_start_date = $8,
			availability_end_date = $9,
			time_preference = $10,
			days_available = $11,
			onboarding_step = $12,
			onboarding_completed = $13
		WHERE id = $1
	`,
		volunteer.ID,
		volunteer.FullName,
		volunteer.Mobile,
		volunteer.Age,
		volunteer.Organization,
		volunteer.WorkTypes,
		volunteer.PreferredLocation,
		volunteer.AvailabilityStartDate,
		volunteer.AvailabilityEndDate,
		volunteer.TimePreference,
		volunteer.DaysAvailable,
		volunteer.OnboardingStep,
		volunteer.OnboardingCompleted,
	)
	if err != nil {
		return fmt.Errorf("failed to update volunteer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("volunteer %s: %w", volunteer.ID, db.ErrNotFound)
	}
	return nil
}

// ListSkills retrieves every skill ordered by name
func (d *DB) ListSkills(ctx context.Context) ([]db.Skill, error) {
	rows, err := d.pool.Query(ctx, `SELECT id, name, icon FROM skills ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query skills: %w", err)
	}
	skills, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Skill])
	if err != nil {
		return nil, fmt.Errorf("failed to scan skills: %w", err)
	}
	return skills, nil
}
