package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// timeNow is swapped in tests
var timeNow = time.Now

// VolunteerLookup is the store operation every profile-aware service needs
type VolunteerLookup interface {
	GetVolunteer(ctx context.Context, id string) (*db.Volunteer, error)
}

// loadVolunteer fetches the session's volunteer profile
func loadVolunteer(ctx context.Context, store VolunteerLookup, session *model.Session) (model.Volunteer, error) {
	row, err := store.GetVolunteer(ctx, session.VolunteerID)
	if err != nil {
		return model.Volunteer{}, engagement.Remote("load volunteer profile", err)
	}
	return row.Model(), nil
}

// loadRegistration fetches the registration for (session, event), nil when none exists
func loadRegistration(ctx context.Context, store RegistrationLookup, session *model.Session, eventID int64) (*model.Registration, error) {
	row, err := store.GetRegistration(ctx, session.VolunteerID, eventID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, engagement.Remote("load registration", err)
	}
	reg := row.Model()
	return &reg, nil
}

// RegistrationLookup is the store operation for reading one registration
type RegistrationLookup interface {
	GetRegistration(ctx context.Context, volunteerID string, eventID int64) (*db.Registration, error)
}

// requireRegistered rejects callers not currently registered for the event
func requireRegistered(ctx context.Context, store RegistrationLookup, session *model.Session, eventID int64) (*model.Registration, error) {
	reg, err := loadRegistration(ctx, store, session, eventID)
	if err != nil {
		return nil, err
	}
	if reg == nil || reg.Status != model.StatusRegistered {
		return nil, fmt.Errorf("event %d: %w", eventID, engagement.ErrNotRegistered)
	}
	return reg, nil
}

// toListedEvents converts joined event rows to classifier input
func toListedEvents(rows []db.ListedEvent) []engagement.ListedEvent {
	events := make([]engagement.ListedEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, engagement.ListedEvent{Event: row.Event.Model(), Status: row.Status()})
	}
	return events
}
