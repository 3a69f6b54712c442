package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// BrowseEventsStore defines the database operations needed to browse events
type BrowseEventsStore interface {
	ListEventsForVolunteer(ctx context.Context, volunteerID string) ([]db.ListedEvent, error)
}

// RegistrationStore defines the database operations needed to register and withdraw
type RegistrationStore interface {
	RegistrationLookup
	GetEvent(ctx context.Context, id int64) (*db.Event, error)
	UpsertRegistration(ctx context.Context, registration *db.Registration) error
}

// Notifier sends registration confirmations
type Notifier interface {
	SendRegistrationConfirmation(to, name string, event model.Event) error
}

// ApplyFilterDefaults fills the axes the caller left empty from the deployment's config:
// the configured categories and default time window
func ApplyFilterDefaults(cfg *config.Config, in engagement.FilterInput) engagement.FilterInput {
	if cfg == nil {
		return in
	}
	if len(in.Categories) == 0 && len(cfg.EventCategories) > 0 {
		in.Categories = append([]string(nil), cfg.EventCategories...)
	}
	if in.Window == "" && in.From == "" && in.To == "" {
		in.Window = cfg.DefaultWindow
	}
	return in
}

// BrowseEvents lists every event with the caller's registration status, filtered by criteria
func BrowseEvents(
	ctx context.Context,
	database BrowseEventsStore,
	logger *zap.Logger,
	session *model.Session,
	criteria engagement.FilterSet,
) ([]engagement.ListedEvent, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}

	rows, err := database.ListEventsForVolunteer(ctx, session.VolunteerID)
	if err != nil {
		return nil, engagement.Remote("load events", err)
	}

	events := toListedEvents(rows)
	filtered := engagement.Filter(timeNow(), events, criteria)

	logger.Debug("Filtered events",
		zap.Int("total", len(events)),
		zap.Int("matching", len(filtered)),
		zap.String("window", string(criteria.Window.Kind)))

	return filtered, nil
}

// RegisterForEvent registers the caller for an event. When notifier is non-nil a
// confirmation email is sent; a failed email does not fail the registration.
func RegisterForEvent(
	ctx context.Context,
	database RegistrationStore,
	notifier Notifier,
	logger *zap.Logger,
	session *model.Session,
	eventID int64,
) (*model.Registration, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}

	eventRow, err := database.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, engagement.Invalid("event", "event %d does not exist", eventID)
		}
		return nil, engagement.Remote("load event", err)
	}
	event := eventRow.Model()

	now := timeNow()
	if err := engagement.CheckRegistrationOpen(now, event); err != nil {
		return nil, err
	}

	existing, err := loadRegistration(ctx, database, session, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == model.StatusRegistered {
		logger.Debug("Already registered", zap.Int64("event_id", eventID))
		return existing, nil
	}

	reg, err := engagement.Register(now, *session, event, existing)
	if err != nil {
		return nil, err
	}

	row := db.RegistrationFromModel(reg)
	if err := database.UpsertRegistration(ctx, &row); err != nil {
		return nil, engagement.Remote("register for event", err)
	}

	logger.Info("Registered for event",
		zap.String("volunteer_id", session.VolunteerID),
		zap.Int64("event_id", eventID),
		zap.String("title", event.Title))

	if notifier != nil && session.Email != "" {
		if err := notifier.SendRegistrationConfirmation(session.Email, session.Name, event); err != nil {
			logger.Warn("Failed to send registration confirmation",
				zap.String("email", session.Email),
				zap.Int64("event_id", eventID),
				zap.Error(err))
		}
	}

	return &reg, nil
}

// WithdrawRegistration marks the caller as no longer registered for an event
func WithdrawRegistration(
	ctx context.Context,
	database RegistrationStore,
	logger *zap.Logger,
	session *model.Session,
	eventID int64,
) (*model.Registration, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}

	existing, err := loadRegistration(ctx, database, session, eventID)
	if err != nil {
		return nil, err
	}

	reg, err := engagement.Withdraw(timeNow(), *session, existing)
	if err != nil {
		return nil, err
	}

	row := db.RegistrationFromModel(reg)
	if err := database.UpsertRegistration(ctx, &row); err != nil {
		return nil, engagement.Remote("withdraw registration", err)
	}

	logger.Info("Withdrew registration",
		zap.String("volunteer_id", session.VolunteerID),
		zap.Int64("event_id", eventID))

	return &reg, nil
}
