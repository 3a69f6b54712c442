package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// HistoryStore defines the database operations needed to build a participation history
type HistoryStore interface {
	VolunteerLookup
	ListEventsForVolunteer(ctx context.Context, volunteerID string) ([]db.ListedEvent, error)
	ListRegistrations(ctx context.Context, volunteerID string) ([]db.Registration, error)
	ListVolunteerTasks(ctx context.Context, volunteerID string) ([]db.Task, error)
}

// HistoryPublisher writes a history to a spreadsheet
type HistoryPublisher interface {
	PublishHistory(spreadsheetID string, history *model.History) error
}

// BuildHistory collects every event the volunteer has registered for, with their
// feedback and tasks, oldest first
func BuildHistory(ctx context.Context, database HistoryStore, logger *zap.Logger, session *model.Session) (*model.History, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}
	logger.Debug("Building history", zap.String("volunteer_id", session.VolunteerID))

	// Step 1: Profile
	volunteer, err := loadVolunteer(ctx, database, session)
	if err != nil {
		return nil, err
	}

	// Step 2: Events and registrations
	events, err := database.ListEventsForVolunteer(ctx, session.VolunteerID)
	if err != nil {
		return nil, engagement.Remote("load events", err)
	}
	registrations, err := database.ListRegistrations(ctx, session.VolunteerID)
	if err != nil {
		return nil, engagement.Remote("load registrations", err)
	}
	regByEvent := make(map[int64]model.Registration, len(registrations))
	for _, row := range registrations {
		regByEvent[row.EventID] = row.Model()
	}

	// Step 3: Tasks grouped by event
	taskRows, err := database.ListVolunteerTasks(ctx, session.VolunteerID)
	if err != nil {
		return nil, engagement.Remote("load tasks", err)
	}
	tasksByEvent := make(map[int64][]model.Task)
	for _, row := range taskRows {
		task := row.Model()
		tasksByEvent[task.EventID] = append(tasksByEvent[task.EventID], task)
	}

	// Step 4: One row per event ever registered for
	rows := make([]model.HistoryRow, 0, len(regByEvent))
	for _, row := range events {
		reg, ok := regByEvent[row.ID]
		if !ok {
			continue
		}
		event := row.Event.Model()
		rows = append(rows, model.HistoryRow{
			EventTitle: event.Title,
			Start:      event.Start,
			Category:   event.Category,
			Status:     reg.Status,
			Rating:     reg.Rating,
			Feedback:   reg.Feedback,
			Tasks:      tasksByEvent[event.ID],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Start.Before(rows[j].Start)
	})

	name := volunteer.FullName
	if name == "" {
		name = volunteer.Email
	}

	logger.Info("History built", zap.String("volunteer_id", session.VolunteerID), zap.Int("events", len(rows)))

	return &model.History{
		VolunteerName: name,
		ExportedAt:    timeNow(),
		Rows:          rows,
	}, nil
}

// ExportHistory builds the caller's history and publishes it to the configured spreadsheet
func ExportHistory(
	ctx context.Context,
	database HistoryStore,
	publisher HistoryPublisher,
	cfg *config.Config,
	logger *zap.Logger,
	session *model.Session,
) (*model.History, error) {
	if cfg.HistorySheetID == "" {
		return nil, fmt.Errorf("historySheetID is not configured")
	}

	history, err := BuildHistory(ctx, database, logger, session)
	if err != nil {
		return nil, err
	}

	if err := publisher.PublishHistory(cfg.HistorySheetID, history); err != nil {
		return nil, engagement.Remote("publish history", err)
	}

	logger.Info("History exported", zap.String("spreadsheet_id", cfg.HistorySheetID), zap.Int("events", len(history.Rows)))
	return history, nil
}
