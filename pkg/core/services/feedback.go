package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// FeedbackStore defines the database operations needed to submit event feedback
type FeedbackStore interface {
	RegistrationLookup
	UpsertRegistration(ctx context.Context, registration *db.Registration) error
}

// SubmitFeedback records a rating and comment for an event the caller is registered
// for. Submitting again replaces the earlier feedback on the same registration.
func SubmitFeedback(
	ctx context.Context,
	database FeedbackStore,
	logger *zap.Logger,
	session *model.Session,
	eventID int64,
	rating int,
	text string,
) (*model.Registration, engagement.FeedbackMode, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, "", err
	}
	if err := engagement.ValidateFeedback(rating, text); err != nil {
		return nil, "", err
	}

	reg, err := requireRegistered(ctx, database, session, eventID)
	if err != nil {
		return nil, "", err
	}

	updated, mode, err := engagement.ApplyFeedback(*reg, rating, text, timeNow())
	if err != nil {
		return nil, "", err
	}

	row := db.RegistrationFromModel(updated)
	if err := database.UpsertRegistration(ctx, &row); err != nil {
		return nil, "", engagement.Remote("save feedback", err)
	}

	logger.Info("Saved event feedback",
		zap.String("volunteer_id", session.VolunteerID),
		zap.Int64("event_id", eventID),
		zap.Int("rating", rating),
		zap.String("mode", string(mode)))

	return &updated, mode, nil
}
