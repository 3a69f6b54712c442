package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/profile"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// ProfileStore defines the database operations needed to update a volunteer profile
type ProfileStore interface {
	VolunteerLookup
	UpdateVolunteer(ctx context.Context, volunteer *db.Volunteer) error
}

// CompleteOnboardingStep1 saves personal details
func CompleteOnboardingStep1(
	ctx context.Context,
	database ProfileStore,
	logger *zap.Logger,
	session *model.Session,
	details profile.Details,
) (*model.Volunteer, error) {
	return updateProfile(ctx, database, logger, session, "details", func(v model.Volunteer) (model.Volunteer, error) {
		return profile.ApplyDetails(v, details)
	})
}

// CompleteOnboardingStep2 saves work preferences
func CompleteOnboardingStep2(
	ctx context.Context,
	database ProfileStore,
	logger *zap.Logger,
	session *model.Session,
	prefs profile.WorkPreferences,
) (*model.Volunteer, error) {
	return updateProfile(ctx, database, logger, session, "work_preferences", func(v model.Volunteer) (model.Volunteer, error) {
		return profile.ApplyWorkPreferences(v, prefs)
	})
}

// CompleteOnboardingStep3 saves availability and completes onboarding
func CompleteOnboardingStep3(
	ctx context.Context,
	database ProfileStore,
	logger *zap.Logger,
	session *model.Session,
	availability model.Availability,
) (*model.Volunteer, error) {
	return updateProfile(ctx, database, logger, session, "availability", func(v model.Volunteer) (model.Volunteer, error) {
		return profile.ApplyAvailability(v, availability)
	})
}

// UpdateAvailability replaces the availability of an onboarded volunteer
func UpdateAvailability(
	ctx context.Context,
	database ProfileStore,
	logger *zap.Logger,
	session *model.Session,
	availability model.Availability,
) (*model.Volunteer, error) {
	return updateProfile(ctx, database, logger, session, "availability_update", func(v model.Volunteer) (model.Volunteer, error) {
		if !v.OnboardingCompleted {
			return v, profile.ErrStepLocked
		}
		return profile.ApplyAvailability(v, availability)
	})
}

func updateProfile(
	ctx context.Context,
	database ProfileStore,
	logger *zap.Logger,
	session *model.Session,
	step string,
	apply func(model.Volunteer) (model.Volunteer, error),
) (*model.Volunteer, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}

	volunteer, err := loadVolunteer(ctx, database, session)
	if err != nil {
		return nil, err
	}

	updated, err := apply(volunteer)
	if err != nil {
		return nil, err
	}

	row := db.VolunteerFromModel(updated)
	if err := database.UpdateVolunteer(ctx, &row); err != nil {
		return nil, engagement.Remote("update volunteer profile", err)
	}

	logger.Info("Updated volunteer profile",
		zap.String("volunteer_id", session.VolunteerID),
		zap.String("step", step),
		zap.Int("onboarding_step", updated.OnboardingStep),
		zap.Bool("onboarding_completed", updated.OnboardingCompleted))

	return &updated, nil
}
