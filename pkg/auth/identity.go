package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/profile"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// Identity is what the identity provider tells us about the signed-in user
type Identity struct {
	Subject  string
	Email    string
	Name     string
	Verified bool
}

// FetchIdentity asks Google's userinfo endpoint who owns token
func FetchIdentity(ctx context.Context, oauthConfig *oauth2.Config, token *oauth2.Token) (*Identity, error) {
	service, err := oauth2api.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	identity := &Identity{
		Subject: info.Id,
		Email:   info.Email,
		Name:    info.Name,
	}
	if info.VerifiedEmail != nil {
		identity.Verified = *info.VerifiedEmail
	}
	return identity, nil
}

// VolunteerResolver defines the database operations needed to resolve a sign-in to a volunteer
type VolunteerResolver interface {
	GetVolunteerByEmail(ctx context.Context, email string) (*db.Volunteer, error)
	InsertVolunteer(ctx context.Context, volunteer *db.Volunteer) error
}

// ResolveVolunteer maps an identity to a volunteer session. The first sign-in for an
// email creates the volunteer at onboarding step 1. created reports whether that happened.
func ResolveVolunteer(
	ctx context.Context,
	database VolunteerResolver,
	logger *zap.Logger,
	identity *Identity,
) (session *model.Session, created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, false, engagement.ErrAuthenticationRequired
	}

	existing, err := database.GetVolunteerByEmail(ctx, email)
	switch {
	case err == nil:
		v := existing.Model()
		logger.Debug("Resolved volunteer", zap.String("volunteer_id", v.ID))
		return &model.Session{VolunteerID: v.ID, Email: v.Email, Name: v.FullName}, false, nil
	case !errors.Is(err, db.ErrNotFound):
		return nil, false, engagement.Remote("look up volunteer", err)
	}

	volunteer := model.Volunteer{
		ID:             uuid.NewString(),
		Email:          email,
		FullName:       strings.TrimSpace(identity.Name),
		OnboardingStep: profile.StepDetails,
	}
	row := db.VolunteerFromModel(volunteer)
	if err := database.InsertVolunteer(ctx, &row); err != nil {
		return nil, false, engagement.Remote("create volunteer", err)
	}

	logger.Info("Created volunteer on first sign-in",
		zap.String("volunteer_id", volunteer.ID),
		zap.String("email", email))

	return &model.Session{VolunteerID: volunteer.ID, Email: email, Name: volunteer.FullName}, true, nil
}
