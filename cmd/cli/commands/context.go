package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/clients/gmailclient"
	"github.com/jakechorley/volunteer-hub/pkg/clients/sheetsclient"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const (
	annotationSkipAuth     = "skipAuth"
	annotationSkipDatabase = "skipDatabase"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env          string
	Cfg          *config.Config
	OAuthCfg     *config.OAuthClientConfig
	SheetsClient *sheetsclient.Client
	GmailClient  *gmailclient.Client
	Database     db.Database
	Session      *model.Session
	NewVolunteer bool
	Logger       *zap.Logger
	Ctx          context.Context
}

// Notifier returns the registration confirmation sender, or nil when emails are off
func (a *AppContext) Notifier() services.Notifier {
	if a.GmailClient == nil || !a.Cfg.RegistrationEmails {
		return nil
	}
	return a.GmailClient
}

// SkipsAuth reports whether cmd runs without a signed-in volunteer
func SkipsAuth(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationSkipAuth] == "true" || SkipsDatabase(cmd)
}

// SkipsDatabase reports whether cmd runs without a database connection
func SkipsDatabase(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationSkipDatabase] == "true"
}

var (
	noAuth     = map[string]string{annotationSkipAuth: "true"}
	noDatabase = map[string]string{annotationSkipDatabase: "true"}
)
