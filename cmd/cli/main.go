package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/cmd/cli/commands"
	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/auth"
	"github.com/jakechorley/volunteer-hub/pkg/clients/gmailclient"
	"github.com/jakechorley/volunteer-hub/pkg/clients/sheetsclient"
	"github.com/jakechorley/volunteer-hub/pkg/postgres"
	"github.com/jakechorley/volunteer-hub/pkg/utils"
	"github.com/jakechorley/volunteer-hub/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.Ctx = ctx

	rootCmd := &cobra.Command{
		Use:   "volunteer-hub",
		Short: "Volunteer Hub CLI - Find events, claim tasks and talk to other volunteers",
		Long:  `A CLI and API server for volunteers: browse and register for events, manage tasks, leave feedback and chat.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.LoginCmd(app))
	rootCmd.AddCommand(commands.LogoutCmd(app))
	rootCmd.AddCommand(commands.DashboardCmd(app))
	rootCmd.AddCommand(commands.StatsCmd(app))
	rootCmd.AddCommand(commands.EventsCmd(app))
	rootCmd.AddCommand(commands.RegisterCmd(app))
	rootCmd.AddCommand(commands.WithdrawCmd(app))
	rootCmd.AddCommand(commands.TasksCmd(app))
	rootCmd.AddCommand(commands.FeedbackCmd(app))
	rootCmd.AddCommand(commands.ChatCmd(app))
	rootCmd.AddCommand(commands.OnboardingCmd(app))
	rootCmd.AddCommand(commands.AvailabilityCmd(app))
	rootCmd.AddCommand(commands.ExportHistoryCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		closeApp()
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and, unless the command opts out, the
// signed-in volunteer and the Google clients
func initApp(cmd *cobra.Command) error {
	var err error
	app.Env = env

	// Initialize logger
	app.Logger, err = logging.InitLoggerWithOptions(env, logging.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env), zap.String("command", cmd.Name()))

	// Load configuration
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Load OAuth client configuration
	app.OAuthCfg, err = config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	app.Logger.Debug("OAuth configuration loaded successfully")

	if commands.SkipsDatabase(cmd) {
		return nil
	}

	// Connect to database
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Database = database
	app.Logger.Debug("Database connected")

	if commands.SkipsAuth(cmd) {
		return nil
	}

	// Sign in (will perform OAuth flow if needed, tokens are persisted to disk)
	oauthConfig, err := utils.GetOAuthConfig(app.OAuthCfg)
	if err != nil {
		return fmt.Errorf("failed to get oauth config: %w", err)
	}
	token, err := utils.GetTokenWithFlow(app.Ctx, oauthConfig, env)
	if err != nil {
		return fmt.Errorf("failed to get oauth token: %w", err)
	}

	identity, err := auth.FetchIdentity(app.Ctx, oauthConfig, token)
	if err != nil {
		return fmt.Errorf("failed to identify signed-in user: %w", err)
	}

	app.Session, app.NewVolunteer, err = auth.ResolveVolunteer(app.Ctx, app.Database, app.Logger, identity)
	if err != nil {
		return fmt.Errorf("failed to resolve volunteer: %w", err)
	}
	app.Logger.Debug("Signed in", zap.String("volunteer_id", app.Session.VolunteerID))

	// Initialize sheets client (uses the same token)
	app.SheetsClient, err = sheetsclient.NewClientWithToken(app.Ctx, oauthConfig, token)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	// Initialize gmail client (uses the same token)
	if app.Cfg.RegistrationEmails {
		app.GmailClient, err = gmailclient.NewClient(app.Ctx, app.OAuthCfg, token, app.Cfg.GmailSender)
		if err != nil {
			return fmt.Errorf("failed to create gmail client: %w", err)
		}
	}

	return nil
}

func closeApp() {
	if app.Database != nil {
		app.Database.Close()
		app.Database = nil
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
