package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/volunteer-hub/pkg/api"
	"github.com/jakechorley/volunteer-hub/pkg/auth"
	"github.com/jakechorley/volunteer-hub/pkg/clients/gmailclient"
	"github.com/jakechorley/volunteer-hub/pkg/clients/sheetsclient"
	"github.com/jakechorley/volunteer-hub/pkg/core/chat"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/utils"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and realtime chat stream",
		Long: `Run the HTTP API. Volunteers sign in through /auth/login when publicURL is set.

Chat messages inserted by any client are relayed to stream subscribers through
Postgres notifications. History export and registration emails use the token
cached by 'login' for this environment.`,
		Args:        cobra.NoArgs,
		Annotations: noAuth,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Cfg.RequireServer(); err != nil {
				return err
			}

			sessions := auth.NewSessions(app.Cfg.JWTSecret, app.Cfg.SessionTTL)
			broker := chat.NewBroker(app.Logger)
			defer broker.Close()

			opts, err := serverOptions(app)
			if err != nil {
				return err
			}

			server := api.NewServer(app.Database, sessions, broker, app.Cfg, app.Logger, opts)

			g, gctx := errgroup.WithContext(app.Ctx)
			g.Go(func() error {
				return server.ListenAndServe(gctx)
			})
			g.Go(func() error {
				return app.Database.ListenChatMessages(gctx, func(m db.ChatMessage) {
					broker.Publish(m.Model())
				})
			})

			return g.Wait()
		},
	}
}

// serverOptions wires the optional integrations available to the API
func serverOptions(app *AppContext) (api.Options, error) {
	var opts api.Options

	if app.Cfg.PublicURL != "" {
		login, err := utils.GetWebOAuthConfig(app.OAuthCfg, app.Cfg.PublicURL+"/auth/callback")
		if err != nil {
			return opts, fmt.Errorf("failed to build web login config: %w", err)
		}
		opts.Login = login
	} else {
		app.Logger.Warn("publicURL not set, web login disabled")
	}

	token, err := utils.LoadTokenFromFile(app.Env)
	if err != nil {
		return opts, fmt.Errorf("failed to load cached token: %w", err)
	}
	if token == nil {
		app.Logger.Warn("No cached token, history export and registration emails disabled", zap.String("env", app.Env))
		return opts, nil
	}

	oauthConfig, err := utils.GetOAuthConfig(app.OAuthCfg)
	if err != nil {
		return opts, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	sheets, err := sheetsclient.NewClientWithToken(app.Ctx, oauthConfig, token)
	if err != nil {
		return opts, fmt.Errorf("failed to create sheets client: %w", err)
	}
	opts.Publisher = sheets

	if app.Cfg.RegistrationEmails {
		gmail, err := gmailclient.NewClient(app.Ctx, app.OAuthCfg, token, app.Cfg.GmailSender)
		if err != nil {
			return opts, fmt.Errorf("failed to create gmail client: %w", err)
		}
		opts.Notifier = gmail
	}

	return opts, nil
}
