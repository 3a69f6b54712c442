package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/auth"
	"github.com/jakechorley/volunteer-hub/pkg/core/chat"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const shutdownTimeout = 10 * time.Second

// Store is every database operation the API serves
type Store interface {
	db.VolunteerStore
	db.EventStore
	db.TaskStore
	db.ChatStore
}

// Options carries the optional collaborators of a Server
type Options struct {
	// Notifier sends registration confirmations; nil disables them
	Notifier services.Notifier
	// Publisher exports history to Sheets; nil disables the export endpoint
	Publisher services.HistoryPublisher
	// Login is the OAuth config for browser sign-in; nil disables /auth
	Login *oauth2.Config
}

// Server serves the volunteer JSON API
type Server struct {
	store     Store
	sessions  *auth.Sessions
	broker    *chat.Broker
	notifier  services.Notifier
	publisher services.HistoryPublisher
	login     *oauth2.Config
	cfg       *config.Config
	logger    *zap.Logger
	inflight  *inflight

	now      func() time.Time
	identify func(ctx context.Context, oauthConfig *oauth2.Config, token *oauth2.Token) (*auth.Identity, error)
}

func NewServer(store Store, sessions *auth.Sessions, broker *chat.Broker, cfg *config.Config, logger *zap.Logger, opts Options) *Server {
	return &Server{
		store:     store,
		sessions:  sessions,
		broker:    broker,
		notifier:  opts.Notifier,
		publisher: opts.Publisher,
		login:     opts.Login,
		cfg:       cfg,
		logger:    logger,
		inflight:  newInflight(),
		now:       time.Now,
		identify:  auth.FetchIdentity,
	}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", s.handleLogin)
		r.Get("/callback", s.handleCallback)
		r.Post("/logout", s.handleLogout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/stats", s.handleStats)
		r.Get("/history", s.handleHistory)
		r.With(s.guard("export-history")).Post("/history/export", s.handleExportHistory)

		r.Get("/events", s.handleBrowseEvents)
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.With(s.guard("register")).Post("/registration", s.handleRegister)
			r.With(s.guard("withdraw")).Delete("/registration", s.handleWithdraw)
			r.With(s.guard("feedback")).Put("/feedback", s.handleFeedback)
			r.Get("/tasks", s.handleEventTasks)
			r.Get("/chat", s.handleChatHistory)
			r.With(s.guard("chat")).Post("/chat", s.handleSendChat)
			r.Get("/chat/stream", s.handleChatStream)
		})

		r.With(s.guard("claim-tasks")).Post("/tasks/claim", s.handleClaimTasks)
		r.With(s.guard("submit-tasks")).Patch("/tasks", s.handleSubmitTasks)
		r.With(s.guard("release-task")).Delete("/tasks/{taskID}", s.handleReleaseTask)

		r.Route("/onboarding", func(r chi.Router) {
			r.Use(s.guard("onboarding"))
			r.Put("/details", s.handleOnboardingDetails)
			r.Put("/preferences", s.handleOnboardingPreferences)
			r.Put("/availability", s.handleOnboardingAvailability)
		})
		r.With(s.guard("availability")).Put("/availability", s.handleUpdateAvailability)
	})

	return r
}

// ListenAndServe serves on cfg.HTTPAddr until ctx ends, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
