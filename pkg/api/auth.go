package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/auth"
	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
)

const (
	stateCookie = "volunteer_hub_oauth_state"
	stateTTL    = 10 * time.Minute
)

type sessionResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	VolunteerID string    `json:"volunteerId"`
	Email       string    `json:"email"`
	Created     bool      `json:"created"`
}

// handleLogin redirects the browser to the identity provider
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.login == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "browser sign-in is not configured"})
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.login.AuthCodeURL(state), http.StatusFound)
}

// handleCallback completes sign-in: it exchanges the code, resolves the volunteer
// (creating one on first sign-in) and issues a session token
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	if s.login == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "browser sign-in is not configured"})
		return
	}

	q := r.URL.Query()
	if errMsg := q.Get("error"); errMsg != "" {
		s.logger.Warn("Sign-in refused by provider", zap.String("error", errMsg))
		s.writeError(w, r, engagement.ErrAuthenticationRequired)
		return
	}

	stateC, err := r.Cookie(stateCookie)
	if err != nil || stateC.Value == "" || stateC.Value != q.Get("state") {
		s.writeError(w, r, engagement.Invalid("state", "sign-in state mismatch, please try again"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth", MaxAge: -1})

	code := q.Get("code")
	if code == "" {
		s.writeError(w, r, engagement.Invalid("code", "missing authorization code"))
		return
	}

	token, err := s.login.Exchange(r.Context(), code)
	if err != nil {
		s.writeError(w, r, engagement.Remote("exchange authorization code", err))
		return
	}

	identity, err := s.identify(r.Context(), s.login, token)
	if err != nil {
		s.writeError(w, r, engagement.Remote("fetch identity", err))
		return
	}

	session, created, err := auth.ResolveVolunteer(r.Context(), s.store, s.logger, identity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	signed, expires, err := s.sessions.Issue(*session)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("Volunteer signed in", zap.String("volunteer_id", session.VolunteerID), zap.Bool("created", created))

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:       signed,
		ExpiresAt:   expires,
		VolunteerID: session.VolunteerID,
		Email:       session.Email,
		Created:     created,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}
