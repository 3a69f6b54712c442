package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const sessionCookie = "volunteer_hub_session"

type sessionKey struct{}

func withSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func sessionFrom(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionKey{}).(*model.Session)
	return session
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// authenticate resolves the session from a bearer token, falling back to the session cookie
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if c, err := r.Cookie(sessionCookie); err == nil {
				token = c.Value
			}
		}
		if token == "" {
			s.writeError(w, r, engagement.ErrAuthenticationRequired)
			return
		}

		session, err := s.sessions.Parse(token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// inflight tracks mutations currently being processed
type inflight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{active: make(map[string]struct{})}
}

// acquire claims key, returning false when it is already held
func (f *inflight) acquire(key string) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.active[key]; busy {
		return nil, false
	}
	f.active[key] = struct{}{}
	return func() {
		f.mu.Lock()
		delete(f.active, key)
		f.mu.Unlock()
	}, true
}

// guard rejects a mutation while an identical one from the same session is in flight
func (s *Server) guard(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFrom(r.Context())
			if session == nil {
				s.writeError(w, r, engagement.ErrAuthenticationRequired)
				return
			}

			key := session.VolunteerID + " " + action + " " + r.URL.Path
			release, ok := s.inflight.acquire(key)
			if !ok {
				s.logger.Debug("Duplicate submission rejected", zap.String("action", action), zap.String("volunteer_id", session.VolunteerID))
				writeJSON(w, http.StatusConflict, errorResponse{Error: "a submission is already in progress"})
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
