package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/auth"
	"github.com/jakechorley/volunteer-hub/pkg/core/chat"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var alice = model.Session{VolunteerID: "vol-1", Email: "alice@example.com", Name: "Alice"}

// fakeStore is an in-memory store for a handful of events. Methods it does not
// implement panic through the nil embedded Store, which Recoverer turns into a 500.
type fakeStore struct {
	Store

	mu            sync.Mutex
	volunteers    map[string]db.Volunteer
	events        []db.Event
	registrations map[string]map[int64]db.Registration
	tasks         map[int64]db.Task
	messages      []db.ChatMessage
	completed     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		volunteers: map[string]db.Volunteer{
			"vol-1": {ID: "vol-1", Email: "alice@example.com", FullName: "Alice", OnboardingStep: 3, OnboardingCompleted: true},
		},
		registrations: map[string]map[int64]db.Registration{},
		tasks:         map[int64]db.Task{},
	}
}

func (f *fakeStore) register(volunteerID string, eventID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registrations[volunteerID] == nil {
		f.registrations[volunteerID] = map[int64]db.Registration{}
	}
	f.registrations[volunteerID][eventID] = db.Registration{
		VolunteerID: volunteerID,
		EventID:     eventID,
		Status:      string(model.StatusRegistered),
		UpdatedAt:   time.Now().Add(-time.Hour),
	}
}

func (f *fakeStore) GetVolunteer(ctx context.Context, id string) (*db.Volunteer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.volunteers[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &v, nil
}

func (f *fakeStore) GetVolunteerByEmail(ctx context.Context, email string) (*db.Volunteer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.volunteers {
		if v.Email == email {
			return &v, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) InsertVolunteer(ctx context.Context, volunteer *db.Volunteer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volunteers[volunteer.ID] = *volunteer
	return nil
}

func (f *fakeStore) GetEvent(ctx context.Context, id int64) (*db.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) ListEventsForVolunteer(ctx context.Context, volunteerID string) ([]db.ListedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]db.ListedEvent, 0, len(f.events))
	for _, e := range f.events {
		listed := db.ListedEvent{Event: e}
		if reg, ok := f.registrations[volunteerID][e.ID]; ok {
			status := reg.Status
			listed.RegistrationStatus = &status
		}
		out = append(out, listed)
	}
	return out, nil
}

func (f *fakeStore) GetRegistration(ctx context.Context, volunteerID string, eventID int64) (*db.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[volunteerID][eventID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &reg, nil
}

func (f *fakeStore) UpsertRegistration(ctx context.Context, registration *db.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registrations[registration.VolunteerID] == nil {
		f.registrations[registration.VolunteerID] = map[int64]db.Registration{}
	}
	f.registrations[registration.VolunteerID][registration.EventID] = *registration
	return nil
}

func (f *fakeStore) CountRegisteredEvents(ctx context.Context, volunteerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, reg := range f.registrations[volunteerID] {
		if reg.Status == string(model.StatusRegistered) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountCompletedTasks(ctx context.Context, volunteerID string) (int, error) {
	return f.completed, nil
}

func (f *fakeStore) GetTask(ctx context.Context, id int64) (*db.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &t, nil
}

func (f *fakeStore) ClaimTask(ctx context.Context, taskID int64, volunteerID, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tasks[taskID]
	if t.VolunteerID != nil {
		return db.ErrConflict
	}
	t.VolunteerID, t.VolunteerEmail = &volunteerID, &email
	t.TaskStatus = string(model.TaskAssigned)
	f.tasks[taskID] = t
	return nil
}

func (f *fakeStore) ListChatMessages(ctx context.Context, eventID int64) ([]db.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.ChatMessage
	for _, m := range f.messages {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertChatMessage(ctx context.Context, message *db.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	message.ID = int64(len(f.messages) + 1)
	f.messages = append(f.messages, *message)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *fakeNotifier) SendRegistrationConfirmation(to, name string, event model.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to+":"+event.Title)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:   "postgres://localhost/test",
		HTTPAddr:      "127.0.0.1:0",
		JWTSecret:     testSecret,
		SessionTTL:    time.Hour,
		DefaultWindow: "all",
	}
}

func newTestServer(t *testing.T, store *fakeStore, cfg *config.Config, opts Options) (*Server, string) {
	t.Helper()
	sessions := auth.NewSessions(testSecret, time.Hour)
	broker := chat.NewBroker(zap.NewNop())
	t.Cleanup(broker.Close)

	token, _, err := sessions.Issue(alice)
	require.NoError(t, err)

	return NewServer(store, sessions, broker, cfg, zap.NewNop(), opts), token
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), fmt.Sprintf("body: %s", rec.Body.String()))
	return v
}
