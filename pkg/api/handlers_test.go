package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-hub/pkg/auth"
	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/profile"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func eventsFixture(store *fakeStore) {
	now := time.Now()
	store.events = []db.Event{
		{ID: 1, Title: "Beach clean", LocationName: "Southend", LocationType: "physical", Category: "environment",
			StartDate: now.Add(48 * time.Hour), EndDate: now.Add(51 * time.Hour), Status: "upcoming"},
		{ID: 2, Title: "Online tutoring", LocationName: "Zoom", LocationType: "virtual", Category: "education",
			StartDate: now.Add(72 * time.Hour), EndDate: now.Add(74 * time.Hour), Status: "upcoming"},
		{ID: 3, Title: "Bake sale", LocationName: "Hall", LocationType: "physical", Category: "fundraising",
			StartDate: now.Add(-72 * time.Hour), EndDate: now.Add(-70 * time.Hour), Status: "completed"},
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", engagement.Invalid("rating", "out of range"), http.StatusBadRequest},
		{"confirmation", engagement.ErrConfirmationRequired, http.StatusBadRequest},
		{"unauthenticated", engagement.ErrAuthenticationRequired, http.StatusUnauthorized},
		{"invalid token", fmt.Errorf("%w: expired", auth.ErrInvalidToken), http.StatusUnauthorized},
		{"not registered", fmt.Errorf("event 3: %w", engagement.ErrNotRegistered), http.StatusForbidden},
		{"not assignee", engagement.ErrNotAssignee, http.StatusForbidden},
		{"step locked", profile.ErrStepLocked, http.StatusForbidden},
		{"already assigned", engagement.ErrTaskAlreadyAssigned, http.StatusConflict},
		{"registration closed", engagement.ErrRegistrationClosed, http.StatusConflict},
		{"batch", &engagement.BatchError{FailedTaskID: 2, Err: engagement.Remote("update task", errors.New("boom"))}, http.StatusConflict},
		{"remote", engagement.Remote("load events", errors.New("boom")), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	store := newFakeStore()
	store.completed = 4
	srv, token := newTestServer(t, store, testConfig(), Options{})
	handler := srv.Handler()

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/stats", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/stats", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, _, err := auth.NewSessions("ffffffffffffffffffffffffffffffff", time.Hour).Issue(alice)
		require.NoError(t, err)
		rec := doRequest(t, handler, http.MethodGet, "/api/stats", other, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/stats", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, statsView{CompletedTasks: 4}, decodeBody[statsView](t, rec))
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGuard_RejectsDuplicateInFlight(t *testing.T) {
	srv, _ := newTestServer(t, newFakeStore(), testConfig(), Options{})

	entered := make(chan struct{})
	unblock := make(chan struct{})
	handler := srv.guard("claim-tasks")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-unblock
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/tasks/claim", nil)
		session := alice
		return req.WithContext(withSession(req.Context(), &session))
	}

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(first, newReq())
		close(done)
	}()
	<-entered

	duplicate := httptest.NewRecorder()
	handler.ServeHTTP(duplicate, newReq())
	assert.Equal(t, http.StatusConflict, duplicate.Code)

	close(unblock)
	<-done
	assert.Equal(t, http.StatusOK, first.Code)

	go func() { <-entered }()
	again := httptest.NewRecorder()
	handler.ServeHTTP(again, newReq())
	assert.Equal(t, http.StatusOK, again.Code, "released after the first request finished")
}

func TestInflight_KeysAreIndependent(t *testing.T) {
	f := newInflight()

	release, ok := f.acquire("vol-1 register /api/events/1/registration")
	require.True(t, ok)

	_, ok = f.acquire("vol-1 register /api/events/2/registration")
	assert.True(t, ok, "different event")
	_, ok = f.acquire("vol-2 register /api/events/1/registration")
	assert.True(t, ok, "different volunteer")
	_, ok = f.acquire("vol-1 register /api/events/1/registration")
	assert.False(t, ok)

	release()
	_, ok = f.acquire("vol-1 register /api/events/1/registration")
	assert.True(t, ok)
}

func TestBrowseEvents(t *testing.T) {
	store := newFakeStore()
	eventsFixture(store)
	store.register("vol-1", 1)
	srv, token := newTestServer(t, store, testConfig(), Options{})
	handler := srv.Handler()

	tests := []struct {
		name     string
		query    string
		expected []int64
	}{
		{"no filters", "", []int64{1, 2, 3}},
		{"registered only", "?status=registered", []int64{1}},
		{"both statuses", "?status=registered,not-registered", []int64{1, 2, 3}},
		{"category", "?category=education&category=fundraising", []int64{2, 3}},
		{"location", "?location=Virtual", []int64{2}},
		{"next 7 days", "?window=next7days", []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodGet, "/api/events"+tt.query, token, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			events := decodeBody[[]eventView](t, rec)
			ids := make([]int64, 0, len(events))
			for _, e := range events {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}

	t.Run("event view", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/events?status=registered", token, nil)
		events := decodeBody[[]eventView](t, rec)
		require.Len(t, events, 1)
		assert.True(t, events[0].Registered)
		assert.Equal(t, "upcoming", events[0].Status)
		assert.Equal(t, "physical", events[0].LocationType)
	})

	t.Run("invalid filter", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/events?location=hybrid", token, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "location", decodeBody[errorResponse](t, rec).Field)
	})
}

func TestBrowseEvents_ConfigDefaults(t *testing.T) {
	store := newFakeStore()
	eventsFixture(store)
	cfg := testConfig()
	cfg.EventCategories = []string{"environment"}
	srv, token := newTestServer(t, store, cfg, Options{})

	rec := doRequest(t, srv.Handler(), http.MethodGet, "/api/events", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeBody[[]eventView](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "Beach clean", events[0].Title)
}

func TestRegister(t *testing.T) {
	store := newFakeStore()
	eventsFixture(store)
	cfg := testConfig()
	cfg.RegistrationEmails = true
	notifier := &fakeNotifier{}
	srv, token := newTestServer(t, store, cfg, Options{Notifier: notifier})
	handler := srv.Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/events/2/registration", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reg := decodeBody[registrationView](t, rec)
	assert.Equal(t, "registered", reg.Status)
	assert.Equal(t, "Submit", reg.FeedbackLabel)
	assert.Equal(t, []string{"alice@example.com:Online tutoring"}, notifier.sent)

	rec = doRequest(t, handler, http.MethodPost, "/api/events/3/registration", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "past event")

	rec = doRequest(t, handler, http.MethodPost, "/api/events/abc/registration", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, handler, http.MethodDelete, "/api/events/2/registration", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "not-registered", decodeBody[registrationView](t, rec).Status)
}

func TestRegister_EmailsDisabled(t *testing.T) {
	store := newFakeStore()
	eventsFixture(store)
	notifier := &fakeNotifier{}
	srv, token := newTestServer(t, store, testConfig(), Options{Notifier: notifier})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/events/1/registration", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, notifier.sent)
}

func TestClaimTasks(t *testing.T) {
	store := newFakeStore()
	eventsFixture(store)
	store.register("vol-1", 1)
	other := "vol-2"
	otherEmail := "bob@example.com"
	store.tasks[10] = db.Task{ID: 10, EventID: 1, Description: "Collect litter", TaskStatus: "unassigned"}
	store.tasks[11] = db.Task{ID: 11, EventID: 1, Description: "Hand out gloves", TaskStatus: "assigned",
		VolunteerID: &other, VolunteerEmail: &otherEmail}
	store.tasks[20] = db.Task{ID: 20, EventID: 2, Description: "Prepare worksheet", TaskStatus: "unassigned"}

	srv, token := newTestServer(t, store, testConfig(), Options{})
	handler := srv.Handler()

	t.Run("partial success reports failures", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/tasks/claim", token, claimRequest{TaskIDs: []int64{10, 11, 20}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decodeBody[claimResponse](t, rec)
		assert.Equal(t, []int64{10}, resp.Claimed)
		require.Len(t, resp.Errors, 2)
		assert.Contains(t, resp.Errors[0], "task 11")
		assert.Contains(t, resp.Errors[1], "task 20")
	})

	t.Run("nothing claimed", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/tasks/claim", token, claimRequest{TaskIDs: []int64{11}})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("empty selection", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/tasks/claim", token, claimRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPost, "/api/tasks/claim", token, map[string]any{"tasks": []int{10}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSendChat(t *testing.T) {
	store := newFakeStore()
	eventsFixture(store)
	store.register("vol-1", 1)
	srv, token := newTestServer(t, store, testConfig(), Options{})
	handler := srv.Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/events/1/chat", token, chatRequest{Body: "  See you there  "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	msg := decodeBody[chatMessageView](t, rec)
	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "See you there", msg.Body)
	assert.Equal(t, "Alice", msg.AuthorName)
	assert.NotEmpty(t, msg.ClientRef)
	assert.False(t, msg.Pending)

	rec = doRequest(t, handler, http.MethodPost, "/api/events/2/chat", token, chatRequest{Body: "hello"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "not registered")

	rec = doRequest(t, handler, http.MethodGet, "/api/events/1/chat", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]chatMessageView](t, rec), 1)
}

func TestUpdateAvailability(t *testing.T) {
	store := newFakeStore()
	store.volunteers["vol-1"] = db.Volunteer{ID: "vol-1", Email: "alice@example.com", OnboardingStep: 2}
	srv, token := newTestServer(t, store, testConfig(), Options{})
	handler := srv.Handler()

	body := availabilityRequest{Start: "2025-07-01", TimePreference: "morning", Days: []string{"monday"}}

	rec := doRequest(t, handler, http.MethodPut, "/api/availability", token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code, "onboarding not finished")

	rec = doRequest(t, handler, http.MethodPut, "/api/onboarding/availability", token, availabilityRequest{Start: "July"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "startDate", decodeBody[errorResponse](t, rec).Field)
}

func TestExportHistory_NotConfigured(t *testing.T) {
	srv, token := newTestServer(t, newFakeStore(), testConfig(), Options{})
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/api/history/export", token, nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestAvailabilityRequest_ToModel(t *testing.T) {
	a, err := availabilityRequest{Start: "2025-07-01", End: "2025-08-31", TimePreference: "evening", Days: []string{"friday"}}.toModel()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), a.Start)
	require.NotNil(t, a.End)
	assert.Equal(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), *a.End)

	_, err = availabilityRequest{Start: "2025-07-01", End: "soon"}.toModel()
	var vErr *engagement.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "endDate", vErr.Field)
}
