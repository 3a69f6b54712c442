package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

type mockNotifier struct {
	sent []string
	err  error
}

func (n *mockNotifier) SendRegistrationConfirmation(to, name string, event model.Event) error {
	n.sent = append(n.sent, to+":"+event.Title)
	return n.err
}

func eventTitles(events []engagement.ListedEvent) []string {
	titles := make([]string, 0, len(events))
	for _, e := range events {
		titles = append(titles, e.Event.Title)
	}
	return titles
}

func TestBrowseEvents(t *testing.T) {
	useNow(t, testNow)

	tests := []struct {
		name     string
		criteria engagement.FilterSet
		want     []string
	}{
		{
			name: "no filters",
			want: []string{"Beach clean", "Food bank", "Tutoring", "Fundraiser"},
		},
		{
			name:     "registered only",
			criteria: engagement.FilterSet{RegistrationStatuses: []model.RegistrationStatus{model.StatusRegistered}},
			want:     []string{"Beach clean", "Tutoring"},
		},
		{
			name: "both registration flags is no constraint",
			criteria: engagement.FilterSet{RegistrationStatuses: []model.RegistrationStatus{
				model.StatusRegistered, model.StatusNotRegistered,
			}},
			want: []string{"Beach clean", "Food bank", "Tutoring", "Fundraiser"},
		},
		{
			name:     "virtual",
			criteria: engagement.FilterSet{LocationTypes: []model.LocationType{model.LocationVirtual}},
			want:     []string{"Tutoring", "Fundraiser"},
		},
		{
			name: "next 7 days and physical",
			criteria: engagement.FilterSet{
				LocationTypes: []model.LocationType{model.LocationPhysical},
				Window:        engagement.TimeWindow{Kind: engagement.WindowNext7Days},
			},
			want: []string{"Beach clean", "Food bank"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := BrowseEvents(context.Background(), fixtureDB(), zap.NewNop(), alice, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eventTitles(events))
		})
	}
}

func TestBrowseEvents_Errors(t *testing.T) {
	useNow(t, testNow)

	_, err := BrowseEvents(context.Background(), fixtureDB(), zap.NewNop(), nil, engagement.FilterSet{})
	assert.ErrorIs(t, err, engagement.ErrAuthenticationRequired)

	m := fixtureDB()
	m.errs["ListEventsForVolunteer"] = errStore
	_, err = BrowseEvents(context.Background(), m, zap.NewNop(), alice, engagement.FilterSet{})
	var remote *engagement.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.ErrorIs(t, err, errStore)
}

func TestRegisterForEvent(t *testing.T) {
	useNow(t, testNow)
	m := fixtureDB()
	notifier := &mockNotifier{}

	reg, err := RegisterForEvent(context.Background(), m, notifier, zap.NewNop(), alice, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRegistered, reg.Status)
	assert.Equal(t, testNow, reg.UpdatedAt)

	stored := m.registrations[regKey{"vol-1", 2}]
	assert.Equal(t, "registered", stored.Status)
	assert.Equal(t, []string{"alice@example.com:Food bank"}, notifier.sent)
}

func TestRegisterForEvent_ReRegistrationKeepsFeedback(t *testing.T) {
	useNow(t, testNow)
	m := fixtureDB()
	m.register("vol-1", 2, model.StatusNotRegistered)
	withdrawn := m.registrations[regKey{"vol-1", 2}]
	withdrawn.Feedback = ptr("Lovely team")
	withdrawn.Rating = ptr(5)
	m.registrations[regKey{"vol-1", 2}] = withdrawn

	reg, err := RegisterForEvent(context.Background(), m, nil, zap.NewNop(), alice, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRegistered, reg.Status)
	assert.Equal(t, "Lovely team", reg.Feedback)
	assert.Equal(t, 5, reg.Rating)
	assert.Equal(t, 1, m.called("UpsertRegistration"))
}

func TestRegisterForEvent_AlreadyRegisteredIsNoop(t *testing.T) {
	useNow(t, testNow)
	m := fixtureDB()

	reg, err := RegisterForEvent(context.Background(), m, nil, zap.NewNop(), alice, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRegistered, reg.Status)
	assert.Zero(t, m.called("UpsertRegistration"))
}

func TestRegisterForEvent_Rejected(t *testing.T) {
	useNow(t, testNow)

	tests := []struct {
		name    string
		session *model.Session
		eventID int64
		wantErr error
	}{
		{"anonymous", nil, 2, engagement.ErrAuthenticationRequired},
		{"past event", bob, 3, engagement.ErrRegistrationClosed},
		{"already registered for a past event", alice, 3, engagement.ErrRegistrationClosed},
		{"deadline passed", alice, 4, engagement.ErrRegistrationClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fixtureDB()
			_, err := RegisterForEvent(context.Background(), m, nil, zap.NewNop(), tt.session, tt.eventID)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, m.called("UpsertRegistration"))
		})
	}

	t.Run("unknown event", func(t *testing.T) {
		_, err := RegisterForEvent(context.Background(), fixtureDB(), nil, zap.NewNop(), alice, 99)
		var invalid *engagement.ValidationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "event", invalid.Field)
	})
}

func TestRegisterForEvent_NotifierFailureIsNotFatal(t *testing.T) {
	useNow(t, testNow)
	m := fixtureDB()

	reg, err := RegisterForEvent(context.Background(), m, &mockNotifier{err: errors.New("quota exceeded")}, zap.NewNop(), alice, 2)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRegistered, reg.Status)
}

func TestRegisterForEvent_StoreFailure(t *testing.T) {
	useNow(t, testNow)
	m := fixtureDB()
	m.errs["UpsertRegistration"] = errStore
	notifier := &mockNotifier{}

	_, err := RegisterForEvent(context.Background(), m, notifier, zap.NewNop(), alice, 2)
	var remote *engagement.RemoteError
	assert.ErrorAs(t, err, &remote)
	assert.Empty(t, notifier.sent, "no confirmation for a failed registration")
}

func TestWithdrawRegistration(t *testing.T) {
	useNow(t, testNow)
	m := fixtureDB()

	reg, err := WithdrawRegistration(context.Background(), m, zap.NewNop(), alice, 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNotRegistered, reg.Status)
	assert.Equal(t, "not-registered", m.registrations[regKey{"vol-1", 1}].Status)

	_, err = WithdrawRegistration(context.Background(), m, zap.NewNop(), alice, 1)
	assert.ErrorIs(t, err, engagement.ErrNotRegistered, "already withdrawn")

	_, err = WithdrawRegistration(context.Background(), m, zap.NewNop(), alice, 2)
	assert.ErrorIs(t, err, engagement.ErrNotRegistered, "never registered")
}

func TestApplyFilterDefaults(t *testing.T) {
	cfg := &config.Config{EventCategories: []string{"community", "education"}, DefaultWindow: "next7days"}

	tests := []struct {
		name     string
		in       engagement.FilterInput
		expected engagement.FilterInput
	}{
		{
			name:     "empty input takes config defaults",
			in:       engagement.FilterInput{},
			expected: engagement.FilterInput{Categories: []string{"community", "education"}, Window: "next7days"},
		},
		{
			name:     "explicit categories and window win",
			in:       engagement.FilterInput{Categories: []string{"healthcare"}, Window: "all"},
			expected: engagement.FilterInput{Categories: []string{"healthcare"}, Window: "all"},
		},
		{
			name:     "custom bounds keep the window unset",
			in:       engagement.FilterInput{Categories: []string{"other"}, From: "2025-06-01", To: "2025-06-30"},
			expected: engagement.FilterInput{Categories: []string{"other"}, From: "2025-06-01", To: "2025-06-30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApplyFilterDefaults(cfg, tt.in))
		})
	}

	assert.Equal(t, engagement.FilterInput{Window: "all"}, ApplyFilterDefaults(nil, engagement.FilterInput{Window: "all"}))
}
