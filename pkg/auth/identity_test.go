package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

type mockResolver struct {
	volunteers map[string]db.Volunteer
	inserted   []db.Volunteer
	lookupErr  error
	insertErr  error
}

func (m *mockResolver) GetVolunteerByEmail(ctx context.Context, email string) (*db.Volunteer, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	v, ok := m.volunteers[email]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &v, nil
}

func (m *mockResolver) InsertVolunteer(ctx context.Context, volunteer *db.Volunteer) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, *volunteer)
	return nil
}

func TestResolveVolunteer_Existing(t *testing.T) {
	store := &mockResolver{volunteers: map[string]db.Volunteer{
		"alice@example.com": {ID: "vol-1", Email: "alice@example.com", FullName: "Alice", OnboardingStep: 3},
	}}

	session, created, err := ResolveVolunteer(context.Background(), store, zap.NewNop(),
		&Identity{Subject: "g-1", Email: " Alice@Example.com ", Name: "Alice G"})

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "vol-1", session.VolunteerID)
	assert.Equal(t, "Alice", session.Name, "stored profile name wins over provider name")
	assert.Empty(t, store.inserted)
}

func TestResolveVolunteer_FirstSignInCreatesVolunteer(t *testing.T) {
	store := &mockResolver{volunteers: map[string]db.Volunteer{}}

	session, created, err := ResolveVolunteer(context.Background(), store, zap.NewNop(),
		&Identity{Subject: "g-2", Email: "bob@example.com", Name: "Bob"})

	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, store.inserted, 1)

	row := store.inserted[0]
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, row.ID, session.VolunteerID)
	assert.Equal(t, "bob@example.com", row.Email)
	assert.Equal(t, "Bob", row.FullName)
	assert.Equal(t, 1, row.OnboardingStep)
	assert.False(t, row.OnboardingCompleted)
}

func TestResolveVolunteer_Errors(t *testing.T) {
	t.Run("missing email", func(t *testing.T) {
		_, _, err := ResolveVolunteer(context.Background(), &mockResolver{}, zap.NewNop(), &Identity{Subject: "g-3"})
		assert.ErrorIs(t, err, engagement.ErrAuthenticationRequired)
	})

	t.Run("lookup failure", func(t *testing.T) {
		store := &mockResolver{lookupErr: errors.New("connection refused")}
		_, _, err := ResolveVolunteer(context.Background(), store, zap.NewNop(), &Identity{Email: "a@example.com"})

		var remote *engagement.RemoteError
		assert.ErrorAs(t, err, &remote)
	})

	t.Run("insert failure", func(t *testing.T) {
		store := &mockResolver{volunteers: map[string]db.Volunteer{}, insertErr: errors.New("duplicate key")}
		_, created, err := ResolveVolunteer(context.Background(), store, zap.NewNop(), &Identity{Email: "a@example.com"})

		assert.False(t, created)
		var remote *engagement.RemoteError
		assert.ErrorAs(t, err, &remote)
	})
}
