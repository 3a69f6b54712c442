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

type mockPublisher struct {
	spreadsheetID string
	published     *model.History
	err           error
}

func (p *mockPublisher) PublishHistory(spreadsheetID string, history *model.History) error {
	p.spreadsheetID = spreadsheetID
	p.published = history
	return p.err
}

func TestBuildHistory(t *testing.T) {
	useNow(t, testNow)
	m := fixtureDB()
	m.register("vol-1", 2, model.StatusNotRegistered)
	tutoring := m.registrations[regKey{"vol-1", 3}]
	tutoring.Feedback = ptr("Rewarding")
	tutoring.Rating = ptr(5)
	m.registrations[regKey{"vol-1", 3}] = tutoring

	history, err := BuildHistory(context.Background(), m, zap.NewNop(), alice)
	require.NoError(t, err)

	assert.Equal(t, "Alice Smith", history.VolunteerName)
	assert.Equal(t, testNow, history.ExportedAt)
	require.Len(t, history.Rows, 3)

	assert.Equal(t, "Tutoring", history.Rows[0].EventTitle, "oldest first")
	assert.Equal(t, 5, history.Rows[0].Rating)
	assert.Equal(t, "Rewarding", history.Rows[0].Feedback)
	require.Len(t, history.Rows[0].Tasks, 1)
	assert.Equal(t, model.TaskComplete, history.Rows[0].Tasks[0].Status)

	assert.Equal(t, "Food bank", history.Rows[1].EventTitle)
	assert.Equal(t, model.StatusNotRegistered, history.Rows[1].Status)

	assert.Equal(t, "Beach clean", history.Rows[2].EventTitle)
	require.Len(t, history.Rows[2].Tasks, 1)
}

func TestExportHistory(t *testing.T) {
	useNow(t, testNow)
	cfg := &config.Config{HistorySheetID: "sheet-1"}
	publisher := &mockPublisher{}

	history, err := ExportHistory(context.Background(), fixtureDB(), publisher, cfg, zap.NewNop(), alice)
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", publisher.spreadsheetID)
	assert.Same(t, history, publisher.published)
}

func TestExportHistory_Errors(t *testing.T) {
	useNow(t, testNow)

	t.Run("no sheet configured", func(t *testing.T) {
		publisher := &mockPublisher{}
		_, err := ExportHistory(context.Background(), fixtureDB(), publisher, &config.Config{}, zap.NewNop(), alice)
		assert.Error(t, err)
		assert.Nil(t, publisher.published)
	})

	t.Run("publish failure", func(t *testing.T) {
		publisher := &mockPublisher{err: errors.New("quota exceeded")}
		_, err := ExportHistory(context.Background(), fixtureDB(), publisher, &config.Config{HistorySheetID: "s"}, zap.NewNop(), alice)
		var remote *engagement.RemoteError
		assert.ErrorAs(t, err, &remote)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := ExportHistory(context.Background(), fixtureDB(), &mockPublisher{}, &config.Config{HistorySheetID: "s"}, zap.NewNop(), nil)
		assert.ErrorIs(t, err, engagement.ErrAuthenticationRequired)
	})
}
