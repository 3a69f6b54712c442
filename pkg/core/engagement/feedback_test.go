package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

func TestValidateFeedback(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		text   string
		field  string
	}{
		{"valid low", 1, "Good", ""},
		{"valid high", 5, "Great day", ""},
		{"rating zero", 0, "Good", "rating"},
		{"rating too high", 6, "Good", "rating"},
		{"negative rating", -1, "Good", "rating"},
		{"empty text", 4, "", "feedback"},
		{"whitespace text", 4, "  \n\t", "feedback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFeedback(tt.rating, tt.text)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestApplyFeedback_CreateThenUpdate(t *testing.T) {
	reg := model.Registration{VolunteerID: "vol-alice", EventID: 7, Status: model.StatusRegistered}
	assert.Equal(t, "Submit", FeedbackLabel(reg))

	created, mode, err := ApplyFeedback(reg, 4, "  Well organised  ", now)
	require.NoError(t, err)
	assert.Equal(t, FeedbackCreate, mode)
	assert.Equal(t, 4, created.Rating)
	assert.Equal(t, "Well organised", created.Feedback)
	require.NotNil(t, created.FeedbackAt)
	assert.Equal(t, now, *created.FeedbackAt)
	assert.Equal(t, "Update", FeedbackLabel(created))

	later := now.Add(time.Hour)
	updated, mode, err := ApplyFeedback(created, 5, "Even better on reflection", later)
	require.NoError(t, err)
	assert.Equal(t, FeedbackUpdate, mode)
	assert.Equal(t, created.VolunteerID, updated.VolunteerID)
	assert.Equal(t, created.EventID, updated.EventID)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, later, *updated.FeedbackAt)
}

func TestApplyFeedback_Rejected(t *testing.T) {
	registered := model.Registration{VolunteerID: "vol-alice", EventID: 7, Status: model.StatusRegistered}
	withdrawn := model.Registration{VolunteerID: "vol-alice", EventID: 7, Status: model.StatusNotRegistered}

	t.Run("invalid rating leaves registration untouched", func(t *testing.T) {
		result, _, err := ApplyFeedback(registered, 0, "Good", now)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, registered, result)
	})

	t.Run("empty text", func(t *testing.T) {
		_, _, err := ApplyFeedback(registered, 3, "", now)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "feedback", vErr.Field)
	})

	t.Run("not registered", func(t *testing.T) {
		_, _, err := ApplyFeedback(withdrawn, 3, "Good", now)
		assert.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestFeedbackModeFor(t *testing.T) {
	at := now
	assert.Equal(t, FeedbackCreate, FeedbackModeFor(model.Registration{}))
	assert.Equal(t, FeedbackUpdate, FeedbackModeFor(model.Registration{Rating: 3}))
	assert.Equal(t, FeedbackUpdate, FeedbackModeFor(model.Registration{FeedbackAt: &at}))
}
