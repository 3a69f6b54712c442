package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

func TestVolunteerModel(t *testing.T) {
	age := 30
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	row := Volunteer{
		ID:                    "vol-1",
		Email:                 "alice@example.com",
		FullName:              "Alice",
		Age:                   &age,
		WorkTypes:             []string{"tech"},
		AvailabilityStartDate: &start,
		TimePreference:        "morning",
		DaysAvailable:         []string{"monday"},
		OnboardingStep:        3,
		OnboardingCompleted:   true,
		SkillIDs:              []int64{1, 2},
	}

	v := row.Model()
	assert.Equal(t, 30, v.Age)
	require.NotNil(t, v.Availability)
	assert.Equal(t, start, v.Availability.Start)
	assert.Equal(t, []string{"monday"}, v.Availability.Days)
	assert.Equal(t, []int64{1, 2}, v.SkillIDs)

	back := VolunteerFromModel(v)
	assert.Equal(t, row, back)
}

func TestVolunteerModel_NotOnboarded(t *testing.T) {
	v := Volunteer{ID: "vol-1", Email: "bob@example.com", OnboardingStep: 1}.Model()
	assert.Nil(t, v.Availability)
	assert.Zero(t, v.Age)

	row := VolunteerFromModel(v)
	assert.Nil(t, row.Age)
	assert.Nil(t, row.AvailabilityStartDate)
	assert.NotNil(t, row.WorkTypes, "text[] columns are NOT NULL")
	assert.NotNil(t, row.DaysAvailable)
}

func TestEventModel(t *testing.T) {
	row := Event{
		ID:           5,
		Title:        "Beach clean",
		LocationName: "Southend",
		LocationType: "Physical",
		Category:     "Environment",
		Status:       "cancelled",
	}

	e := row.Model()
	assert.Equal(t, model.LocationPhysical, e.Location.Type)
	assert.Equal(t, model.CategoryEnvironment, e.Category)
	assert.True(t, e.Cancelled)
}

func TestListedEventStatus(t *testing.T) {
	registered := "registered"
	assert.Equal(t, model.StatusRegistered, ListedEvent{RegistrationStatus: &registered}.Status())
	assert.Equal(t, model.RegistrationStatus(""), ListedEvent{}.Status())
}

func TestRegistrationRoundTrip(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	reg := model.Registration{
		VolunteerID: "vol-1",
		EventID:     5,
		Status:      model.StatusRegistered,
		UpdatedAt:   at,
		Feedback:    "Great",
		Rating:      4,
		FeedbackAt:  &at,
	}
	assert.Equal(t, reg, RegistrationFromModel(reg).Model())

	empty := RegistrationFromModel(model.Registration{VolunteerID: "vol-1", EventID: 5, Status: model.StatusRegistered})
	assert.Nil(t, empty.Feedback)
	assert.Nil(t, empty.Rating)
}

func TestTaskModel(t *testing.T) {
	volunteerID := "vol-1"
	email := "alice@example.com"

	task := Task{
		ID:                 9,
		EventID:            5,
		Description:        "Hand out gloves",
		TaskStatus:         "in_progress",
		VolunteerID:        &volunteerID,
		VolunteerEmail:     &email,
		RequiredSkillIDs:   []int64{3, 1},
		RequiredSkillNames: []string{"Cooking", "First aid"},
	}.Model()

	assert.Equal(t, model.TaskInProgress, task.Status)
	assert.Equal(t, "vol-1", task.AssigneeID)
	assert.Equal(t, []model.Skill{{ID: 3, Name: "Cooking"}, {ID: 1, Name: "First aid"}}, task.RequiredSkills)

	unassigned := Task{ID: 10, TaskStatus: "unassigned"}.Model()
	assert.False(t, unassigned.IsAssigned())
	assert.Empty(t, unassigned.RequiredSkills)
}

func TestChatMessageRoundTrip(t *testing.T) {
	msg := model.ChatMessage{
		ID:          1,
		ClientRef:   "ref-1",
		EventID:     5,
		AuthorID:    "vol-1",
		AuthorName:  "Alice",
		AuthorEmail: "alice@example.com",
		Body:        "hello",
		CreatedAt:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, msg, ChatMessageFromModel(msg).Model())
}
