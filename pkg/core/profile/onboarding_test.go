package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

func TestApplyDetails(t *testing.T) {
	v := model.Volunteer{ID: "vol-1", Email: "alice@example.com", OnboardingStep: 1}

	updated, err := ApplyDetails(v, Details{FullName: " Alice Smith ", Mobile: "07700 900123", Age: 34, Organization: "Ilford Rotary"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.FullName)
	assert.Equal(t, 34, updated.Age)
	assert.Equal(t, StepPreferences, updated.OnboardingStep)
	assert.False(t, updated.OnboardingCompleted)

	// Revisiting step 1 does not move a volunteer backwards
	later := updated
	later.OnboardingStep = 3
	again, err := ApplyDetails(later, Details{FullName: "Alice", Mobile: "1", Age: 34})
	require.NoError(t, err)
	assert.Equal(t, 3, again.OnboardingStep)
}

func TestApplyDetails_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		details Details
		field   string
	}{
		{"missing name", Details{Mobile: "1", Age: 20}, "fullName"},
		{"blank name", Details{FullName: "   ", Mobile: "1", Age: 20}, "fullName"},
		{"missing mobile", Details{FullName: "A", Age: 20}, "mobile"},
		{"too young", Details{FullName: "A", Mobile: "1", Age: 15}, "age"},
		{"too old", Details{FullName: "A", Mobile: "1", Age: 121}, "age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := model.Volunteer{ID: "vol-1", OnboardingStep: 1}
			result, err := ApplyDetails(v, tt.details)

			var vErr *engagement.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, v, result)
		})
	}
}

func TestApplyWorkPreferences(t *testing.T) {
	v := model.Volunteer{ID: "vol-1", OnboardingStep: StepPreferences}

	updated, err := ApplyWorkPreferences(v, WorkPreferences{
		WorkTypes: []string{"education", "tech"},
		Virtual:   true,
		InPerson:  true,
		PlaceName: " Ilford ",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"education", "tech"}, updated.WorkTypes)
	assert.Equal(t, "virtual, Ilford", updated.PreferredLocation)
	assert.Equal(t, StepAvailability, updated.OnboardingStep)
	assert.False(t, updated.OnboardingCompleted, "step 2 does not complete onboarding")
}

func TestApplyWorkPreferences_Invalid(t *testing.T) {
	v := model.Volunteer{ID: "vol-1", OnboardingStep: StepPreferences}

	tests := []struct {
		name  string
		prefs WorkPreferences
		field string
	}{
		{"no work types", WorkPreferences{Virtual: true}, "workTypes"},
		{"unknown work type", WorkPreferences{WorkTypes: []string{"sports"}, Virtual: true}, "workTypes[0]"},
		{"no location type", WorkPreferences{WorkTypes: []string{"admin"}}, "location"},
		{"in person without place", WorkPreferences{WorkTypes: []string{"admin"}, InPerson: true, PlaceName: "  "}, "placeName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyWorkPreferences(v, tt.prefs)
			var vErr *engagement.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestStepGating(t *testing.T) {
	fresh := model.Volunteer{ID: "vol-1", OnboardingStep: 1}

	_, err := ApplyWorkPreferences(fresh, WorkPreferences{WorkTypes: []string{"admin"}, Virtual: true})
	assert.ErrorIs(t, err, ErrStepLocked)

	_, err = ApplyAvailability(fresh, model.Availability{Start: time.Now(), TimePreference: "morning", Days: []string{"monday"}})
	assert.ErrorIs(t, err, ErrStepLocked)

	assert.NoError(t, RequireStep(fresh, StepDetails))
	assert.NoError(t, RequireStep(model.Volunteer{OnboardingCompleted: true}, StepAvailability))
}

func TestOnboardingFlow(t *testing.T) {
	v := model.Volunteer{ID: "vol-1", Email: "alice@example.com", OnboardingStep: 1}

	v, err := ApplyDetails(v, Details{FullName: "Alice", Mobile: "0123", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, 2, v.OnboardingStep)

	v, err = ApplyWorkPreferences(v, WorkPreferences{WorkTypes: []string{"community"}, Virtual: true})
	require.NoError(t, err)
	assert.Equal(t, 3, v.OnboardingStep)
	assert.Equal(t, "virtual", v.PreferredLocation)

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	v, err = ApplyAvailability(v, model.Availability{
		Start:          start,
		TimePreference: "evening",
		Days:           []string{"Sunday", "monday"},
	})
	require.NoError(t, err)
	assert.True(t, v.OnboardingCompleted)
	assert.Equal(t, 3, v.OnboardingStep)
	require.NotNil(t, v.Availability)
	assert.Equal(t, []string{"monday", "sunday"}, v.Availability.Days)
}

func TestPreferredLocation(t *testing.T) {
	tests := []struct {
		virtual  bool
		inPerson bool
		place    string
		expected string
	}{
		{true, false, "", "virtual"},
		{false, true, "Ilford", "Ilford"},
		{true, true, "Ilford", "virtual, Ilford"},
		{false, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			formatted := FormatPreferredLocation(tt.virtual, tt.inPerson, tt.place)
			assert.Equal(t, tt.expected, formatted)

			virtual, inPerson, place := ParsePreferredLocation(formatted)
			assert.Equal(t, tt.virtual, virtual)
			assert.Equal(t, tt.inPerson, inPerson)
			assert.Equal(t, tt.place, place)
		})
	}
}
