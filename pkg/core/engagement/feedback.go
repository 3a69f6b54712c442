package engagement

import (
	"strings"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackMode says whether a submission creates or replaces feedback
type FeedbackMode string

const (
	FeedbackCreate FeedbackMode = "create"
	FeedbackUpdate FeedbackMode = "update"
)

// ValidateFeedback checks the rating and text before anything is sent to the store
func ValidateFeedback(rating int, text string) error {
	if rating < MinRating || rating > MaxRating {
		return Invalid("rating", "must be between %d and %d", MinRating, MaxRating)
	}
	if strings.TrimSpace(text) == "" {
		return Invalid("feedback", "must not be empty")
	}
	return nil
}

// FeedbackModeFor derives create/update solely from whether feedback already exists
func FeedbackModeFor(reg model.Registration) FeedbackMode {
	if reg.HasFeedback() {
		return FeedbackUpdate
	}
	return FeedbackCreate
}

// FeedbackLabel is the action label shown next to the feedback form
func FeedbackLabel(reg model.Registration) string {
	if FeedbackModeFor(reg) == FeedbackUpdate {
		return "Update"
	}
	return "Submit"
}

// ApplyFeedback records feedback on a registration. Creation and update produce the
// same row keyed by (volunteer, event).
func ApplyFeedback(reg model.Registration, rating int, text string, now time.Time) (model.Registration, FeedbackMode, error) {
	if err := ValidateFeedback(rating, text); err != nil {
		return reg, "", err
	}
	if reg.Status != model.StatusRegistered {
		return reg, "", ErrNotRegistered
	}

	mode := FeedbackModeFor(reg)
	submittedAt := now
	reg.Rating = rating
	reg.Feedback = strings.TrimSpace(text)
	reg.FeedbackAt = &submittedAt
	reg.UpdatedAt = now
	return reg, mode, nil
}
