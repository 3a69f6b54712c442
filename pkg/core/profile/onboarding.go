package profile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const (
	StepDetails      = 1
	StepPreferences  = 2
	StepAvailability = 3
)

// WorkTypes are the kinds of work a volunteer can opt into during onboarding
var WorkTypes = []string{"education", "environment", "healthcare", "community", "events", "tech", "admin"}

// ErrStepLocked is returned when an onboarding step is attempted before the previous one
var ErrStepLocked = errors.New("complete the previous onboarding step first")

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Details is the personal information collected in step 1
type Details struct {
	FullName     string `json:"fullName" validate:"required"`
	Mobile       string `json:"mobile" validate:"required"`
	Age          int    `json:"age" validate:"min=16,max=120"`
	Organization string `json:"organization"`
}

// WorkPreferences is the step 2 form
type WorkPreferences struct {
	WorkTypes []string `json:"workTypes" validate:"min=1,dive,oneof=education environment healthcare community events tech admin"`
	Virtual   bool     `json:"virtual"`
	InPerson  bool     `json:"inPerson"`
	PlaceName string   `json:"placeName"`
}

// RequireStep checks the volunteer has reached step
func RequireStep(v model.Volunteer, step int) error {
	if step <= StepDetails {
		return nil
	}
	if v.OnboardingCompleted || v.OnboardingStep >= step {
		return nil
	}
	return fmt.Errorf("step %d: %w", step, ErrStepLocked)
}

// ApplyDetails validates step 1 and advances the volunteer to step 2
func ApplyDetails(v model.Volunteer, d Details) (model.Volunteer, error) {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Mobile = strings.TrimSpace(d.Mobile)
	d.Organization = strings.TrimSpace(d.Organization)

	if err := validate.Struct(d); err != nil {
		return v, toValidationError(err)
	}

	v.FullName = d.FullName
	v.Mobile = d.Mobile
	v.Age = d.Age
	v.Organization = d.Organization
	v.OnboardingStep = max(v.OnboardingStep, StepPreferences)
	return v, nil
}

// ApplyWorkPreferences validates step 2 and advances the volunteer to step 3
func ApplyWorkPreferences(v model.Volunteer, p WorkPreferences) (model.Volunteer, error) {
	if err := RequireStep(v, StepPreferences); err != nil {
		return v, err
	}
	if err := validate.Struct(p); err != nil {
		return v, toValidationError(err)
	}
	if !p.Virtual && !p.InPerson {
		return v, engagement.Invalid("location", "select at least one location type")
	}
	if p.InPerson && strings.TrimSpace(p.PlaceName) == "" {
		return v, engagement.Invalid("placeName", "enter a place name for in-person volunteering")
	}

	v.WorkTypes = append([]string(nil), p.WorkTypes...)
	v.PreferredLocation = FormatPreferredLocation(p.Virtual, p.InPerson, p.PlaceName)
	v.OnboardingStep = max(v.OnboardingStep, StepAvailability)
	return v, nil
}

// ApplyAvailability validates step 3 and completes onboarding
func ApplyAvailability(v model.Volunteer, a model.Availability) (model.Volunteer, error) {
	if err := RequireStep(v, StepAvailability); err != nil {
		return v, err
	}
	normalised, err := ValidateAvailability(a)
	if err != nil {
		return v, err
	}

	v.Availability = &normalised
	v.OnboardingStep = StepAvailability
	v.OnboardingCompleted = true
	return v, nil
}

// FormatPreferredLocation renders the location selection the way it is stored
func FormatPreferredLocation(virtual, inPerson bool, place string) string {
	place = strings.TrimSpace(place)
	switch {
	case virtual && inPerson:
		return "virtual, " + place
	case virtual:
		return "virtual"
	case inPerson:
		return place
	}
	return ""
}

// ParsePreferredLocation inverts FormatPreferredLocation
func ParsePreferredLocation(s string) (virtual, inPerson bool, place string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, false, ""
	}
	if strings.EqualFold(s, "virtual") {
		return true, false, ""
	}
	if head, rest, ok := strings.Cut(s, ","); ok && strings.EqualFold(strings.TrimSpace(head), "virtual") {
		return true, true, strings.TrimSpace(rest)
	}
	return false, true, s
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return engagement.Invalid(fe.Field(), "is required")
	case "min":
		if fe.Kind() == reflect.Slice {
			return engagement.Invalid(fe.Field(), "select at least %s", fe.Param())
		}
		return engagement.Invalid(fe.Field(), "must be at least %s", fe.Param())
	case "max":
		return engagement.Invalid(fe.Field(), "must be at most %s", fe.Param())
	case "oneof":
		return engagement.Invalid(fe.Field(), "must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return engagement.Invalid(fe.Field(), "failed %s validation", fe.Tag())
}
