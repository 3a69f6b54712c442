package profile

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const Weekend = "weekend"

// Weekdays in calendar order, as stored on the volunteer
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var weekdayRules = map[string]rrule.Weekday{
	"monday":    rrule.MO,
	"tuesday":   rrule.TU,
	"wednesday": rrule.WE,
	"thursday":  rrule.TH,
	"friday":    rrule.FR,
	"saturday":  rrule.SA,
	"sunday":    rrule.SU,
}

// TimePreferences and the hours each one covers, [from, to)
var TimePreferences = map[string][2]int{
	"morning":   {8, 12},
	"afternoon": {12, 17},
	"evening":   {17, 21},
	"flexible":  {0, 24},
}

// ValidateAvailability checks the step 3 form and returns it with days in calendar order
func ValidateAvailability(a model.Availability) (model.Availability, error) {
	if a.Start.IsZero() {
		return a, engagement.Invalid("startDate", "select a start date")
	}
	if a.End != nil && a.End.Before(a.Start) {
		return a, engagement.Invalid("endDate", "must not be before the start date")
	}
	if _, ok := TimePreferences[a.TimePreference]; !ok {
		return a, engagement.Invalid("timePreference", "select a time preference")
	}
	if len(a.Days) == 0 {
		return a, engagement.Invalid("days", "select at least one day of availability")
	}

	days := make([]string, 0, len(a.Days))
	for _, d := range a.Days {
		d = strings.ToLower(strings.TrimSpace(d))
		if _, ok := weekdayRules[d]; !ok {
			return a, engagement.Invalid("days", "unknown day %q", d)
		}
		days = append(days, d)
	}
	a.Days = sortDays(days)
	return a, nil
}

// ToggleDay checks or unchecks a day. "weekend" adds or removes saturday and sunday
// together and leaves the other days alone.
func ToggleDay(days []string, id string, checked bool) ([]string, error) {
	id = strings.ToLower(strings.TrimSpace(id))

	targets := []string{id}
	if id == Weekend {
		targets = []string{"saturday", "sunday"}
	} else if _, ok := weekdayRules[id]; !ok {
		return days, engagement.Invalid("days", "unknown day %q", id)
	}

	result := make([]string, 0, len(days)+len(targets))
	for _, d := range days {
		if !slices.Contains(targets, d) {
			result = append(result, d)
		}
	}
	if checked {
		result = append(result, targets...)
	}
	return sortDays(result), nil
}

// WeekendSelected reports whether both weekend days are selected
func WeekendSelected(days []string) bool {
	return slices.Contains(days, "saturday") && slices.Contains(days, "sunday")
}

// AvailableDates expands the weekly availability pattern into the dates within
// [from, to] the volunteer can help on, in from's location
func AvailableDates(a model.Availability, from, to time.Time) ([]time.Time, error) {
	rule, err := availabilityRule(a, from.Location())
	if err != nil {
		return nil, err
	}
	return rule.Between(from, to, true), nil
}

// IsAvailableFor reports whether the event starts on a day and at a time the volunteer
// said they are free
func IsAvailableFor(a *model.Availability, event model.Event) bool {
	if a == nil || event.Start.IsZero() {
		return false
	}

	hours, ok := TimePreferences[a.TimePreference]
	if !ok {
		return false
	}
	if h := event.Start.Hour(); h < hours[0] || h >= hours[1] {
		return false
	}

	day := startOfDay(event.Start)
	dates, err := AvailableDates(*a, day, day.Add(24*time.Hour-time.Second))
	if err != nil {
		return false
	}
	return len(dates) > 0
}

func availabilityRule(a model.Availability, loc *time.Location) (*rrule.RRule, error) {
	if a.Start.IsZero() {
		return nil, fmt.Errorf("availability has no start date")
	}

	weekdays := make([]rrule.Weekday, 0, len(a.Days))
	for _, d := range a.Days {
		wd, ok := weekdayRules[strings.ToLower(d)]
		if !ok {
			return nil, fmt.Errorf("unknown day %q", d)
		}
		weekdays = append(weekdays, wd)
	}
	if len(weekdays) == 0 {
		return nil, fmt.Errorf("availability has no days")
	}

	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   startOfDay(a.Start.In(loc)),
		Byweekday: weekdays,
	}
	if a.End != nil {
		end := startOfDay(a.End.In(loc))
		opt.Until = end.Add(24*time.Hour - time.Second)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build availability rule: %w", err)
	}
	return rule, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sortDays(days []string) []string {
	result := make([]string, 0, len(days))
	for _, wd := range Weekdays {
		if slices.Contains(days, wd) {
			result = append(result, wd)
		}
	}
	return result
}
