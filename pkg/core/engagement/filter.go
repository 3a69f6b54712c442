package engagement

import (
	"strings"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// WindowKind selects how the time window axis constrains event start times
type WindowKind string

const (
	WindowAll       WindowKind = "all"
	WindowNext7Days WindowKind = "next7days"
	WindowNextMonth WindowKind = "nextmonth"
	WindowCustom    WindowKind = "custom"
)

// TimeWindow constrains event start times to an open interval
type TimeWindow struct {
	Kind  WindowKind
	Start time.Time // custom only
	End   time.Time // custom only
}

// bounds returns the open interval for the window, or ok=false when unconstrained
func (w TimeWindow) bounds(now time.Time) (from, to time.Time, ok bool) {
	switch w.Kind {
	case WindowNext7Days:
		return now, now.AddDate(0, 0, 7), true
	case WindowNextMonth:
		return now, now.AddDate(0, 1, 0), true
	case WindowCustom:
		return w.Start, w.End, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// FilterSet is a conjunction of optional filter axes. Empty axes impose no constraint.
type FilterSet struct {
	RegistrationStatuses []model.RegistrationStatus
	Categories           []model.Category
	LocationTypes        []model.LocationType
	Window               TimeWindow
}

// Filter keeps the events matching every present axis, preserving input order
func Filter(now time.Time, events []ListedEvent, criteria FilterSet) []ListedEvent {
	statusFilter, hasStatusFilter := singleStatus(criteria.RegistrationStatuses)

	categories := make(map[model.Category]struct{}, len(criteria.Categories))
	for _, c := range criteria.Categories {
		categories[c] = struct{}{}
	}

	locations := make(map[string]struct{}, len(criteria.LocationTypes))
	for _, l := range criteria.LocationTypes {
		locations[strings.ToLower(string(l))] = struct{}{}
	}

	from, to, hasWindow := criteria.Window.bounds(now)

	result := make([]ListedEvent, 0, len(events))
	for _, e := range events {
		if hasStatusFilter && normaliseStatus(e.Status) != statusFilter {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[e.Event.Category]; !ok {
				continue
			}
		}
		if len(locations) > 0 {
			if _, ok := locations[strings.ToLower(string(e.Event.Location.Type))]; !ok {
				continue
			}
		}
		if hasWindow && !(e.Event.Start.After(from) && e.Event.Start.Before(to)) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// singleStatus returns the status to filter on when exactly one distinct status is selected.
// Selecting both is the same as selecting none.
func singleStatus(statuses []model.RegistrationStatus) (model.RegistrationStatus, bool) {
	seen := make(map[model.RegistrationStatus]struct{}, 2)
	for _, s := range statuses {
		seen[normaliseStatus(s)] = struct{}{}
	}
	if len(seen) != 1 {
		return "", false
	}
	for s := range seen {
		return s, true
	}
	return "", false
}

// normaliseStatus treats a missing registration as not-registered
func normaliseStatus(s model.RegistrationStatus) model.RegistrationStatus {
	if s == model.StatusRegistered {
		return model.StatusRegistered
	}
	return model.StatusNotRegistered
}

// FilterInput is the raw, string-typed form of a FilterSet as it arrives from flags or query params
type FilterInput struct {
	Statuses   []string
	Categories []string
	Locations  []string
	Window     string
	From       string
	To         string
}

// ParseFilterSet validates raw filter input
func ParseFilterSet(in FilterInput) (FilterSet, error) {
	var fs FilterSet

	for _, raw := range in.Statuses {
		s := model.RegistrationStatus(strings.ToLower(strings.TrimSpace(raw)))
		if !s.IsValid() {
			return FilterSet{}, Invalid("status", "unknown registration status %q", raw)
		}
		fs.RegistrationStatuses = append(fs.RegistrationStatuses, s)
	}

	for _, raw := range in.Categories {
		c := model.Category(strings.ToLower(strings.TrimSpace(raw)))
		if !c.IsValid() {
			return FilterSet{}, Invalid("category", "unknown category %q", raw)
		}
		fs.Categories = append(fs.Categories, c)
	}

	for _, raw := range in.Locations {
		l, ok := model.ParseLocationType(raw)
		if !ok {
			return FilterSet{}, Invalid("location", "unknown location type %q", raw)
		}
		fs.LocationTypes = append(fs.LocationTypes, l)
	}

	window, err := parseWindow(in.Window, in.From, in.To)
	if err != nil {
		return FilterSet{}, err
	}
	fs.Window = window

	return fs, nil
}

func parseWindow(kind, from, to string) (TimeWindow, error) {
	k := WindowKind(strings.ToLower(strings.TrimSpace(kind)))
	if k == "" && (strings.TrimSpace(from) != "" || strings.TrimSpace(to) != "") {
		k = WindowCustom
	}

	switch k {
	case "", WindowAll:
		return TimeWindow{Kind: WindowAll}, nil
	case WindowNext7Days:
		return TimeWindow{Kind: WindowNext7Days}, nil
	case WindowNextMonth:
		return TimeWindow{Kind: WindowNextMonth}, nil
	case WindowCustom:
		start, err := parseBound(from)
		if err != nil {
			return TimeWindow{}, Invalid("from", "%v", err)
		}
		end, err := parseBound(to)
		if err != nil {
			return TimeWindow{}, Invalid("to", "%v", err)
		}
		if !end.After(start) {
			return TimeWindow{}, Invalid("to", "must be after from")
		}
		return TimeWindow{Kind: WindowCustom, Start: start, End: end}, nil
	default:
		return TimeWindow{}, Invalid("window", "unknown time window %q", kind)
	}
}

// parseBound accepts RFC 3339 timestamps or plain dates
func parseBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Invalid("", "custom window requires both bounds")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, Invalid("", "invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
