package engagement

import (
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// Bucket is the dashboard section an event belongs to relative to now
type Bucket string

const (
	BucketRegisteredUpcoming    Bucket = "registered_upcoming"
	BucketNotRegisteredUpcoming Bucket = "not_registered_upcoming"
	BucketPast                  Bucket = "past"
)

// ListedEvent is an event together with the caller's registration status for it
type ListedEvent struct {
	Event  model.Event
	Status model.RegistrationStatus
}

// Registered reports whether the caller is registered for the event
func (e ListedEvent) Registered() bool {
	return e.Status == model.StatusRegistered
}

// Classify assigns an event to exactly one bucket.
// Registration only keeps an event out of Past while it has not ended.
// An ongoing event the caller is not registered for stays in NotRegisteredUpcoming.
func Classify(now, start, end time.Time, status model.RegistrationStatus) Bucket {
	registered := status == model.StatusRegistered

	switch {
	case registered && end.After(now):
		return BucketRegisteredUpcoming
	case start.After(now) && !registered:
		return BucketNotRegisteredUpcoming
	case !end.After(now):
		return BucketPast
	default:
		return BucketNotRegisteredUpcoming
	}
}

// Sections holds events grouped by bucket, each in input order
type Sections struct {
	RegisteredUpcoming    []ListedEvent
	NotRegisteredUpcoming []ListedEvent
	Past                  []ListedEvent
}

// GroupSections classifies every event against now. The result must not be cached
// across calls: membership changes as time passes.
func GroupSections(now time.Time, events []ListedEvent) Sections {
	var s Sections
	for _, e := range events {
		switch Classify(now, e.Event.Start, e.Event.End, e.Status) {
		case BucketRegisteredUpcoming:
			s.RegisteredUpcoming = append(s.RegisteredUpcoming, e)
		case BucketNotRegisteredUpcoming:
			s.NotRegisteredUpcoming = append(s.NotRegisteredUpcoming, e)
		case BucketPast:
			s.Past = append(s.Past, e)
		}
	}
	return s
}
