package model

import (
	"strings"
	"time"
)

// RegistrationStatus is a volunteer's relationship to an event
type RegistrationStatus string

const (
	StatusRegistered    RegistrationStatus = "registered"
	StatusNotRegistered RegistrationStatus = "not-registered"
)

func (s RegistrationStatus) IsValid() bool {
	return s == StatusRegistered || s == StatusNotRegistered
}

// LocationType is where an event takes place
type LocationType string

const (
	LocationPhysical LocationType = "physical"
	LocationVirtual  LocationType = "virtual"
)

// ParseLocationType matches case-insensitively
func ParseLocationType(s string) (LocationType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LocationPhysical):
		return LocationPhysical, true
	case string(LocationVirtual):
		return LocationVirtual, true
	}
	return "", false
}

// Category is one of the fixed event categories
type Category string

const (
	CategoryCommunity   Category = "community"
	CategoryEducation   Category = "education"
	CategoryEnvironment Category = "environment"
	CategoryHealthcare  Category = "healthcare"
	CategoryFundraising Category = "fundraising"
	CategoryOther       Category = "other"
)

// Categories lists every known category in display order
var Categories = []Category{
	CategoryCommunity,
	CategoryEducation,
	CategoryEnvironment,
	CategoryHealthcare,
	CategoryFundraising,
	CategoryOther,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// EventStatus is the lifecycle status of an event
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventOngoing   EventStatus = "ongoing"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// TaskStatus is the canonical task lifecycle: unassigned -> assigned -> in_progress -> complete
type TaskStatus string

const (
	TaskUnassigned TaskStatus = "unassigned"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskComplete   TaskStatus = "complete"
)

// AssignedStatuses are the sub-statuses a claimed task can hold, lowest ordinal first
var AssignedStatuses = []TaskStatus{TaskAssigned, TaskInProgress, TaskComplete}

func (s TaskStatus) IsValid() bool {
	return s == TaskUnassigned || s.IsAssigned()
}

// IsAssigned reports whether s is one of the assigned sub-statuses
func (s TaskStatus) IsAssigned() bool {
	for _, a := range AssignedStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// Availability describes when a volunteer can help
type Availability struct {
	Start          time.Time
	End            *time.Time
	TimePreference string
	Days           []string // lowercase weekday names
}

// Volunteer represents a registered volunteer
type Volunteer struct {
	ID                  string
	FullName            string
	Email               string
	Mobile              string
	Age                 int
	Organization        string
	SkillIDs            []int64
	WorkTypes           []string
	PreferredLocation   string
	Availability        *Availability // nil until onboarding step 3
	OnboardingStep      int
	OnboardingCompleted bool
}

// Skill is a named capability a task can require
type Skill struct {
	ID   int64
	Name string
	Icon string
}

// Location of an event
type Location struct {
	Name string
	Type LocationType
}

// Event is a scheduled activity volunteers can register for
type Event struct {
	ID                   int64
	Title                string
	Description          string
	Location             Location
	Category             Category
	Start                time.Time
	End                  time.Time
	RegistrationDeadline *time.Time
	Thumbnail            string
	Cancelled            bool
}

// StatusAt derives the lifecycle status of the event relative to now
func (e Event) StatusAt(now time.Time) EventStatus {
	switch {
	case e.Cancelled:
		return EventCancelled
	case !e.End.After(now):
		return EventCompleted
	case !e.Start.After(now):
		return EventOngoing
	default:
		return EventUpcoming
	}
}

// Registration relates one volunteer to one event. At most one exists per pair.
type Registration struct {
	VolunteerID string
	EventID     int64
	Status      RegistrationStatus
	UpdatedAt   time.Time
	Feedback    string
	Rating      int // 0 when no rating has been given
	FeedbackAt  *time.Time
}

// HasFeedback reports whether feedback was previously submitted
func (r Registration) HasFeedback() bool {
	return r.FeedbackAt != nil || r.Rating != 0 || r.Feedback != ""
}

// Task is a unit of work under an event
type Task struct {
	ID             int64
	EventID        int64
	EventTitle     string
	Description    string
	RequiredSkills []Skill
	Status         TaskStatus
	Feedback       string
	AssigneeID     string // empty when unassigned
	AssigneeEmail  string
}

// IsAssigned reports whether the task has an assignee
func (t Task) IsAssigned() bool {
	return t.AssigneeID != ""
}

// ChatMessage is a single message in an event's chat. Immutable once persisted.
type ChatMessage struct {
	ID          int64  // server-assigned, 0 until persisted
	ClientRef   string // client-generated correlation id
	EventID     int64
	AuthorID    string
	AuthorName  string
	AuthorEmail string
	Body        string
	CreatedAt   time.Time
}

// RecentMessage is a chat message annotated with its event title
type RecentMessage struct {
	ChatMessage
	EventTitle string
}

// Session identifies the authenticated volunteer making a request
type Session struct {
	VolunteerID string
	Email       string
	Name        string
}

// Stats summarises a volunteer's engagement
type Stats struct {
	CompletedTasks   int
	RegisteredEvents int
}

// HistoryRow is one event in a volunteer's exported participation record
type HistoryRow struct {
	EventTitle string
	Start      time.Time
	Category   Category
	Status     RegistrationStatus
	Rating     int
	Feedback   string
	Tasks      []Task
}

// History is a volunteer's participation record, oldest event first
type History struct {
	VolunteerName string
	ExportedAt    time.Time
	Rows          []HistoryRow
}
