package db

import (
	"errors"
	"strings"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

var (
	// ErrNotFound is returned when a single-row lookup matches nothing
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a conditional update matched no row
	ErrConflict = errors.New("row was changed by someone else")
)

// Volunteer represents a volunteers record with its skill ids
type Volunteer struct {
	ID                    string     `db:"id"`
	Email                 string     `db:"email"`
	FullName              string     `db:"full_name"`
	Mobile                string     `db:"mobile_number"`
	Age                   *int       `db:"age"`
	Organization          string     `db:"organization"`
	WorkTypes             []string   `db:"work_types"`
	PreferredLocation     string     `db:"preferred_location"`
	AvailabilityStartDate *time.Time `db:"availability_start_date"`
	AvailabilityEndDate   *time.Time `db:"availability_end_date"`
	TimePreference        string     `db:"time_preference"`
	DaysAvailable         []string   `db:"days_available"`
	OnboardingStep        int        `db:"onboarding_step"`
	OnboardingCompleted   bool       `db:"onboarding_completed"`
	SkillIDs              []int64    `db:"skill_ids"`
}

// Skill represents a skills record
type Skill struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Icon string `db:"icon"`
}

// Event represents an events record
type Event struct {
	ID                   int64      `db:"id"`
	Title                string     `db:"title"`
	Description          string     `db:"description"`
	LocationName         string     `db:"location_name"`
	LocationType         string     `db:"location_type"`
	Category             string     `db:"category"`
	StartDate            time.Time  `db:"start_date"`
	EndDate              time.Time  `db:"end_date"`
	RegistrationDeadline *time.Time `db:"registration_deadline"`
	ThumbnailImage       string     `db:"thumbnail_image"`
	Status               string     `db:"status"`
}

// ListedEvent is an event joined with one volunteer's registration status, which is
// nil when the volunteer never registered
type ListedEvent struct {
	Event
	RegistrationStatus *string `db:"registration_status"`
}

// Registration represents a volunteer_event record
type Registration struct {
	VolunteerID string     `db:"volunteer_id"`
	EventID     int64      `db:"event_id"`
	Status      string     `db:"status"`
	UpdatedAt   time.Time  `db:"updated_at"`
	Feedback    *string    `db:"feedback"`
	Rating      *int       `db:"rating"`
	FeedbackAt  *time.Time `db:"feedback_at"`
}

// Task represents a tasks record with its required skills in declared order
type Task struct {
	ID                 int64    `db:"task_id"`
	EventID            int64    `db:"event_id"`
	EventTitle         string   `db:"event_title"`
	Description        string   `db:"task_description"`
	TaskStatus         string   `db:"task_status"`
	TaskFeedback       string   `db:"task_feedback"`
	VolunteerID        *string  `db:"volunteer_id"`
	VolunteerEmail     *string  `db:"volunteer_email"`
	RequiredSkillIDs   []int64  `db:"required_skill_ids"`
	RequiredSkillNames []string `db:"required_skill_names"`
}

// ChatMessage represents a chat_messages record. The json tags match the realtime
// notification payload.
type ChatMessage struct {
	ID          int64     `db:"id" json:"id"`
	ClientRef   string    `db:"client_ref" json:"client_ref"`
	EventID     int64     `db:"event_id" json:"event_id"`
	VolunteerID string    `db:"volunteer_id" json:"volunteer_id"`
	AuthorName  string    `db:"author_name" json:"author_name"`
	AuthorEmail string    `db:"author_email" json:"author_email"`
	Message     string    `db:"message" json:"message"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RecentMessage is a chat message joined with its event title
type RecentMessage struct {
	ChatMessage
	EventTitle string `db:"event_title"`
}

// Model converts the record to the domain type
func (v Volunteer) Model() model.Volunteer {
	result := model.Volunteer{
		ID:                  v.ID,
		FullName:            v.FullName,
		Email:               v.Email,
		Mobile:              v.Mobile,
		Organization:        v.Organization,
		SkillIDs:            v.SkillIDs,
		WorkTypes:           v.WorkTypes,
		PreferredLocation:   v.PreferredLocation,
		OnboardingStep:      v.OnboardingStep,
		OnboardingCompleted: v.OnboardingCompleted,
	}
	if v.Age != nil {
		result.Age = *v.Age
	}
	if v.AvailabilityStartDate != nil {
		result.Availability = &model.Availability{
			Start:          *v.AvailabilityStartDate,
			End:            v.AvailabilityEndDate,
			TimePreference: v.TimePreference,
			Days:           v.DaysAvailable,
		}
	}
	return result
}

// VolunteerFromModel converts the domain type to a record
func VolunteerFromModel(v model.Volunteer) Volunteer {
	result := Volunteer{
		ID:                  v.ID,
		Email:               v.Email,
		FullName:            v.FullName,
		Mobile:              v.Mobile,
		Organization:        v.Organization,
		WorkTypes:           v.WorkTypes,
		PreferredLocation:   v.PreferredLocation,
		OnboardingStep:      v.OnboardingStep,
		OnboardingCompleted: v.OnboardingCompleted,
		SkillIDs:            v.SkillIDs,
	}
	if v.Age != 0 {
		age := v.Age
		result.Age = &age
	}
	if v.Availability != nil {
		start := v.Availability.Start
		result.AvailabilityStartDate = &start
		result.AvailabilityEndDate = v.Availability.End
		result.TimePreference = v.Availability.TimePreference
		result.DaysAvailable = v.Availability.Days
	}
	if result.WorkTypes == nil {
		result.WorkTypes = []string{}
	}
	if result.DaysAvailable == nil {
		result.DaysAvailable = []string{}
	}
	return result
}

func (s Skill) Model() model.Skill {
	return model.Skill{ID: s.ID, Name: s.Name, Icon: s.Icon}
}

func (e Event) Model() model.Event {
	locationType, ok := model.ParseLocationType(e.LocationType)
	if !ok {
		locationType = model.LocationType(strings.ToLower(e.LocationType))
	}
	return model.Event{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		Location:             model.Location{Name: e.LocationName, Type: locationType},
		Category:             model.Category(strings.ToLower(e.Category)),
		Start:                e.StartDate,
		End:                  e.EndDate,
		RegistrationDeadline: e.RegistrationDeadline,
		Thumbnail:            e.ThumbnailImage,
		Cancelled:            strings.EqualFold(e.Status, string(model.EventCancelled)),
	}
}

// Status returns the registration status, empty when the volunteer never registered
func (e ListedEvent) Status() model.RegistrationStatus {
	if e.RegistrationStatus == nil {
		return ""
	}
	return model.RegistrationStatus(*e.RegistrationStatus)
}

func (r Registration) Model() model.Registration {
	result := model.Registration{
		VolunteerID: r.VolunteerID,
		EventID:     r.EventID,
		Status:      model.RegistrationStatus(r.Status),
		UpdatedAt:   r.UpdatedAt,
		FeedbackAt:  r.FeedbackAt,
	}
	if r.Feedback != nil {
		result.Feedback = *r.Feedback
	}
	if r.Rating != nil {
		result.Rating = *r.Rating
	}
	return result
}

// RegistrationFromModel converts the domain type to a record. Zero feedback fields are
// stored as NULL.
func RegistrationFromModel(r model.Registration) Registration {
	result := Registration{
		VolunteerID: r.VolunteerID,
		EventID:     r.EventID,
		Status:      string(r.Status),
		UpdatedAt:   r.UpdatedAt,
		FeedbackAt:  r.FeedbackAt,
	}
	if r.Feedback != "" {
		feedback := r.Feedback
		result.Feedback = &feedback
	}
	if r.Rating != 0 {
		rating := r.Rating
		result.Rating = &rating
	}
	return result
}

func (t Task) Model() model.Task {
	result := model.Task{
		ID:             t.ID,
		EventID:        t.EventID,
		EventTitle:     t.EventTitle,
		Description:    t.Description,
		Status:         model.TaskStatus(t.TaskStatus),
		Feedback:       t.TaskFeedback,
		RequiredSkills: make([]model.Skill, 0, len(t.RequiredSkillIDs)),
	}
	if t.VolunteerID != nil {
		result.AssigneeID = *t.VolunteerID
	}
	if t.VolunteerEmail != nil {
		result.AssigneeEmail = *t.VolunteerEmail
	}
	for i, id := range t.RequiredSkillIDs {
		skill := model.Skill{ID: id}
		if i < len(t.RequiredSkillNames) {
			skill.Name = t.RequiredSkillNames[i]
		}
		result.RequiredSkills = append(result.RequiredSkills, skill)
	}
	return result
}

func (m ChatMessage) Model() model.ChatMessage {
	return model.ChatMessage{
		ID:          m.ID,
		ClientRef:   m.ClientRef,
		EventID:     m.EventID,
		AuthorID:    m.VolunteerID,
		AuthorName:  m.AuthorName,
		AuthorEmail: m.AuthorEmail,
		Body:        m.Message,
		CreatedAt:   m.CreatedAt,
	}
}

// ChatMessageFromModel converts the domain type to a record
func ChatMessageFromModel(m model.ChatMessage) ChatMessage {
	return ChatMessage{
		ID:          m.ID,
		ClientRef:   m.ClientRef,
		EventID:     m.EventID,
		VolunteerID: m.AuthorID,
		AuthorName:  m.AuthorName,
		AuthorEmail: m.AuthorEmail,
		Message:     m.Body,
		CreatedAt:   m.CreatedAt,
	}
}

func (m RecentMessage) Model() model.RecentMessage {
	return model.RecentMessage{ChatMessage: m.ChatMessage.Model(), EventTitle: m.EventTitle}
}
