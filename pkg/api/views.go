package api

import (
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/profile"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

const dateLayout = "2006-01-02"

type skillView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type availabilityView struct {
	Start          string   `json:"startDate"`
	End            string   `json:"endDate,omitempty"`
	TimePreference string   `json:"timePreference"`
	Days           []string `json:"days"`
}

type volunteerView struct {
	ID                  string            `json:"id"`
	FullName            string            `json:"fullName"`
	Email               string            `json:"email"`
	Mobile              string            `json:"mobile,omitempty"`
	Age                 int               `json:"age,omitempty"`
	Organization        string            `json:"organization,omitempty"`
	Skills              []skillView       `json:"skills,omitempty"`
	WorkTypes           []string          `json:"workTypes"`
	Virtual             bool              `json:"virtual"`
	InPerson            bool              `json:"inPerson"`
	PlaceName           string            `json:"placeName,omitempty"`
	Availability        *availabilityView `json:"availability,omitempty"`
	OnboardingStep      int               `json:"onboardingStep"`
	OnboardingCompleted bool              `json:"onboardingCompleted"`
}

type eventView struct {
	ID                   int64      `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	Location             string     `json:"location"`
	LocationType         string     `json:"locationType"`
	Category             string     `json:"category"`
	Start                time.Time  `json:"start"`
	End                  time.Time  `json:"end"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty"`
	Thumbnail            string     `json:"thumbnail,omitempty"`
	Status               string     `json:"status"`
	Registered           bool       `json:"registered"`
	MatchesYou           bool       `json:"matchesYou,omitempty"`
}

type registrationView struct {
	EventID       int64      `json:"eventId"`
	Status        string     `json:"status"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Rating        int        `json:"rating,omitempty"`
	Feedback      string     `json:"feedback,omitempty"`
	FeedbackAt    *time.Time `json:"feedbackAt,omitempty"`
	FeedbackLabel string     `json:"feedbackLabel"`
}

type taskView struct {
	ID             int64       `json:"id"`
	EventID        int64       `json:"eventId"`
	EventTitle     string      `json:"eventTitle,omitempty"`
	Description    string      `json:"description"`
	RequiredSkills []skillView `json:"requiredSkills"`
	Status         string      `json:"status"`
	Feedback       string      `json:"feedback,omitempty"`
	AssigneeID     string      `json:"assigneeId,omitempty"`
}

type claimableTaskView struct {
	taskView
	MatchingSkills []skillView `json:"matchingSkills"`
	MissingSkills  []skillView `json:"missingSkills"`
}

type chatMessageView struct {
	ID         int64     `json:"id,omitempty"`
	ClientRef  string    `json:"clientRef"`
	EventID    int64     `json:"eventId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
	EventTitle string    `json:"eventTitle,omitempty"`
	Pending    bool      `json:"pending,omitempty"`
}

type statsView struct {
	CompletedTasks   int `json:"completedTasks"`
	RegisteredEvents int `json:"registeredEvents"`
}

type dashboardView struct {
	Volunteer             volunteerView     `json:"volunteer"`
	RegisteredUpcoming    []eventView       `json:"registeredUpcoming"`
	NotRegisteredUpcoming []eventView       `json:"notRegisteredUpcoming"`
	Past                  []eventView       `json:"past"`
	Stats                 statsView         `json:"stats"`
	Tasks                 []taskView        `json:"tasks"`
	RecentMessages        []chatMessageView `json:"recentMessages"`
}

type historyRowView struct {
	EventTitle string     `json:"eventTitle"`
	Start      time.Time  `json:"start"`
	Category   string     `json:"category"`
	Status     string     `json:"status"`
	Rating     int        `json:"rating,omitempty"`
	Feedback   string     `json:"feedback,omitempty"`
	Tasks      []taskView `json:"tasks"`
}

type historyView struct {
	VolunteerName string           `json:"volunteerName"`
	ExportedAt    time.Time        `json:"exportedAt"`
	Rows          []historyRowView `json:"rows"`
}

func toSkillViews(skills []model.Skill) []skillView {
	out := make([]skillView, 0, len(skills))
	for _, s := range skills {
		out = append(out, skillView{ID: s.ID, Name: s.Name, Icon: s.Icon})
	}
	return out
}

func toAvailabilityView(a *model.Availability) *availabilityView {
	if a == nil {
		return nil
	}
	view := &availabilityView{
		Start:          a.Start.Format(dateLayout),
		TimePreference: a.TimePreference,
		Days:           a.Days,
	}
	if a.End != nil {
		view.End = a.End.Format(dateLayout)
	}
	return view
}

func toVolunteerView(v model.Volunteer, skills []model.Skill) volunteerView {
	virtual, inPerson, place := profile.ParsePreferredLocation(v.PreferredLocation)
	view := volunteerView{
		ID:                  v.ID,
		FullName:            v.FullName,
		Email:               v.Email,
		Mobile:              v.Mobile,
		Age:                 v.Age,
		Organization:        v.Organization,
		WorkTypes:           v.WorkTypes,
		Virtual:             virtual,
		InPerson:            inPerson,
		PlaceName:           place,
		Availability:        toAvailabilityView(v.Availability),
		OnboardingStep:      v.OnboardingStep,
		OnboardingCompleted: v.OnboardingCompleted,
	}
	if skills != nil {
		view.Skills = toSkillViews(skills)
	}
	if view.WorkTypes == nil {
		view.WorkTypes = []string{}
	}
	return view
}

func toEventView(now time.Time, e engagement.ListedEvent) eventView {
	return eventView{
		ID:                   e.Event.ID,
		Title:                e.Event.Title,
		Description:          e.Event.Description,
		Location:             e.Event.Location.Name,
		LocationType:         string(e.Event.Location.Type),
		Category:             string(e.Event.Category),
		Start:                e.Event.Start,
		End:                  e.Event.End,
		RegistrationDeadline: e.Event.RegistrationDeadline,
		Thumbnail:            e.Event.Thumbnail,
		Status:               string(e.Event.StatusAt(now)),
		Registered:           e.Registered(),
	}
}

func toEventViews(now time.Time, events []engagement.ListedEvent, matches map[int64]bool) []eventView {
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		view := toEventView(now, e)
		view.MatchesYou = matches[e.Event.ID]
		out = append(out, view)
	}
	return out
}

func toRegistrationView(r model.Registration) registrationView {
	return registrationView{
		EventID:       r.EventID,
		Status:        string(r.Status),
		UpdatedAt:     r.UpdatedAt,
		Rating:        r.Rating,
		Feedback:      r.Feedback,
		FeedbackAt:    r.FeedbackAt,
		FeedbackLabel: engagement.FeedbackLabel(r),
	}
}

func toTaskView(t model.Task) taskView {
	return taskView{
		ID:             t.ID,
		EventID:        t.EventID,
		EventTitle:     t.EventTitle,
		Description:    t.Description,
		RequiredSkills: toSkillViews(t.RequiredSkills),
		Status:         string(t.Status),
		Feedback:       t.Feedback,
		AssigneeID:     t.AssigneeID,
	}
}

func toTaskViews(tasks []model.Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskView(t))
	}
	return out
}

func toClaimableViews(tasks []services.ClaimableTask) []claimableTaskView {
	out := make([]claimableTaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, claimableTaskView{
			taskView:       toTaskView(t.Task),
			MatchingSkills: toSkillViews(t.Match.Matching),
			MissingSkills:  toSkillViews(t.Match.Missing),
		})
	}
	return out
}

func toChatMessageView(m model.ChatMessage) chatMessageView {
	return chatMessageView{
		ID:         m.ID,
		ClientRef:  m.ClientRef,
		EventID:    m.EventID,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
		Pending:    m.ID == 0,
	}
}

func toChatMessageViews(messages []model.ChatMessage) []chatMessageView {
	out := make([]chatMessageView, 0, len(messages))
	for _, m := range messages {
		out = append(out, toChatMessageView(m))
	}
	return out
}

func toDashboardView(now time.Time, d *services.Dashboard) dashboardView {
	recent := make([]chatMessageView, 0, len(d.RecentMessages))
	for _, m := range d.RecentMessages {
		view := toChatMessageView(m.ChatMessage)
		view.EventTitle = m.EventTitle
		recent = append(recent, view)
	}

	return dashboardView{
		Volunteer:             toVolunteerView(d.Volunteer, d.Skills),
		RegisteredUpcoming:    toEventViews(now, d.Sections.RegisteredUpcoming, nil),
		NotRegisteredUpcoming: toEventViews(now, d.Sections.NotRegisteredUpcoming, d.MatchesYou),
		Past:                  toEventViews(now, d.Sections.Past, nil),
		Stats:                 statsView{CompletedTasks: d.Stats.CompletedTasks, RegisteredEvents: d.Stats.RegisteredEvents},
		Tasks:                 toTaskViews(d.Tasks),
		RecentMessages:        recent,
	}
}

func toHistoryView(h *model.History) historyView {
	rows := make([]historyRowView, 0, len(h.Rows))
	for _, r := range h.Rows {
		rows = append(rows, historyRowView{
			EventTitle: r.EventTitle,
			Start:      r.Start,
			Category:   string(r.Category),
			Status:     string(r.Status),
			Rating:     r.Rating,
			Feedback:   r.Feedback,
			Tasks:      toTaskViews(r.Tasks),
		})
	}
	return historyView{VolunteerName: h.VolunteerName, ExportedAt: h.ExportedAt, Rows: rows}
}
