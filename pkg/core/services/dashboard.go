package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/profile"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// RecentDiscussionLimit is how many chat messages the dashboard shows
const RecentDiscussionLimit = 5

// StatsStore defines the database operations needed for volunteer stats
type StatsStore interface {
	CountCompletedTasks(ctx context.Context, volunteerID string) (int, error)
	CountRegisteredEvents(ctx context.Context, volunteerID string) (int, error)
}

// DashboardStore defines the database operations needed to load the dashboard
type DashboardStore interface {
	StatsStore
	GetVolunteer(ctx context.Context, id string) (*db.Volunteer, error)
	ListSkills(ctx context.Context) ([]db.Skill, error)
	ListEventsForVolunteer(ctx context.Context, volunteerID string) ([]db.ListedEvent, error)
	ListVolunteerTasks(ctx context.Context, volunteerID string) ([]db.Task, error)
	ListRecentMessages(ctx context.Context, volunteerID string, limit int) ([]db.RecentMessage, error)
}

// Dashboard is everything the volunteer home screen shows
type Dashboard struct {
	Volunteer      model.Volunteer
	Skills         []model.Skill // the volunteer's skills, resolved to names
	Sections       engagement.Sections
	MatchesYou     map[int64]bool // not-registered upcoming events that fit the volunteer's availability
	Stats          model.Stats
	Tasks          []model.Task
	RecentMessages []model.RecentMessage
}

// GetStats counts the volunteer's completed tasks and registered events
func GetStats(ctx context.Context, database StatsStore, logger *zap.Logger, session *model.Session) (model.Stats, error) {
	if err := engagement.RequireSession(session); err != nil {
		return model.Stats{}, err
	}

	completed, err := database.CountCompletedTasks(ctx, session.VolunteerID)
	if err != nil {
		return model.Stats{}, engagement.Remote("count completed tasks", err)
	}

	registered, err := database.CountRegisteredEvents(ctx, session.VolunteerID)
	if err != nil {
		return model.Stats{}, engagement.Remote("count registered events", err)
	}

	logger.Debug("Loaded stats",
		zap.String("volunteer_id", session.VolunteerID),
		zap.Int("completed_tasks", completed),
		zap.Int("registered_events", registered))

	return model.Stats{CompletedTasks: completed, RegisteredEvents: registered}, nil
}

// LoadDashboard loads the profile, event sections, stats, tasks and recent discussions
func LoadDashboard(ctx context.Context, database DashboardStore, logger *zap.Logger, session *model.Session) (*Dashboard, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}
	logger.Debug("Loading dashboard", zap.String("volunteer_id", session.VolunteerID))

	// Step 1: Profile and skill names
	volunteer, err := loadVolunteer(ctx, database, session)
	if err != nil {
		return nil, err
	}

	skillRows, err := database.ListSkills(ctx)
	if err != nil {
		return nil, engagement.Remote("load skills", err)
	}
	held := make(map[int64]bool, len(volunteer.SkillIDs))
	for _, id := range volunteer.SkillIDs {
		held[id] = true
	}
	skills := make([]model.Skill, 0, len(volunteer.SkillIDs))
	for _, row := range skillRows {
		if held[row.ID] {
			skills = append(skills, row.Model())
		}
	}

	// Step 2: Events grouped into sections
	eventRows, err := database.ListEventsForVolunteer(ctx, session.VolunteerID)
	if err != nil {
		return nil, engagement.Remote("load events", err)
	}
	now := timeNow()
	sections := engagement.GroupSections(now, toListedEvents(eventRows))

	matches := make(map[int64]bool)
	for _, e := range sections.NotRegisteredUpcoming {
		if profile.IsAvailableFor(volunteer.Availability, e.Event) {
			matches[e.Event.ID] = true
		}
	}

	// Step 3: Stats
	stats, err := GetStats(ctx, database, logger, session)
	if err != nil {
		return nil, err
	}

	// Step 4: Assigned tasks
	taskRows, err := database.ListVolunteerTasks(ctx, session.VolunteerID)
	if err != nil {
		return nil, engagement.Remote("load tasks", err)
	}
	tasks := make([]model.Task, 0, len(taskRows))
	for _, row := range taskRows {
		tasks = append(tasks, row.Model())
	}

	// Step 5: Recent discussions across registered events
	messageRows, err := database.ListRecentMessages(ctx, session.VolunteerID, RecentDiscussionLimit)
	if err != nil {
		return nil, engagement.Remote("load recent discussions", err)
	}
	messages := make([]model.RecentMessage, 0, len(messageRows))
	for _, row := range messageRows {
		messages = append(messages, row.Model())
	}

	logger.Info("Dashboard loaded",
		zap.String("volunteer_id", session.VolunteerID),
		zap.Int("registered_upcoming", len(sections.RegisteredUpcoming)),
		zap.Int("not_registered_upcoming", len(sections.NotRegisteredUpcoming)),
		zap.Int("past", len(sections.Past)),
		zap.Int("tasks", len(tasks)),
		zap.Int("recent_messages", len(messages)))

	return &Dashboard{
		Volunteer:      volunteer,
		Skills:         skills,
		Sections:       sections,
		MatchesYou:     matches,
		Stats:          stats,
		Tasks:          tasks,
		RecentMessages: messages,
	}, nil
}
