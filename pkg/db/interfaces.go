package db

import "context"

// VolunteerStore defines the volunteer profile operations
type VolunteerStore interface {
	GetVolunteer(ctx context.Context, id string) (*Volunteer, error)
	GetVolunteerByEmail(ctx context.Context, email string) (*Volunteer, error)
	InsertVolunteer(ctx context.Context, volunteer *Volunteer) error
	UpdateVolunteer(ctx context.Context, volunteer *Volunteer) error
	ListSkills(ctx context.Context) ([]Skill, error)
}

// EventStore defines the event and registration operations
type EventStore interface {
	GetEvent(ctx context.Context, id int64) (*Event, error)
	ListEventsForVolunteer(ctx context.Context, volunteerID string) ([]ListedEvent, error)
	GetRegistration(ctx context.Context, volunteerID string, eventID int64) (*Registration, error)
	ListRegistrations(ctx context.Context, volunteerID string) ([]Registration, error)
	UpsertRegistration(ctx context.Context, registration *Registration) error
	CountRegisteredEvents(ctx context.Context, volunteerID string) (int, error)
}

// TaskStore defines the task operations
type TaskStore interface {
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListEventTasks(ctx context.Context, eventID int64) ([]Task, error)
	ListVolunteerTasks(ctx context.Context, volunteerID string) ([]Task, error)
	ClaimTask(ctx context.Context, taskID int64, volunteerID, email string) error
	UpdateAssignedTask(ctx context.Context, task *Task) error
	ReleaseTask(ctx context.Context, taskID int64, volunteerID string) error
	CountCompletedTasks(ctx context.Context, volunteerID string) (int, error)
}

// ChatStore defines the chat operations
type ChatStore interface {
	ListChatMessages(ctx context.Context, eventID int64) ([]ChatMessage, error)
	InsertChatMessage(ctx context.Context, message *ChatMessage) error
	ListRecentMessages(ctx context.Context, volunteerID string, limit int) ([]RecentMessage, error)
	ListenChatMessages(ctx context.Context, handler func(ChatMessage)) error
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	VolunteerStore
	EventStore
	TaskStore
	ChatStore
	RunMigrations(ctx context.Context) error
	Close()
}
