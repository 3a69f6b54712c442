package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/chat"
	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// MaxChatMessageLength bounds a single chat message body, in characters
const MaxChatMessageLength = 2000

// LoadChatStore defines the database operations needed to open an event's chat
type LoadChatStore interface {
	RegistrationLookup
	ListChatMessages(ctx context.Context, eventID int64) ([]db.ChatMessage, error)
}

// SendChatStore defines the database operations needed to post a chat message
type SendChatStore interface {
	RegistrationLookup
	VolunteerLookup
	InsertChatMessage(ctx context.Context, message *db.ChatMessage) error
}

// LoadChat opens an event's chat timeline seeded with its stored messages
func LoadChat(
	ctx context.Context,
	database LoadChatStore,
	logger *zap.Logger,
	session *model.Session,
	eventID int64,
) (*chat.Timeline, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}
	if _, err := requireRegistered(ctx, database, session, eventID); err != nil {
		return nil, err
	}

	rows, err := database.ListChatMessages(ctx, eventID)
	if err != nil {
		return nil, engagement.Remote("load chat messages", err)
	}
	history := make([]model.ChatMessage, 0, len(rows))
	for _, row := range rows {
		history = append(history, row.Model())
	}

	logger.Debug("Loaded chat", zap.Int64("event_id", eventID), zap.Int("messages", len(history)))
	return chat.NewTimeline(eventID, history), nil
}

// SendChatMessage appends the message to the timeline immediately, stores it and then
// confirms the pending entry with the stored row. On a failed insert the entry stays
// pending and the error is returned. The send does not wait for the realtime echo.
func SendChatMessage(
	ctx context.Context,
	database SendChatStore,
	logger *zap.Logger,
	session *model.Session,
	timeline *chat.Timeline,
	body string,
) (model.ChatMessage, error) {
	if err := engagement.RequireSession(session); err != nil {
		return model.ChatMessage{}, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return model.ChatMessage{}, engagement.Invalid("message", "must not be empty")
	}
	if utf8.RuneCountInString(body) > MaxChatMessageLength {
		return model.ChatMessage{}, engagement.Invalid("message", "must be at most %d characters", MaxChatMessageLength)
	}

	eventID := timeline.EventID()
	if _, err := requireRegistered(ctx, database, session, eventID); err != nil {
		return model.ChatMessage{}, err
	}

	volunteer, err := loadVolunteer(ctx, database, session)
	if err != nil {
		return model.ChatMessage{}, err
	}

	pending := timeline.AppendLocal(model.ChatMessage{
		AuthorID:    session.VolunteerID,
		AuthorName:  chat.AuthorName(volunteer.FullName, volunteer.Email),
		AuthorEmail: volunteer.Email,
		Body:        body,
		CreatedAt:   timeNow(),
	})

	row := db.ChatMessageFromModel(pending)
	if err := database.InsertChatMessage(ctx, &row); err != nil {
		logger.Warn("Chat message left pending",
			zap.Int64("event_id", eventID),
			zap.String("client_ref", pending.ClientRef),
			zap.Error(err))
		return pending, engagement.Remote("send chat message", err)
	}

	persisted := row.Model()
	timeline.Confirm(pending.ClientRef, persisted)

	logger.Debug("Sent chat message",
		zap.Int64("event_id", eventID),
		zap.Int64("message_id", persisted.ID),
		zap.String("client_ref", persisted.ClientRef))

	return persisted, nil
}
