package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const chatChannel = "chat_messages"

const chatColumns = `
	m.id, m.client_ref, m.event_id, m.volunteer_id::text AS volunteer_id, m.author_name,
	m.author_email, m.message, m.created_at
`

// ListChatMessages retrieves an event's messages, oldest first
func (d *DB) ListChatMessages(ctx context.Context, eventID int64) ([]db.ChatMessage, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+chatColumns+`
		FROM chat_messages m
		WHERE m.event_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	messages, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.ChatMessage])
	if err != nil {
		return nil, fmt.Errorf("failed to scan chat messages: %w", err)
	}
	return messages, nil
}

// InsertChatMessage stores a message and fills in its id and created_at. Re-sending a
// client_ref returns the row already stored for it.
func (d *DB) InsertChatMessage(ctx context.Context, message *db.ChatMessage) error {
	err := d.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (client_ref, event_id, volunteer_id, author_name, author_email, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (client_ref) DO UPDATE SET client_ref = EXCLUDED.client_ref
		RETURNING id, created_at
	`,
		message.ClientRef,
		message.EventID,
		message.VolunteerID,
		message.AuthorName,
		message.AuthorEmail,
		message.Message,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListRecentMessages retrieves the newest messages across the events a volunteer is
// registered for
func (d *DB) ListRecentMessages(ctx context.Context, volunteerID string, limit int) ([]db.RecentMessage, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+chatColumns+`, e.title AS event_title
		FROM chat_messages m
		JOIN events e ON e.id = m.event_id
		JOIN volunteer_event ve ON ve.event_id = m.event_id
		WHERE ve.volunteer_id = $1 AND ve.status = 'registered'
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2
	`, volunteerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	messages, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.RecentMessage])
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent messages: %w", err)
	}
	return messages, nil
}

// ListenChatMessages holds a dedicated connection listening for inserted chat messages
// and passes each one to handler until ctx ends
func (d *DB) ListenChatMessages(ctx context.Context, handler func(db.ChatMessage)) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+chatChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", chatChannel, err)
	}
	d.logger.Info("Listening for chat messages", zap.String("channel", chatChannel))

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				// The connection may be mid-read, don't hand it back to the pool
				conn.Hijack().Close(context.Background())
				return nil
			}
			return fmt.Errorf("failed waiting for notification: %w", err)
		}

		message, err := decodeChatNotification(notification.Payload)
		if err != nil {
			d.logger.Warn("Ignoring malformed chat notification", zap.Error(err))
			continue
		}

		d.logger.Debug("Chat message notification",
			zap.Int64("event_id", message.EventID),
			zap.Int64("message_id", message.ID))
		handler(message)
	}
}

func decodeChatNotification(payload string) (db.ChatMessage, error) {
	var message db.ChatMessage
	if err := json.Unmarshal([]byte(payload), &message); err != nil {
		return db.ChatMessage{}, fmt.Errorf("failed to decode chat notification: %w", err)
	}
	if message.ID == 0 || message.EventID == 0 {
		return db.ChatMessage{}, fmt.Errorf("chat notification missing id or event_id")
	}
	return message, nil
}
