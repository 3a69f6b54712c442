package chat

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// Timeline is the ordered message list of a single event's chat.
// Locally sent messages are appended before the store confirms them; confirmations and
// realtime echoes are matched back to them by identity (server id or client ref).
type Timeline struct {
	mu       sync.Mutex
	eventID  int64
	messages []model.ChatMessage
}

// NewTimeline builds a timeline seeded with already persisted messages
func NewTimeline(eventID int64, history []model.ChatMessage) *Timeline {
	tl := &Timeline{eventID: eventID}
	for _, msg := range history {
		tl.receive(msg)
	}
	return tl
}

// EventID returns the event this timeline belongs to
func (tl *Timeline) EventID() int64 {
	return tl.eventID
}

// NewClientRef returns a fresh correlation id for an outgoing message
func NewClientRef() string {
	return uuid.NewString()
}

// AppendLocal optimistically appends an outgoing message. A ClientRef is assigned if
// the message has none. The returned message is the pending entry.
func (tl *Timeline) AppendLocal(msg model.ChatMessage) model.ChatMessage {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if msg.ClientRef == "" {
		msg.ClientRef = NewClientRef()
	}
	msg.ID = 0
	msg.EventID = tl.eventID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	tl.messages = append(tl.messages, msg)
	return msg
}

// Confirm replaces the pending entry for clientRef with the persisted row.
// If the realtime echo already replaced it, the row is merged by id instead.
func (tl *Timeline) Confirm(clientRef string, persisted model.ChatMessage) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if persisted.ClientRef == "" {
		persisted.ClientRef = clientRef
	}
	tl.receive(persisted)
}

// Receive ingests a message from the realtime stream. Returns false when the message
// was already present.
func (tl *Timeline) Receive(msg model.ChatMessage) bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if msg.EventID != tl.eventID {
		return false
	}
	return tl.receive(msg)
}

func (tl *Timeline) receive(msg model.ChatMessage) bool {
	if msg.ID != 0 {
		for _, existing := range tl.messages {
			if existing.ID == msg.ID {
				return false
			}
		}
	}

	if msg.ClientRef != "" {
		for i, existing := range tl.messages {
			if existing.ID == 0 && existing.ClientRef == msg.ClientRef {
				// Keep the pending entry's position so the sender's view does not jump
				tl.messages[i] = msg
				return true
			}
		}
	}

	idx := sort.Search(len(tl.messages), func(i int) bool {
		return tl.messages[i].CreatedAt.After(msg.CreatedAt)
	})
	tl.messages = append(tl.messages, model.ChatMessage{})
	copy(tl.messages[idx+1:], tl.messages[idx:])
	tl.messages[idx] = msg
	return true
}

// Messages returns a copy of the timeline in display order
func (tl *Timeline) Messages() []model.ChatMessage {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	result := make([]model.ChatMessage, len(tl.messages))
	copy(result, tl.messages)
	return result
}

// Pending returns messages not yet confirmed by the store
func (tl *Timeline) Pending() []model.ChatMessage {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	var pending []model.ChatMessage
	for _, msg := range tl.messages {
		if msg.ID == 0 {
			pending = append(pending, msg)
		}
	}
	return pending
}

// AuthorName is the display name snapshotted onto a message at send time
func AuthorName(fullName, email string) string {
	if name := strings.TrimSpace(fullName); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(strings.TrimSpace(email), "@"); ok && local != "" {
		return local
	}
	return "Anonymous"
}
