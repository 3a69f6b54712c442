package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const subscriberBuffer = 32

// Broker fans out persisted chat messages to subscribers of each event
type Broker struct {
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[int64]map[*subscription]struct{}
	closed bool
}

type subscription struct {
	ch chan model.ChatMessage
}

func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		logger: logger,
		subs:   make(map[int64]map[*subscription]struct{}),
	}
}

// Subscribe returns a channel of messages for eventID. The channel is closed when ctx
// ends or the broker is closed.
func (b *Broker) Subscribe(ctx context.Context, eventID int64) <-chan model.ChatMessage {
	sub := &subscription{ch: make(chan model.ChatMessage, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	if b.subs[eventID] == nil {
		b.subs[eventID] = make(map[*subscription]struct{})
	}
	b.subs[eventID][sub] = struct{}{}
	b.mu.Unlock()

	b.logger.Debug("Chat subscriber added", zap.Int64("event_id", eventID))

	go func() {
		<-ctx.Done()
		b.unsubscribe(eventID, sub)
	}()

	return sub.ch
}

func (b *Broker) unsubscribe(eventID int64, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subs[eventID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.subs, eventID)
	}
	close(sub.ch)
	b.logger.Debug("Chat subscriber removed", zap.Int64("event_id", eventID))
}

// Publish delivers msg to every subscriber of its event. Slow subscribers miss messages
// rather than blocking the publisher.
func (b *Broker) Publish(msg model.ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[msg.EventID] {
		select {
		case sub.ch <- msg:
		default:
			b.logger.Warn("Dropping chat message for slow subscriber",
				zap.Int64("event_id", msg.EventID),
				zap.Int64("message_id", msg.ID))
		}
	}
}

// Subscribers returns the number of active subscribers for eventID
func (b *Broker) Subscribers(eventID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[eventID])
}

// Close closes every subscriber channel; later subscriptions receive a closed channel
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for eventID, subs := range b.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(b.subs, eventID)
	}
}
