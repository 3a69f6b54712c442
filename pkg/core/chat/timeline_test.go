package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

var base = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func persisted(id int64, ref string, body string, at time.Time) model.ChatMessage {
	return model.ChatMessage{
		ID:         id,
		ClientRef:  ref,
		EventID:    3,
		AuthorID:   "vol-alice",
		AuthorName: "Alice",
		Body:       body,
		CreatedAt:  at,
	}
}

func bodies(msgs []model.ChatMessage) []string {
	result := make([]string, len(msgs))
	for i, m := range msgs {
		result[i] = m.Body
	}
	return result
}

func TestTimeline_OptimisticAppendThenEcho(t *testing.T) {
	tl := NewTimeline(3, nil)

	local := tl.AppendLocal(model.ChatMessage{AuthorID: "vol-alice", Body: "hello", CreatedAt: base})
	require.NotEmpty(t, local.ClientRef)
	assert.Zero(t, local.ID)
	assert.Len(t, tl.Pending(), 1)

	echo := persisted(41, local.ClientRef, "hello", base.Add(time.Millisecond))
	assert.True(t, tl.Receive(echo))

	// The confirmation of the insert arrives after the echo
	tl.Confirm(local.ClientRef, echo)

	msgs := tl.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Body)
	assert.Equal(t, int64(41), msgs[0].ID)
	assert.Empty(t, tl.Pending())
}

func TestTimeline_ConfirmBeforeEcho(t *testing.T) {
	tl := NewTimeline(3, nil)

	local := tl.AppendLocal(model.ChatMessage{Body: "hello", CreatedAt: base})
	row := persisted(41, local.ClientRef, "hello", base)

	tl.Confirm(local.ClientRef, row)
	assert.False(t, tl.Receive(row), "echo of a confirmed message is a duplicate")

	assert.Equal(t, []string{"hello"}, bodies(tl.Messages()))
}

func TestTimeline_IdenticalContentIsNotDeduplicated(t *testing.T) {
	tl := NewTimeline(3, nil)

	local := tl.AppendLocal(model.ChatMessage{Body: "hello", CreatedAt: base})
	tl.Confirm(local.ClientRef, persisted(41, local.ClientRef, "hello", base))

	// Another volunteer says the same thing
	assert.True(t, tl.Receive(persisted(42, "other-ref", "hello", base.Add(time.Second))))

	assert.Equal(t, []string{"hello", "hello"}, bodies(tl.Messages()))
}

func TestTimeline_ReceiveOrdersByCreationTime(t *testing.T) {
	tl := NewTimeline(3, []model.ChatMessage{
		persisted(1, "a", "first", base),
		persisted(3, "c", "third", base.Add(2*time.Minute)),
	})

	assert.True(t, tl.Receive(persisted(2, "b", "second", base.Add(time.Minute))))
	assert.False(t, tl.Receive(persisted(2, "b", "second", base.Add(time.Minute))))

	assert.Equal(t, []string{"first", "second", "third"}, bodies(tl.Messages()))
}

func TestTimeline_IgnoresOtherEvents(t *testing.T) {
	tl := NewTimeline(3, nil)

	msg := persisted(9, "x", "elsewhere", base)
	msg.EventID = 4

	assert.False(t, tl.Receive(msg))
	assert.Empty(t, tl.Messages())
}

func TestTimeline_FailedSendStays(t *testing.T) {
	tl := NewTimeline(3, nil)
	tl.AppendLocal(model.ChatMessage{Body: "presumed sent", CreatedAt: base})

	// No confirm and no echo
	assert.Equal(t, []string{"presumed sent"}, bodies(tl.Messages()))
	assert.Len(t, tl.Pending(), 1)
}

func TestAuthorName(t *testing.T) {
	assert.Equal(t, "Alice Smith", AuthorName("  Alice Smith ", "alice@example.com"))
	assert.Equal(t, "alice", AuthorName("", "alice@example.com"))
	assert.Equal(t, "Anonymous", AuthorName("", ""))
	assert.Equal(t, "Anonymous", AuthorName(" ", "@example.com"))
}
