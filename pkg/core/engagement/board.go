package engagement

import (
	"context"
	"fmt"
	"sort"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// stagedTask pairs the locally edited task with the last committed snapshot
type stagedTask struct {
	staged    model.Task
	committed model.Task
	order     int // when the task became modified, 0 when unmodified
}

func (s *stagedTask) modified() bool {
	return s.staged.Status != s.committed.Status || s.staged.Feedback != s.committed.Feedback
}

// TaskBoard stages edits to a volunteer's assigned tasks until they are submitted.
// It is not safe for concurrent use.
type TaskBoard struct {
	actorID string
	tasks   []*stagedTask
	byID    map[int64]*stagedTask
	seq     int
}

// NewTaskBoard builds a board over the actor's assigned tasks; the given values are the committed snapshot
func NewTaskBoard(actorID string, tasks []model.Task) *TaskBoard {
	b := &TaskBoard{
		actorID: actorID,
		tasks:   make([]*stagedTask, 0, len(tasks)),
		byID:    make(map[int64]*stagedTask, len(tasks)),
	}
	for _, t := range tasks {
		st := &stagedTask{staged: t, committed: t}
		b.tasks = append(b.tasks, st)
		b.byID[t.ID] = st
	}
	return b
}

// StageStatus records a status edit without committing it
func (b *TaskBoard) StageStatus(taskID int64, status model.TaskStatus) error {
	return b.stage(taskID, func(t model.Task) (model.Task, error) {
		return UpdateStatus(t, b.actorID, status)
	})
}

// StageFeedback records a feedback edit without committing it
func (b *TaskBoard) StageFeedback(taskID int64, text string) error {
	return b.stage(taskID, func(t model.Task) (model.Task, error) {
		return UpdateFeedback(t, b.actorID, text)
	})
}

func (b *TaskBoard) stage(taskID int64, edit func(model.Task) (model.Task, error)) error {
	st, ok := b.byID[taskID]
	if !ok {
		return Invalid("task", "task %d is not one of your assigned tasks", taskID)
	}

	updated, err := edit(st.staged)
	if err != nil {
		return err
	}

	wasModified := st.modified()
	st.staged = updated
	switch {
	case !st.modified():
		st.order = 0
	case !wasModified:
		b.seq++
		st.order = b.seq
	}
	return nil
}

// HasChanges reports whether any task differs from its committed snapshot
func (b *TaskBoard) HasChanges() bool {
	for _, st := range b.tasks {
		if st.modified() {
			return true
		}
	}
	return false
}

// Modified returns the staged values of modified tasks in the order they were first modified
func (b *TaskBoard) Modified() []model.Task {
	pending := b.pending()
	result := make([]model.Task, len(pending))
	for i, st := range pending {
		result[i] = st.staged
	}
	return result
}

// Tasks returns the staged view of every task in board order
func (b *TaskBoard) Tasks() []model.Task {
	result := make([]model.Task, len(b.tasks))
	for i, st := range b.tasks {
		result[i] = st.staged
	}
	return result
}

// Committed returns the last committed snapshot of a task
func (b *TaskBoard) Committed(taskID int64) (model.Task, bool) {
	st, ok := b.byID[taskID]
	if !ok {
		return model.Task{}, false
	}
	return st.committed, true
}

// CommitFunc persists a single staged task
type CommitFunc func(ctx context.Context, task model.Task) error

// Commit persists modified tasks one at a time in modification order.
// The snapshot of each task is updated only after its own commit succeeds. The first
// failure stops the batch and is returned as a *BatchError.
func (b *TaskBoard) Commit(ctx context.Context, commit CommitFunc) ([]int64, error) {
	pending := b.pending()
	committed := make([]int64, 0, len(pending))

	for i, st := range pending {
		if err := ctx.Err(); err != nil {
			return committed, b.batchError(st.staged.ID, committed, pending[i:], err)
		}
		if err := commit(ctx, st.staged); err != nil {
			return committed, b.batchError(st.staged.ID, committed, pending[i:], err)
		}
		st.committed = st.staged
		st.order = 0
		committed = append(committed, st.staged.ID)
	}

	return committed, nil
}

func (b *TaskBoard) batchError(failedID int64, committed []int64, rest []*stagedTask, err error) error {
	pendingIDs := make([]int64, len(rest))
	for i, st := range rest {
		pendingIDs[i] = st.staged.ID
	}
	return &BatchError{
		FailedTaskID: failedID,
		Committed:    append([]int64(nil), committed...),
		Pending:      pendingIDs,
		Err:          fmt.Errorf("task %d: %w", failedID, err),
	}
}

func (b *TaskBoard) pending() []*stagedTask {
	var pending []*stagedTask
	for _, st := range b.tasks {
		if st.modified() {
			pending = append(pending, st)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].order < pending[j].order
	})
	return pending
}
