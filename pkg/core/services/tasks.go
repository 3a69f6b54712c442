package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// EventTasksStore defines the database operations needed to view an event's tasks
type EventTasksStore interface {
	RegistrationLookup
	GetVolunteer(ctx context.Context, id string) (*db.Volunteer, error)
	ListEventTasks(ctx context.Context, eventID int64) ([]db.Task, error)
}

// ClaimTasksStore defines the database operations needed to claim tasks
type ClaimTasksStore interface {
	RegistrationLookup
	GetTask(ctx context.Context, id int64) (*db.Task, error)
	ClaimTask(ctx context.Context, taskID int64, volunteerID, email string) error
}

// AssignedTasksStore defines the database operations needed to edit and release assigned tasks
type AssignedTasksStore interface {
	GetTask(ctx context.Context, id int64) (*db.Task, error)
	ListVolunteerTasks(ctx context.Context, volunteerID string) ([]db.Task, error)
	UpdateAssignedTask(ctx context.Context, task *db.Task) error
	ReleaseTask(ctx context.Context, taskID int64, volunteerID string) error
}

// ClaimableTask is an unassigned task with the caller's skill match
type ClaimableTask struct {
	Task  model.Task
	Match engagement.SkillMatch
}

// EventTasks is the task view of one event for a registered volunteer
type EventTasks struct {
	Claimable []ClaimableTask
	Mine      []model.Task
	// Taken counts tasks assigned to other volunteers
	Taken int
}

// TaskChange is a staged edit to one assigned task. Nil fields are left unchanged.
type TaskChange struct {
	TaskID   int64
	Status   *model.TaskStatus
	Feedback *string
}

// LoadEventTasks lists an event's tasks for a volunteer registered for it
func LoadEventTasks(
	ctx context.Context,
	database EventTasksStore,
	logger *zap.Logger,
	session *model.Session,
	eventID int64,
) (*EventTasks, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}
	if _, err := requireRegistered(ctx, database, session, eventID); err != nil {
		return nil, err
	}

	volunteer, err := loadVolunteer(ctx, database, session)
	if err != nil {
		return nil, err
	}

	rows, err := database.ListEventTasks(ctx, eventID)
	if err != nil {
		return nil, engagement.Remote("load event tasks", err)
	}

	result := &EventTasks{Claimable: []ClaimableTask{}, Mine: []model.Task{}}
	for _, row := range rows {
		task := row.Model()
		switch {
		case !task.IsAssigned():
			result.Claimable = append(result.Claimable, ClaimableTask{
				Task:  task,
				Match: engagement.MatchSkills(task.RequiredSkills, volunteer.SkillIDs),
			})
		case task.AssigneeID == session.VolunteerID:
			result.Mine = append(result.Mine, task)
		default:
			result.Taken++
		}
	}

	logger.Debug("Loaded event tasks",
		zap.Int64("event_id", eventID),
		zap.Int("claimable", len(result.Claimable)),
		zap.Int("mine", len(result.Mine)),
		zap.Int("taken", result.Taken))

	return result, nil
}

// ClaimTasks claims each task independently. Every failing task is reported in the
// joined error; tasks claimed before or after a failure stay claimed.
func ClaimTasks(
	ctx context.Context,
	database ClaimTasksStore,
	logger *zap.Logger,
	session *model.Session,
	taskIDs []int64,
) ([]int64, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}
	if len(taskIDs) == 0 {
		return nil, engagement.Invalid("tasks", "select at least one task")
	}

	claimed := make([]int64, 0, len(taskIDs))
	var errs []error
	registration := make(map[int64]error)

	for _, id := range taskIDs {
		if err := claimTask(ctx, database, session, id, registration); err != nil {
			logger.Warn("Failed to claim task", zap.Int64("task_id", id), zap.Error(err))
			errs = append(errs, fmt.Errorf("task %d: %w", id, err))
			continue
		}
		claimed = append(claimed, id)
	}

	logger.Info("Claimed tasks",
		zap.String("volunteer_id", session.VolunteerID),
		zap.Int("claimed", len(claimed)),
		zap.Int("failed", len(errs)))

	return claimed, errors.Join(errs...)
}

// claimTask claims one task. registration caches the registration check per event.
func claimTask(ctx context.Context, database ClaimTasksStore, session *model.Session, taskID int64, registration map[int64]error) error {
	row, err := database.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return engagement.Invalid("task", "task %d does not exist", taskID)
		}
		return engagement.Remote("load task", err)
	}
	task := row.Model()

	regErr, checked := registration[task.EventID]
	if !checked {
		_, regErr = requireRegistered(ctx, database, session, task.EventID)
		registration[task.EventID] = regErr
	}
	if regErr != nil {
		return regErr
	}

	claimedTask, err := engagement.Claim(task, *session)
	if err != nil {
		return err
	}

	if err := database.ClaimTask(ctx, claimedTask.ID, claimedTask.AssigneeID, claimedTask.AssigneeEmail); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return engagement.ErrTaskAlreadyAssigned
		}
		return engagement.Remote("claim task", err)
	}
	return nil
}

// SubmitTaskChanges stages changes against the caller's assigned tasks and commits the
// modified ones sequentially, stopping at the first failure
func SubmitTaskChanges(
	ctx context.Context,
	database AssignedTasksStore,
	logger *zap.Logger,
	session *model.Session,
	changes []TaskChange,
) ([]int64, error) {
	if err := engagement.RequireSession(session); err != nil {
		return nil, err
	}

	rows, err := database.ListVolunteerTasks(ctx, session.VolunteerID)
	if err != nil {
		return nil, engagement.Remote("load assigned tasks", err)
	}
	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.Model())
	}

	board := engagement.NewTaskBoard(session.VolunteerID, tasks)
	for _, change := range changes {
		if change.Status != nil {
			if err := board.StageStatus(change.TaskID, *change.Status); err != nil {
				return nil, fmt.Errorf("task %d: %w", change.TaskID, err)
			}
		}
		if change.Feedback != nil {
			if err := board.StageFeedback(change.TaskID, *change.Feedback); err != nil {
				return nil, fmt.Errorf("task %d: %w", change.TaskID, err)
			}
		}
	}

	if !board.HasChanges() {
		logger.Info("No task changes to submit")
		return []int64{}, nil
	}

	logger.Debug("Submitting task changes", zap.Int("modified", len(board.Modified())))

	committed, err := board.Commit(ctx, func(ctx context.Context, task model.Task) error {
		row := taskRow(task)
		if err := database.UpdateAssignedTask(ctx, &row); err != nil {
			return engagement.Remote("update task", err)
		}
		logger.Debug("Committed task", zap.Int64("task_id", task.ID), zap.String("status", string(task.Status)))
		return nil
	})
	if err != nil {
		logger.Warn("Task submission stopped", zap.Int("committed", len(committed)), zap.Error(err))
		return committed, err
	}

	logger.Info("Submitted task changes", zap.Int("committed", len(committed)))
	return committed, nil
}

// ReleaseTask returns one of the caller's tasks to the unassigned pool. The caller
// must have confirmed.
func ReleaseTask(
	ctx context.Context,
	database AssignedTasksStore,
	logger *zap.Logger,
	session *model.Session,
	taskID int64,
	confirmed bool,
) error {
	if err := engagement.RequireSession(session); err != nil {
		return err
	}

	row, err := database.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return engagement.Invalid("task", "task %d does not exist", taskID)
		}
		return engagement.Remote("load task", err)
	}

	if _, err := engagement.Release(row.Model(), session.VolunteerID, confirmed); err != nil {
		return err
	}

	if err := database.ReleaseTask(ctx, taskID, session.VolunteerID); err != nil {
		return engagement.Remote("release task", err)
	}

	logger.Info("Released task", zap.String("volunteer_id", session.VolunteerID), zap.Int64("task_id", taskID))
	return nil
}

func taskRow(task model.Task) db.Task {
	row := db.Task{
		ID:           task.ID,
		EventID:      task.EventID,
		Description:  task.Description,
		TaskStatus:   string(task.Status),
		TaskFeedback: task.Feedback,
	}
	if task.AssigneeID != "" {
		id, email := task.AssigneeID, task.AssigneeEmail
		row.VolunteerID = &id
		row.VolunteerEmail = &email
	}
	return row
}
