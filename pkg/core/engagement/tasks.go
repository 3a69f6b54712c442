package engagement

import (
	"strings"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// Claim assigns an unassigned task to a volunteer at the lowest assigned sub-status
func Claim(task model.Task, volunteer model.Session) (model.Task, error) {
	if err := RequireSession(&volunteer); err != nil {
		return task, err
	}
	if task.IsAssigned() || task.Status != model.TaskUnassigned {
		return task, ErrTaskAlreadyAssigned
	}

	task.AssigneeID = volunteer.VolunteerID
	task.AssigneeEmail = volunteer.Email
	task.Status = model.AssignedStatuses[0]
	return task, nil
}

// UpdateStatus moves an assigned task between assigned sub-statuses
func UpdateStatus(task model.Task, actorID string, status model.TaskStatus) (model.Task, error) {
	if err := requireAssignee(task, actorID); err != nil {
		return task, err
	}
	if !status.IsAssigned() {
		return task, Invalid("status", "%q is not a valid status for an assigned task", status)
	}

	task.Status = status
	return task, nil
}

// UpdateFeedback replaces the notes on an assigned task
func UpdateFeedback(task model.Task, actorID string, text string) (model.Task, error) {
	if err := requireAssignee(task, actorID); err != nil {
		return task, err
	}

	task.Feedback = text
	return task, nil
}

// Release returns an assigned task to the general pool. The actor must confirm first.
func Release(task model.Task, actorID string, confirmed bool) (model.Task, error) {
	if err := requireAssignee(task, actorID); err != nil {
		return task, err
	}
	if !confirmed {
		return task, ErrConfirmationRequired
	}

	task.AssigneeID = ""
	task.AssigneeEmail = ""
	task.Status = model.TaskUnassigned
	return task, nil
}

// ParseTaskStatus accepts the canonical vocabulary plus the aliases older clients send
func ParseTaskStatus(s string) (model.TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unassigned":
		return model.TaskUnassigned, nil
	case "assigned", "to do", "todo", "to-do":
		return model.TaskAssigned, nil
	case "in_progress", "in progress", "inprogress", "doing":
		return model.TaskInProgress, nil
	case "complete", "completed", "done":
		return model.TaskComplete, nil
	}
	return "", Invalid("status", "unknown task status %q", s)
}

func requireAssignee(task model.Task, actorID string) error {
	if !task.IsAssigned() || task.Status == model.TaskUnassigned {
		return ErrTaskNotAssigned
	}
	if actorID == "" || task.AssigneeID != actorID {
		return ErrNotAssignee
	}
	return nil
}
