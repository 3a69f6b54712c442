package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const taskSelect = `
	SELECT
		t.task_id, t.event_id, e.title AS event_title, t.task_description, t.task_status,
		t.task_feedback, t.volunteer_id::text AS volunteer_id, t.volunteer_email,
		COALESCE(array_agg(s.id ORDER BY ts.position, s.id) FILTER (WHERE s.id IS NOT NULL), '{}') AS required_skill_ids,
		COALESCE(array_agg(s.name ORDER BY ts.position, s.id) FILTER (WHERE s.id IS NOT NULL), '{}') AS required_skill_names
	FROM tasks t
	JOIN events e ON e.id = t.event_id
	LEFT JOIN task_skills ts ON ts.task_id = t.task_id
	LEFT JOIN skills s ON s.id = ts.skill_id
`

const taskGroupBy = ` GROUP BY t.task_id, e.title `

// GetTask retrieves a task by id
func (d *DB) GetTask(ctx context.Context, id int64) (*db.Task, error) {
	rows, err := d.pool.Query(ctx, taskSelect+` WHERE t.task_id = $1`+taskGroupBy, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	task, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[db.Task])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return &task, nil
}

// ListEventTasks retrieves every task of an event in creation order
func (d *DB) ListEventTasks(ctx context.Context, eventID int64) ([]db.Task, error) {
	return d.listTasks(ctx, taskSelect+` WHERE t.event_id = $1`+taskGroupBy+` ORDER BY t.task_id`, eventID)
}

// ListVolunteerTasks retrieves the tasks assigned to a volunteer, newest first
func (d *DB) ListVolunteerTasks(ctx context.Context, volunteerID string) ([]db.Task, error) {
	return d.listTasks(ctx, taskSelect+`
		WHERE t.volunteer_id = $1 AND t.task_status <> 'unassigned'
	`+taskGroupBy+` ORDER BY t.created_at DESC, t.task_id DESC`, volunteerID)
}

func (d *DB) listTasks(ctx context.Context, query string, arg any) ([]db.Task, error) {
	rows, err := d.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.Task])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

// ClaimTask assigns an unassigned task. The update is conditional on the task still
// being unassigned, so of two concurrent claims exactly one succeeds.
func (d *DB) ClaimTask(ctx context.Context, taskID int64, volunteerID, email string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE tasks
		SET volunteer_id = $2, volunteer_email = $3, task_status = 'assigned'
		WHERE task_id = $1 AND task_status = 'unassigned' AND volunteer_id IS NULL
	`, taskID, volunteerID, email)
	if err != nil {
		return fmt.Errorf("failed to claim task %d: %w", taskID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", taskID, db.ErrConflict)
	}
	return nil
}

// UpdateAssignedTask writes status and feedback of a task still held by its assignee
func (d *DB) UpdateAssignedTask(ctx context.Context, task *db.Task) error {
	if task.VolunteerID == nil {
		return fmt.Errorf("task %d has no assignee", task.ID)
	}

	tag, err := d.pool.Exec(ctx, `
		UPDATE tasks
		SET task_status = $3, task_feedback = $4
		WHERE task_id = $1 AND volunteer_id = $2 AND task_status <> 'unassigned'
	`, task.ID, *task.VolunteerID, task.TaskStatus, task.TaskFeedback)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", task.ID, db.ErrConflict)
	}
	return nil
}

// ReleaseTask returns a task held by volunteerID to the unassigned pool
func (d *DB) ReleaseTask(ctx context.Context, taskID int64, volunteerID string) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE tasks
		SET volunteer_id = NULL, volunteer_email = NULL, task_status = 'unassigned'
		WHERE task_id = $1 AND volunteer_id = $2
	`, taskID, volunteerID)
	if err != nil {
		return fmt.Errorf("failed to release task %d: %w", taskID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", taskID, db.ErrConflict)
	}
	return nil
}

// CountCompletedTasks counts a volunteer's tasks in the complete status
func (d *DB) CountCompletedTasks(ctx context.Context, volunteerID string) (int, error) {
	var count int
	err := d.pool.QueryRow(ctx, `
		SELECT count(*) FROM tasks WHERE volunteer_id = $1 AND task_status = 'complete'
	`, volunteerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return count, nil
}
