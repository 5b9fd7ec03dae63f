package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

const taskColumns = `id, student_id, title, description, status, priority, progress, due_date, created_at, updated_at`

// Projection order: urgent first, newest of equal priority first.
const taskOrder = `priority ASC, created_at DESC`

func validProgress(progress int) bool {
	switch progress {
	case 0, 25, 50, 75, 100:
		return true
	}
	return false
}

func scanTask(row interface{ Scan(...interface{}) error }) (models.Task, error) {
	var t models.Task
	var description sql.NullString
	var dueDate sql.NullTime
	var status int
	if err := row.Scan(
		&t.ID,
		&t.StudentID,
		&t.Title,
		&description,
		&status,
		&t.Priority,
		&t.Progress,
		&dueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return models.Task{}, err
	}
	t.Status = util.IntToBool(status)
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return t, nil
}

func (d *Database) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTasksForStudent retrieves every task owned by the student, ordered by
// priority ascending then creation time descending.
func (d *Database) GetTasksForStudent(ctx context.Context, studentID string) ([]models.Task, error) {
	tasks, err := d.queryTasks(ctx,
		fmt.Sprintf("SELECT %s FROM tasks WHERE student_id = ? ORDER BY %s", taskColumns, taskOrder),
		studentID)
	return tasks, wrapTaskErr("list", studentID, err)
}

func (d *Database) getTask(ctx context.Context, taskID string) (models.Task, error) {
	row := d.DB.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM tasks WHERE id = ?", taskColumns), taskID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

// CreateTask inserts a new task with status false and progress 0. A blank
// title is rejected by doing nothing; callers wanting feedback must
// pre-validate.
func (d *Database) CreateTask(ctx context.Context, seed TaskSeed) error {
	if strings.TrimSpace(seed.Title) == "" {
		return nil
	}
	priority := seed.Priority
	if priority < 1 || priority > 3 {
		priority = 3
	}

	now := d.now()
	id := uuid.NewString()
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, student_id, title, description, status, priority, progress, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, 0, ?, ?, ?)`,
		id, seed.StudentID, seed.Title, nullString(seed.Description), priority, nullTime(seed.DueDate), now, now)
	if err != nil {
		return wrapTaskErr("create", id, err)
	}

	d.echoTask(ctx, feed.EventInsert, id)
	return nil
}

// UpdateTask applies a partial update. Untouched fields keep their values;
// Clear flags write NULL. Progress writes outside the step domain and blank
// titles are dropped from the patch. Status always tracks progress == 100.
func (d *Database) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) error {
	b := newUpdateBuilder(config.TableTasks)

	if patch.Title != nil && strings.TrimSpace(*patch.Title) != "" {
		b.Set("title", *patch.Title)
	}
	switch {
	case patch.ClearDescription:
		b.SetNull("description")
	case patch.Description != nil:
		b.Set("description", *patch.Description)
	}
	if patch.Priority != nil && *patch.Priority >= 1 && *patch.Priority <= 3 {
		b.Set("priority", *patch.Priority)
	}
	if patch.Progress != nil && validProgress(*patch.Progress) {
		b.Set("progress", *patch.Progress)
		b.Set("status", util.BoolToInt(*patch.Progress == 100))
	}
	switch {
	case patch.ClearDueDate:
		b.SetNull("due_date")
	case patch.DueDate != nil:
		b.Set("due_date", *patch.DueDate)
	}
	if b.Empty() {
		return nil
	}
	b.Set("updated_at", d.now())

	query, args := b.Build("id = ?", taskID)
	res, err := d.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapTaskErr("update", taskID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return wrapTaskErr("update", taskID, ErrNotFound)
	}

	d.echoTask(ctx, feed.EventUpdate, taskID)
	return nil
}

// DeleteTask removes the task permanently. No soft delete, no undo.
func (d *Database) DeleteTask(ctx context.Context, taskID string) error {
	task, err := d.getTask(ctx, taskID)
	if err == ErrNotFound {
		return nil
	}
	if err != nil {
		return wrapTaskErr("delete", taskID, err)
	}

	if _, err := d.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", taskID); err != nil {
		return wrapTaskErr("delete", taskID, err)
	}

	d.publish(feed.Event{
		Table:     config.TableTasks,
		Kind:      feed.EventDelete,
		StudentID: task.StudentID,
		RowID:     taskID,
	})
	return nil
}

// SearchTasks finds the student's tasks whose title matches the query.
func (d *Database) SearchTasks(ctx context.Context, studentID, query string) ([]models.Task, error) {
	likeQuery := "%" + query + "%"
	tasks, err := d.queryTasks(ctx,
		fmt.Sprintf("SELECT %s FROM tasks WHERE student_id = ? AND title LIKE ? ORDER BY %s LIMIT 20", taskColumns, taskOrder),
		studentID, likeQuery)
	return tasks, wrapTaskErr("search", studentID, err)
}

// echoTask re-reads the row after a write and publishes it, so subscribers
// converge on the authoritative stored state rather than the caller's view.
func (d *Database) echoTask(ctx context.Context, kind feed.EventKind, taskID string) {
	task, err := d.getTask(ctx, taskID)
	if err != nil {
		util.LogError("feed echo for task "+taskID, err)
		return
	}
	d.publish(feed.Event{
		Table:     config.TableTasks,
		Kind:      kind,
		StudentID: task.StudentID,
		RowID:     task.ID,
		Task:      &task,
	})
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
