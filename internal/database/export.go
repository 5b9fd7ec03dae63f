package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/models"
)

// ExportTask is the JSON shape for exported tasks. Dates use RFC 3339 for
// timestamps and plain calendar dates for due dates.
type ExportTask struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    int     `json:"priority"`
	Progress    int     `json:"progress"`
	Status      bool    `json:"status"`
	DueDate     *string `json:"due_date,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type ExportSession struct {
	ID        string `json:"id"`
	Duration  int    `json:"duration"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// NewExportTask converts a task to its wire shape.
func NewExportTask(t models.Task) ExportTask {
	et := ExportTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Progress:    t.Progress,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02")
		et.DueDate = &due
	}
	return et
}

// NewExportSession converts a session to its wire shape.
func NewExportSession(s models.PomodoroSession) ExportSession {
	return ExportSession{
		ID:        s.ID,
		Duration:  s.Duration,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

type ExportBundle struct {
	StudentID  string          `json:"student_id"`
	ExportedAt string          `json:"exported_at"`
	Tasks      []ExportTask    `json:"tasks"`
	Sessions   []ExportSession `json:"sessions"`
}

// BuildExportBundle assembles one student's action plan and session log
// into their wire shapes.
func BuildExportBundle(ctx context.Context, store Store, studentID string, exportedAt time.Time) (ExportBundle, error) {
	tasks, err := store.GetTasksForStudent(ctx, studentID)
	if err != nil {
		return ExportBundle{}, err
	}
	sessions, err := store.GetSessionsForStudent(ctx, studentID)
	if err != nil {
		return ExportBundle{}, err
	}

	bundle := ExportBundle{
		StudentID:  studentID,
		ExportedAt: exportedAt.Format(time.RFC3339),
		Tasks:      make([]ExportTask, 0, len(tasks)),
		Sessions:   make([]ExportSession, 0, len(sessions)),
	}
	for _, t := range tasks {
		bundle.Tasks = append(bundle.Tasks, NewExportTask(t))
	}
	for _, s := range sessions {
		bundle.Sessions = append(bundle.Sessions, NewExportSession(s))
	}
	return bundle, nil
}

// ExportStudentData serializes one student's action plan and session log.
func (d *Database) ExportStudentData(ctx context.Context, studentID string) ([]byte, error) {
	bundle, err := BuildExportBundle(ctx, d, studentID, d.now())
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(bundle, "", "  ")
}
