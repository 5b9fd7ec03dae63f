package testutil

import (
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/models"
)

// TaskBuilder provides fluent API for creating test tasks.
type TaskBuilder struct {
	task models.Task
}

func NewTask() *TaskBuilder {
	now := time.Now()
	return &TaskBuilder{
		task: models.Task{
			ID:        "task-1",
			StudentID: "student-1",
			Title:     "Test Task",
			Priority:  2,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (b *TaskBuilder) WithID(id string) *TaskBuilder {
	b.task.ID = id
	return b
}

func (b *TaskBuilder) WithStudent(id string) *TaskBuilder {
	b.task.StudentID = id
	return b
}

func (b *TaskBuilder) WithTitle(title string) *TaskBuilder {
	b.task.Title = title
	return b
}

func (b *TaskBuilder) WithPriority(p int) *TaskBuilder {
	b.task.Priority = p
	return b
}

func (b *TaskBuilder) WithProgress(p int) *TaskBuilder {
	b.task.Progress = p
	b.task.Status = p == 100
	return b
}

func (b *TaskBuilder) WithDueDate(d time.Time) *TaskBuilder {
	b.task.DueDate = &d
	return b
}

func (b *TaskBuilder) WithCreatedAt(t time.Time) *TaskBuilder {
	b.task.CreatedAt = t
	return b
}

func (b *TaskBuilder) Build() models.Task {
	return b.task
}

// SessionBuilder provides fluent API for creating test pomodoro sessions.
type SessionBuilder struct {
	session models.PomodoroSession
}

func NewSession() *SessionBuilder {
	return &SessionBuilder{
		session: models.PomodoroSession{
			ID:        "session-1",
			StudentID: "student-1",
			Duration:  25,
			Status:    models.SessionCompleted,
			CreatedAt: time.Now(),
		},
	}
}

func (b *SessionBuilder) WithID(id string) *SessionBuilder {
	b.session.ID = id
	return b
}

func (b *SessionBuilder) WithStudent(id string) *SessionBuilder {
	b.session.StudentID = id
	return b
}

func (b *SessionBuilder) WithDuration(minutes int) *SessionBuilder {
	b.session.Duration = minutes
	return b
}

func (b *SessionBuilder) WithStatus(s models.SessionStatus) *SessionBuilder {
	b.session.Status = s
	return b
}

func (b *SessionBuilder) WithCreatedAt(t time.Time) *SessionBuilder {
	b.session.CreatedAt = t
	return b
}

func (b *SessionBuilder) Build() models.PomodoroSession {
	return b.session
}
