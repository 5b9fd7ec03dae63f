package database

import (
	"context"
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/models"
)

// TaskSeed holds the data needed to create a new task. A freshly created
// task always starts with progress 0 and status false.
type TaskSeed struct {
	StudentID   string
	Title       string
	Priority    int
	Description *string
	DueDate     *time.Time
}

// TaskPatch is a partial update. Nil fields are left untouched; the Clear
// flags write explicit NULLs. Status is never patched directly, it is
// derived from Progress on every write that touches it.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Priority         *int
	Progress         *int
	DueDate          *time.Time
	ClearDueDate     bool
}

// TaskRepository defines task-related store operations.
type TaskRepository interface {
	GetTasksForStudent(ctx context.Context, studentID string) ([]models.Task, error)
	CreateTask(ctx context.Context, seed TaskSeed) error
	UpdateTask(ctx context.Context, taskID string, patch TaskPatch) error
	DeleteTask(ctx context.Context, taskID string) error
	SearchTasks(ctx context.Context, studentID, query string) ([]models.Task, error)
}

// SessionRepository defines pomodoro-session store operations. Sessions are
// an append-only log; there is no update or delete.
type SessionRepository interface {
	CreateSession(ctx context.Context, studentID string, duration int, status models.SessionStatus) error
	GetSessionsForStudent(ctx context.Context, studentID string) ([]models.PomodoroSession, error)
}

// ProfileRepository defines identity-related store operations.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetStudents(ctx context.Context) ([]models.Profile, error)
}

// Store combines all repository interfaces.
//
//go:generate mockgen -source=interface.go -destination=mocks/mock_repository.go -package=mocks
type Store interface {
	TaskRepository
	SessionRepository
	ProfileRepository
}

var _ Store = (*Database)(nil)
