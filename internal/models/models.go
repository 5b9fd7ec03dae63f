package models

import "time"

// Role identifies which side of the coaching relationship a profile is on.
type Role string

const (
	RoleCoach   Role = "coach"
	RoleStudent Role = "student"
)

// SessionStatus enumerates the possible outcomes of a pomodoro session.
type SessionStatus string

const (
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// Profile represents an authenticated user. The role is assigned at signup
// and never changes afterwards.
type Profile struct {
	ID        string
	Role      Role
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task represents a single action-plan item owned by one student.
type Task struct {
	ID          string
	StudentID   string
	Title       string
	Description *string
	Status      bool // kept in lockstep with Progress == 100
	Priority    int  // 1=Urgent, 2=Important, 3=Normal
	Progress    int  // one of 0, 25, 50, 75, 100
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Completed reports whether the task is done. Progress is the source of
// truth; Status is a stored mirror of this value.
func (t Task) Completed() bool {
	return t.Progress == 100
}

// PomodoroSession is an immutable record of one finished focus interval.
type PomodoroSession struct {
	ID        string
	StudentID string
	Duration  int // whole minutes
	Status    SessionStatus
	CreatedAt time.Time
}
