package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
)

const sessionColumns = `id, student_id, duration, status, created_at`

// CreateSession appends one pomodoro session record. Sessions are never
// mutated or deleted afterwards.
func (d *Database) CreateSession(ctx context.Context, studentID string, duration int, status models.SessionStatus) error {
	if duration <= 0 {
		return nil
	}

	session := models.PomodoroSession{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Duration:  duration,
		Status:    status,
		CreatedAt: d.now(),
	}
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO pomodoro_sessions (id, student_id, duration, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.StudentID, session.Duration, string(session.Status), session.CreatedAt)
	if err != nil {
		return wrapSessionErr("create", session.ID, err)
	}

	d.publish(feed.Event{
		Table:     config.TableSessions,
		Kind:      feed.EventInsert,
		StudentID: studentID,
		RowID:     session.ID,
		Session:   &session,
	})
	return nil
}

// GetSessionsForStudent retrieves the student's session log, newest first.
func (d *Database) GetSessionsForStudent(ctx context.Context, studentID string) ([]models.PomodoroSession, error) {
	rows, err := d.DB.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM pomodoro_sessions WHERE student_id = ? ORDER BY created_at DESC", sessionColumns),
		studentID)
	if err != nil {
		return nil, wrapSessionErr("list", studentID, err)
	}
	defer rows.Close()

	var sessions []models.PomodoroSession
	for rows.Next() {
		var s models.PomodoroSession
		var status string
		if err := rows.Scan(&s.ID, &s.StudentID, &s.Duration, &status, &s.CreatedAt); err != nil {
			return nil, wrapSessionErr("list", studentID, err)
		}
		s.Status = models.SessionStatus(status)
		sessions = append(sessions, s)
	}
	return sessions, wrapSessionErr("list", studentID, rows.Err())
}
