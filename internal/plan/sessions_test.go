package plan

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gregjazzy/Apex-Driver/internal/database/mocks"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
)

func sessionEvent(s models.PomodoroSession) feed.Event {
	return feed.Event{
		Table:     "pomodoro_sessions",
		Kind:      feed.EventInsert,
		StudentID: s.StudentID,
		RowID:     s.ID,
		Session:   &s,
	}
}

func TestSessionLogPrependsInserts(t *testing.T) {
	l := NewSessionLog(nil, feed.NewHub(), studentID)
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	l.ApplyRemoteEvent(sessionEvent(models.PomodoroSession{
		ID: "s1", StudentID: studentID, Duration: 25, Status: models.SessionCompleted, CreatedAt: base,
	}))
	l.ApplyRemoteEvent(sessionEvent(models.PomodoroSession{
		ID: "s2", StudentID: studentID, Duration: 10, Status: models.SessionAbandoned, CreatedAt: base.Add(time.Hour),
	}))

	sessions := l.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "s2" {
		t.Fatalf("newest session must be first, got %s", sessions[0].ID)
	}
}

func TestSessionLogLoadKeepsNewestFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	store := mocks.NewMockSessionRepository(ctrl)
	store.EXPECT().
		GetSessionsForStudent(gomock.Any(), studentID).
		Return([]models.PomodoroSession{
			{ID: "s2", StudentID: studentID, Duration: 25, Status: models.SessionCompleted, CreatedAt: base.Add(time.Hour)},
			{ID: "s1", StudentID: studentID, Duration: 10, Status: models.SessionAbandoned, CreatedAt: base},
		}, nil)

	l := NewSessionLog(store, feed.NewHub(), studentID)
	l.Start(context.Background())
	defer l.Close()

	sessions := l.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "s2" {
		t.Fatalf("loaded log must stay newest first, got %+v", sessions[0])
	}
}

func TestSessionLogDeduplicatesByID(t *testing.T) {
	l := NewSessionLog(nil, feed.NewHub(), studentID)
	s := models.PomodoroSession{ID: "s1", StudentID: studentID, Duration: 25, Status: models.SessionCompleted}

	l.ApplyRemoteEvent(sessionEvent(s))
	l.ApplyRemoteEvent(sessionEvent(s))

	if got := l.Sessions(); len(got) != 1 {
		t.Fatalf("expected deduplicated log, got %d entries", len(got))
	}
}

func TestSessionLogIgnoresForeignScope(t *testing.T) {
	l := NewSessionLog(nil, feed.NewHub(), studentID)

	l.ApplyRemoteEvent(sessionEvent(models.PomodoroSession{
		ID: "s1", StudentID: "student-2", Duration: 25, Status: models.SessionCompleted,
	}))

	if got := l.Sessions(); len(got) != 0 {
		t.Fatalf("foreign session applied: %+v", got)
	}
}

func TestRecordWithoutIdentityIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockSessionRepository(ctrl)
	// No CreateSession call expected.

	l := NewSessionLog(store, feed.NewHub(), "")
	if err := l.Record(context.Background(), 25, models.SessionCompleted); err != nil {
		t.Fatalf("Record without identity should no-op, got %v", err)
	}
}

func TestRecordWritesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockSessionRepository(ctrl)
	store.EXPECT().
		CreateSession(gomock.Any(), studentID, 25, models.SessionCompleted).
		Return(nil)

	l := NewSessionLog(store, feed.NewHub(), studentID)
	if err := l.Record(context.Background(), 25, models.SessionCompleted); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
}
