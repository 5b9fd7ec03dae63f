package plan

import (
	"context"
	"sync"

	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/database"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

// SessionLog mirrors the student's pomodoro session history: full load on
// Start, then prepend on every insert event. Sessions are append-only, so
// insert is the only event kind applied.
type SessionLog struct {
	store     database.SessionRepository
	hub       *feed.Hub
	studentID string

	mu       sync.Mutex
	sessions []models.PomodoroSession
	loading  bool

	sub  *feed.Subscription
	done chan struct{}
}

func NewSessionLog(store database.SessionRepository, hub *feed.Hub, studentID string) *SessionLog {
	return &SessionLog{
		store:     store,
		hub:       hub,
		studentID: studentID,
		loading:   true,
		done:      make(chan struct{}),
	}
}

// Start loads the history and follows the change feed until ctx ends or
// Close is called. Load failures are logged; the log stays empty.
func (l *SessionLog) Start(ctx context.Context) {
	if l.studentID == "" {
		l.mu.Lock()
		l.loading = false
		l.mu.Unlock()
		return
	}

	l.sub = l.hub.Subscribe(config.TableSessions, l.studentID)
	go l.run(ctx)

	sessions, err := l.store.GetSessionsForStudent(ctx, l.studentID)
	if ctx.Err() != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		util.LogError("loading sessions for "+l.studentID, err)
	} else {
		// Rows arrive newest first; fold oldest first so the prepending
		// upsert reproduces the store order.
		for i := len(sessions) - 1; i >= 0; i-- {
			l.upsertLocked(sessions[i])
		}
	}
	l.loading = false
}

func (l *SessionLog) run(ctx context.Context) {
	defer l.sub.Close()
	for {
		select {
		case ev, ok := <-l.sub.C():
			if !ok {
				return
			}
			l.ApplyRemoteEvent(ev)
		case <-ctx.Done():
			return
		case <-l.done:
			return
		}
	}
}

// Close tears down the subscription. Idempotent.
func (l *SessionLog) Close() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
}

func (l *SessionLog) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Sessions returns a copy of the log, newest first.
func (l *SessionLog) Sessions() []models.PomodoroSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.PomodoroSession, len(l.sessions))
	copy(out, l.sessions)
	return out
}

// ApplyRemoteEvent folds an insert event into the log, deduplicated by id.
func (l *SessionLog) ApplyRemoteEvent(ev feed.Event) {
	if ev.Table != config.TableSessions || ev.StudentID != l.studentID {
		return
	}
	if ev.Kind != feed.EventInsert || ev.Session == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.upsertLocked(*ev.Session)
}

// upsertLocked prepends a new session or replaces an existing one in place.
func (l *SessionLog) upsertLocked(session models.PomodoroSession) {
	for i, s := range l.sessions {
		if s.ID == session.ID {
			l.sessions[i] = session
			return
		}
	}
	l.sessions = append([]models.PomodoroSession{session}, l.sessions...)
}

// Record appends a session to the store; the log converges via the echo.
// Without a scoped student this is a no-op.
func (l *SessionLog) Record(ctx context.Context, duration int, status models.SessionStatus) error {
	if l.studentID == "" {
		return nil
	}
	return l.store.CreateSession(ctx, l.studentID, duration, status)
}
