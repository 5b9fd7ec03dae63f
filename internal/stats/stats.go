// Package stats derives dashboard figures from already-loaded task and
// session collections. Everything here is a pure function of its inputs.
package stats

import (
	"math"
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/models"
)

// TaskSummary is the headline task breakdown for one student.
type TaskSummary struct {
	Total     int
	Completed int
	// Rate is the completion percentage, rounded to the nearest whole
	// number. An empty collection reports 0.
	Rate int
}

// SummarizeTasks counts completed tasks and the overall completion rate.
func SummarizeTasks(tasks []models.Task) TaskSummary {
	s := TaskSummary{Total: len(tasks)}
	for _, task := range tasks {
		if task.Completed() {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Rate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}

// SessionSummary totals finished focus work. Abandoned sessions are kept
// in the store for coach review but do not count toward these figures.
type SessionSummary struct {
	CompletedSessions int
	FocusMinutes      int
}

// SummarizeSessions totals completed sessions and their minutes.
func SummarizeSessions(sessions []models.PomodoroSession) SessionSummary {
	var s SessionSummary
	for _, session := range sessions {
		if session.Status != models.SessionCompleted {
			continue
		}
		s.CompletedSessions++
		s.FocusMinutes += session.Duration
	}
	return s
}

// DayBucket is one day of the rolling week, keyed by local calendar date.
type DayBucket struct {
	Date     time.Time
	Sessions int
	Minutes  int
}

// WeeklyFocus buckets completed sessions into the 7 calendar days ending
// at now, oldest first. Days without completed sessions report zeroes so
// the series always has exactly 7 entries.
func WeeklyFocus(sessions []models.PomodoroSession, now time.Time) []DayBucket {
	today := dayOf(now)
	buckets := make([]DayBucket, 7)
	for i := range buckets {
		buckets[i].Date = today.AddDate(0, 0, i-6)
	}
	for _, session := range sessions {
		if session.Status != models.SessionCompleted {
			continue
		}
		day := dayOf(session.CreatedAt.In(now.Location()))
		offset := 6 - daysBetween(day, today)
		if offset < 0 || offset > 6 {
			continue
		}
		buckets[offset].Sessions++
		buckets[offset].Minutes += session.Duration
	}
	return buckets
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days between two midnights. Rounding keeps
// DST-shortened days from collapsing into the previous bucket.
func daysBetween(from, until time.Time) int {
	return int(math.Round(until.Sub(from).Hours() / 24))
}
