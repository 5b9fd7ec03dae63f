package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/pomodoro"
)

// FormatRemaining renders a countdown in mm:ss.
func FormatRemaining(seconds int) string {
	if seconds <= 0 {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatMode returns the display label of a timer mode.
func FormatMode(mode pomodoro.Mode) string {
	switch mode {
	case pomodoro.ModeShortBreak:
		return "Short Break"
	case pomodoro.ModeLongBreak:
		return "Long Break"
	default:
		return "Focus"
	}
}

// FormatDue renders a due date relative to today.
func FormatDue(due time.Time, now time.Time) string {
	days := int(due.Sub(now).Hours() / 24)
	switch {
	case days < 0:
		return "overdue"
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due %s", due.Format("Jan 02"))
	}
}

// ProgressBar renders a fixed-width bar like [####----] 50%.
func ProgressBar(progress, width int) string {
	if width < 2 {
		width = 2
	}
	filled := progress * width / 100
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %3d%%",
		strings.Repeat("#", filled),
		strings.Repeat("-", width-filled),
		progress)
}

// PriorityLabel returns the short display tag for a priority level.
func PriorityLabel(priority int) string {
	switch priority {
	case 1:
		return "URG"
	case 2:
		return "IMP"
	default:
		return "NRM"
	}
}

func priorityStyle(priority int) string {
	switch priority {
	case 1:
		return CurrentTheme.Urgent.Render(PriorityLabel(priority))
	case 2:
		return CurrentTheme.Important.Render(PriorityLabel(priority))
	default:
		return CurrentTheme.Normal.Render(PriorityLabel(priority))
	}
}
