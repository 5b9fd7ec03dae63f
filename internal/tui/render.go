package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/pomodoro"
	"github.com/gregjazzy/Apex-Driver/internal/stats"
)

func (m DashboardModel) View() string {
	t := CurrentTheme

	var b strings.Builder
	b.WriteString(t.Header.Render(fmt.Sprintf("%s's Plan", m.student.FullName)))
	if m.viewer.ID != m.student.ID {
		b.WriteString(t.Dim.Render(fmt.Sprintf("  (coach view: %s)", m.viewer.FullName)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderTasks())
	b.WriteString("\n")
	b.WriteString(m.renderTimer())
	b.WriteString("\n")
	b.WriteString(m.renderStats())

	if m.celebration != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Celebration.Render("*** " + m.celebration + " ***"))
	}
	if m.adding || m.editingID != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Input.Render(m.input.View()))
	}
	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(t.Dim.Render(m.status))
	}

	b.WriteString("\n\n")
	b.WriteString(t.Dim.Render(m.helpLine()))

	return t.Base.Render(b.String())
}

func (m DashboardModel) renderTasks() string {
	t := CurrentTheme
	tasks := m.projection.Tasks()

	if m.projection.Loading() {
		return t.Dim.Render("  loading plan...")
	}
	if len(tasks) == 0 {
		return t.Dim.Render("  No tasks yet. Press 'a' to add one.")
	}

	var b strings.Builder
	now := time.Now()
	for i, task := range tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = t.Focused.Render("> ")
		}

		box := "[ ]"
		title := t.Task.Render(task.Title)
		if task.Completed() {
			box = "[x]"
			title = t.CompletedTask.Render(task.Title)
		}

		line := fmt.Sprintf("%s%s %s %s  %s",
			cursor, box, priorityStyle(task.Priority), title, ProgressBar(task.Progress, 8))
		if task.DueDate != nil {
			line += "  " + t.Dim.Render(FormatDue(*task.DueDate, now))
		}
		if m.width > 0 {
			line = ansi.Truncate(line, m.width-4, "…")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m DashboardModel) renderTimer() string {
	t := CurrentTheme

	style := t.Work
	if m.timer.Mode() != pomodoro.ModeWork {
		style = t.Break
	}

	state := "paused"
	if m.timer.Running() {
		state = "running"
	}

	return fmt.Sprintf("  %s  %s  %s  %s",
		style.Render(FormatMode(m.timer.Mode())),
		t.Highlight.Render(FormatRemaining(m.timer.Remaining())),
		t.Dim.Render(state),
		t.Dim.Render(fmt.Sprintf("pomodoros today: %d", m.timer.Completed())))
}

func (m DashboardModel) renderStats() string {
	t := CurrentTheme

	taskSummary := stats.SummarizeTasks(m.projection.Tasks())
	sessionSummary := stats.SummarizeSessions(m.sessions.Sessions())
	week := stats.WeeklyFocus(m.sessions.Sessions(), time.Now())

	var spark strings.Builder
	for _, day := range week {
		spark.WriteString(fmt.Sprintf("%s:%d ", day.Date.Format("Mon")[:2], day.Sessions))
	}

	return fmt.Sprintf("  %s   %s   %s",
		t.Dim.Render(fmt.Sprintf("tasks %d/%d (%d%%)", taskSummary.Completed, taskSummary.Total, taskSummary.Rate)),
		t.Dim.Render(fmt.Sprintf("focus %dm this week", sessionSummary.FocusMinutes)),
		t.Dim.Render(strings.TrimSpace(spark.String())))
}

func (m DashboardModel) helpLine() string {
	help := "j/k move · space toggle · +/- progress · a add · e edit · s start/pause · b abandon · r reset · m mode · x report · q quit"
	if m.viewer.Role == models.RoleCoach {
		help = strings.Replace(help, "e edit", "e edit · d delete", 1)
	}
	return help
}
