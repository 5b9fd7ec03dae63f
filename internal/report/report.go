// Package report renders a weekly progress PDF a coach can hand to a
// student or a parent.
package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/stats"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

// Input is everything the report needs, already loaded by the caller.
type Input struct {
	Student  models.Profile
	Tasks    []models.Task
	Sessions []models.PomodoroSession
	Now      time.Time
}

// WeeklyPDF writes the report into dir and returns the absolute path of
// the generated file.
func WeeklyPDF(dir string, in Input) (string, error) {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	taskSummary := stats.SummarizeTasks(in.Tasks)
	sessionSummary := stats.SummarizeSessions(in.Sessions)
	week := stats.WeeklyFocus(in.Sessions, in.Now)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Weekly Report: %s", in.Student.FullName))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Week ending %s", in.Now.Format("2006-01-02")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Tasks")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("  %d of %d complete (%d%%)",
		taskSummary.Completed, taskSummary.Total, taskSummary.Rate))
	pdf.Ln(8)
	if len(in.Tasks) == 0 {
		pdf.Cell(0, 8, "  - No tasks assigned.")
		pdf.Ln(8)
	}
	for _, task := range in.Tasks {
		box := "[ ]"
		if task.Completed() {
			box = "[x]"
		}
		line := fmt.Sprintf("  %s %s (%s, %d%%)",
			box, task.Title, priorityLabel(task.Priority), task.Progress)
		if task.DueDate != nil {
			line += fmt.Sprintf(", due %s", task.DueDate.Format("2006-01-02"))
		}
		pdf.Cell(0, 8, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Focus Time")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("  %d completed pomodoros, %d minutes total",
		sessionSummary.CompletedSessions, sessionSummary.FocusMinutes))
	pdf.Ln(8)
	for _, day := range week {
		pdf.Cell(0, 8, fmt.Sprintf("  %s  %2d sessions  %3d min",
			day.Date.Format("Mon 02 Jan"), day.Sessions, day.Minutes))
		pdf.Ln(6)
	}

	filename := filepath.Join(dir, fmt.Sprintf("report_%s_%s.pdf",
		util.Slug(in.Student.FullName), in.Now.Format("2006-01-02")))
	if err := pdf.OutputFileAndClose(filename); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return filepath.Abs(filename)
}

func priorityLabel(priority int) string {
	switch priority {
	case 1:
		return "urgent"
	case 2:
		return "important"
	default:
		return "normal"
	}
}
