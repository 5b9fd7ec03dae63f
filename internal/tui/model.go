// Package tui renders the coaching dashboard: one student's live action
// plan beside a pomodoro timer, with week-at-a-glance focus stats.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/database"
	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/plan"
	"github.com/gregjazzy/Apex-Driver/internal/pomodoro"
	"github.com/gregjazzy/Apex-Driver/internal/report"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

const celebrationFor = 4 * time.Second

// DashboardModel is the root bubbletea model.
type DashboardModel struct {
	ctx     context.Context
	viewer  models.Profile
	student models.Profile

	projection *plan.Projection
	sessions   *plan.SessionLog
	timer      *pomodoro.Timer

	// completions carries celebration tasks out of the projection's
	// synchronous OnCompleted callback into the update loop.
	completions chan models.Task

	cursor    int
	adding    bool
	editingID string
	input     textinput.Model

	celebration      string
	celebrationUntil time.Time
	status           string

	reportsDir string
	width      int
	height     int
}

// NewDashboardModel wires the projection, session log and timer for one
// student. Start must have been called on the projection and session log
// before the program runs.
func NewDashboardModel(ctx context.Context, viewer, student models.Profile,
	projection *plan.Projection, sessions *plan.SessionLog, reportsDir string) DashboardModel {

	timer := pomodoro.New(pomodoro.DefaultConfig(), sessions)

	ti := textinput.New()
	ti.Placeholder = "New task..."
	ti.CharLimit = 120
	ti.Width = 40

	m := DashboardModel{
		ctx:         ctx,
		viewer:      viewer,
		student:     student,
		projection:  projection,
		sessions:    sessions,
		timer:       timer,
		completions: make(chan models.Task, 8),
		input:       ti,
		reportsDir:  reportsDir,
	}
	projection.OnCompleted = func(task models.Task) {
		select {
		case m.completions <- task:
		default:
		}
	}
	return m
}

func (m DashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.timer.Tick(m.ctx)
		if m.celebration != "" && time.Time(msg).After(m.celebrationUntil) {
			m.celebration = ""
		}
		return m, tickCmd()

	case tea.KeyMsg:
		if m.adding || m.editingID != "" {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m DashboardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.projection.Tasks())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case " ":
		if task, ok := m.taskUnderCursor(); ok {
			m.projection.Toggle(m.ctx, task.ID, task.Status)
			m = m.drainCompletions()
		}
	case "+", "=":
		if task, ok := m.taskUnderCursor(); ok {
			m.projection.SetProgress(m.ctx, task.ID, nextStep(task.Progress, 1))
			m = m.drainCompletions()
		}
	case "-":
		if task, ok := m.taskUnderCursor(); ok {
			m.projection.SetProgress(m.ctx, task.ID, nextStep(task.Progress, -1))
		}

	case "a":
		m.adding = true
		m.input.Placeholder = "New task..."
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "e":
		if task, ok := m.taskUnderCursor(); ok {
			m.editingID = task.ID
			m.input.Placeholder = "Task title..."
			m.input.SetValue(task.Title)
			m.input.CursorEnd()
			m.input.Focus()
			return m, textinput.Blink
		}

	case "d":
		// Removing tasks from a student's plan is the coach's call.
		if m.viewer.Role != models.RoleCoach {
			m.status = "only the coach can delete tasks"
			break
		}
		if task, ok := m.taskUnderCursor(); ok {
			m.projection.Delete(m.ctx, task.ID)
			if m.cursor > 0 {
				m.cursor--
			}
		}

	case "s":
		if m.timer.Running() {
			m.timer.Pause()
		} else {
			m.timer.Start()
		}
	case "b":
		m.timer.Abandon(m.ctx)
	case "r":
		m.timer.Reset()
	case "m":
		m.timer.SetMode(nextMode(m.timer.Mode()))

	case "x":
		path, err := report.WeeklyPDF(m.reportsDir, report.Input{
			Student:  m.student,
			Tasks:    m.projection.Tasks(),
			Sessions: m.sessions.Sessions(),
		})
		if err != nil {
			util.LogError("generating report", err)
			m.status = "report failed, see log"
		} else {
			m.status = "report written to " + path
		}
	}
	return m, nil
}

func (m DashboardModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.editingID = ""
		return m, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(m.input.Value())
		switch {
		case title == "":
			// Blank titles are dropped at every layer; nothing to submit.
		case m.adding:
			m.projection.Add(m.ctx, title, config.PriorityNormal, nil, nil)
		default:
			m.projection.EditFields(m.ctx, m.editingID, database.TaskPatch{Title: &title})
		}
		m.adding = false
		m.editingID = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m DashboardModel) taskUnderCursor() (models.Task, bool) {
	tasks := m.projection.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.cursor], true
}

// drainCompletions promotes any pending completion into the celebration
// banner. Writes are synchronous, so a completing Toggle has already fired
// OnCompleted by the time this runs.
func (m DashboardModel) drainCompletions() DashboardModel {
	for {
		select {
		case task := <-m.completions:
			m.celebration = fmt.Sprintf("Done: %s", task.Title)
			m.celebrationUntil = time.Now().Add(celebrationFor)
		default:
			return m
		}
	}
}

// nextStep moves one notch through the fixed progress steps.
func nextStep(progress, direction int) int {
	steps := config.ProgressSteps
	for i, s := range steps {
		if s == progress {
			next := i + direction
			if next < 0 {
				next = 0
			}
			if next >= len(steps) {
				next = len(steps) - 1
			}
			return steps[next]
		}
	}
	return steps[0]
}

func nextMode(mode pomodoro.Mode) pomodoro.Mode {
	switch mode {
	case pomodoro.ModeWork:
		return pomodoro.ModeShortBreak
	case pomodoro.ModeShortBreak:
		return pomodoro.ModeLongBreak
	default:
		return pomodoro.ModeWork
	}
}
