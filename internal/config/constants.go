package config

import "time"

// Timer durations (canonical 25/5/15 pomodoro cycle).
const (
	WorkDuration       = 25 * time.Minute
	ShortBreakDuration = 5 * time.Minute
	LongBreakDuration  = 15 * time.Minute
	LongBreakEvery     = 4
)

// Task priorities, ordinal: lower sorts first.
const (
	PriorityUrgent    = 1
	PriorityImportant = 2
	PriorityNormal    = 3
)

// ProgressSteps is the fixed domain for task progress percentages.
var ProgressSteps = []int{0, 25, 50, 75, 100}

// Database/application settings.
const (
	AppName    = "apexdriver"
	DBFileName = "apexdriver.db"
)

// Change-feed table names.
const (
	TableTasks    = "tasks"
	TableSessions = "pomodoro_sessions"
)
