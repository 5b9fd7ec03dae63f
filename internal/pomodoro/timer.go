// Package pomodoro implements the focus-timer state machine: work, short
// break and long break intervals with session accounting. The machine is
// passive; the owner drives it with one Tick per second while running.
package pomodoro

import (
	"context"
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

// Mode is the interval kind the timer is counting down.
type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
)

// Config holds interval lengths. All fields are seconds except
// LongBreakEvery, the number of completed work intervals per long break.
type Config struct {
	WorkSeconds       int
	ShortBreakSeconds int
	LongBreakSeconds  int
	LongBreakEvery    int
}

// DefaultConfig is the canonical 25/5/15-minute cycle.
func DefaultConfig() Config {
	return Config{
		WorkSeconds:       int(config.WorkDuration.Seconds()),
		ShortBreakSeconds: int(config.ShortBreakDuration.Seconds()),
		LongBreakSeconds:  int(config.LongBreakDuration.Seconds()),
		LongBreakEvery:    config.LongBreakEvery,
	}
}

// Recorder persists finished or abandoned work intervals.
type Recorder interface {
	Record(ctx context.Context, duration int, status models.SessionStatus) error
}

// Timer is a single-owner pomodoro machine. It is not safe for concurrent
// use; the owning client serializes all transitions, tick included.
type Timer struct {
	cfg      Config
	recorder Recorder
	now      func() time.Time

	mode      Mode
	remaining int
	running   bool
	completed int
	startedAt time.Time
}

// New returns a paused timer in work mode with the full work duration.
func New(cfg Config, recorder Recorder) *Timer {
	if cfg.LongBreakEvery <= 0 {
		cfg.LongBreakEvery = config.LongBreakEvery
	}
	return &Timer{
		cfg:       cfg,
		recorder:  recorder,
		now:       time.Now,
		mode:      ModeWork,
		remaining: cfg.WorkSeconds,
	}
}

func (t *Timer) Mode() Mode     { return t.mode }
func (t *Timer) Remaining() int { return t.remaining }
func (t *Timer) Running() bool  { return t.running }

// Completed returns how many work intervals have run to natural completion.
func (t *Timer) Completed() int { return t.completed }

// Duration returns the full length in seconds of the given mode.
func (t *Timer) Duration(mode Mode) int {
	switch mode {
	case ModeShortBreak:
		return t.cfg.ShortBreakSeconds
	case ModeLongBreak:
		return t.cfg.LongBreakSeconds
	default:
		return t.cfg.WorkSeconds
	}
}

// Start resumes the countdown. The start instant is recorded only when no
// attempt is underway: resuming after a pause keeps the original instant,
// so abandonment accounting spans the whole attempt, paused time included.
func (t *Timer) Start() {
	t.running = true
	if t.startedAt.IsZero() {
		t.startedAt = t.now()
	}
}

// Pause freezes the countdown. Nothing is persisted.
func (t *Timer) Pause() {
	t.running = false
}

// Tick advances the countdown by one second. When the interval crosses
// zero a work mode records a completed session and routes to the next
// break; a break routes back to work. The timer always lands paused.
func (t *Timer) Tick(ctx context.Context) {
	if !t.running {
		return
	}
	t.remaining--
	if t.remaining > 0 {
		return
	}
	t.remaining = 0
	t.complete(ctx)
}

func (t *Timer) complete(ctx context.Context) {
	t.running = false

	if t.mode == ModeWork {
		t.record(ctx, t.cfg.WorkSeconds/60, models.SessionCompleted)
		t.completed++
		if t.completed%t.cfg.LongBreakEvery == 0 {
			t.mode = ModeLongBreak
		} else {
			t.mode = ModeShortBreak
		}
	} else {
		t.mode = ModeWork
	}
	t.remaining = t.Duration(t.mode)
}

// SetMode forces the timer into the given mode, paused at full duration.
// An in-progress work interval is discarded without a session record; the
// explicit Abandon transition is the one that logs partial work.
func (t *Timer) SetMode(mode Mode) {
	t.running = false
	t.mode = mode
	t.remaining = t.Duration(mode)
	t.startedAt = time.Time{}
}

// Abandon cuts the current attempt short. Whole elapsed minutes since the
// start instant are recorded as an abandoned session when at least one
// minute passed in work mode; under a minute leaves no trace. The timer
// always resets to a paused, full-length work interval.
func (t *Timer) Abandon(ctx context.Context) {
	if t.mode == ModeWork && !t.startedAt.IsZero() {
		elapsed := int(t.now().Sub(t.startedAt).Minutes())
		if elapsed >= 1 {
			t.record(ctx, elapsed, models.SessionAbandoned)
		}
	}
	t.running = false
	t.mode = ModeWork
	t.remaining = t.cfg.WorkSeconds
	t.startedAt = time.Time{}
}

// Reset restores the current mode's full duration, paused, and forgets the
// start instant of the attempt.
func (t *Timer) Reset() {
	t.running = false
	t.remaining = t.Duration(t.mode)
	t.startedAt = time.Time{}
}

func (t *Timer) record(ctx context.Context, duration int, status models.SessionStatus) {
	if t.recorder == nil {
		return
	}
	util.LogError("recording pomodoro session", t.recorder.Record(ctx, duration, status))
}
