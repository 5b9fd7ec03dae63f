// Package plan keeps a per-student, continuously synchronized view of the
// action plan: an initial load from the store plus incremental change-feed
// events. Mutation intents write through to the store; by default the local
// view converges via the feed echo rather than optimistic application.
package plan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/database"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

// Options tune the projection's write contract.
type Options struct {
	// OptimisticApply patches the in-memory view as soon as a write is
	// accepted instead of waiting for the feed echo.
	OptimisticApply bool
	// PropagateWriteErrors returns store failures to the caller. When off,
	// failures are logged and swallowed, matching the historical behavior.
	PropagateWriteErrors bool
}

// Projection is the live task list for one student. Safe for concurrent
// use; feed events are applied on a background goroutine owned by Start.
type Projection struct {
	store     database.TaskRepository
	hub       *feed.Hub
	studentID string
	opts      Options

	// OnCompleted fires exactly once per local completing write, never for
	// remote events and never during load. Set before Start.
	OnCompleted func(task models.Task)

	mu      sync.Mutex
	tasks   []models.Task
	loading bool

	sub  *feed.Subscription
	done chan struct{}
}

// NewProjection builds a projection scoped to studentID. An empty student
// id means no identity: Start clears the loading flag and loads nothing.
func NewProjection(store database.TaskRepository, hub *feed.Hub, studentID string, opts Options) *Projection {
	return &Projection{
		store:     store,
		hub:       hub,
		studentID: studentID,
		opts:      opts,
		loading:   true,
		done:      make(chan struct{}),
	}
}

// Start subscribes to the change feed and performs the initial load. The
// subscription is opened first so no event between snapshot and first
// delivery is missed; duplicate application is idempotent by id. The
// projection stops when ctx is cancelled or Close is called.
func (p *Projection) Start(ctx context.Context) {
	if p.studentID == "" {
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
		return
	}

	p.sub = p.hub.Subscribe(config.TableTasks, p.studentID)
	go p.run(ctx)

	tasks, err := p.store.GetTasksForStudent(ctx, p.studentID)
	if ctx.Err() != nil {
		// Owner went away mid-load; never apply a stale result.
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		util.LogError("loading tasks for "+p.studentID, err)
	} else {
		for _, t := range tasks {
			p.upsertLocked(t)
		}
		p.sortLocked()
	}
	p.loading = false
}

func (p *Projection) run(ctx context.Context) {
	defer p.sub.Close()
	for {
		select {
		case ev, ok := <-p.sub.C():
			if !ok {
				return
			}
			p.ApplyRemoteEvent(ev)
		case <-ctx.Done():
			return
		case <-p.done:
			return
		}
	}
}

// Close tears down the subscription. Idempotent.
func (p *Projection) Close() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

// Loading reports whether the initial snapshot is still in flight.
func (p *Projection) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Tasks returns a copy of the current projection, ordered by priority
// ascending then creation time descending.
func (p *Projection) Tasks() []models.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.Task, len(p.tasks))
	copy(out, p.tasks)
	return out
}

// Get returns the projected task with the given id, if present.
func (p *Projection) Get(taskID string) (models.Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return models.Task{}, false
}

// ApplyRemoteEvent folds one change-feed event into the projection. All
// cases are idempotent by row id: inserts overwrite an already-present row,
// updates and deletes for unknown ids are no-ops. Events scoped to another
// student or table are ignored outright.
func (p *Projection) ApplyRemoteEvent(ev feed.Event) {
	if ev.Table != config.TableTasks || ev.StudentID != p.studentID {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch ev.Kind {
	case feed.EventInsert, feed.EventUpdate:
		if ev.Task == nil {
			return
		}
		if ev.Kind == feed.EventUpdate && p.indexLocked(ev.Task.ID) < 0 {
			return
		}
		p.upsertLocked(*ev.Task)
		p.sortLocked()
	case feed.EventDelete:
		if i := p.indexLocked(ev.RowID); i >= 0 {
			p.tasks = append(p.tasks[:i], p.tasks[i+1:]...)
		}
	}
}

func (p *Projection) indexLocked(id string) int {
	for i, t := range p.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (p *Projection) upsertLocked(task models.Task) {
	if i := p.indexLocked(task.ID); i >= 0 {
		p.tasks[i] = task
		return
	}
	p.tasks = append(p.tasks, task)
}

// sortLocked restores the canonical order. The id tie-break keeps the
// order deterministic when two rows share priority and creation instant.
func (p *Projection) sortLocked() {
	sort.SliceStable(p.tasks, func(i, j int) bool {
		a, b := p.tasks[i], p.tasks[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (p *Projection) writeResult(context string, err error) error {
	if err == nil {
		return nil
	}
	if p.opts.PropagateWriteErrors {
		return err
	}
	util.LogError(context, err)
	return nil
}

// Toggle flips the completion flag, snapping progress to 100 or 0 in the
// same write. Completing locally fires OnCompleted once the store accepts
// the write.
func (p *Projection) Toggle(ctx context.Context, taskID string, currentStatus bool) error {
	progress := 0
	if !currentStatus {
		progress = 100
	}
	err := p.store.UpdateTask(ctx, taskID, database.TaskPatch{Progress: util.Ptr(progress)})
	if err != nil {
		return p.writeResult("toggling task "+taskID, err)
	}

	p.localPatch(taskID, database.TaskPatch{Progress: util.Ptr(progress)})
	if !currentStatus {
		p.celebrate(taskID)
	}
	return nil
}

// SetProgress writes an explicit progress step; the store reconciles the
// status flag. Reaching 100 locally fires OnCompleted.
func (p *Projection) SetProgress(ctx context.Context, taskID string, progress int) error {
	wasComplete := false
	if task, ok := p.Get(taskID); ok {
		wasComplete = task.Completed()
	}

	err := p.store.UpdateTask(ctx, taskID, database.TaskPatch{Progress: util.Ptr(progress)})
	if err != nil {
		return p.writeResult("updating progress for "+taskID, err)
	}

	p.localPatch(taskID, database.TaskPatch{Progress: util.Ptr(progress)})
	if progress == 100 && !wasComplete {
		p.celebrate(taskID)
	}
	return nil
}

// EditFields applies a partial edit to title, description, priority or due
// date. Progress changes go through SetProgress and are dropped here.
func (p *Projection) EditFields(ctx context.Context, taskID string, patch database.TaskPatch) error {
	patch.Progress = nil
	err := p.store.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return p.writeResult("editing task "+taskID, err)
	}
	p.localPatch(taskID, patch)
	return nil
}

// Add creates a new task on the student's plan. Without a scoped student
// this is a no-op, mirroring the "no identity, no data" contract.
func (p *Projection) Add(ctx context.Context, title string, priority int, dueDate *time.Time, description *string) error {
	if p.studentID == "" {
		return nil
	}
	err := p.store.CreateTask(ctx, database.TaskSeed{
		StudentID:   p.studentID,
		Title:       title,
		Priority:    priority,
		DueDate:     dueDate,
		Description: description,
	})
	// No optimistic insert: the row id is minted by the store, so the
	// projection picks the task up from the insert echo.
	return p.writeResult("adding task", err)
}

// Delete removes the task permanently.
func (p *Projection) Delete(ctx context.Context, taskID string) error {
	err := p.store.DeleteTask(ctx, taskID)
	if err != nil {
		return p.writeResult("deleting task "+taskID, err)
	}
	if p.opts.OptimisticApply {
		p.mu.Lock()
		if i := p.indexLocked(taskID); i >= 0 {
			p.tasks = append(p.tasks[:i], p.tasks[i+1:]...)
		}
		p.mu.Unlock()
	}
	return nil
}

// localPatch applies an accepted write to the in-memory view when the
// optimistic mode is on. The feed echo later overwrites the row wholesale,
// reconciling any drift.
func (p *Projection) localPatch(taskID string, patch database.TaskPatch) {
	if !p.opts.OptimisticApply {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexLocked(taskID)
	if i < 0 {
		return
	}
	t := p.tasks[i]
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	switch {
	case patch.ClearDescription:
		t.Description = nil
	case patch.Description != nil:
		t.Description = patch.Description
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Progress != nil {
		t.Progress = *patch.Progress
		t.Status = *patch.Progress == 100
	}
	switch {
	case patch.ClearDueDate:
		t.DueDate = nil
	case patch.DueDate != nil:
		t.DueDate = patch.DueDate
	}
	p.tasks[i] = t
	p.sortLocked()
}

func (p *Projection) celebrate(taskID string) {
	if p.OnCompleted == nil {
		return
	}
	task, ok := p.Get(taskID)
	if !ok {
		task = models.Task{ID: taskID, StudentID: p.studentID}
	}
	p.OnCompleted(task)
}
