package plan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gregjazzy/Apex-Driver/internal/database"
	"github.com/gregjazzy/Apex-Driver/internal/database/mocks"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/testutil"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

const studentID = "student-1"

func taskEvent(kind feed.EventKind, task models.Task) feed.Event {
	return feed.Event{
		Table:     "tasks",
		Kind:      kind,
		StudentID: task.StudentID,
		RowID:     task.ID,
		Task:      &task,
	}
}

func newTask(id string, priority int, createdAt time.Time) models.Task {
	return testutil.NewTask().
		WithID(id).
		WithStudent(studentID).
		WithTitle("Task " + id).
		WithPriority(priority).
		WithCreatedAt(createdAt).
		Build()
}

func detachedProjection(opts Options) *Projection {
	return NewProjection(nil, feed.NewHub(), studentID, opts)
}

func TestApplyEventsKeepsCanonicalOrder(t *testing.T) {
	p := detachedProjection(Options{})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, newTask("a", 3, base)))
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, newTask("b", 1, base.Add(time.Minute))))
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, newTask("c", 1, base.Add(2*time.Minute))))
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, newTask("d", 2, base)))

	tasks := p.Tasks()
	got := make([]string, len(tasks))
	for i, task := range tasks {
		got[i] = task.ID
	}
	// Priority ascending, newest first within a priority.
	want := []string{"c", "b", "d", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApplyUpdateIsIdempotent(t *testing.T) {
	p := detachedProjection(Options{})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, newTask("a", 2, base)))

	updated := newTask("a", 1, base)
	updated.Progress = 50
	p.ApplyRemoteEvent(taskEvent(feed.EventUpdate, updated))
	p.ApplyRemoteEvent(taskEvent(feed.EventUpdate, updated))

	tasks := p.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected exactly one entry per id, got %d", len(tasks))
	}
	if tasks[0].Priority != 1 || tasks[0].Progress != 50 {
		t.Fatalf("update not applied wholesale: %+v", tasks[0])
	}
}

func TestApplyUnknownIDIsNoOp(t *testing.T) {
	p := detachedProjection(Options{})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	p.ApplyRemoteEvent(taskEvent(feed.EventUpdate, newTask("ghost", 1, base)))
	p.ApplyRemoteEvent(feed.Event{Table: "tasks", Kind: feed.EventDelete, StudentID: studentID, RowID: "ghost"})

	if tasks := p.Tasks(); len(tasks) != 0 {
		t.Fatalf("expected empty projection, got %+v", tasks)
	}
}

func TestApplyDuplicateInsertOverwrites(t *testing.T) {
	p := detachedProjection(Options{})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := newTask("a", 2, base)
	second := newTask("a", 2, base)
	second.Title = "Task a (authoritative)"
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, first))
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, second))

	tasks := p.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Task a (authoritative)" {
		t.Fatalf("duplicate insert must overwrite, got %+v", tasks)
	}
}

func TestApplyDelete(t *testing.T) {
	p := detachedProjection(Options{})
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, newTask("a", 2, base)))
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, newTask("b", 2, base.Add(time.Minute))))

	p.ApplyRemoteEvent(feed.Event{Table: "tasks", Kind: feed.EventDelete, StudentID: studentID, RowID: "a"})

	tasks := p.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "b" {
		t.Fatalf("expected only b to remain, got %+v", tasks)
	}
}

func TestForeignScopeEventsNeverApply(t *testing.T) {
	p := detachedProjection(Options{})
	other := models.Task{ID: "x", StudentID: "student-2", Title: "Foreign", Priority: 1}

	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, other))
	p.ApplyRemoteEvent(feed.Event{Table: "pomodoro_sessions", Kind: feed.EventInsert, StudentID: studentID, RowID: "s"})

	if tasks := p.Tasks(); len(tasks) != 0 {
		t.Fatalf("foreign event mutated projection: %+v", tasks)
	}
}

func TestToggleWritesProgressAndStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	p := NewProjection(store, feed.NewHub(), studentID, Options{})

	store.EXPECT().
		UpdateTask(gomock.Any(), "a", database.TaskPatch{Progress: util.Ptr(100)}).
		Return(nil)
	if err := p.Toggle(context.Background(), "a", false); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	store.EXPECT().
		UpdateTask(gomock.Any(), "a", database.TaskPatch{Progress: util.Ptr(0)}).
		Return(nil)
	if err := p.Toggle(context.Background(), "a", true); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
}

func TestToggleFiresCelebrationOnlyWhenCompleting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	store.EXPECT().UpdateTask(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	p := NewProjection(store, feed.NewHub(), studentID, Options{})
	fired := 0
	p.OnCompleted = func(models.Task) { fired++ }

	if err := p.Toggle(context.Background(), "a", false); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected one celebration after completing toggle, got %d", fired)
	}

	if err := p.Toggle(context.Background(), "a", true); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if fired != 1 {
		t.Fatalf("un-completing must not celebrate, got %d", fired)
	}
}

func TestSetProgressCelebrationContract(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	store.EXPECT().UpdateTask(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	p := NewProjection(store, feed.NewHub(), studentID, Options{})
	fired := 0
	p.OnCompleted = func(models.Task) { fired++ }

	if err := p.SetProgress(context.Background(), "a", 75); err != nil {
		t.Fatalf("SetProgress failed: %v", err)
	}
	if fired != 0 {
		t.Fatalf("partial progress must not celebrate")
	}
	if err := p.SetProgress(context.Background(), "a", 100); err != nil {
		t.Fatalf("SetProgress failed: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected one celebration at 100%%, got %d", fired)
	}
}

func TestRemoteCompletionNeverCelebrates(t *testing.T) {
	p := detachedProjection(Options{})
	fired := 0
	p.OnCompleted = func(models.Task) { fired++ }

	done := newTask("a", 1, time.Now())
	done.Progress = 100
	done.Status = true
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, done))
	p.ApplyRemoteEvent(taskEvent(feed.EventUpdate, done))

	if fired != 0 {
		t.Fatalf("remote events fired celebration %d times", fired)
	}
}

func TestWriteErrorsSwallowedByDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	storeErr := errors.New("store down")
	store.EXPECT().UpdateTask(gomock.Any(), gomock.Any(), gomock.Any()).Return(storeErr)

	p := NewProjection(store, feed.NewHub(), studentID, Options{})
	if err := p.Toggle(context.Background(), "a", false); err != nil {
		t.Fatalf("legacy contract must swallow write errors, got %v", err)
	}
}

func TestWriteErrorsPropagatedWhenConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	storeErr := errors.New("store down")
	store.EXPECT().UpdateTask(gomock.Any(), gomock.Any(), gomock.Any()).Return(storeErr)

	p := NewProjection(store, feed.NewHub(), studentID, Options{PropagateWriteErrors: true})
	if err := p.Toggle(context.Background(), "a", false); !errors.Is(err, storeErr) {
		t.Fatalf("expected propagated store error, got %v", err)
	}
}

func TestFailedWriteNeverCelebrates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	store.EXPECT().UpdateTask(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("store down"))

	p := NewProjection(store, feed.NewHub(), studentID, Options{})
	p.OnCompleted = func(models.Task) {
		t.Fatalf("celebration fired for a rejected write")
	}
	_ = p.Toggle(context.Background(), "a", false)
}

func TestDefaultContractWaitsForEcho(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	store.EXPECT().UpdateTask(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	p := detachedProjection(Options{})
	p.store = store
	stale := newTask("a", 2, time.Now())
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, stale))

	if err := p.SetProgress(context.Background(), "a", 100); err != nil {
		t.Fatalf("SetProgress failed: %v", err)
	}
	if task, _ := p.Get("a"); task.Progress != 0 {
		t.Fatalf("non-optimistic projection mutated before echo: %+v", task)
	}

	// The echo converges the view.
	echoed := stale
	echoed.Progress = 100
	echoed.Status = true
	p.ApplyRemoteEvent(taskEvent(feed.EventUpdate, echoed))
	if task, _ := p.Get("a"); task.Progress != 100 {
		t.Fatalf("echo not applied: %+v", task)
	}
}

func TestOptimisticApplyPatchesImmediately(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	store.EXPECT().UpdateTask(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	p := detachedProjection(Options{OptimisticApply: true})
	p.store = store
	p.ApplyRemoteEvent(taskEvent(feed.EventInsert, newTask("a", 2, time.Now())))

	if err := p.SetProgress(context.Background(), "a", 100); err != nil {
		t.Fatalf("SetProgress failed: %v", err)
	}
	task, _ := p.Get("a")
	if task.Progress != 100 || !task.Status {
		t.Fatalf("optimistic write not applied locally: %+v", task)
	}
}

func TestAddWithoutIdentityIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockTaskRepository(ctrl)
	// No CreateTask call expected.

	p := NewProjection(store, feed.NewHub(), "", Options{})
	if err := p.Add(context.Background(), "Orphan task", 1, nil, nil); err != nil {
		t.Fatalf("Add without identity should no-op, got %v", err)
	}
}

func TestStartWithoutIdentityClearsLoading(t *testing.T) {
	p := NewProjection(nil, feed.NewHub(), "", Options{})
	p.Start(context.Background())
	if p.Loading() {
		t.Fatalf("loading flag must clear when no student is scoped")
	}
}
