package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

func setupDBWithHub(t *testing.T, ctx context.Context) (*Database, *feed.Hub) {
	t.Helper()
	hub := feed.NewHub()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(ctx, dbPath, hub)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, hub
}

func nextEvent(t *testing.T, sub *feed.Subscription) feed.Event {
	t.Helper()
	select {
	case ev := <-sub.C():
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for feed event")
		return feed.Event{}
	}
}

func TestWritesEchoAuthoritativeRows(t *testing.T) {
	ctx := context.Background()
	db, hub := setupDBWithHub(t, ctx)
	student := mustCreateStudent(t, ctx, db, "lena")

	sub := hub.Subscribe("tasks", student.ID)
	defer sub.Close()

	if err := db.CreateTask(ctx, TaskSeed{StudentID: student.ID, Title: "Heel-toe practice", Priority: 1}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	ins := nextEvent(t, sub)
	if ins.Kind != feed.EventInsert || ins.Task == nil {
		t.Fatalf("expected insert event with row, got %+v", ins)
	}
	if ins.Task.Title != "Heel-toe practice" || ins.Task.Progress != 0 {
		t.Fatalf("insert echo should carry stored row, got %+v", ins.Task)
	}

	if err := db.UpdateTask(ctx, ins.Task.ID, TaskPatch{Progress: util.Ptr(100)}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	upd := nextEvent(t, sub)
	if upd.Kind != feed.EventUpdate || upd.Task == nil || !upd.Task.Status {
		t.Fatalf("update echo should carry reconciled status, got %+v", upd)
	}

	if err := db.DeleteTask(ctx, ins.Task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	del := nextEvent(t, sub)
	if del.Kind != feed.EventDelete || del.RowID != ins.Task.ID {
		t.Fatalf("expected delete event for %s, got %+v", ins.Task.ID, del)
	}
}

func TestEchoScopedToOwningStudent(t *testing.T) {
	ctx := context.Background()
	db, hub := setupDBWithHub(t, ctx)
	lena := mustCreateStudent(t, ctx, db, "lena")
	marc := mustCreateStudent(t, ctx, db, "marc")

	marcSub := hub.Subscribe("tasks", marc.ID)
	defer marcSub.Close()

	if err := db.CreateTask(ctx, TaskSeed{StudentID: lena.ID, Title: "Kart laps"}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	select {
	case ev := <-marcSub.C():
		t.Fatalf("event leaked across scopes: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
