package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
)

func setupTestDB(t *testing.T, ctx context.Context) *Database {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(ctx, dbPath, feed.NewHub())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("db close failed: %v", err)
		}
	})
	return db
}

func mustCreateStudent(t *testing.T, ctx context.Context, db *Database, name string) models.Profile {
	t.Helper()
	profile := models.Profile{Role: models.RoleStudent, FullName: name}
	profile.ID = name + "-id"
	if err := db.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	return profile
}

func mustTasks(t *testing.T, ctx context.Context, db *Database, studentID string) []models.Task {
	t.Helper()
	tasks, err := db.GetTasksForStudent(ctx, studentID)
	if err != nil {
		t.Fatalf("GetTasksForStudent failed: %v", err)
	}
	return tasks
}
