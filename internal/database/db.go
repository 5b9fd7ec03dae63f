package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gregjazzy/Apex-Driver/internal/feed"
	_ "github.com/mattn/go-sqlite3"
)

// Database is the sqlite-backed store for profiles, tasks and pomodoro
// sessions. Every successful write is published to the hub so that scoped
// projections observe the authoritative post-write row.
type Database struct {
	DB  *sql.DB
	hub *feed.Hub
	now func() time.Time
}

// Open initializes the database connection and schema. The hub may be nil
// when no change feed is needed (one-shot tools, some tests).
func Open(ctx context.Context, filepath string, hub *feed.Hub) (*Database, error) {
	db, err := sql.Open("sqlite3", filepath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// Serialized writers keep last-write-wins semantics simple.
	db.SetMaxOpenConns(1)

	d := &Database{DB: db, hub: hub, now: time.Now}
	if err := d.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}

func (d *Database) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			role TEXT NOT NULL CHECK (role IN ('coach', 'student')),
			full_name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			status INTEGER NOT NULL DEFAULT 0,
			priority INTEGER NOT NULL DEFAULT 3,
			progress INTEGER NOT NULL DEFAULT 0,
			due_date DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY(student_id) REFERENCES profiles(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_student ON tasks(student_id);`,
		`CREATE TABLE IF NOT EXISTS pomodoro_sessions (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL,
			duration INTEGER NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('completed', 'abandoned')),
			created_at DATETIME NOT NULL,
			FOREIGN KEY(student_id) REFERENCES profiles(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_student ON pomodoro_sessions(student_id);`,
	}

	for _, query := range queries {
		if _, err := d.DB.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	d.migrate(ctx)
	return nil
}

// migrate applies additive column changes for databases created by older
// builds. Failures are expected when the column already exists.
func (d *Database) migrate(ctx context.Context) {
	_, _ = d.DB.ExecContext(ctx, "ALTER TABLE tasks ADD COLUMN progress INTEGER NOT NULL DEFAULT 0")
	_, _ = d.DB.ExecContext(ctx, "ALTER TABLE tasks ADD COLUMN due_date DATETIME")
	_, _ = d.DB.ExecContext(ctx, "ALTER TABLE tasks ADD COLUMN description TEXT")
}

func (d *Database) publish(ev feed.Event) {
	if d.hub != nil {
		d.hub.Publish(ev)
	}
}
