package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/database"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/plan"
	"github.com/gregjazzy/Apex-Driver/internal/tui"
	"github.com/gregjazzy/Apex-Driver/internal/util"
)

func main() {
	var (
		viewerID  = flag.String("id", "student", "profile id of the signed-in user")
		name      = flag.String("name", "", "display name, used when the profile is first created")
		role      = flag.String("role", "student", "coach or student")
		studentID = flag.String("student", "", "student whose plan to open (defaults to your own)")
		themeName = flag.String("theme", "default", "color theme")
		dbPath    = flag.String("db", "", "database file (defaults to the user data dir)")
	)
	flag.Parse()

	tui.SetTheme(*themeName)

	path := *dbPath
	if path == "" {
		root := util.DataDir(config.AppName)
		if err := os.MkdirAll(root, 0o755); err != nil {
			fatalf("creating data dir: %v", err)
		}
		path = filepath.Join(root, config.DBFileName)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := feed.NewHub()
	db, err := database.Open(ctx, path, hub)
	if err != nil {
		fatalf("opening database: %v", err)
	}
	defer db.DB.Close()

	viewer, err := ensureProfile(ctx, db, *viewerID, *name, models.Role(*role))
	if err != nil {
		fatalf("resolving profile: %v", err)
	}

	targetID := *studentID
	if targetID == "" {
		targetID = viewer.ID
	}
	if viewer.Role != models.RoleCoach && targetID != viewer.ID {
		fatalf("students can only open their own plan")
	}
	student, err := db.GetProfile(ctx, targetID)
	if err != nil {
		fatalf("loading student %s: %v", targetID, err)
	}

	projection := plan.NewProjection(db, hub, student.ID, plan.Options{})
	projection.Start(ctx)
	defer projection.Close()

	sessions := plan.NewSessionLog(db, hub, student.ID)
	sessions.Start(ctx)
	defer sessions.Close()

	reportsDir := util.ReportsDir(config.AppName)
	_ = os.MkdirAll(reportsDir, 0o755)

	m := tui.NewDashboardModel(ctx, *viewer, *student, projection, sessions, reportsDir)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fatalf("running program: %v", err)
	}
}

// ensureProfile loads the signed-in profile, creating it on first run.
func ensureProfile(ctx context.Context, db *database.Database, id, name string, role models.Role) (*models.Profile, error) {
	profile, err := db.GetProfile(ctx, id)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if role != models.RoleCoach && role != models.RoleStudent {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if name == "" {
		name = id
	}
	created := models.Profile{ID: id, Role: role, FullName: name}
	if err := db.CreateProfile(ctx, created); err != nil {
		return nil, err
	}
	return db.GetProfile(ctx, id)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
