// Package httpapi exposes the coaching store over HTTP for companion
// clients: task and session CRUD, derived stats, JSON export and a
// server-sent-events change feed.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gregjazzy/Apex-Driver/internal/database"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
	"github.com/gregjazzy/Apex-Driver/internal/models"
	"github.com/gregjazzy/Apex-Driver/internal/stats"
)

// Server wires the store and the change feed behind a chi router.
type Server struct {
	store database.Store
	hub   *feed.Hub
	now   func() time.Time
}

func NewServer(store database.Store, hub *feed.Hub) *Server {
	return &Server{store: store, hub: hub, now: time.Now}
}

// Router builds the full route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/students", s.createStudent)
	r.Get("/students", s.listStudents)
	r.Get("/students/{id}", s.getStudent)
	r.Get("/students/{id}/tasks", s.listTasks)
	r.Post("/students/{id}/tasks", s.createTask)
	r.Get("/students/{id}/sessions", s.listSessions)
	r.Post("/students/{id}/sessions", s.createSession)
	r.Get("/students/{id}/stats", s.getStats)
	r.Get("/students/{id}/export", s.exportStudent)
	r.Get("/students/{id}/events", s.streamEvents)
	r.Patch("/tasks/{id}", s.updateTask)
	r.Delete("/tasks/{id}", s.deleteTask)

	return r
}

type profileJSON struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at"`
}

func newProfileJSON(p models.Profile) profileJSON {
	return profileJSON{
		ID:        p.ID,
		Role:      string(p.Role),
		FullName:  p.FullName,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) createStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FullName == "" {
		respondError(w, "full_name is required", http.StatusBadRequest)
		return
	}
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleCoach {
		respondError(w, "role must be coach or student", http.StatusBadRequest)
		return
	}

	profile := models.Profile{ID: req.ID, Role: role, FullName: req.FullName}
	if err := s.store.CreateProfile(r.Context(), profile); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) listStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.store.GetStudents(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	out := make([]profileJSON, 0, len(students))
	for _, p := range students {
		out = append(out, newProfileJSON(p))
	}
	respondJSON(w, out, http.StatusOK)
}

func (s *Server) getStudent(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, newProfileJSON(*profile), http.StatusOK)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var tasks []models.Task
	var err error
	if query := r.URL.Query().Get("q"); query != "" {
		tasks, err = s.store.SearchTasks(r.Context(), studentID, query)
	} else {
		tasks, err = s.store.GetTasksForStudent(r.Context(), studentID)
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}

	out := make([]database.ExportTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, database.NewExportTask(t))
	}
	respondJSON(w, out, http.StatusOK)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Priority    int     `json:"priority"`
		Description *string `json:"description"`
		DueDate     *string `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(w, database.ErrInvalidTitle.Error(), http.StatusBadRequest)
		return
	}

	seed := database.TaskSeed{
		StudentID:   chi.URLParam(r, "id"),
		Title:       req.Title,
		Priority:    req.Priority,
		Description: req.Description,
	}
	if req.DueDate != nil {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			respondError(w, "due_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		seed.DueDate = &due
	}

	if err := s.store.CreateTask(r.Context(), seed); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// updateTask distinguishes absent fields from explicit nulls, so a PATCH
// body of {"description": null} clears the description while a body that
// omits the key leaves it alone.
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	patch, err := buildPatch(fields)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func buildPatch(fields map[string]json.RawMessage) (database.TaskPatch, error) {
	var patch database.TaskPatch
	for key, raw := range fields {
		isNull := string(raw) == "null"
		switch key {
		case "title":
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return patch, errors.New("title must be a string")
			}
			patch.Title = &v
		case "description":
			if isNull {
				patch.ClearDescription = true
				continue
			}
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return patch, errors.New("description must be a string or null")
			}
			patch.Description = &v
		case "priority":
			var v int
			if err := json.Unmarshal(raw, &v); err != nil {
				return patch, errors.New("priority must be a number")
			}
			patch.Priority = &v
		case "progress":
			var v int
			if err := json.Unmarshal(raw, &v); err != nil {
				return patch, errors.New("progress must be a number")
			}
			patch.Progress = &v
		case "due_date":
			if isNull {
				patch.ClearDueDate = true
				continue
			}
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return patch, errors.New("due_date must be a string or null")
			}
			due, err := time.Parse("2006-01-02", v)
			if err != nil {
				return patch, errors.New("due_date must be YYYY-MM-DD")
			}
			patch.DueDate = &due
		default:
			return patch, errors.New("unknown field " + key)
		}
	}
	return patch, nil
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.GetSessionsForStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	out := make([]database.ExportSession, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, database.NewExportSession(sess))
	}
	respondJSON(w, out, http.StatusOK)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Duration int    `json:"duration"`
		Status   string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Duration <= 0 {
		respondError(w, "duration must be positive", http.StatusBadRequest)
		return
	}
	status := models.SessionStatus(req.Status)
	if status != models.SessionCompleted && status != models.SessionAbandoned {
		respondError(w, "status must be completed or abandoned", http.StatusBadRequest)
		return
	}

	if err := s.store.CreateSession(r.Context(), chi.URLParam(r, "id"), req.Duration, status); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type statsJSON struct {
	Tasks    stats.TaskSummary    `json:"tasks"`
	Sessions stats.SessionSummary `json:"sessions"`
	Week     []weekDayJSON        `json:"week"`
}

type weekDayJSON struct {
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
	Minutes  int    `json:"minutes"`
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	tasks, err := s.store.GetTasksForStudent(r.Context(), studentID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	sessions, err := s.store.GetSessionsForStudent(r.Context(), studentID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	out := statsJSON{
		Tasks:    stats.SummarizeTasks(tasks),
		Sessions: stats.SummarizeSessions(sessions),
	}
	for _, day := range stats.WeeklyFocus(sessions, s.now()) {
		out.Week = append(out.Week, weekDayJSON{
			Date:     day.Date.Format("2006-01-02"),
			Sessions: day.Sessions,
			Minutes:  day.Minutes,
		})
	}
	respondJSON(w, out, http.StatusOK)
}

func (s *Server) exportStudent(w http.ResponseWriter, r *http.Request) {
	bundle, err := database.BuildExportBundle(r.Context(), s.store, chi.URLParam(r, "id"), s.now())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, bundle, http.StatusOK)
}

func respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, "not found", http.StatusNotFound)
		return
	}
	respondError(w, err.Error(), http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
