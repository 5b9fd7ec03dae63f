package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gregjazzy/Apex-Driver/internal/config"
	"github.com/gregjazzy/Apex-Driver/internal/database"
	"github.com/gregjazzy/Apex-Driver/internal/feed"
)

type eventJSON struct {
	Table   string                  `json:"table"`
	Kind    string                  `json:"kind"`
	RowID   string                  `json:"row_id"`
	Task    *database.ExportTask    `json:"task,omitempty"`
	Session *database.ExportSession `json:"session,omitempty"`
}

func newEventJSON(ev feed.Event) eventJSON {
	out := eventJSON{Table: ev.Table, Kind: string(ev.Kind), RowID: ev.RowID}
	if ev.Task != nil {
		t := database.NewExportTask(*ev.Task)
		out.Task = &t
	}
	if ev.Session != nil {
		s := database.NewExportSession(*ev.Session)
		out.Session = &s
	}
	return out
}

// streamEvents pushes the student's change feed as server-sent events.
// The optional table query parameter narrows the stream to one table;
// the default is the task table.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	table := r.URL.Query().Get("table")
	switch table {
	case "":
		table = config.TableTasks
	case config.TableTasks, config.TableSessions:
	default:
		respondError(w, "unknown table", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := s.hub.Subscribe(table, studentID)
	defer sub.Close()

	flusher.Flush()

	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return
			}

			data, err := json.Marshal(newEventJSON(ev))
			if err != nil {
				continue
			}
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))

			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
