package daemon

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
	"github.com/anatolykoptev/go-bookmarks/bus"
)

const maxRequestBody = 1 << 20

// Status is the GET /v1/status payload.
type Status struct {
	StartedAt      time.Time `json:"started_at"`
	TokensCaptured bool      `json:"tokens_captured"`
	Captures       int       `json:"captures"`
	OperationID    string    `json:"operation_id,omitempty"`
	Importing      bool      `json:"importing"`
	LastRun        *RunInfo  `json:"last_run,omitempty"`
	Tabs           int       `json:"tabs"`
	ActiveTab      string    `json:"active_tab,omitempty"`
	Dropped        int64     `json:"dropped_messages"`
}

// RunInfo summarizes the importer's current or last run.
type RunInfo struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Imported int    `json:"imported"`
	Pages    int    `json:"pages"`
	Error    string `json:"error,omitempty"`
}

// header is one entry of a relayed webRequest header list.
type header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// captureRequest mirrors the details of an observed browser request.
type captureRequest struct {
	URL            string   `json:"url"`
	RequestHeaders []header `json:"requestHeaders"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	_, ok := s.store.Tokens()
	st := Status{
		StartedAt:      s.startedAt,
		TokensCaptured: ok,
		Captures:       s.store.Captures(),
		OperationID:    s.store.BookmarksOperationID(),
		Importing:      s.importer.Running(),
		Tabs:           s.hub.Tabs(),
		ActiveTab:      s.hub.Active(),
		Dropped:        s.hub.Dropped(),
	}
	if run := s.importer.LastRun(); run.ID != "" {
		st.LastRun = &RunInfo{
			ID:       run.ID,
			State:    run.State.String(),
			Imported: run.Imported,
			Pages:    run.Pages,
			Error:    run.Err,
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid capture payload")
		return
	}
	headers := make(map[string]string, len(req.RequestHeaders))
	for _, h := range req.RequestHeaders {
		headers[h.Name] = h.Value
	}
	writeJSON(w, http.StatusOK, map[string]bool{"captured": s.store.Capture(req.URL, headers)})
}

func (s *Server) handleClearTokens(w http.ResponseWriter, _ *http.Request) {
	s.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg bus.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&msg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid message")
		return
	}
	reply, status := s.dispatch(r, msg)
	writeJSON(w, status, reply)
}

// dispatch handles one request message from a tab or an HTTP client.
func (s *Server) dispatch(r *http.Request, msg bus.Message) (bus.Message, int) {
	kind := msg.Kind()
	switch kind {
	case bus.ActionBatchImportAll:
		if err := s.StartImport(msg); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, bookmarks.ErrImportInProgress) {
				status = http.StatusConflict
			}
			return bus.Message{Type: kind, Error: err.Error()}, status
		}
		return bus.Message{Type: kind, Success: true}, http.StatusAccepted

	case bus.ActionFetchProjects:
		if s.projects == nil {
			return bus.Message{Type: kind, Success: true, Data: json.RawMessage("[]")}, http.StatusOK
		}
		projects, err := s.projects.FetchProjects(r.Context())
		if err != nil {
			slog.Warn("fetch projects failed", slog.Any("error", err))
			return bus.Message{Type: kind, Error: err.Error()}, http.StatusBadGateway
		}
		data, err := json.Marshal(projects)
		if err != nil {
			return bus.Message{Type: kind, Error: err.Error()}, http.StatusInternalServerError
		}
		return bus.Message{Type: kind, Success: true, Data: data}, http.StatusOK
	}
	return bus.Message{Type: kind, Error: "unknown action " + string(kind)}, http.StatusBadRequest
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunTweets(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	ids, err := s.runs.RunTweets(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}
