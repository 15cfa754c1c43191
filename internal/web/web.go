package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/Joseda-hg/studyplanner/internal/export"
	"github.com/Joseda-hg/studyplanner/internal/model"
	"github.com/Joseda-hg/studyplanner/internal/task"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.tmpl"))

type Server struct {
	store *task.Store
	now   func() time.Time
}

type taskRow struct {
	Task    model.Task
	Due     string
	Overdue bool
	Class   string
}

type apiTask struct {
	model.Task
	Overdue bool `json:"overdue"`
}

func NewServer(store *task.Store) *Server {
	return &Server{store: store, now: time.Now}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/tasks", s.createFormHandler)
	mux.HandleFunc("/tasks/", s.taskFormHandler)
	mux.HandleFunc("/export", s.exportHandler)
	mux.HandleFunc("/api/tasks", s.apiTasksHandler)
	mux.HandleFunc("/api/tasks/", s.apiTaskHandler)
	return mux
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	tasks := s.store.Tasks()
	done, pending := s.store.Stats()

	data := struct {
		Total      int
		Done       int
		Pending    int
		Error      string
		Categories []model.Category
		Priorities []model.Priority
		Rows       []taskRow
	}{
		Total:      len(tasks),
		Done:       done,
		Pending:    pending,
		Error:      r.URL.Query().Get("error"),
		Categories: model.Categories,
		Priorities: model.Priorities,
		Rows:       buildTaskRows(tasks, model.Today(s.now())),
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func buildTaskRows(tasks []model.Task, today time.Time) []taskRow {
	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		overdue := model.IsOverdue(t, today)

		classes := []string{"task"}
		if t.Completed {
			classes = append(classes, "completed")
		}
		if t.Priority != "" {
			classes = append(classes, strings.ToLower(string(t.Priority)))
		}
		if overdue {
			classes = append(classes, "overdue")
		}

		due := t.DueDate
		if due == "" {
			due = "None"
		}
		rows = append(rows, taskRow{Task: t, Due: due, Overdue: overdue, Class: strings.Join(classes, " ")})
	}
	return rows
}

func (s *Server) createFormHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	draft := model.Draft{
		Text:     r.PostForm.Get("text"),
		Category: model.Category(r.PostForm.Get("category")),
		Priority: model.Priority(r.PostForm.Get("priority")),
		DueDate:  r.PostForm.Get("dueDate"),
	}
	if _, err := s.store.Create(draft); err != nil {
		http.Redirect(w, r, "/?error="+template.URLQueryEscaper(err.Error()), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) taskFormHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	id, action, err := parseID(r.URL.Path, "/tasks/")
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	switch action {
	case "toggle":
		err = s.store.Toggle(id)
	case "delete":
		err = s.store.DeleteByID(id)
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown action %q", action))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.HTML(w, s.store.Tasks()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) apiTasksHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		today := model.Today(s.now())
		tasks := s.store.Tasks()
		payload := make([]apiTask, 0, len(tasks))
		for _, t := range tasks {
			payload = append(payload, apiTask{Task: t, Overdue: model.IsOverdue(t, today)})
		}
		writeJSON(w, http.StatusOK, payload)
	case http.MethodPost:
		var draft model.Draft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode draft: %w", err))
			return
		}
		created, err := s.store.Create(draft)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) apiTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, action, err := parseID(r.URL.Path, "/api/tasks/")
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	switch {
	case r.Method == http.MethodGet && action == "":
		t, err := s.store.Get(id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, apiTask{Task: t, Overdue: model.IsOverdue(t, model.Today(s.now()))})
	case r.Method == http.MethodPost && action == "toggle":
		if err := s.store.Toggle(id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		t, err := s.store.Get(id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case r.Method == http.MethodDelete && action == "":
		if err := s.store.DeleteByID(id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

// parseID splits "<prefix><id>[/<action>]".
func parseID(path, prefix string) (string, string, error) {
	if !strings.HasPrefix(path, prefix) {
		return "", "", fmt.Errorf("invalid path")
	}
	value := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if value == "" {
		return "", "", fmt.Errorf("missing id")
	}
	id, action, _ := strings.Cut(value, "/")
	return id, action, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, task.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, task.ErrEmptyText),
		errors.Is(err, task.ErrInvalidCategory),
		errors.Is(err, task.ErrInvalidPriority),
		errors.Is(err, task.ErrInvalidDueDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
