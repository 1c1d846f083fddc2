package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/todo-client/internal/model"
	"github.com/jaekwang-park/todo-client/internal/service"
)

// TodoService is the todo API surface the handlers proxy to.
type TodoService interface {
	List(ctx context.Context, q model.Query) (model.TodoPage, error)
	Get(ctx context.Context, id int64) (model.Todo, error)
	Create(ctx context.Context, input service.CreateTodoInput) (model.Todo, error)
	Update(ctx context.Context, id int64, input service.UpdateTodoInput) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (model.Todo, error)
}

type TodoHandler struct {
	svc          TodoService
	defaultLimit int
}

func NewTodoHandler(svc TodoService, defaultLimit int) *TodoHandler {
	return &TodoHandler{svc: svc, defaultLimit: defaultLimit}
}

// ServeHTTP routes /api/v1/todos, /api/v1/todos/{id} and /api/v1/todos/{id}/restore
func (h *TodoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/todos")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		}
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "INVALID_ID", "todo id must be a positive integer")
		return
	}

	if len(parts) > 1 {
		if parts[1] != "restore" {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
			return
		}
		if r.Method != http.MethodPost {
			WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}
		h.handleRestore(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (h *TodoHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := model.ParseQuery(r.URL.Query(), h.defaultLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if page.Items == nil {
		page.Items = []model.Todo{}
	}
	WriteJSON(w, http.StatusOK, page)
}

type createTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueAt       *string `json:"due_at,omitempty"`
}

func (h *TodoHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	dueAt, err := parseDueAt(req.DueAt)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	todo, err := h.svc.Create(r.Context(), service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priorityPtr(req.Priority),
		DueAt:       dueAt,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	todo, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

type updateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueAt       *string `json:"due_at,omitempty"`
}

func (h *TodoHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req updateTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	dueAt, err := parseDueAt(req.DueAt)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	todo, err := h.svc.Update(r.Context(), id, service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    priorityPtr(req.Priority),
		DueAt:       dueAt,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TodoHandler) handleRestore(w http.ResponseWriter, r *http.Request, id int64) {
	todo, err := h.svc.Restore(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func parseDueAt(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	ts, err := model.ParseTimestamp(*s)
	if err != nil {
		return nil, fmt.Errorf("due_at: %w", err)
	}
	return &ts, nil
}

// priorityPtr converts without validating; the service rejects unknown values.
func priorityPtr(s *string) *model.Priority {
	if s == nil {
		return nil
	}
	p := model.Priority(*s)
	return &p
}
