package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jaekwang-park/todo-client/internal/model"
	"github.com/jaekwang-park/todo-client/internal/repository"
)

// Summarizer computes the dashboard summary over every todo.
type Summarizer interface {
	Summary(ctx context.Context) (model.Summary, error)
}

// SnapshotLister reads recorded dashboard summaries.
type SnapshotLister interface {
	List(ctx context.Context, limit int) ([]model.Snapshot, error)
}

type DashboardHandler struct {
	dash    Summarizer
	history SnapshotLister
	group   singleflight.Group
}

// NewDashboardHandler serves /api/v1/dashboard. history may be nil when
// snapshots are disabled.
func NewDashboardHandler(dash Summarizer, history SnapshotLister) *DashboardHandler {
	return &DashboardHandler{dash: dash, history: history}
}

// ServeHTTP routes /api/v1/dashboard and /api/v1/dashboard/history
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/dashboard")
	switch strings.Trim(path, "/") {
	case "":
		h.handleSummary(w, r)
	case "history":
		h.handleHistory(w, r)
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

func (h *DashboardHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Summary(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, s)
}

// Summary shares one in-flight aggregation between concurrent callers.
// Nothing is kept once it completes.
func (h *DashboardHandler) Summary(ctx context.Context) (model.Summary, error) {
	v, err, shared := h.group.Do("summary", func() (any, error) {
		// detached so one caller disconnecting does not fail the others
		return h.dash.Summary(context.WithoutCancel(ctx))
	})
	if shared {
		slog.DebugContext(ctx, "dashboard summary shared with concurrent request")
	}
	if err != nil {
		return model.Summary{}, err
	}
	return v.(model.Summary), nil
}

func (h *DashboardHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		WriteError(w, http.StatusNotFound, "NOT_ENABLED", "dashboard history is not enabled")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "limit must be a positive integer")
			return
		}
		limit = n
	}

	snapshots, err := h.history.List(r.Context(), repository.ClampHistoryLimit(limit))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": snapshots})
}

type OverviewHandler struct {
	dash         *DashboardHandler
	todos        TodoService
	defaultLimit int
}

func NewOverviewHandler(dash *DashboardHandler, todos TodoService, defaultLimit int) *OverviewHandler {
	return &OverviewHandler{dash: dash, todos: todos, defaultLimit: defaultLimit}
}

type overviewResponse struct {
	Summary model.Summary  `json:"summary"`
	Page    model.TodoPage `json:"page"`
}

// ServeHTTP fetches the dashboard summary and the first list page
// concurrently. Either failure fails the whole response. The page is always
// the first one, so cursor and offset are rejected.
func (h *OverviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "only GET is allowed")
		return
	}

	params := r.URL.Query()
	if params.Has("cursor") || params.Has("offset") {
		WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "overview always returns the first page; cursor and offset are not accepted")
		return
	}
	q, err := model.ParseQuery(params, h.defaultLimit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	q = q.WithOffset(0)

	var resp overviewResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		s, err := h.dash.Summary(ctx)
		resp.Summary = s
		return err
	})
	g.Go(func() error {
		page, err := h.todos.List(ctx, q)
		resp.Page = page
		return err
	})
	if err := g.Wait(); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if resp.Page.Items == nil {
		resp.Page.Items = []model.Todo{}
	}
	WriteJSON(w, http.StatusOK, resp)
}
