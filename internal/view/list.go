package view

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jaekwang-park/todo-client/internal/model"
)

const DefaultLimit = 10

var (
	ErrNoNextPage     = errors.New("no next page")
	ErrNoPrevPage     = errors.New("no previous page")
	ErrCursorBackward = errors.New("cannot page backward from a cursor")
	ErrNotInView      = errors.New("todo is not in the current page")
	ErrClosed         = errors.New("list controller is closed")
	// ErrStaleResponse is returned when a newer request or Close superseded
	// the call. State was left untouched.
	ErrStaleResponse = errors.New("response discarded as stale")
)

const (
	msgLoadFailed    = "Failed to load todos"
	msgUpdateFailed  = "Failed to update todo"
	msgDeleteFailed  = "Failed to delete todo"
	msgRestoreFailed = "Failed to restore todo"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// TodoAPI is the subset of the todo service the list view drives.
type TodoAPI interface {
	List(ctx context.Context, q model.Query) (model.TodoPage, error)
	SetCompleted(ctx context.Context, id int64, completed bool) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (model.Todo, error)
}

// State is a snapshot of the list view. Cursor is non-empty when the current
// page was reached through next_cursor rather than an offset.
type State struct {
	Status     Status
	Items      []model.Todo
	Total      int
	Limit      int
	Offset     int
	Cursor     string
	NextCursor string
	HasMore    bool
	Filters    model.Filters
	Err        string
}

func (s State) Loading() bool {
	return s.Status == StatusLoading
}

type Options struct {
	Limit   int
	Offset  int
	Filters model.Filters
	Logger  *slog.Logger
}

// ListController owns filter and pagination state for one list view and
// re-fetches a single page whenever that state changes.
type ListController struct {
	api    TodoAPI
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	closed bool
}

func NewListController(api TodoAPI, opts Options) *ListController {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ListController{
		api:    api,
		logger: opts.Logger,
		state: State{
			Status:  StatusIdle,
			Limit:   opts.Limit,
			Offset:  opts.Offset,
			Filters: cloneFilters(opts.Filters),
		},
	}
}

// State returns a deep copy of the current state.
func (c *ListController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Load fetches the page the controller currently points at.
func (c *ListController) Load(ctx context.Context) error {
	return c.fetch(ctx, nil)
}

func (c *ListController) NextPage(ctx context.Context) error {
	return c.fetch(ctx, func(s *State) error {
		if !s.HasMore || s.NextCursor == "" {
			return ErrNoNextPage
		}
		s.Cursor = s.NextCursor
		return nil
	})
}

func (c *ListController) PrevPage(ctx context.Context) error {
	return c.fetch(ctx, func(s *State) error {
		if s.Cursor != "" {
			return ErrCursorBackward
		}
		if s.Offset-s.Limit < 0 {
			return ErrNoPrevPage
		}
		s.Offset -= s.Limit
		return nil
	})
}

func (c *ListController) FirstPage(ctx context.Context) error {
	return c.fetch(ctx, func(s *State) error {
		s.Cursor = ""
		s.Offset = 0
		return nil
	})
}

// SetFilters replaces every filter and restarts from the first page.
func (c *ListController) SetFilters(ctx context.Context, f model.Filters) error {
	return c.fetch(ctx, func(s *State) error {
		s.Filters = cloneFilters(f)
		s.Cursor = ""
		s.Offset = 0
		return nil
	})
}

// Toggle flips completed on one item and patches only that field from the
// server's copy.
func (c *ListController) Toggle(ctx context.Context, id int64) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrNotInView
	}
	completed := !c.state.Items[idx].Completed
	c.mu.Unlock()

	updated, err := c.api.SetCompleted(ctx, id, completed)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrStaleResponse
	}
	if err != nil {
		c.noteLocked(ctx, err, msgUpdateFailed)
		return err
	}
	if i := c.indexLocked(id); i >= 0 {
		c.state.Items[i].Completed = updated.Completed
	}
	if c.state.Status != StatusError {
		c.state.Err = ""
	}
	return nil
}

// Delete soft-deletes a todo and reloads the current page, keeping its cursor.
func (c *ListController) Delete(ctx context.Context, id int64) error {
	return c.mutateAndReload(ctx, msgDeleteFailed, func() error {
		return c.api.Delete(ctx, id)
	})
}

func (c *ListController) Restore(ctx context.Context, id int64) error {
	return c.mutateAndReload(ctx, msgRestoreFailed, func() error {
		_, err := c.api.Restore(ctx, id)
		return err
	})
}

// Close disposes the controller. Responses still in flight are discarded.
func (c *ListController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
}

func (c *ListController) mutateAndReload(ctx context.Context, fallback string, call func() error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	if err := call(); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return ErrStaleResponse
		}
		c.noteLocked(ctx, err, fallback)
		return err
	}

	return c.fetch(ctx, nil)
}

// fetch applies prepare to the state and issues one list request for it.
// Only the response of the latest generation is applied.
func (c *ListController) fetch(ctx context.Context, prepare func(s *State) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if prepare != nil {
		if err := prepare(&c.state); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.gen++
	gen := c.gen
	q := c.state.query()
	c.state.Status = StatusLoading
	c.state.Err = ""
	c.mu.Unlock()

	page, err := c.api.List(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return ErrStaleResponse
	}
	if err != nil {
		c.failLocked(ctx, err, msgLoadFailed)
		return err
	}

	c.state.Status = StatusLoaded
	c.state.Items = append([]model.Todo(nil), page.Items...)
	c.state.Total = page.Total
	c.state.NextCursor = page.NextCursor
	c.state.HasMore = page.HasMore
	return nil
}

// failLocked records err; items from the last successful load are kept.
func (c *ListController) failLocked(ctx context.Context, err error, fallback string) {
	c.state.Status = StatusError
	c.noteLocked(ctx, err, fallback)
}

// noteLocked records a failed mutation. The loaded page stays valid, so
// Status is left alone.
func (c *ListController) noteLocked(ctx context.Context, err error, fallback string) {
	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	c.state.Err = msg
	c.logger.WarnContext(ctx, fallback, "error", err)
}

func (c *ListController) indexLocked(id int64) int {
	for i, t := range c.state.Items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s State) query() model.Query {
	q := model.Query{Limit: s.Limit, Filters: s.Filters}
	if s.Cursor != "" {
		return q.WithCursor(s.Cursor)
	}
	return q.WithOffset(s.Offset)
}

func (s State) clone() State {
	out := s
	out.Filters = cloneFilters(s.Filters)
	if s.Items != nil {
		out.Items = make([]model.Todo, len(s.Items))
		for i, t := range s.Items {
			out.Items[i] = cloneTodo(t)
		}
	}
	return out
}

func cloneTodo(t model.Todo) model.Todo {
	t.DueAt = clonePtr(t.DueAt)
	t.Priority = clonePtr(t.Priority)
	t.DeletedAt = clonePtr(t.DeletedAt)
	return t
}

func cloneFilters(f model.Filters) model.Filters {
	return model.Filters{
		Completed:      clonePtr(f.Completed),
		Priority:       clonePtr(f.Priority),
		Overdue:        clonePtr(f.Overdue),
		IncludeDeleted: clonePtr(f.IncludeDeleted),
		SortDue:        clonePtr(f.SortDue),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
