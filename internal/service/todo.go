package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jaekwang-park/todo-client/internal/apiclient"
	"github.com/jaekwang-park/todo-client/internal/model"
)

const maxTitleLength = 200

// Requester sends one JSON request to the todo API.
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

type CreateTodoInput struct {
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
}

// UpdateTodoInput is a partial update; nil fields are left unchanged.
type UpdateTodoInput struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Completed   *bool           `json:"completed,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
}

type TodoService struct {
	api Requester
}

func NewTodoService(api Requester) *TodoService {
	return &TodoService{api: api}
}

// pageResponse mirrors TodoPage but keeps items as a pointer so a missing
// array can be told apart from an empty one.
type pageResponse struct {
	Items      *[]model.Todo `json:"items"`
	Total      int           `json:"total"`
	Limit      *int          `json:"limit"`
	Offset     *int          `json:"offset"`
	NextCursor *string       `json:"next_cursor"`
	HasMore    *bool         `json:"has_more"`
}

// List performs exactly one list request and returns the backend's page as-is.
func (s *TodoService) List(ctx context.Context, q model.Query) (model.TodoPage, error) {
	params, err := q.Values()
	if err != nil {
		return model.TodoPage{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var resp pageResponse
	if err := s.api.Do(ctx, http.MethodGet, "/todos/", params, nil, &resp); err != nil {
		return model.TodoPage{}, fmt.Errorf("failed to list todos: %w", err)
	}
	if resp.Items == nil {
		return model.TodoPage{}, fmt.Errorf("failed to list todos: %w: missing items", apiclient.ErrMalformedResponse)
	}

	page := model.TodoPage{
		Items:  *resp.Items,
		Total:  resp.Total,
		Limit:  resp.Limit,
		Offset: resp.Offset,
	}
	if resp.NextCursor != nil {
		page.NextCursor = *resp.NextCursor
	}
	if resp.HasMore != nil {
		page.HasMore = *resp.HasMore
	}
	return page, nil
}

func (s *TodoService) Get(ctx context.Context, id int64) (model.Todo, error) {
	if err := validateID(id); err != nil {
		return model.Todo{}, err
	}

	var todo model.Todo
	if err := s.api.Do(ctx, http.MethodGet, todoPath(id), nil, nil, &todo); err != nil {
		return model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, input CreateTodoInput) (model.Todo, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return model.Todo{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := validateTitle(input.Title); err != nil {
		return model.Todo{}, err
	}
	if err := validatePriority(input.Priority); err != nil {
		return model.Todo{}, err
	}

	var created model.Todo
	if err := s.api.Do(ctx, http.MethodPost, "/todos/", nil, input, &created); err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}
	return created, nil
}

func (s *TodoService) Update(ctx context.Context, id int64, input UpdateTodoInput) (model.Todo, error) {
	if err := validateID(id); err != nil {
		return model.Todo{}, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return model.Todo{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		if err := validateTitle(title); err != nil {
			return model.Todo{}, err
		}
		input.Title = &title
	}
	if err := validatePriority(input.Priority); err != nil {
		return model.Todo{}, err
	}

	var updated model.Todo
	if err := s.api.Do(ctx, http.MethodPut, todoPath(id), nil, input, &updated); err != nil {
		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}
	return updated, nil
}

// SetCompleted sends only the completed flag and returns the server's view
// of the todo.
func (s *TodoService) SetCompleted(ctx context.Context, id int64, completed bool) (model.Todo, error) {
	if err := validateID(id); err != nil {
		return model.Todo{}, err
	}

	body := struct {
		Completed bool `json:"completed"`
	}{Completed: completed}

	var updated model.Todo
	if err := s.api.Do(ctx, http.MethodPut, todoPath(id), nil, body, &updated); err != nil {
		return model.Todo{}, fmt.Errorf("failed to update todo status: %w", err)
	}
	return updated, nil
}

// Delete soft-deletes a todo.
func (s *TodoService) Delete(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.api.Do(ctx, http.MethodDelete, todoPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

func (s *TodoService) Restore(ctx context.Context, id int64) (model.Todo, error) {
	if err := validateID(id); err != nil {
		return model.Todo{}, err
	}

	var restored model.Todo
	if err := s.api.Do(ctx, http.MethodPost, todoPath(id)+"/restore", nil, struct{}{}, &restored); err != nil {
		return model.Todo{}, fmt.Errorf("failed to restore todo: %w", err)
	}
	return restored, nil
}

func todoPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be a positive integer", ErrInvalidInput)
	}
	return nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxTitleLength)
	}
	return nil
}

func validatePriority(p *model.Priority) error {
	if p != nil && !p.IsValid() {
		return fmt.Errorf("%w: invalid priority %q", ErrInvalidInput, *p)
	}
	return nil
}
