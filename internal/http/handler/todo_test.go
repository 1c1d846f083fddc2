package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jaekwang-park/todo-client/internal/apiclient"
	"github.com/jaekwang-park/todo-client/internal/http/handler"
	"github.com/jaekwang-park/todo-client/internal/model"
	"github.com/jaekwang-park/todo-client/internal/service"
)

// mockRequester stands in for the todo API client behind the real service.
type mockRequester struct {
	doFn func(ctx context.Context, method, path string, query url.Values, body, out any) error
}

func (m *mockRequester) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return m.doFn(ctx, method, path, query, body, out)
}

type apiCall struct {
	method string
	path   string
	query  url.Values
	body   any
}

// backend answers every call with raw JSON, or with err, and records the calls.
func backend(raw string, err error) (*mockRequester, *[]apiCall) {
	var calls []apiCall
	return &mockRequester{doFn: func(ctx context.Context, method, path string, query url.Values, body, out any) error {
		calls = append(calls, apiCall{method: method, path: path, query: query, body: body})
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		return json.Unmarshal([]byte(raw), out)
	}}, &calls
}

const todoJSON = `{"id":1,"title":"Buy groceries","completed":false,"due_at":null,"priority":"high","deleted_at":null}`

func newTodoHandler(api service.Requester) *handler.TodoHandler {
	return handler.NewTodoHandler(service.NewTodoService(api), 10)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorBody {
	t.Helper()
	var result handler.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v (body: %s)", err, w.Body.String())
	}
	return result.Error
}

func TestTodoHandler_List(t *testing.T) {
	api, calls := backend(`{"items":[`+todoJSON+`],"total":1,"next_cursor":"1","has_more":true}`, nil)
	h := newTodoHandler(api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/todos?cursor=abc&offset=30&priority=high&completed=false", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	got := (*calls)[0]
	if got.method != http.MethodGet || got.path != "/todos/" {
		t.Errorf("unexpected call: %s %s", got.method, got.path)
	}
	if got.query.Has("offset") {
		t.Errorf("cursor must win over offset, sent %q", got.query.Encode())
	}
	if got.query.Get("cursor") != "abc" || got.query.Get("limit") != "10" || got.query.Get("priority") != "high" {
		t.Errorf("unexpected query: %q", got.query.Encode())
	}

	var page model.TodoPage
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != "1" || !page.HasMore {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestTodoHandler_ListEmptyItemsIsArray(t *testing.T) {
	api, _ := backend(`{"items":[],"total":0}`, nil)
	h := newTodoHandler(api)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/todos", nil))

	if !bytes.Contains(w.Body.Bytes(), []byte(`"items":[]`)) {
		t.Errorf("expected empty items array, got %s", w.Body.String())
	}
}

func TestTodoHandler_ListInvalidQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"zero limit", "limit=0"},
		{"non-numeric limit", "limit=ten"},
		{"negative offset", "offset=-1"},
		{"bad bool", "completed=maybe"},
		{"bad priority", "priority=urgent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, calls := backend(`{}`, nil)
			h := newTodoHandler(api)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/todos?"+tt.query, nil))

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
			if body := decodeError(t, w); body.Code != "INVALID_QUERY" {
				t.Errorf("expected code=INVALID_QUERY, got %s", body.Code)
			}
			if len(*calls) != 0 {
				t.Error("invalid query must not reach the todo API")
			}
		})
	}
}

func TestTodoHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		apiErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       `{"title":"Buy groceries","priority":"high","due_at":"2025-03-01T09:00"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "empty title",
			body:       `{"title":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "invalid priority",
			body:       `{"title":"x","priority":"urgent"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "invalid due_at",
			body:       `{"title":"x","due_at":"tomorrow"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "invalid json",
			body:       `{invalid`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
		{
			name:       "unknown field",
			body:       `{"title":"x","owner":"bob"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
		{
			name:       "upstream validation error keeps status",
			body:       `{"title":"Buy groceries"}`,
			apiErr:     &apiclient.APIError{StatusCode: http.StatusUnprocessableEntity, Message: "title too short"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "transport failure",
			body:       `{"title":"Buy groceries"}`,
			apiErr:     fmt.Errorf("%w: connection refused", apiclient.ErrTransport),
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPSTREAM_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, calls := backend(todoJSON, tt.apiErr)
			h := newTodoHandler(api)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/todos", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}

			if tt.wantStatus == http.StatusCreated {
				var result model.Todo
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Fatalf("failed to decode: %v", err)
				}
				if result.ID != 1 {
					t.Errorf("expected id 1, got %d", result.ID)
				}
				input, ok := (*calls)[0].body.(service.CreateTodoInput)
				if !ok {
					t.Fatalf("unexpected body type %T", (*calls)[0].body)
				}
				if input.DueAt == nil || input.DueAt.Hour() != 9 || input.Priority == nil {
					t.Errorf("unexpected input: %+v", input)
				}
				return
			}
			if body := decodeError(t, w); body.Code != tt.wantCode {
				t.Errorf("expected code=%s, got %s", tt.wantCode, body.Code)
			}
		})
	}
}

func TestTodoHandler_GetByID(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		apiErr     error
		wantStatus int
		wantCode   string
	}{
		{"found", "/api/v1/todos/1", nil, http.StatusOK, ""},
		{"not found", "/api/v1/todos/99", &apiclient.APIError{StatusCode: 404, Message: "Todo not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"non-numeric id", "/api/v1/todos/abc", nil, http.StatusBadRequest, "INVALID_ID"},
		{"zero id", "/api/v1/todos/0", nil, http.StatusBadRequest, "INVALID_ID"},
		{"unknown sub path", "/api/v1/todos/1/archive", nil, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _ := backend(todoJSON, tt.apiErr)
			h := newTodoHandler(api)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantCode == "" {
				return
			}
			body := decodeError(t, w)
			if body.Code != tt.wantCode {
				t.Errorf("expected code=%s, got %s", tt.wantCode, body.Code)
			}
			if tt.apiErr != nil && body.Message != "Todo not found" {
				t.Errorf("expected upstream message, got %q", body.Message)
			}
		})
	}
}

func TestTodoHandler_Update(t *testing.T) {
	api, calls := backend(`{"id":1,"title":"Renamed","completed":true}`, nil)
	h := newTodoHandler(api)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/todos/1", bytes.NewBufferString(`{"title":"Renamed","completed":true}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	got := (*calls)[0]
	if got.method != http.MethodPut || got.path != "/todos/1" {
		t.Errorf("unexpected call: %s %s", got.method, got.path)
	}
	input := got.body.(service.UpdateTodoInput)
	if input.Title == nil || *input.Title != "Renamed" || input.Completed == nil || !*input.Completed {
		t.Errorf("unexpected input: %+v", input)
	}
	if input.Priority != nil || input.DueAt != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestTodoHandler_DeleteAndRestore(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantCall   string
	}{
		{"delete", http.MethodDelete, "/api/v1/todos/3", http.StatusNoContent, "DELETE /todos/3"},
		{"restore", http.MethodPost, "/api/v1/todos/3/restore", http.StatusOK, "POST /todos/3/restore"},
		{"restore wrong method", http.MethodGet, "/api/v1/todos/3/restore", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, calls := backend(todoJSON, nil)
			h := newTodoHandler(api)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantCall == "" {
				if len(*calls) != 0 {
					t.Error("expected no upstream call")
				}
				return
			}
			if got := (*calls)[0].method + " " + (*calls)[0].path; got != tt.wantCall {
				t.Errorf("upstream call: got %s, want %s", got, tt.wantCall)
			}
		})
	}
}

func TestTodoHandler_MethodNotAllowed(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPatch, "/api/v1/todos"},
		{http.MethodDelete, "/api/v1/todos"},
		{http.MethodPost, "/api/v1/todos/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			api, _ := backend(todoJSON, nil)
			h := newTodoHandler(api)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected status 405, got %d", w.Code)
			}
		})
	}
}
