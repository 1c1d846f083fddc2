package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jaekwang-park/todo-client/internal/apiclient"
	"github.com/jaekwang-park/todo-client/internal/model"
	"github.com/jaekwang-park/todo-client/internal/service"
)

// mockRequester implements service.Requester for testing
type mockRequester struct {
	doFn  func(ctx context.Context, method, path string, query url.Values, body, out any) error
	calls int
}

func (m *mockRequester) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	m.calls++
	return m.doFn(ctx, method, path, query, body, out)
}

// respondJSON decodes raw into out the way the HTTP client would.
func respondJSON(raw string, out any) error {
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	body   map[string]any
}

// newBackend starts a fake todo API that records requests and answers with status and body.
func newBackend(t *testing.T, status int, body string) (*service.TodoService, *[]recordedRequest) {
	t.Helper()
	var recorded []recordedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.Query()}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			if err := json.Unmarshal(data, &rec.body); err != nil {
				t.Errorf("request body is not JSON: %s", data)
			}
		}
		recorded = append(recorded, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := apiclient.New(apiclient.Config{
		BaseURL: server.URL,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return service.NewTodoService(client), &recorded
}

func TestList_WireFormat(t *testing.T) {
	tests := []struct {
		name      string
		query     model.Query
		wantQuery string
	}{
		{
			name:      "offset page",
			query:     model.Query{Limit: 10, Paging: model.OffsetPaging{Offset: 0}},
			wantQuery: "limit=10&offset=0",
		},
		{
			name: "filters",
			query: model.Query{Limit: 5, Paging: model.OffsetPaging{Offset: 10}, Filters: model.Filters{
				Priority: model.Ptr(model.PriorityHigh),
				Overdue:  model.Ptr(true),
				SortDue:  model.Ptr(true),
			}},
			wantQuery: "limit=5&offset=10&overdue=true&priority=high&sort_due=true",
		},
		{
			name:      "cursor omits offset",
			query:     model.Query{Limit: 10, Paging: model.OffsetPaging{Offset: 20}}.WithCursor("12"),
			wantQuery: "cursor=12&limit=10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, recorded := newBackend(t, http.StatusOK, `{"items":[],"total":0}`)

			if _, err := svc.List(context.Background(), tt.query); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(*recorded) != 1 {
				t.Fatalf("expected exactly 1 request, got %d", len(*recorded))
			}
			req := (*recorded)[0]
			if req.method != http.MethodGet || req.path != "/todos/" {
				t.Errorf("got %s %s, want GET /todos/", req.method, req.path)
			}
			if got := req.query.Encode(); got != tt.wantQuery {
				t.Errorf("query: got %q, want %q", got, tt.wantQuery)
			}
		})
	}
}

func TestList_NormalizesPage(t *testing.T) {
	body := `{"items":[{"id":1,"title":"a","completed":false},{"id":2,"title":"b","completed":true}],
		"total":7,"limit":2,"offset":0,"next_cursor":"2","has_more":true}`
	svc, _ := newBackend(t, http.StatusOK, body)

	page, err := svc.List(context.Background(), model.Query{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != 1 || page.Items[1].ID != 2 {
		t.Errorf("items not returned in backend order: %+v", page.Items)
	}
	if page.Total != 7 || page.NextCursor != "2" || !page.HasMore {
		t.Errorf("unexpected page metadata: %+v", page)
	}
	if page.Limit == nil || *page.Limit != 2 {
		t.Errorf("limit: got %v, want 2", page.Limit)
	}
}

func TestList_NullPaginationFields(t *testing.T) {
	svc, _ := newBackend(t, http.StatusOK, `{"items":[],"total":0,"next_cursor":null,"has_more":null}`)

	page, err := svc.List(context.Background(), model.Query{Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextCursor != "" || page.HasMore {
		t.Errorf("expected no continuation, got %+v", page)
	}
}

func TestList_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doErr   error
		raw     string
		query   model.Query
		wantIs  error
		wantMsg string
		noCall  bool
	}{
		{
			name:   "missing items",
			raw:    `{"total":3}`,
			query:  model.Query{Limit: 10},
			wantIs: apiclient.ErrMalformedResponse,
		},
		{
			name:   "null items",
			raw:    `{"items":null,"total":0}`,
			query:  model.Query{Limit: 10},
			wantIs: apiclient.ErrMalformedResponse,
		},
		{
			name:    "api error",
			doErr:   &apiclient.APIError{StatusCode: 500, Message: "boom"},
			query:   model.Query{Limit: 10},
			wantMsg: "failed to list todos: todo api returned 500: boom",
		},
		{
			name:   "transport",
			doErr:  fmt.Errorf("%w: connection refused", apiclient.ErrTransport),
			query:  model.Query{Limit: 10},
			wantIs: apiclient.ErrTransport,
		},
		{
			name:   "invalid limit",
			query:  model.Query{Limit: 0},
			wantIs: service.ErrInvalidInput,
			noCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockRequester{doFn: func(ctx context.Context, method, path string, query url.Values, body, out any) error {
				if tt.doErr != nil {
					return tt.doErr
				}
				return respondJSON(tt.raw, out)
			}}
			svc := service.NewTodoService(api)

			page, err := svc.List(context.Background(), tt.query)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected %v, got %v", tt.wantIs, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("message: got %q, want %q", err.Error(), tt.wantMsg)
			}
			if page.Items != nil {
				t.Errorf("no partial result expected, got %+v", page)
			}
			if tt.noCall && api.calls != 0 {
				t.Errorf("expected no request, got %d", api.calls)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		input   service.CreateTodoInput
		wantErr bool
	}{
		{name: "success", input: service.CreateTodoInput{Title: "Buy groceries", Priority: model.Ptr(model.PriorityMedium)}},
		{name: "empty title", input: service.CreateTodoInput{Title: "   "}, wantErr: true},
		{name: "title too long", input: service.CreateTodoInput{Title: strings.Repeat("x", 201)}, wantErr: true},
		{name: "bad priority", input: service.CreateTodoInput{Title: "x", Priority: model.Ptr(model.Priority("asap"))}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, recorded := newBackend(t, http.StatusCreated, `{"id":1,"title":"Buy groceries","completed":false,"priority":"medium"}`)

			got, err := svc.Create(context.Background(), tt.input)
			if tt.wantErr {
				if !errors.Is(err, service.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				if len(*recorded) != 0 {
					t.Errorf("expected no request on invalid input")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != 1 {
				t.Errorf("expected id=1, got %d", got.ID)
			}
			req := (*recorded)[0]
			if req.method != http.MethodPost || req.path != "/todos/" {
				t.Errorf("got %s %s, want POST /todos/", req.method, req.path)
			}
			if req.body["title"] != "Buy groceries" || req.body["priority"] != "medium" {
				t.Errorf("unexpected body: %v", req.body)
			}
			for _, absent := range []string{"description", "due_at"} {
				if _, ok := req.body[absent]; ok {
					t.Errorf("expected %s to be omitted, body: %v", absent, req.body)
				}
			}
		})
	}
}

func TestSetCompleted_SendsOnlyCompleted(t *testing.T) {
	svc, recorded := newBackend(t, http.StatusOK, `{"id":42,"title":"t","completed":true}`)

	got, err := svc.SetCompleted(context.Background(), 42, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Completed {
		t.Error("expected server value completed=true")
	}
	req := (*recorded)[0]
	if req.method != http.MethodPut || req.path != "/todos/42" {
		t.Errorf("got %s %s, want PUT /todos/42", req.method, req.path)
	}
	if len(req.body) != 1 || req.body["completed"] != true {
		t.Errorf("unexpected body: %v", req.body)
	}
}

func TestUpdate(t *testing.T) {
	svc, recorded := newBackend(t, http.StatusOK, `{"id":3,"title":"new","completed":false}`)

	_, err := svc.Update(context.Background(), 3, service.UpdateTodoInput{
		Title:     model.Ptr("  new "),
		Completed: model.Ptr(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := (*recorded)[0]
	if req.body["title"] != "new" {
		t.Errorf("title: got %v, want trimmed 'new'", req.body["title"])
	}
	if req.body["completed"] != false {
		t.Errorf("completed=false must be sent, body: %v", req.body)
	}
	if _, ok := req.body["priority"]; ok {
		t.Errorf("priority must be omitted, body: %v", req.body)
	}

	if _, err := svc.Update(context.Background(), 3, service.UpdateTodoInput{Title: model.Ptr("")}); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty title, got %v", err)
	}
}

func TestDeleteAndRestore(t *testing.T) {
	svc, recorded := newBackend(t, http.StatusOK, `{"id":8,"title":"x","completed":false,"deleted_at":null}`)

	if err := svc.Delete(context.Background(), 8); err != nil {
		t.Fatalf("delete: unexpected error: %v", err)
	}
	restored, err := svc.Restore(context.Background(), 8)
	if err != nil {
		t.Fatalf("restore: unexpected error: %v", err)
	}
	if restored.IsDeleted() {
		t.Error("expected restored todo to not be deleted")
	}

	want := []struct{ method, path string }{
		{http.MethodDelete, "/todos/8"},
		{http.MethodPost, "/todos/8/restore"},
	}
	for i, w := range want {
		if (*recorded)[i].method != w.method || (*recorded)[i].path != w.path {
			t.Errorf("request %d: got %s %s, want %s %s", i, (*recorded)[i].method, (*recorded)[i].path, w.method, w.path)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newBackend(t, http.StatusNotFound, `{"detail":"Todo not found"}`)

	_, err := svc.Get(context.Background(), 99)
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Todo not found") {
		t.Errorf("expected backend message in error, got %q", err.Error())
	}
}

func TestInvalidID(t *testing.T) {
	api := &mockRequester{doFn: func(ctx context.Context, method, path string, query url.Values, body, out any) error {
		return nil
	}}
	svc := service.NewTodoService(api)
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["get"] = svc.Get(ctx, 0)
	_, checks["update"] = svc.Update(ctx, -1, service.UpdateTodoInput{})
	_, checks["toggle"] = svc.SetCompleted(ctx, 0, true)
	checks["delete"] = svc.Delete(ctx, 0)
	_, checks["restore"] = svc.Restore(ctx, 0)

	for op, err := range checks {
		if !errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", op, err)
		}
	}
	if api.calls != 0 {
		t.Errorf("expected no requests, got %d", api.calls)
	}
}
