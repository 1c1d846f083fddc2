package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jaekwang-park/todo-client/internal/http/handler"
)

// Deps are the collaborators the BFF routes are served by.
type Deps struct {
	Todos     handler.TodoService
	Dashboard handler.Summarizer
	// History is nil when snapshots are disabled.
	History      handler.SnapshotLister
	HealthChecks []handler.HealthCheck
	Gatherer     prometheus.Gatherer
	ListPageSize int
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Health check - intentionally outside /api/v1 for ALB health check compatibility
	mux.Handle("/health", handler.NewHealthHandler(d.HealthChecks...))

	if d.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	todoHandler := handler.NewTodoHandler(d.Todos, d.ListPageSize)
	mux.Handle("/api/v1/todos", todoHandler)
	mux.Handle("/api/v1/todos/", todoHandler)

	dashboardHandler := handler.NewDashboardHandler(d.Dashboard, d.History)
	mux.Handle("/api/v1/dashboard", dashboardHandler)
	mux.Handle("/api/v1/dashboard/", dashboardHandler)

	mux.Handle("/api/v1/overview", handler.NewOverviewHandler(dashboardHandler, d.Todos, d.ListPageSize))

	return mux
}
