package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart-todo/services/todo/core"
)

// handle registers h for path with and without a trailing slash.
func handle(mux *http.ServeMux, method, path string, h http.Handler) {
	mux.Handle(method+" "+path, h)
	mux.Handle(method+" "+path+"/{$}", h)
}

func Register(mux *http.ServeMux, log *slog.Logger, svc *core.Service, timeout time.Duration) {
	// ping
	mux.Handle("GET /api/ping", NewPingHandler(log, svc, timeout))

	// metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// categories
	handle(mux, http.MethodGet, "/api/categories", NewListCategoriesHandler(log, svc, timeout))

	// tasks
	handle(mux, http.MethodGet, "/api/tasks", NewListTasksHandler(log, svc, timeout))
	handle(mux, http.MethodPost, "/api/tasks", NewCreateTaskHandler(log, svc, timeout))
	handle(mux, http.MethodPost, "/api/tasks/ai_suggestions", NewAISuggestionsHandler(log, svc))
	handle(mux, http.MethodGet, "/api/tasks/{id}", NewGetTaskHandler(log, svc, timeout))
	handle(mux, http.MethodPut, "/api/tasks/{id}", NewUpdateTaskHandler(log, svc, timeout))
	handle(mux, http.MethodPatch, "/api/tasks/{id}", NewUpdateTaskHandler(log, svc, timeout))
	handle(mux, http.MethodDelete, "/api/tasks/{id}", NewDeleteTaskHandler(log, svc, timeout))

	// context entries, both route forms behave the same
	for _, base := range []string{"/api/context-entries", "/api/contexts"} {
		handle(mux, http.MethodGet, base, NewListContextEntriesHandler(log, svc, timeout))
		handle(mux, http.MethodPost, base, NewCreateContextEntryHandler(log, svc))
		handle(mux, http.MethodGet, base+"/{id}", NewGetContextEntryHandler(log, svc, timeout))
		handle(mux, http.MethodDelete, base+"/{id}", NewDeleteContextEntryHandler(log, svc, timeout))
	}
}
