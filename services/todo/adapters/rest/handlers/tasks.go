package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"smart-todo/services/todo/adapters/rest"
	"smart-todo/services/todo/core"
	"smart-todo/services/todo/pkg/res"
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func NewCreateTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.TaskIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.CreateTask(ctx, in.Fields())
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, rest.NewTaskOut(t), http.StatusCreated)
	}
}

func NewGetTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.GetTask(ctx, id)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, rest.NewTaskOut(t), http.StatusOK)
	}
}

func NewListTasksHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListTasks(ctx)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}

		out := make([]rest.TaskOut, 0, len(items))
		for _, t := range items {
			out = append(out, rest.NewTaskOut(t))
		}
		res.Json(w, out, http.StatusOK)
	}
}

// NewUpdateTaskHandler serves both PUT and PATCH; every field is optional.
func NewUpdateTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var in rest.TaskIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		t, err := svc.UpdateTask(ctx, id, in.Fields())
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, rest.NewTaskOut(t), http.StatusOK)
	}
}

func NewDeleteTaskHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.DeleteTask(ctx, id); err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.NoContent(w)
	}
}

// NewAISuggestionsHandler has no handler timeout: the completion call is
// bounded by the request context and the service's completion timeout.
// Failures are always answered with 500 and the error message.
func NewAISuggestionsHandler(log *slog.Logger, svc *core.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				log.Error("ai suggestions panic", "panic", p)
				res.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()

		var in rest.SuggestionsIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		log.Debug("ai suggestion input", "title", in.Title, "context", in.Context)

		sg, err := svc.Suggest(r.Context(), in.Title, in.Context)
		if err != nil {
			log.Error("ai suggestion failed", "error", err)
			rest.WriteSuggestionErr(w, err)
			return
		}

		log.Debug("ai suggestion", "suggestion", sg)
		res.Json(w, rest.SuggestionsOut{Suggestions: sg}, http.StatusOK)
	}
}
