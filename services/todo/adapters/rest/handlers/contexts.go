package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"smart-todo/services/todo/adapters/rest"
	"smart-todo/services/todo/core"
	"smart-todo/services/todo/pkg/res"
)

// NewCreateContextEntryHandler may call the completion service to derive
// tags, so it runs under the request context rather than the handler
// timeout.
func NewCreateContextEntryHandler(_ *slog.Logger, svc *core.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in rest.ContextEntryIn
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			res.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.CreateContextEntry(r.Context(), in.Fields())
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, rest.NewContextEntryOut(e), http.StatusCreated)
	}
}

func NewGetContextEntryHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		e, err := svc.GetContextEntry(ctx, id)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.Json(w, rest.NewContextEntryOut(e), http.StatusOK)
	}
}

func NewListContextEntriesHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListContextEntries(ctx)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}

		out := make([]rest.ContextEntryOut, 0, len(items))
		for _, e := range items {
			out = append(out, rest.NewContextEntryOut(e))
		}
		res.Json(w, out, http.StatusOK)
	}
}

func NewDeleteContextEntryHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			res.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		if err := svc.DeleteContextEntry(ctx, id); err != nil {
			rest.WriteErr(w, err)
			return
		}
		res.NoContent(w)
	}
}
