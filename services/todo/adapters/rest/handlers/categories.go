package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"smart-todo/services/todo/adapters/rest"
	"smart-todo/services/todo/core"
	"smart-todo/services/todo/pkg/res"
)

func NewListCategoriesHandler(_ *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		items, err := svc.ListCategories(ctx)
		if err != nil {
			rest.WriteErr(w, err)
			return
		}

		out := make([]rest.CategoryOut, 0, len(items))
		for _, c := range items {
			out = append(out, rest.NewCategoryOut(c))
		}
		res.Json(w, out, http.StatusOK)
	}
}
