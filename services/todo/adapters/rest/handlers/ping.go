package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"smart-todo/services/todo/core"
	"smart-todo/services/todo/pkg/res"
)

const (
	statusOK       = "ok"
	statusDown     = "down"
	statusDisabled = "disabled"
)

// NewPingHandler reports the database and the completion backend. Only a
// failing database turns the answer into 503: the API keeps working
// without AI.
func NewPingHandler(log *slog.Logger, svc *core.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		out := map[string]string{"db": statusOK, "gemini": statusOK}
		code := http.StatusOK

		if err := svc.Ping(ctx); err != nil {
			log.Warn("ping failed", "service", "db", "error", err)
			out["db"] = statusDown
			code = http.StatusServiceUnavailable
		}
		if !svc.CompletionEnabled() {
			out["gemini"] = statusDisabled
		}

		res.Json(w, map[string]any{"services": out}, code)
	}
}
