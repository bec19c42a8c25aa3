package rest

import (
	"errors"
	"net/http"

	"smart-todo/services/todo/core"
	"smart-todo/services/todo/pkg/res"
)

func WriteErr(w http.ResponseWriter, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		res.Fields(w, verr.Fields)
	case errors.Is(err, core.ErrInvalidArgs):
		res.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrTaskNotFound), errors.Is(err, core.ErrContextEntryNotFound):
		res.Error(w, err.Error(), http.StatusNotFound)
	default:
		res.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// WriteSuggestionErr reports completion failures with their message, which
// the suggestions endpoint exposes to the caller.
func WriteSuggestionErr(w http.ResponseWriter, err error) {
	res.Error(w, err.Error(), http.StatusInternalServerError)
}
