// Package res writes JSON responses.
package res

import (
	"encoding/json"
	"net/http"
)

// Json writes data with statusCode. HTML escaping is off: task and context
// text is returned exactly as stored.
func Json(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, msg string, statusCode int) {
	Json(w, map[string]any{"error": msg}, statusCode)
}

// Fields writes a field-keyed validation error map with 400.
func Fields(w http.ResponseWriter, fields map[string][]string) {
	Json(w, fields, http.StatusBadRequest)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
