package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes v as the response body. Middleware responses use the
// same {"error": ...} shape as the API handlers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
