// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers maps the REST API onto the catalog and image services.
// Every response body is JSON; all error responses share the
// {"error": "..."} shape, with "details" added for validation failures.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"moneybox/internal/catalog"
	"moneybox/internal/media"
)

// maxJSONBody caps catalog request bodies.
const maxJSONBody = 1 << 20

// errorBody is the shape of every error response.
type errorBody struct {
	Error   string               `json:"error"`
	Details []catalog.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// errBadJSON marks a request body that could not be decoded.
var errBadJSON = errors.New("invalid JSON body")

// decodeJSON reads a JSON request body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadJSON)
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadJSON)
	}
	return nil
}

// writeServiceError maps service errors onto the API error taxonomy.
// Unexpected errors are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *catalog.ValidationError
	var tooBig *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation failed", Details: verr.Details})
	case errors.Is(err, errBadJSON):
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
	case errors.As(err, &tooBig):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body too large (max %d bytes)", tooBig.Limit))

	case errors.Is(err, catalog.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, catalog.ErrTargetCategoryNotFound):
		writeError(w, http.StatusNotFound, "Target category not found")
	case errors.Is(err, catalog.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, catalog.ErrConflict):
		writeError(w, http.StatusConflict, "The catalog was changed by another request, please retry")

	case errors.Is(err, media.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, GIF and WebP images are allowed")
	case errors.Is(err, media.ErrInvalidData):
		writeError(w, http.StatusBadRequest, "Invalid image data")
	case errors.Is(err, media.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Image too large")
	case errors.Is(err, media.ErrInvalidFilename):
		writeError(w, http.StatusBadRequest, "Invalid filename")
	case errors.Is(err, media.ErrNotFound):
		writeError(w, http.StatusNotFound, "Image not found")

	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
