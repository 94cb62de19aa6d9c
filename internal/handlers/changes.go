package handlers

import (
	"context"
	"net/http"
	"strconv"

	"moneybox/internal/store"
)

const (
	defaultChangesLimit = 50
	maxChangesLimit     = 500
)

// ChangeLister returns recent catalog changes.
type ChangeLister interface {
	Recent(ctx context.Context, limit int) ([]store.Change, error)
}

// Changes exposes the catalog change log.
type Changes struct {
	log ChangeLister
}

// NewChanges creates the change log handler.
func NewChanges(log ChangeLister) *Changes {
	return &Changes{log: log}
}

// List returns the most recent changes, newest first. ?limit= selects
// how many (1-500, default 50).
func (h *Changes) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultChangesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxChangesLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	changes, err := h.log.Recent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes})
}
