package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// Pinger is any dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthTimeout bounds each dependency probe.
const healthTimeout = 2 * time.Second

// Health reports process uptime and the state of each dependency.
type Health struct {
	started time.Time
	checks  map[string]Pinger
}

// NewHealth creates a health handler. A nil Pinger is reported as
// "disabled".
func NewHealth(started time.Time, checks map[string]Pinger) *Health {
	return &Health{started: started, checks: checks}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    float64           `json:"uptime"` // seconds
	Checks    map[string]string `json:"checks"`
}

// Check runs every probe. Any failing dependency turns the response into
// a 503 with status "degraded".
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Seconds(),
		Checks:    make(map[string]string, len(h.checks)),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := h.checks[name]
		if p == nil {
			resp.Checks[name] = "disabled"
			continue
		}
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		err := p.Ping(ctx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "check", name, "error", err)
			resp.Checks[name] = "ERROR"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "OK"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
