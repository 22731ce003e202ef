// Package health exposes liveness and readiness endpoints over the
// application's registered dependency checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds how long a readiness probe may spend on all checks.
const checkTimeout = 5 * time.Second

// Check probes a single dependency, returning nil when it is reachable.
type Check func(ctx context.Context) error

// Status is the reported state of a component.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Report is the JSON body returned by the health endpoints.
type Report struct {
	Status    Status             `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	Checks    map[string]Detail  `json:"checks,omitempty"`
}

// Detail is the outcome of a single dependency check.
type Detail struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler serves the health endpoints. Checks may be registered at any
// point during startup; registration is safe for concurrent use.
type Handler struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewHandler creates an empty health handler.
func NewHandler() *Handler {
	return &Handler{checks: make(map[string]Check)}
}

// Register adds a named dependency check used by the readiness probe.
func (h *Handler) Register(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// LivenessHandler reports whether the process is running. It never fails.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeReport(w, http.StatusOK, Report{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered check and reports 503 when any
// dependency is down.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h.mu.RLock()
		checks := make(map[string]Check, len(h.checks))
		for name, check := range h.checks {
			checks[name] = check
		}
		h.mu.RUnlock()

		details := make(map[string]Detail, len(checks))
		overall := StatusUp
		for name, check := range checks {
			if err := check(ctx); err != nil {
				details[name] = Detail{Status: StatusDown, Error: err.Error()}
				overall = StatusDown
			} else {
				details[name] = Detail{Status: StatusUp}
			}
		}

		code := http.StatusOK
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeReport(w, code, Report{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    details,
		})
	}
}

func writeReport(w http.ResponseWriter, code int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(report)
}
