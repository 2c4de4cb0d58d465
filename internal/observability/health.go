package observability

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker tracks liveness and per-component readiness. The
// daemon registers its dependencies up front and flips each one as it
// comes up; readiness requires all of them.
type HealthChecker struct {
	mu         sync.Mutex
	components map[string]bool
	startTime  time.Time
}

// NewHealthChecker creates a checker with every named component
// marked not ready.
func NewHealthChecker(components ...string) *HealthChecker {
	m := make(map[string]bool, len(components))
	for _, c := range components {
		m[c] = false
	}
	return &HealthChecker{
		components: m,
		startTime:  time.Now(),
	}
}

// SetReady marks one component ready or not ready.
func (h *HealthChecker) SetReady(component string, ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.components[component] = ready
}

// IsReady reports whether every component is ready.
func (h *HealthChecker) IsReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ready := range h.components {
		if !ready {
			return false
		}
	}
	return true
}

func (h *HealthChecker) snapshot() (map[string]bool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	all := true
	out := make(map[string]bool, len(h.components))
	for c, ready := range h.components {
		out[c] = ready
		if !ready {
			all = false
		}
	}
	return out, all
}

// LivenessHandler returns 200 whenever the process is running.
func (h *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(h.startTime).String(),
	})
}

// ReadinessHandler returns 200 once every component is ready, 503
// otherwise, with the per-component state in the body either way.
func (h *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	components, ready := h.snapshot()

	w.Header().Set("Content-Type", "application/json")
	status := "ready"
	if !ready {
		status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"components": components,
	})
}
