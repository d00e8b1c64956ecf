package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-indexer/internal/indexer"
	"media-indexer/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	State        string `json:"state"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	MemoryPaused bool   `json:"memoryPaused"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports degraded with 503 once the run has failed.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	st := h.status.Status()

	response := HealthResponse{
		Status:       statusHealthy,
		State:        st.State,
		Version:      startup.Version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if h.memory != nil {
		response.MemoryPaused = h.memory.IsPaused()
	}

	code := http.StatusOK
	if st.State == indexer.StateFatalError.String() {
		response.Status = statusDegraded
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if r.Method != http.MethodHead {
		writeJSON(w, response)
	}
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}
