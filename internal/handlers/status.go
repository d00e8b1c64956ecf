package handlers

import (
	"net/http"

	"media-indexer/internal/indexer"
)

// MemoryStatus is the memory monitor's view, present when a limit is set.
type MemoryStatus struct {
	HeapBytes  int64   `json:"heap_bytes"`
	LimitBytes int64   `json:"limit_bytes"`
	Usage      float64 `json:"usage"`
	Paused     bool    `json:"paused"`
}

// StatusResponse is the body of /status.
type StatusResponse struct {
	indexer.Status
	Percent float64       `json:"percent"`
	Memory  *MemoryStatus `json:"memory,omitempty"`
}

// GetStatus returns the current run snapshot.
func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	st := h.status.Status()
	response := StatusResponse{Status: st, Percent: st.Progress.Percent()}

	if h.memory != nil && h.memory.Enabled() {
		current, limit, usage := h.memory.Stats()
		response.Memory = &MemoryStatus{
			HeapBytes:  current,
			LimitBytes: limit,
			Usage:      usage,
			Paused:     h.memory.IsPaused(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, response)
}
