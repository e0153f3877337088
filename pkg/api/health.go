package api

import (
	"encoding/json"
	"net/http"
)

// HandleHealth reports service liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleMemoryStats returns runtime memory usage and document counts
func (h *Handler) HandleMemoryStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.storage.GetMemoryStats())
}
