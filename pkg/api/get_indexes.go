package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetIndexes returns per-index statistics for a collection, keyed by
// field path.
func (h *Handler) HandleGetIndexes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	stats, err := h.storage.IndexStats(collName)
	if err != nil {
		log.Printf("ERROR: IndexStats failed for collection '%s': %v", collName, err)
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"indexes": stats})
}
