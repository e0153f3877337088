package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jfletcher/docstore/pkg/domain"
)

// updateManyRequest carries a query plus the fields to merge into every
// matching document.
type updateManyRequest struct {
	Query   map[string]interface{} `json:"query"`
	Updates domain.Document        `json:"updates"`
}

// HandleUpdateMany updates every document matching a query
func (h *Handler) HandleUpdateMany(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	var req updateManyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Updates) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "updates cannot be empty")
		return
	}

	updated, err := h.storage.UpdateMany(collName, req.Query, req.Updates)
	if err != nil {
		log.Printf("ERROR: UpdateMany failed for collection '%s': %v", collName, err)
		writeEngineError(w, err)
		return
	}

	log.Printf("INFO: Updated %d documents in collection '%s'", updated, collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"updated": updated})
}
