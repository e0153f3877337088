package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jfletcher/docstore/pkg/domain"
)

type upsertRequest struct {
	Query    map[string]interface{} `json:"query"`
	Document domain.Document        `json:"document"`
}

// HandleUpsert updates the first document matching the query, or inserts
// the given document when nothing matches.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Document) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "document cannot be empty")
		return
	}

	id, err := h.storage.Upsert(collName, req.Query, req.Document)
	if err != nil {
		log.Printf("ERROR: Upsert failed for collection '%s': %v", collName, err)
		writeEngineError(w, err)
		return
	}

	log.Printf("INFO: Upserted document '%s' in collection '%s'", id, collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"_id": id})
}
