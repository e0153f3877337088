package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleCount returns the number of documents matching the query in the
// request body (all documents for an empty body).
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	querySpec, err := decodeQueryBody(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid query body")
		return
	}

	count, err := h.storage.Count(collName, querySpec)
	if err != nil {
		log.Printf("ERROR: Count failed for collection '%s': %v", collName, err)
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"count": count})
}
