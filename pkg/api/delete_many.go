package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDeleteMany removes every document matching the query in the
// request body.
func (h *Handler) HandleDeleteMany(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	querySpec, err := decodeQueryBody(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid query body")
		return
	}

	deleted, err := h.storage.DeleteMany(collName, querySpec)
	if err != nil {
		log.Printf("ERROR: DeleteMany failed for collection '%s': %v", collName, err)
		writeEngineError(w, err)
		return
	}

	log.Printf("INFO: Deleted %d documents from collection '%s'", deleted, collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"deleted": deleted})
}
