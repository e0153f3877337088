package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleFindOne returns the first document matching the query in the
// request body, or 404 when nothing matches.
func (h *Handler) HandleFindOne(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	querySpec, err := decodeQueryBody(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid query body")
		return
	}

	doc, err := h.storage.FindOne(collName, querySpec)
	if err != nil {
		log.Printf("ERROR: FindOne failed for collection '%s': %v", collName, err)
		writeEngineError(w, err)
		return
	}
	if doc == nil {
		WriteJSONError(w, http.StatusNotFound, "no matching document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}
