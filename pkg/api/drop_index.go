package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDropIndex removes an index from a collection
func (h *Handler) HandleDropIndex(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	fieldPath := vars["field"]

	if err := h.storage.DropIndex(collName, fieldPath); err != nil {
		log.Printf("ERROR: DropIndex failed for '%s.%s': %v", collName, fieldPath, err)
		writeEngineError(w, err)
		return
	}

	log.Printf("INFO: Dropped index on '%s.%s'", collName, fieldPath)
	w.WriteHeader(http.StatusNoContent)
}
