package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDeleteById removes a single document by its ID
func (h *Handler) HandleDeleteById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	if err := h.storage.DeleteById(collName, docId); err != nil {
		log.Printf("ERROR: DeleteById failed for '%s/%s': %v", collName, docId, err)
		writeEngineError(w, err)
		return
	}

	log.Printf("INFO: Deleted document '%s' from collection '%s'", docId, collName)
	w.WriteHeader(http.StatusNoContent)
}
