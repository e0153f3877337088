package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jfletcher/docstore/pkg/domain"
)

// HandleReplaceById replaces an existing document wholesale, keeping its ID
func (h *Handler) HandleReplaceById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	var doc domain.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.storage.ReplaceById(collName, docId, doc); err != nil {
		log.Printf("ERROR: ReplaceById failed for '%s/%s': %v", collName, docId, err)
		writeEngineError(w, err)
		return
	}

	log.Printf("INFO: Replaced document '%s' in collection '%s'", docId, collName)
	w.WriteHeader(http.StatusNoContent)
}
