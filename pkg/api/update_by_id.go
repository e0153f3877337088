package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jfletcher/docstore/pkg/domain"
)

// HandleUpdateById merges the request body into an existing document
func (h *Handler) HandleUpdateById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	docId := vars["id"]

	var updates domain.Document
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.storage.UpdateById(collName, docId, updates); err != nil {
		log.Printf("ERROR: UpdateById failed for '%s/%s': %v", collName, docId, err)
		writeEngineError(w, err)
		return
	}

	log.Printf("INFO: Updated document '%s' in collection '%s'", docId, collName)
	w.WriteHeader(http.StatusNoContent)
}
