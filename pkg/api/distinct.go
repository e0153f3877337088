package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDistinct returns the unique values at a field path across a
// collection.
func (h *Handler) HandleDistinct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	fieldPath := vars["field"]

	values, err := h.storage.Distinct(collName, fieldPath, nil)
	if err != nil {
		log.Printf("ERROR: Distinct failed for '%s.%s': %v", collName, fieldPath, err)
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"values": values})
}
