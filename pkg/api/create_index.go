package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// HandleCreateIndex creates an index on a specific field in a collection.
// Pass ?unique=true to enforce a uniqueness constraint; registration fails
// if existing documents already violate it.
func (h *Handler) HandleCreateIndex(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]
	fieldPath := vars["field"]

	if fieldPath == "" {
		WriteJSONError(w, http.StatusBadRequest, "field name is required")
		return
	}
	if fieldPath == "_id" {
		WriteJSONError(w, http.StatusBadRequest, "cannot create index on _id field")
		return
	}

	unique := r.URL.Query().Get("unique") == "true"

	if err := h.storage.CreateIndex(collName, fieldPath, unique); err != nil {
		writeEngineError(w, err)
		return
	}

	response := map[string]interface{}{
		"success":    true,
		"message":    "Index created successfully",
		"collection": collName,
		"field":      fieldPath,
		"unique":     unique,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}
