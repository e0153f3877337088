package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Collection operations
	router.HandleFunc("/collections/{coll}", h.HandleInsert).Methods("POST")

	// Document operations (by ID)
	router.HandleFunc("/collections/{coll}/documents/{id}", h.HandleGetById).Methods("GET")
	router.HandleFunc("/collections/{coll}/documents/{id}", h.HandleUpdateById).Methods("PATCH") // Partial update
	router.HandleFunc("/collections/{coll}/documents/{id}", h.HandleReplaceById).Methods("PUT")  // Complete replacement
	router.HandleFunc("/collections/{coll}/documents/{id}", h.HandleDeleteById).Methods("DELETE")

	// Query operations (query document in the request body)
	router.HandleFunc("/collections/{coll}/find", h.HandleFind).Methods("POST")
	router.HandleFunc("/collections/{coll}/find_one", h.HandleFindOne).Methods("POST")
	router.HandleFunc("/collections/{coll}/count", h.HandleCount).Methods("POST")
	router.HandleFunc("/collections/{coll}/update", h.HandleUpdateMany).Methods("POST")
	router.HandleFunc("/collections/{coll}/delete", h.HandleDeleteMany).Methods("POST")
	router.HandleFunc("/collections/{coll}/upsert", h.HandleUpsert).Methods("POST")
	router.HandleFunc("/collections/{coll}/distinct/{field}", h.HandleDistinct).Methods("GET")

	// Index operations
	router.HandleFunc("/collections/{coll}/indexes/{field}", h.HandleCreateIndex).Methods("POST")
	router.HandleFunc("/collections/{coll}/indexes/{field}", h.HandleDropIndex).Methods("DELETE")
	router.HandleFunc("/collections/{coll}/indexes", h.HandleGetIndexes).Methods("GET")

	// Observability
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
	router.HandleFunc("/stats/memory", h.HandleMemoryStats).Methods("GET")
}
