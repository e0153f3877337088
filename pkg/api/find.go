package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jfletcher/docstore/pkg/domain"
)

// HandleFind runs a query against a collection. The request body is the
// query document (an empty body matches everything); limit and offset come
// from URL parameters.
func (h *Handler) HandleFind(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	querySpec, err := decodeQueryBody(r)
	if err != nil {
		log.Printf("ERROR: Decoding query body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "invalid query body")
		return
	}

	options, err := paginationFromRequest(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.storage.Find(collName, querySpec, options)
	if err != nil {
		log.Printf("ERROR: Find failed for collection '%s': %v", collName, err)
		writeEngineError(w, err)
		return
	}

	log.Printf("INFO: Found %d documents in collection '%s'", len(result.Documents), collName)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// decodeQueryBody reads an optional query document from the request body.
func decodeQueryBody(r *http.Request) (map[string]interface{}, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return map[string]interface{}{}, nil
	}

	var querySpec map[string]interface{}
	if err := json.Unmarshal(body, &querySpec); err != nil {
		return nil, err
	}
	return querySpec, nil
}

// paginationFromRequest parses limit/offset URL parameters.
func paginationFromRequest(r *http.Request) (*domain.PaginationOptions, error) {
	options := domain.DefaultPaginationOptions()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		options.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		options.Offset = offset
	}
	return options, options.Validate()
}
