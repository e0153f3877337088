package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jfletcher/docstore/pkg/domain"
)

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(response)
}

// writeEngineError maps engine errors onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	var duplicate *domain.DuplicateKeyError
	var invalid *domain.InvalidQueryError
	var noIndex *domain.IndexNotFoundError

	switch {
	case errors.As(err, &duplicate):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.As(err, &invalid):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &noIndex):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case strings.Contains(err.Error(), "not found"),
		strings.Contains(err.Error(), "does not exist"):
		WriteJSONError(w, http.StatusNotFound, err.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
