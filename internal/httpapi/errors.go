package httpapi

import (
	"encoding/json"
	"net/http"

	"benchopt/internal/args"
	"benchopt/internal/backend"
	"benchopt/internal/pipeline"
	"benchopt/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	switch {
	case pipeline.IsModelNotFound(err):
		return http.StatusNotFound
	case args.IsUnsupported(err), backend.IsIncompatible(err):
		return http.StatusUnprocessableEntity
	case args.IsUsage(err), backend.IsUnconsumedArgs(err):
		return http.StatusBadRequest
	case pipeline.IsOutOfOrder(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusFor(err), err.Error(), args.UnsupportedOption(err))
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg, option string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Option: option, Code: status})
}
