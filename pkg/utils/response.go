package utils

import (
	"encoding/json"
	"net/http"

	"github.com/varsilias/persona-proxy/pkg/types"
)

// JSON writes a JSON response with status and sensible headers.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ServerError writes the generic 500 body with the stringified cause as detail.
func ServerError(w http.ResponseWriter, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	JSON(w, http.StatusInternalServerError, types.ErrorResponse{
		Error:  types.ServerErrorMessage,
		Detail: detail,
	})
}
