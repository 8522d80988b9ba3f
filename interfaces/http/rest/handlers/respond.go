package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "questions-service/pkg/errors"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// ErrorResponder writes an error as an HTTP response
type ErrorResponder interface {
	Handle(w http.ResponseWriter, r *http.Request, err error)
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// decodeJSON reads the request body into dst. Malformed bodies are
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.NewValidationError("request body is required")
		}
		return pkgerrors.NewValidationError("invalid request body").
			WithDetails(map[string]interface{}{"reason": err.Error()})
	}
	return nil
}
