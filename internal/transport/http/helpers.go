package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quiz-rest-service/internal/domain"
)

// writeServiceError maps domain failures to status codes. Anything outside
// the taxonomy answers a generic 500; store and provider details never reach
// the client.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, domain.ErrValidation.Error())
	case errors.Is(err, domain.ErrNoQuestions):
		writeError(w, http.StatusNotFound, domain.ErrNoQuestions.Error())
	case errors.Is(err, domain.ErrAttemptNotFound):
		writeError(w, http.StatusNotFound, domain.ErrAttemptNotFound.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, domain.ErrForbidden.Error())
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
