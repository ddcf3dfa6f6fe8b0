package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"familyglitch/internal/chat"
	"familyglitch/internal/service"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps a service error onto its HTTP status
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrTurnNotFound),
		errors.Is(err, service.ErrChallengeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRoster),
		errors.Is(err, service.ErrInvalidAct),
		errors.Is(err, service.ErrUnknownPlayer),
		errors.Is(err, service.ErrEmptyResponse),
		errors.Is(err, service.ErrEmptySubmission),
		errors.Is(err, service.ErrUnknownMiniGame),
		errors.Is(err, chat.ErrInvalidConversation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotEligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSessionEnded),
		errors.Is(err, service.ErrTurnCompleted),
		errors.Is(err, service.ErrTurnNotCompleted),
		errors.Is(err, service.ErrTurnScored):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
