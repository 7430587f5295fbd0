package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizdeck-service/internal/domain"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("encode response: %v", err)
		}
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps the domain error taxonomy onto the HTTP status contract:
// 400 validation, 401 auth, 403 authz, 404 missing, 409 state conflict,
// 423 locked, 202 processing.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidAnswer):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenRevoked):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrAccountLocked):
		writeMessage(w, http.StatusLocked, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrQuizNotAvailable):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrAttemptNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuizNotPending),
		errors.Is(err, domain.ErrQuizNotRejected),
		errors.Is(err, domain.ErrAttemptNotStarted),
		errors.Is(err, domain.ErrAttemptFinished),
		errors.Is(err, domain.ErrAttemptNotFinished):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrResultProcessing):
		writeMessage(w, http.StatusAccepted, "result is being processed")
	default:
		log.Printf("internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
