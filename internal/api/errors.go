package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"garageflow/internal/booking"
	"garageflow/internal/workflow"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message},
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDomainError maps workflow and store errors onto the envelope.
// Anything unrecognized is an internal error; the detail stays server-side.
func WriteDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, booking.ErrNotFound) {
		WriteError(w, http.StatusNotFound, workflow.CodeNotFound, "booking not found")
		return
	}
	var werr workflow.Error
	if errors.As(err, &werr) {
		WriteError(w, statusFor(werr.Code), werr.Code, werr.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func statusFor(code string) int {
	switch code {
	case workflow.CodeValidationFailed:
		return http.StatusBadRequest
	case workflow.CodeNotFound:
		return http.StatusNotFound
	case workflow.CodeInvalidTransition, workflow.CodeMissingPrecondition, workflow.CodeMechanicUnavailable:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
