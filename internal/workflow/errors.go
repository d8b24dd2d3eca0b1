package workflow

import (
	"errors"
	"fmt"
)

// Error codes surfaced by workflow operations. The HTTP layer maps these to
// response statuses; the engine itself never logs or wraps them further.
const (
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeMissingPrecondition = "MISSING_PRECONDITION"
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeNotFound            = "NOT_FOUND"
	CodeMechanicUnavailable = "MECHANIC_UNAVAILABLE"
)

type Error struct {
	Code    string
	Message string
}

func (e Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errInvalidTransition(from, to string) error {
	return Error{Code: CodeInvalidTransition, Message: fmt.Sprintf("cannot transition from %s to %s", from, to)}
}

func errMissingPrecondition(msg string) error {
	return Error{Code: CodeMissingPrecondition, Message: msg}
}

func errValidation(msg string) error {
	return Error{Code: CodeValidationFailed, Message: msg}
}

func errNotFound(msg string) error {
	return Error{Code: CodeNotFound, Message: msg}
}

// CodeOf extracts the workflow error code, or "" for foreign errors.
func CodeOf(err error) string {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
