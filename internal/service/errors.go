package service

import (
	"errors"
	"fmt"

	"github.com/lshigami/formkit/internal/repository"
)

type ErrorCode string

const (
	ErrorNotFound        ErrorCode = "NOT_FOUND"
	ErrorConflict        ErrorCode = "CONFLICT"
	ErrorInvalidState    ErrorCode = "INVALID_STATE"
	ErrorMalformedAnswer ErrorCode = "MALFORMED_ANSWER"
	ErrorInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrorUnauthorized    ErrorCode = "UNAUTHORIZED"
)

// Error is the typed failure every service operation returns for
// caller-visible conditions. Anything else is an internal fault.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewNotFoundError(msg string) error     { return &Error{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error     { return &Error{Code: ErrorConflict, Message: msg} }
func NewInvalidStateError(msg string) error { return &Error{Code: ErrorInvalidState, Message: msg} }
func NewInvalidInputError(msg string) error { return &Error{Code: ErrorInvalidInput, Message: msg} }
func NewMalformedAnswerError(msg string) error {
	return &Error{Code: ErrorMalformedAnswer, Message: msg}
}
func NewUnauthorizedError(msg string) error { return &Error{Code: ErrorUnauthorized, Message: msg} }

func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err is a service error with the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := AsError(err)
	return ok && se.Code == code
}

// fromRepository turns repository sentinels into service errors. what names
// the entity for the message, e.g. "form 12".
func fromRepository(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Code: ErrorNotFound, Message: what + " not found", Err: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Code: ErrorConflict, Message: what + " already exists", Err: err}
	case errors.Is(err, repository.ErrStaleVersion):
		return &Error{Code: ErrorConflict, Message: what + " was modified concurrently", Err: err}
	case errors.Is(err, repository.ErrInvalidState):
		return &Error{Code: ErrorInvalidState, Message: what + " holds data that cannot be read", Err: err}
	}
	return err
}

func entity(kind string, id uint) string {
	return fmt.Sprintf("%s %d", kind, id)
}
