package model

import "errors"

var (
	// ErrPersonNotFound is returned when a person id or name has no match.
	ErrPersonNotFound = errors.New("person not found")

	// ErrPersonNameRequired is returned when a person is created without a name.
	ErrPersonNameRequired = errors.New("person name is required")
)

// ErrorCode maps a module error to a stable machine-readable string for API
// responses, independent of the Go error's message text.
type ErrorCode string

const (
	CodePersonNotFound     ErrorCode = "PERSON_NOT_FOUND"
	CodePersonNameRequired ErrorCode = "PERSON_NAME_REQUIRED"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrPersonNotFound):
		return CodePersonNotFound
	case errors.Is(err, ErrPersonNameRequired):
		return CodePersonNameRequired
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPersonNotFound):
		return "Person not found"
	case errors.Is(err, ErrPersonNameRequired):
		return "Person name is required"
	default:
		return "Internal server error"
	}
}
