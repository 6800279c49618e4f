package model

import "errors"

// ErrorKind is one of the failure classes the facade surfaces to callers,
// independent of which underlying module raised the error.
type ErrorKind string

const (
	KindInvalidArgument       ErrorKind = "INVALID_ARGUMENT"
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindDependencyUnavailable ErrorKind = "DEPENDENCY_UNAVAILABLE"
	KindInternal              ErrorKind = "INTERNAL_ERROR"
)

var (
	ErrPersonNotFound   = errors.New("person not found")
	ErrInvalidDate      = errors.New("invalid date")
	ErrNoSourceOrTarget = errors.New("no source or target ids resolved")
)

// GetErrorKind classifies err for HTTP status mapping at the handler layer.
func GetErrorKind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrPersonNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrNoSourceOrTarget):
		return KindInvalidArgument
	default:
		return KindInternal
	}
}

// GetErrorMessage returns the message to surface alongside the error code.
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrPersonNotFound):
		return "Person not found"
	case errors.Is(err, ErrInvalidDate):
		return "Invalid date"
	case errors.Is(err, ErrNoSourceOrTarget):
		return "No source or target ids resolved"
	default:
		return "Internal server error"
	}
}
