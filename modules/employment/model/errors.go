package model

import "errors"

var (
	ErrEmploymentNotFound    = errors.New("employment record not found")
	ErrInvalidDateRange      = errors.New("start_date must not be after end_date")
)

type ErrorCode string

const (
	CodeEmploymentNotFound ErrorCode = "EMPLOYMENT_NOT_FOUND"
	CodeInvalidDateRange   ErrorCode = "INVALID_DATE_RANGE"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrEmploymentNotFound):
		return CodeEmploymentNotFound
	case errors.Is(err, ErrInvalidDateRange):
		return CodeInvalidDateRange
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmploymentNotFound):
		return "Employment record not found"
	case errors.Is(err, ErrInvalidDateRange):
		return "start_date must not be after end_date"
	default:
		return "Internal server error"
	}
}
