package model

import "errors"

var (
	ErrOrganizationNotFound     = errors.New("organization not found")
	ErrOrganizationNameRequired = errors.New("organization name is required")
)

type ErrorCode string

const (
	CodeOrganizationNotFound     ErrorCode = "ORGANIZATION_NOT_FOUND"
	CodeOrganizationNameRequired ErrorCode = "ORGANIZATION_NAME_REQUIRED"
	CodeInternalError            ErrorCode = "INTERNAL_ERROR"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrOrganizationNotFound):
		return CodeOrganizationNotFound
	case errors.Is(err, ErrOrganizationNameRequired):
		return CodeOrganizationNameRequired
	default:
		return CodeInternalError
	}
}

func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrOrganizationNotFound):
		return "Organization not found"
	case errors.Is(err, ErrOrganizationNameRequired):
		return "Organization name is required"
	default:
		return "Internal server error"
	}
}
