package shared

import "errors"

var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidID     = errors.New("invalid ID")
	ErrRequiredField = errors.New("field is required")
)
