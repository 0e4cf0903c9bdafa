package errors

import "errors"

var (
	ErrNotFound = errors.New("road not found")

	ErrInvalidID = errors.New("invalid road ID format")
)
