package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrLineNotFound = errors.New("booking line not found")
)
