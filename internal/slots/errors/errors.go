package errors

import "errors"

var (
	ErrNotFound = errors.New("slot not found")

	ErrInvalidID = errors.New("invalid slot ID format")

	// ErrSlotFull means the conditional increment found too little capacity.
	// Expected under contention; callers record it, they do not escalate.
	ErrSlotFull = errors.New("slot capacity exhausted")

	ErrCapacityBelowReserved = errors.New("capacity cannot drop below reserved count")
)
