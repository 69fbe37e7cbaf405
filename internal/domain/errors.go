package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvariantViolation = errors.New("balance invariant violation")
	ErrVersionConflict    = errors.New("optimistic lock conflict")
	ErrInvalidRequest     = errors.New("invalid request")
)
