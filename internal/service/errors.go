package service

import "errors"

var (
	// ErrNotAccepted is returned when a contract is signed on a booking that
	// is not in the accepted status.
	ErrNotAccepted = errors.New("booking must be accepted before signing the contract")

	// ErrValidation covers malformed booking input.
	ErrValidation = errors.New("invalid booking request")
)
