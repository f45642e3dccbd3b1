// Package apperrors defines the sentinel errors shared across layers.
// Handlers map these to HTTP status codes with errors.Is; services wrap
// them with context using fmt.Errorf("...: %w", ...).
package apperrors

import "errors"

var (
	// ErrValidation marks malformed input. Surfaced to the caller, no side effect.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing slot, reservation, or provider.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks a slot that is inactive or sold out at the
	// advisory check. Non-fatal; the binding check happens at reconciliation.
	ErrUnavailable = errors.New("slot unavailable")

	// ErrDuplicateReservation marks a payment reference that already has a
	// reservation row. Redelivered events hit this and are treated as
	// already handled, not as failures.
	ErrDuplicateReservation = errors.New("reservation already recorded")

	// ErrGateway marks a timeout or rejection from the payment gateway.
	ErrGateway = errors.New("payment gateway error")

	// ErrFatal marks the one condition that needs an operator: capacity was
	// exhausted and the compensating refund could not be issued. The buyer
	// has been charged for a seat that does not exist.
	ErrFatal = errors.New("manual reconciliation required")

	// ErrUnauthorized marks a missing or invalid owner credential.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks an owner acting on a slot they do not own.
	ErrForbidden = errors.New("forbidden")
)
