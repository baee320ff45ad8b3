/*
errors.go - Centralized error types

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  The engine's own calculations favor silent, defensive degradation - a
  read-only derived number has nothing to roll back, so a nil practice
  yields zeros and malformed dates filter records out. These sentinels
  serve the layers around the engine: the store and the API wrap them
  with context and match via errors.Is().
*/
package engine

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrPracticeNotFound is returned when a referenced practice doesn't exist.
	ErrPracticeNotFound = errors.New("practice not found")

	// ErrEntryNotFound is returned when a referenced entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidConfig is returned when a practice configuration fails validation.
	ErrInvalidConfig = errors.New("invalid practice configuration")
)

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPracticeNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}
