package sim

import (
	"errors"
	"fmt"
)

// The simulation reports failures as typed errors so the transport layer
// can map them to stable error codes. Nothing in this package is fatal to
// the process.

// ValidationError reports a caller mistake in bid parameters. Always
// recoverable; the message is safe to return verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// PhaseViolationError reports an operation attempted in the wrong phase or
// past the bidding cutoff.
type PhaseViolationError struct {
	Message string
}

func (e *PhaseViolationError) Error() string { return e.Message }

// DataUnavailableError reports that market data needed for the operation is
// absent: the cache is not initialized, or no price exists for an hour.
// Recoverable by initializing the cache or accepting missing-data semantics.
type DataUnavailableError struct {
	Message string
}

func (e *DataUnavailableError) Error() string { return e.Message }

// ProviderFailureError reports that an external market-data fetch failed.
// Recoverable by retrying Initialize; the engine never retries on its own.
// Leg identifies which reference date's fetch failed so callers can decide
// whether to proceed with partial data.
type ProviderFailureError struct {
	Leg string // "bidding" or "delivery"
	Err error
}

func (e *ProviderFailureError) Error() string {
	return fmt.Sprintf("market data fetch failed for %s day: %v", e.Leg, e.Err)
}

func (e *ProviderFailureError) Unwrap() error { return e.Err }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func phaseViolationf(format string, args ...any) error {
	return &PhaseViolationError{Message: fmt.Sprintf(format, args...)}
}

func dataUnavailablef(format string, args ...any) error {
	return &DataUnavailableError{Message: fmt.Sprintf(format, args...)}
}

// IsDataUnavailable reports whether err is a DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var e *DataUnavailableError
	return errors.As(err, &e)
}
