package middlewares

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dfiliuk-tech/hw-2/internal"
)

// PanicError represents a recovered panic. It is the engine's panic error,
// so recovered panics render as 500 pages with the stack logged.
type PanicError = internal.PanicError

// TimeoutError is wrapped by the 504 HTTPError the Timeout middleware
// returns. It matches context.DeadlineExceeded.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// IsTimeoutError returns true if the error is a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsTimeoutError extracts the TimeoutError from an error if present.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
