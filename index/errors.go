package index

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEpsilon is returned when epsilon is negative or NaN.
	ErrInvalidEpsilon = errors.New("epsilon must be a non-negative number")

	// ErrTooManyPoints is returned when a batch exceeds the 32-bit ID space.
	ErrTooManyPoints = errors.New("too many points: IDs are limited to 32 bits")

	// ErrNilEncoder is returned when Build is called without an encoder.
	ErrNilEncoder = errors.New("encoder must not be nil")
)

// ErrPoint annotates an encoding failure with the position of the offending
// point in the build batch.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrPoint struct {
	Position int
	cause    error
}

func (e *ErrPoint) Error() string {
	return fmt.Sprintf("point %d: %v", e.Position, e.cause)
}

func (e *ErrPoint) Unwrap() error { return e.cause }
