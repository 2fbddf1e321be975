package zindex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/zindex/geom"
	"github.com/hupe1980/zindex/index"
	"github.com/hupe1980/zindex/morton"
	"github.com/hupe1980/zindex/resource"
)

var (
	// ErrInvalidEpsilon is returned when epsilon is negative or NaN.
	ErrInvalidEpsilon = errors.New("invalid epsilon")

	// ErrTooManyPoints is returned when a build batch exceeds the 32-bit ID space.
	ErrTooManyPoints = errors.New("too many points")

	// ErrMemoryLimitExceeded is returned when a build would exceed the
	// resource controller's memory budget.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// ConfigurationError indicates a grid configuration that cannot be used:
// order*dimensions exceeds the code width, a box axis has no positive span,
// or the box does not match the configured dimensionality.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigurationError struct {
	Reason string
	cause  error
}

func (e *ConfigurationError) Error() string {
	if e.cause == nil {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.cause)
}

func (e *ConfigurationError) Unwrap() error { return e.cause }

// ErrDimensionMismatch indicates a point/box dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrOutOfBounds indicates a coordinate outside the bounding box under the
// reject policy.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrOutOfBounds struct {
	Axis  int
	Value float64
	cause error
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("out of bounds: axis %d value %g", e.Axis, e.Value)
}

func (e *ErrOutOfBounds) Unwrap() error { return e.cause }

// translateConfigError maps encoder construction failures to ConfigurationError.
func translateConfigError(err error) error {
	if err == nil {
		return nil
	}

	var io *morton.ErrInvalidOrder
	if errors.As(err, &io) {
		return &ConfigurationError{Reason: "order does not fit code width", cause: err}
	}
	var iw *morton.ErrInvalidWidth
	if errors.As(err, &iw) {
		return &ConfigurationError{Reason: "unsupported code width", cause: err}
	}
	var ik *morton.ErrInvalidKernel
	if errors.As(err, &ik) {
		return &ConfigurationError{Reason: "unsupported kernel", cause: err}
	}
	var ib *geom.ErrInvalidBox
	if errors.As(err, &ib) || errors.Is(err, geom.ErrEmptyBox) {
		return &ConfigurationError{Reason: "invalid bounding box", cause: err}
	}
	var dm *geom.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ConfigurationError{Reason: "bounding box dimensionality", cause: err}
	}

	return err
}

// translateError maps build and query failures to the public error contract.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *geom.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var oob *morton.ErrOutOfBounds
	if errors.As(err, &oob) {
		return &ErrOutOfBounds{Axis: oob.Axis, Value: oob.Value, cause: err}
	}
	if errors.Is(err, index.ErrInvalidEpsilon) {
		return fmt.Errorf("%w: %w", ErrInvalidEpsilon, err)
	}
	if errors.Is(err, index.ErrTooManyPoints) {
		return fmt.Errorf("%w: %w", ErrTooManyPoints, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimitExceeded, err)
	}

	return err
}
