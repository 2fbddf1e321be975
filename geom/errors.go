package geom

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when a point's length differs from the
// dimensionality it is used with.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidBox is returned when a bounding box axis has a non-positive or
// non-finite span.
type ErrInvalidBox struct {
	Axis int
	Min  float64
	Max  float64
}

func (e *ErrInvalidBox) Error() string {
	return fmt.Sprintf("invalid bounding box: axis %d has min %g, max %g", e.Axis, e.Min, e.Max)
}

// ErrEmptyBox is returned when a bounding box has zero dimensions.
var ErrEmptyBox = errors.New("invalid bounding box: zero dimensions")
