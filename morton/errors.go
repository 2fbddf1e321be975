package morton

import "fmt"

// ErrInvalidOrder is returned by NewEncoder when the per-axis resolution does
// not fit the code width.
type ErrInvalidOrder struct {
	Order      int
	Dimensions int
	Width      Width
}

func (e *ErrInvalidOrder) Error() string {
	if e.Order < 1 {
		return fmt.Sprintf("invalid order %d: must be at least 1", e.Order)
	}
	return fmt.Sprintf("invalid order %d: %d dimensions need %d bits, code width is %d",
		e.Order, e.Dimensions, e.Order*e.Dimensions, e.Width)
}

// ErrOutOfBounds is returned under BoundsReject when a coordinate falls
// outside the half-open box range.
type ErrOutOfBounds struct {
	Axis  int
	Value float64
	Min   float64
	Max   float64
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("out of bounds: axis %d value %g not in [%g, %g)", e.Axis, e.Value, e.Min, e.Max)
}

// ErrInvalidWidth is returned for code widths other than 32 or 64.
type ErrInvalidWidth struct {
	Width Width
}

func (e *ErrInvalidWidth) Error() string {
	return fmt.Sprintf("invalid code width %d: must be 32 or 64", e.Width)
}

// ErrInvalidKernel is returned when a forced kernel cannot serve the
// encoder's dimensionality.
type ErrInvalidKernel struct {
	Kernel     Kernel
	Dimensions int
}

func (e *ErrInvalidKernel) Error() string {
	return fmt.Sprintf("kernel %s does not support %d dimensions", e.Kernel, e.Dimensions)
}
