package geom

import (
	"math"
	"slices"
)

// Point is a D-dimensional coordinate.
type Point []float64

// Dim returns the dimensionality of p.
func (p Point) Dim() int { return len(p) }

// Clone returns a copy of p that shares no memory with it.
func (p Point) Clone() Point { return slices.Clone(p) }

// BoundingBox is an axis-aligned, half-open box [Min, Max).
type BoundingBox struct {
	Min Point
	Max Point
}

// NewBoundingBox copies min and max into a validated box.
// Every axis must be finite with Max[i] > Min[i], and Max[i]-Min[i] must not
// overflow.
func NewBoundingBox(min, max Point) (BoundingBox, error) {
	if len(min) != len(max) {
		return BoundingBox{}, &ErrDimensionMismatch{Expected: len(min), Actual: len(max)}
	}
	if len(min) == 0 {
		return BoundingBox{}, ErrEmptyBox
	}
	for i := range min {
		lo, hi := min[i], max[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || hi <= lo || math.IsInf(hi-lo, 0) {
			return BoundingBox{}, &ErrInvalidBox{Axis: i, Min: lo, Max: hi}
		}
	}
	return BoundingBox{Min: min.Clone(), Max: max.Clone()}, nil
}

// Cube returns the box [lo, hi)^dims.
func Cube(dims int, lo, hi float64) (BoundingBox, error) {
	min := make(Point, dims)
	max := make(Point, dims)
	for i := range dims {
		min[i] = lo
		max[i] = hi
	}
	return NewBoundingBox(min, max)
}

// Dim returns the dimensionality of the box.
func (b BoundingBox) Dim() int { return len(b.Min) }

// Span returns the extent of the box along axis i.
func (b BoundingBox) Span(i int) float64 { return b.Max[i] - b.Min[i] }

// Contains reports whether p lies inside the box.
// Points of the wrong dimensionality are never contained.
func (b BoundingBox) Contains(p Point) bool {
	if len(p) != len(b.Min) {
		return false
	}
	for i, v := range p {
		if !(v >= b.Min[i] && v < b.Max[i]) {
			return false
		}
	}
	return true
}

// Clamp returns a copy of p with every coordinate limited to [Min, Max].
func (b BoundingBox) Clamp(p Point) Point {
	out := p.Clone()
	for i := range out {
		out[i] = min(max(out[i], b.Min[i]), b.Max[i])
	}
	return out
}

// CheckDim returns an error if p does not match the box dimensionality.
func (b BoundingBox) CheckDim(p Point) error {
	if len(p) != len(b.Min) {
		return &ErrDimensionMismatch{Expected: len(b.Min), Actual: len(p)}
	}
	return nil
}
