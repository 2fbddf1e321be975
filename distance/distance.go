// Package distance provides public API for point distance calculations.
package distance

import (
	"gonum.org/v1/gonum/floats"

	"github.com/hupe1980/zindex/geom"
)

// Euclidean returns the L2 norm of a-b.
// It fails with *geom.ErrDimensionMismatch if the lengths differ.
func Euclidean(a, b geom.Point) (float64, error) {
	if len(a) != len(b) {
		return 0, &geom.ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}
	return floats.Distance(a, b, 2), nil
}

// Within reports whether a and b are strictly closer than eps.
func Within(a, b geom.Point, eps float64) (bool, error) {
	d, err := Euclidean(a, b)
	if err != nil {
		return false, err
	}
	return d < eps, nil
}
