// Package geom defines the coordinate model shared by the encoder and the index.
//
// A Point is an ordered sequence of float64 coordinates; its dimensionality is
// its length. A BoundingBox is an axis-aligned box used to normalize points
// into grid cells:
//
//	box, err := geom.NewBoundingBox(geom.Point{-1, -1}, geom.Point{1, 1})
//	if err != nil {
//	    return err
//	}
//	box.Contains(geom.Point{0.5, -0.5}) // true
//
// Boxes are half-open: a coordinate equal to Max on some axis lies outside.
// Both types are treated as immutable once handed to an encoder.
package geom
