// Package morton maps D-dimensional points to Z-order (Morton) codes.
//
// An Encoder normalizes a point against a bounding box, quantizes every axis
// to an order-bit grid coordinate and interleaves the grid coordinates so that
// bit j of axis i lands at bit j*D+i of the code. Points in the same grid cell
// always share a code, and distinct cells never do.
//
//	box, _ := geom.Cube(3, -1, 1)
//	enc, err := morton.NewEncoder(box, 10)
//	if err != nil {
//	    return err
//	}
//	code, err := enc.Encode(geom.Point{0.1, -0.2, 0.3})
//
// # Bounds
//
// Coordinates outside [Min, Max) would alias into unrelated cells. The encoder
// either rejects them with *ErrOutOfBounds (BoundsReject, the default) or
// clamps the grid coordinate to the nearest edge cell (BoundsClamp). NaN is
// rejected under both policies.
//
// # Width
//
// Codes are returned as uint64. Width32 limits the bit budget to 32 bits for
// callers that store codes in 32-bit keys; order*D must fit the configured
// width and is checked once by NewEncoder.
package morton
