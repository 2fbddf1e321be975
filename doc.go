// Package zindex provides a Morton-ordered spatial index for D-dimensional points.
//
// Points are mapped to a Z-order (Morton) code by quantizing every axis of a
// fixed bounding box into 2^order cells and interleaving the per-axis cell
// coordinates. The index stores (code, point) pairs sorted by code, so all
// points in one grid cell form a contiguous run found by a single binary
// search.
//
// # Quick Start
//
//	box, _ := geom.Cube(3, -1, 1)
//	grid, err := zindex.New(3, 10, box)
//	if err != nil {
//	    return err
//	}
//
//	if err := grid.Load(ctx, points); err != nil {
//	    return err
//	}
//
//	matches, err := grid.Query(ctx, geom.Point{0.1, 0.2, 0.3}, 0.001)
//	for _, m := range matches {
//	    fmt.Println(m.ID, m.Distance)
//	}
//
// # Same-cell Semantics
//
// A query only inspects the points that share its grid cell and reports
// those strictly closer than epsilon. Points in adjacent cells are never
// considered, however close they are. Choose the order so that cells are
// large relative to epsilon if that matters for your data.
//
// # Bounds
//
// By default coordinates outside [Min, Max) are rejected with *ErrOutOfBounds,
// for build and query points alike. WithBoundsPolicy(morton.BoundsClamp)
// snaps them into the nearest edge cell instead.
//
// # Concurrency
//
// A built index is immutable and may be queried from any number of
// goroutines. Load builds a replacement and publishes it atomically;
// queries already running keep using the snapshot they started with.
package zindex
