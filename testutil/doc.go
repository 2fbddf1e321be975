// Package testutil provides testing utilities for zindex.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random points, computing ground truth
// by brute force, and measuring how much of the exhaustive answer the
// same-cell lookup recovers.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(100000, box)
//
//	fast := testutil.NewFastRNG(seed) // one per goroutine
//	q := fast.PointIn(box, make(geom.Point, box.Dim()))
//
// # Ground Truth
//
//	ids := testutil.ExactWithin(points, query, eps)        // every point
//	ids := testutil.SameCellWithin(enc, points, query, eps) // query's cell only
//
// # Recall
//
//	recall := testutil.ComputeRecall(exact, approximate)
package testutil
