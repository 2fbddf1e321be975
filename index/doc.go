// Package index provides the immutable Morton-ordered point index.
//
// Build encodes every point with a morton.Encoder, sorts the (code, point)
// pairs by code and freezes the result. Points that share a grid cell end up
// in one contiguous run, so a query costs one binary search plus a scan over
// the query's own cell:
//
//	idx, err := index.Build(ctx, enc, points)
//	matches, err := idx.Query(geom.Point{0.4, 0.4}, 0.2)
//
// # Same-cell Lookup
//
// Query only inspects points in the query's cell. A point just across a cell
// boundary is never returned, even when it is closer than every point in the
// query's own cell. This is not a nearest-neighbor search.
//
// # Storage Layout
//
// Entries are stored column-wise: one slice of codes, one of IDs and one
// flat slice of coordinates with stride D. An entry's ID is the position of
// its point in the slice passed to Build.
//
// # Thread Safety
//
// An Index is never modified after Build returns. Any number of goroutines
// may query it concurrently without locking. Points returned by Entry, Query
// and Candidates are views into the index and must not be modified.
package index
