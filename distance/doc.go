// Package distance provides the Euclidean distance used to confirm matches.
//
// The index only uses distance as a final filter over candidates that
// already share a grid cell with the query:
//
//	d, err := distance.Euclidean(a, b)
//	ok, err := distance.Within(a, b, 0.001) // d < 0.001
package distance
