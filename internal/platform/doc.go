// Package platform reports CPU features relevant to encoding and distance
// throughput. It is informational: every code path in zindex is pure Go and
// produces identical results on every platform.
package platform
