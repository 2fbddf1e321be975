package index

import (
	"iter"

	"github.com/hupe1980/zindex/geom"
	"github.com/hupe1980/zindex/morton"
)

// Entry is a point paired with the code of its grid cell.
type Entry struct {
	Code  uint64
	ID    uint32
	Point geom.Point
}

// Match is a candidate that passed the distance filter.
type Match struct {
	ID       uint32
	Point    geom.Point
	Distance float64
}

// Index is an immutable sequence of entries sorted ascending by code.
// Entries with equal codes are ordered by ID.
type Index struct {
	enc    *morton.Encoder
	dim    int
	codes  []uint64
	ids    []uint32
	coords []float64 // coords[i*dim : (i+1)*dim] is the point of entry i
}

// Empty returns an index without entries that queries through enc.
func Empty(enc *morton.Encoder) *Index {
	return &Index{enc: enc, dim: enc.Dimensions()}
}

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.codes) }

// Dimensions returns D.
func (x *Index) Dimensions() int { return x.dim }

// Encoder returns the encoder used for build and query.
func (x *Index) Encoder() *morton.Encoder { return x.enc }

// Code returns the code of entry i.
func (x *Index) Code(i int) uint64 { return x.codes[i] }

// Entry returns entry i. The point is a view into the index and must not be
// modified.
func (x *Index) Entry(i int) Entry {
	return Entry{Code: x.codes[i], ID: x.ids[i], Point: x.point(i)}
}

// All iterates over every entry in code order. Points are views, as with Entry.
func (x *Index) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i := range x.codes {
			if !yield(i, x.Entry(i)) {
				return
			}
		}
	}
}

func (x *Index) point(i int) geom.Point {
	lo, hi := i*x.dim, (i+1)*x.dim
	return geom.Point(x.coords[lo:hi:hi])
}
