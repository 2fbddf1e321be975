package index

import (
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/zindex/distance"
	"github.com/hupe1980/zindex/geom"
)

// LowerBound returns the position of the first entry whose code is not less
// than code, or Len() if there is none.
func (x *Index) LowerBound(code uint64) int {
	pos, _ := slices.BinarySearch(x.codes, code)
	return pos
}

// Cell returns the half-open range [lo, hi) of entries whose code equals code.
// The range is empty when the cell holds no points.
func (x *Index) Cell(code uint64) (lo, hi int) {
	lo = x.LowerBound(code)
	hi = lo
	for hi < len(x.codes) && x.codes[hi] == code {
		hi++
	}
	return lo, hi
}

// Candidates returns every entry in the grid cell of q. The points are copies.
func (x *Index) Candidates(q geom.Point) ([]Entry, error) {
	code, err := x.enc.Encode(q)
	if err != nil {
		return nil, err
	}
	lo, hi := x.Cell(code)
	out := make([]Entry, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, Entry{Code: x.codes[i], ID: x.ids[i], Point: x.point(i).Clone()})
	}
	return out, nil
}

// Query returns the entries in the grid cell of q whose distance to q is
// strictly less than eps, in index order. The points are copies.
//
// Points in neighboring cells are never considered.
func (x *Index) Query(q geom.Point, eps float64) ([]Match, error) {
	return x.QueryFiltered(q, eps, nil)
}

// QueryFiltered is Query restricted to entries whose ID is in allow.
// A nil allow admits every entry.
func (x *Index) QueryFiltered(q geom.Point, eps float64, allow *roaring.Bitmap) ([]Match, error) {
	var matches []Match
	err := x.scan(q, eps, func(i int, d float64, ok bool) {
		if !ok {
			return
		}
		if allow != nil && !allow.Contains(x.ids[i]) {
			return
		}
		matches = append(matches, Match{ID: x.ids[i], Point: x.point(i).Clone(), Distance: d})
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Count returns how many entries share q's cell and how many of those are
// strictly closer than eps.
func (x *Index) Count(q geom.Point, eps float64) (found, matched int, err error) {
	err = x.scan(q, eps, func(_ int, _ float64, ok bool) {
		found++
		if ok {
			matched++
		}
	})
	if err != nil {
		return 0, 0, err
	}
	return found, matched, nil
}

// MatchIDs returns the IDs of all matches as a bitmap.
func (x *Index) MatchIDs(q geom.Point, eps float64) (*roaring.Bitmap, error) {
	ids := roaring.New()
	err := x.scan(q, eps, func(i int, _ float64, ok bool) {
		if ok {
			ids.Add(x.ids[i])
		}
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// scan visits every entry of q's cell with its distance to q.
func (x *Index) scan(q geom.Point, eps float64, visit func(i int, d float64, ok bool)) error {
	if math.IsNaN(eps) || eps < 0 {
		return ErrInvalidEpsilon
	}
	code, err := x.enc.Encode(q)
	if err != nil {
		return err
	}
	for i := x.LowerBound(code); i < len(x.codes) && x.codes[i] == code; i++ {
		d, err := distance.Euclidean(x.point(i), q)
		if err != nil {
			return err
		}
		visit(i, d, d < eps)
	}
	return nil
}
