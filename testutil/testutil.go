package testutil

import (
	"math/rand"
	"slices"
	"sync"

	"github.com/valyala/fastrand"

	"github.com/hupe1980/zindex/distance"
	"github.com/hupe1980/zindex/geom"
	"github.com/hupe1980/zindex/morton"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// PointIn returns a point drawn uniformly from box.
func (r *RNG) PointIn(box geom.BoundingBox) geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := make(geom.Point, box.Dim())
	r.fillLocked(p, box)
	return p
}

// UniformPoints generates num points drawn uniformly from box.
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num int, box geom.BoundingBox) []geom.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	dims := box.Dim()
	data := make([]float64, num*dims)
	points := make([]geom.Point, num)

	for i := range num {
		p := geom.Point(data[i*dims : (i+1)*dims : (i+1)*dims])
		r.fillLocked(p, box)
		points[i] = p
	}

	return points
}

// ClusteredPoints generates num points around the given number of uniformly
// placed centers with Gaussian noise of the given spread, clamped into box.
// Useful for testing crowded cells. clusters < 1 is treated as 1.
func (r *RNG) ClusteredPoints(num, clusters int, spread float64, box geom.BoundingBox) []geom.Point {
	clusters = max(clusters, 1)
	centers := r.UniformPoints(clusters, box)

	r.mu.Lock()
	defer r.mu.Unlock()

	dims := box.Dim()
	data := make([]float64, num*dims)
	points := make([]geom.Point, num)

	for i := range num {
		center := centers[i%clusters]
		p := geom.Point(data[i*dims : (i+1)*dims : (i+1)*dims])
		for j := range dims {
			v := center[j] + r.rand.NormFloat64()*spread*box.Span(j)
			// Keep the half-open upper bound.
			p[j] = min(max(v, box.Min[j]), box.Max[j]-box.Span(j)*1e-9)
		}
		points[i] = p
	}

	return points
}

func (r *RNG) fillLocked(p geom.Point, box geom.BoundingBox) {
	for j := range p {
		p[j] = box.Min[j] + r.rand.Float64()*box.Span(j)
	}
}

// FastRNG is a cheap, non thread-safe generator for hot benchmark loops.
// Use one per goroutine.
type FastRNG struct {
	rng fastrand.RNG
}

// NewFastRNG creates a FastRNG with the specified seed.
func NewFastRNG(seed uint32) *FastRNG {
	f := &FastRNG{}
	f.rng.Seed(seed)
	return f
}

// Float64 returns a pseudo-random number in [0.0,1.0) with 53 bits of precision.
func (f *FastRNG) Float64() float64 {
	x := uint64(f.rng.Uint32())<<32 | uint64(f.rng.Uint32())
	return float64(x>>11) / (1 << 53)
}

// PointIn fills dst with a point drawn uniformly from box and returns it.
func (f *FastRNG) PointIn(box geom.BoundingBox, dst geom.Point) geom.Point {
	for j := range dst {
		dst[j] = box.Min[j] + f.Float64()*box.Span(j)
	}
	return dst
}

// ExactWithin returns the positions of all points strictly closer than eps
// to q, in ascending order.
func ExactWithin(points []geom.Point, q geom.Point, eps float64) []uint32 {
	var ids []uint32
	for i, p := range points {
		if ok, err := distance.Within(p, q, eps); err == nil && ok {
			ids = append(ids, uint32(i))
		}
	}
	return ids
}

// SameCell returns the positions of all points that share q's grid cell,
// in ascending order.
func SameCell(enc *morton.Encoder, points []geom.Point, q geom.Point) ([]uint32, error) {
	code, err := enc.Encode(q)
	if err != nil {
		return nil, err
	}
	var ids []uint32
	for i, p := range points {
		c, err := enc.Encode(p)
		if err != nil {
			return nil, err
		}
		if c == code {
			ids = append(ids, uint32(i))
		}
	}
	return ids, nil
}

// SameCellWithin is SameCell filtered by the strict distance threshold eps.
func SameCellWithin(enc *morton.Encoder, points []geom.Point, q geom.Point, eps float64) ([]uint32, error) {
	cell, err := SameCell(enc, points, q)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(cell, func(id uint32) bool {
		ok, err := distance.Within(points[id], q, eps)
		return err != nil || !ok
	}), nil
}

// ComputeRecall returns the fraction of groundTruth IDs present in approximate.
// Two empty sets have recall 1.
func ComputeRecall(groundTruth, approximate []uint32) float64 {
	if len(groundTruth) == 0 {
		return 1.0
	}

	found := make(map[uint32]struct{}, len(approximate))
	for _, id := range approximate {
		found[id] = struct{}{}
	}

	hits := 0
	for _, id := range groundTruth {
		if _, ok := found[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(groundTruth))
}
