package morton

import (
	"math"

	"github.com/hupe1980/zindex/geom"
)

// Width is the number of bits available to a code.
type Width uint8

const (
	Width32 Width = 32
	Width64 Width = 64
)

// BoundsPolicy decides what happens to coordinates outside the box.
type BoundsPolicy uint8

const (
	// BoundsReject fails the encode with *ErrOutOfBounds.
	BoundsReject BoundsPolicy = iota
	// BoundsClamp snaps the grid coordinate to the nearest edge cell.
	BoundsClamp
)

// String returns the string representation of a BoundsPolicy.
func (p BoundsPolicy) String() string {
	switch p {
	case BoundsReject:
		return "reject"
	case BoundsClamp:
		return "clamp"
	default:
		return "unknown"
	}
}

// maxDims bounds the dimensionality: order >= 1 and order*D <= 64.
const maxDims = 64

// Options contains configuration options for an Encoder.
type Options struct {
	// Width is the code bit budget. Order*D must not exceed it.
	Width Width

	// Bounds selects the out-of-bounds policy for build and query points alike.
	Bounds BoundsPolicy

	// Kernel forces an interleave implementation. KernelAuto picks one.
	Kernel Kernel
}

// DefaultOptions contains the default configuration options for an Encoder.
var DefaultOptions = Options{
	Width:  Width64,
	Bounds: BoundsReject,
	Kernel: KernelAuto,
}

// Encoder computes Morton codes for points inside a fixed box and grid resolution.
// It is immutable and safe for concurrent use.
type Encoder struct {
	box      geom.BoundingBox
	dims     int
	order    int
	cells    float64 // 2^order
	maxVoxel uint64  // 2^order - 1
	kernel   Kernel
	opts     Options
}

// NewEncoder validates the configuration once and returns an Encoder.
//
// It fails with *geom.ErrInvalidBox or *geom.ErrDimensionMismatch for a bad box,
// *ErrInvalidWidth for an unsupported width, and *ErrInvalidOrder when
// order < 1 or order*D exceeds the width.
func NewEncoder(box geom.BoundingBox, order int, optFns ...func(o *Options)) (*Encoder, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	if opts.Width != Width32 && opts.Width != Width64 {
		return nil, &ErrInvalidWidth{Width: opts.Width}
	}

	validated, err := geom.NewBoundingBox(box.Min, box.Max)
	if err != nil {
		return nil, err
	}

	dims := validated.Dim()
	if order < 1 || order*dims > int(opts.Width) {
		return nil, &ErrInvalidOrder{Order: order, Dimensions: dims, Width: opts.Width}
	}

	kernel, err := selectKernel(opts.Kernel, dims)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		box:      validated,
		dims:     dims,
		order:    order,
		cells:    math.Ldexp(1, order),
		maxVoxel: ^uint64(0) >> (64 - order),
		kernel:   kernel,
		opts:     opts,
	}, nil
}

// Dimensions returns D.
func (e *Encoder) Dimensions() int { return e.dims }

// Order returns the number of bits per axis.
func (e *Encoder) Order() int { return e.order }

// Width returns the configured code width.
func (e *Encoder) Width() Width { return e.opts.Width }

// Bounds returns the out-of-bounds policy.
func (e *Encoder) Bounds() BoundsPolicy { return e.opts.Bounds }

// Kernel returns the interleave kernel in use.
func (e *Encoder) Kernel() Kernel { return e.kernel }

// MaxVoxel returns the largest grid coordinate on any axis.
func (e *Encoder) MaxVoxel() uint64 { return e.maxVoxel }

// Box returns a copy of the encoder's bounding box.
func (e *Encoder) Box() geom.BoundingBox {
	return geom.BoundingBox{Min: e.box.Min.Clone(), Max: e.box.Max.Clone()}
}

// Encode returns the Morton code of the cell containing p.
func (e *Encoder) Encode(p geom.Point) (uint64, error) {
	var buf [maxDims]uint64
	voxels := buf[:e.dims]
	if err := e.quantize(p, voxels); err != nil {
		return 0, err
	}
	return interleave(e.kernel, voxels, e.order), nil
}

// Voxels returns the per-axis grid coordinates of p.
func (e *Encoder) Voxels(p geom.Point) ([]uint64, error) {
	voxels := make([]uint64, e.dims)
	if err := e.quantize(p, voxels); err != nil {
		return nil, err
	}
	return voxels, nil
}

// Interleave builds a code from grid coordinates.
// Every coordinate must be at most MaxVoxel.
func (e *Encoder) Interleave(voxels []uint64) (uint64, error) {
	if len(voxels) != e.dims {
		return 0, &geom.ErrDimensionMismatch{Expected: e.dims, Actual: len(voxels)}
	}
	for i, v := range voxels {
		if v > e.maxVoxel {
			return 0, &ErrOutOfBounds{Axis: i, Value: float64(v), Min: 0, Max: e.cells}
		}
	}
	return interleave(e.kernel, voxels, e.order), nil
}

// Deinterleave returns the grid coordinates encoded in code.
func (e *Encoder) Deinterleave(code uint64) []uint64 {
	voxels := make([]uint64, e.dims)
	deinterleave(e.kernel, code, e.order, voxels)
	return voxels
}

// CellBox returns the region of space covered by the cell with the given code.
func (e *Encoder) CellBox(code uint64) geom.BoundingBox {
	voxels := e.Deinterleave(code)
	cell := geom.BoundingBox{Min: make(geom.Point, e.dims), Max: make(geom.Point, e.dims)}
	for i, v := range voxels {
		step := e.box.Span(i) / e.cells
		cell.Min[i] = e.box.Min[i] + float64(v)*step
		cell.Max[i] = cell.Min[i] + step
	}
	return cell
}

func (e *Encoder) quantize(p geom.Point, dst []uint64) error {
	if len(p) != e.dims {
		return &geom.ErrDimensionMismatch{Expected: e.dims, Actual: len(p)}
	}
	for i, v := range p {
		lo, hi := e.box.Min[i], e.box.Max[i]
		if !(v >= lo && v < hi) {
			if e.opts.Bounds == BoundsReject || math.IsNaN(v) {
				return &ErrOutOfBounds{Axis: i, Value: v, Min: lo, Max: hi}
			}
			if v < lo {
				dst[i] = 0
			} else {
				dst[i] = e.maxVoxel
			}
			continue
		}
		t := (v - lo) / (hi - lo)
		f := math.Floor(t * e.cells)
		if f >= e.cells {
			// t rounds up to 1 for values just below hi.
			dst[i] = e.maxVoxel
			continue
		}
		dst[i] = uint64(f)
	}
	return nil
}
