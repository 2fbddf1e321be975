package index

import (
	"cmp"
	"context"
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/zindex/geom"
	"github.com/hupe1980/zindex/morton"
)

// Options contains configuration options for Build.
type Options struct {
	// Workers is the number of goroutines encoding points.
	// If <= 0, runtime.GOMAXPROCS(0) is used.
	Workers int

	// ChunkSize is the number of points encoded per task.
	// If <= 0, DefaultOptions.ChunkSize is used.
	ChunkSize int
}

// DefaultOptions contains the default configuration options for Build.
var DefaultOptions = Options{
	Workers:   0,
	ChunkSize: 4096,
}

type sortKey struct {
	code uint64
	id   uint32
}

func compareKeys(a, b sortKey) int {
	if c := cmp.Compare(a.code, b.code); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// Build encodes points, sorts them by code and returns the frozen index.
//
// Points are copied; the caller keeps ownership of the input slice. If any
// point fails to encode, the failure with the lowest position is returned as
// *ErrPoint wrapping the encoder's error. ctx is checked by the encoding
// workers and once more between encoding and sorting.
func Build(ctx context.Context, enc *morton.Encoder, points []geom.Point, optFns ...func(o *Options)) (*Index, error) {
	if enc == nil {
		return nil, ErrNilEncoder
	}
	if uint64(len(points)) > math.MaxUint32 {
		return nil, ErrTooManyPoints
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOptions.ChunkSize
	}

	keys := make([]sortKey, len(points))
	failures := make([]error, (len(points)+opts.ChunkSize-1)/opts.ChunkSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for start := 0; start < len(points); start += opts.ChunkSize {
		end := min(start+opts.ChunkSize, len(points))
		chunk := start / opts.ChunkSize
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				code, err := enc.Encode(points[i])
				if err != nil {
					// Chunks keep going so that the lowest failing position wins.
					failures[chunk] = &ErrPoint{Position: i, cause: err}
					return nil
				}
				keys[i] = sortKey{code: code, id: uint32(i)}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}

	// Cancellation point between populate and sort.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(keys, compareKeys)

	dim := enc.Dimensions()
	x := &Index{
		enc:    enc,
		dim:    dim,
		codes:  make([]uint64, len(keys)),
		ids:    make([]uint32, len(keys)),
		coords: make([]float64, len(keys)*dim),
	}
	for i, k := range keys {
		x.codes[i] = k.code
		x.ids[i] = k.id
		copy(x.coords[i*dim:(i+1)*dim], points[k.id])
	}

	return x, nil
}

// EstimateBytes returns the approximate heap footprint of an index over n
// points of the given dimensionality, including the transient sort keys.
func EstimateBytes(n, dims int) int64 {
	const perEntry = 8 + 4 + 16 // code, id, sort key
	return int64(n) * int64(perEntry+8*dims)
}
