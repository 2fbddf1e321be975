package zindex

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/zindex/geom"
	"github.com/hupe1980/zindex/index"
	"github.com/hupe1980/zindex/morton"
	"github.com/hupe1980/zindex/resource"
)

// Grid is a configured Morton grid holding the current index snapshot.
// All methods are safe for concurrent use.
type Grid struct {
	enc          *morton.Encoder
	buildWorkers int
	metrics      MetricsCollector
	logger       *Logger
	rc           *resource.Controller

	loadMu   sync.Mutex // serializes Load
	current  atomic.Pointer[index.Index]
	reserved int64 // bytes held for current; guarded by loadMu
}

// New configures a grid of 2^order cells per axis over box.
//
// It fails with *ConfigurationError when box does not have dims axes, when an
// axis has no positive span, or when order*dims exceeds the code width.
// The grid starts with an empty snapshot.
func New(dims, order int, box geom.BoundingBox, optFns ...Option) (*Grid, error) {
	o := applyOptions(optFns)
	logger := o.logger.WithDimension(dims).WithOrder(order)
	ctx := context.Background()

	if dims < 1 {
		err := &ConfigurationError{Reason: "dimensions must be at least 1"}
		logger.LogConfigure(ctx, "", err)
		return nil, err
	}
	if box.Dim() != dims {
		err := &ConfigurationError{
			Reason: "bounding box dimensionality",
			cause:  &geom.ErrDimensionMismatch{Expected: dims, Actual: box.Dim()},
		}
		logger.LogConfigure(ctx, "", err)
		return nil, err
	}

	enc, err := morton.NewEncoder(box, order, func(mo *morton.Options) {
		mo.Width = o.width
		mo.Bounds = o.bounds
		mo.Kernel = o.kernel
	})
	if err != nil {
		err = translateConfigError(err)
		logger.LogConfigure(ctx, "", err)
		return nil, err
	}

	g := &Grid{
		enc:          enc,
		buildWorkers: o.buildWorkers,
		metrics:      o.metricsCollector,
		logger:       logger,
		rc:           o.resourceController,
	}
	g.current.Store(index.Empty(enc))

	logger.LogConfigure(ctx, enc.Kernel().String(), nil)
	return g, nil
}

// Dimensions returns D.
func (g *Grid) Dimensions() int { return g.enc.Dimensions() }

// Order returns the number of bits per axis.
func (g *Grid) Order() int { return g.enc.Order() }

// Encoder returns the grid's encoder.
func (g *Grid) Encoder() *morton.Encoder { return g.enc }

// Encode returns the Morton code of the cell containing p.
func (g *Grid) Encode(p geom.Point) (uint64, error) {
	code, err := g.enc.Encode(p)
	return code, translateError(err)
}

// Build encodes and sorts points into a new immutable index without
// publishing it. The returned index is owned by the caller.
func (g *Grid) Build(ctx context.Context, points []geom.Point) (*index.Index, error) {
	bytes := index.EstimateBytes(len(points), g.enc.Dimensions())
	if err := g.rc.AcquireMemory(bytes); err != nil {
		err = translateError(err)
		g.metrics.RecordBuild(len(points), 0, err)
		g.logger.LogBuild(ctx, len(points), 0, err)
		return nil, err
	}
	defer g.rc.ReleaseMemory(bytes)

	return g.build(ctx, points)
}

// Load builds an index from points and publishes it as the current snapshot.
//
// Queries running during Load keep using the previous snapshot. Concurrent
// Load calls are serialized. On failure the previous snapshot stays in place.
func (g *Grid) Load(ctx context.Context, points []geom.Point) error {
	g.loadMu.Lock()
	defer g.loadMu.Unlock()

	bytes := index.EstimateBytes(len(points), g.enc.Dimensions())
	if err := g.rc.AcquireMemory(bytes); err != nil {
		err = translateError(err)
		g.logger.LogLoad(ctx, len(points), 0, err)
		return err
	}

	x, err := g.build(ctx, points)
	if err != nil {
		g.rc.ReleaseMemory(bytes)
		g.logger.LogLoad(ctx, len(points), 0, err)
		return err
	}

	g.current.Store(x)
	g.rc.ReleaseMemory(g.reserved)
	g.reserved = bytes

	g.logger.LogLoad(ctx, x.Len(), x.Stats().Cells, nil)
	return nil
}

func (g *Grid) build(ctx context.Context, points []geom.Point) (*index.Index, error) {
	start := time.Now()

	if err := g.rc.AcquireBuild(ctx); err != nil {
		g.metrics.RecordBuild(len(points), time.Since(start), err)
		g.logger.LogBuild(ctx, len(points), time.Since(start), err)
		return nil, err
	}
	defer g.rc.ReleaseBuild()

	x, err := index.Build(ctx, g.enc, points, func(o *index.Options) {
		o.Workers = g.buildWorkers
	})
	err = translateError(err)

	g.metrics.RecordBuild(len(points), time.Since(start), err)
	g.logger.LogBuild(ctx, len(points), time.Since(start), err)
	return x, err
}

// Snapshot returns the current index. It never returns nil.
func (g *Grid) Snapshot() *index.Index {
	return g.current.Load()
}

// Query returns the points of the current snapshot that share p's grid cell
// and lie strictly closer than eps.
func (g *Grid) Query(ctx context.Context, p geom.Point, eps float64) ([]index.Match, error) {
	return g.QueryFiltered(ctx, p, eps, nil)
}

// QueryFiltered is Query restricted to entry IDs in allow. A nil allow admits
// every entry.
func (g *Grid) QueryFiltered(ctx context.Context, p geom.Point, eps float64, allow *roaring.Bitmap) ([]index.Match, error) {
	start := time.Now()
	if err := g.rc.AcquireQuery(ctx); err != nil {
		err = translateError(err)
		g.metrics.RecordQuery(0, time.Since(start), err)
		g.logger.LogQuery(ctx, eps, 0, err)
		return nil, err
	}

	matches, err := g.current.Load().QueryFiltered(p, eps, allow)
	err = translateError(err)

	g.metrics.RecordQuery(len(matches), time.Since(start), err)
	g.logger.LogQuery(ctx, eps, len(matches), err)
	return matches, err
}

// Count returns how many points of the current snapshot share p's grid cell
// and how many of those lie strictly closer than eps.
func (g *Grid) Count(ctx context.Context, p geom.Point, eps float64) (found, matched int, err error) {
	start := time.Now()
	if err := g.rc.AcquireQuery(ctx); err != nil {
		err = translateError(err)
		g.metrics.RecordQuery(0, time.Since(start), err)
		g.logger.LogQuery(ctx, eps, 0, err)
		return 0, 0, err
	}

	found, matched, err = g.current.Load().Count(p, eps)
	err = translateError(err)

	g.metrics.RecordQuery(found, time.Since(start), err)
	g.logger.LogQuery(ctx, eps, matched, err)
	return found, matched, err
}

// Stats returns the cell occupancy of the current snapshot.
func (g *Grid) Stats() index.Stats {
	return g.current.Load().Stats()
}
