// Command zbench inserts random points into a Morton grid index and measures
// same-cell query throughput.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/pbnjay/memory"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/zindex"
	"github.com/hupe1980/zindex/geom"
	"github.com/hupe1980/zindex/index"
	"github.com/hupe1980/zindex/internal/platform"
	"github.com/hupe1980/zindex/morton"
	"github.com/hupe1980/zindex/resource"
	"github.com/hupe1980/zindex/testutil"
)

const batchSize = 4096

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var (
	num     = flag.Int("n", 100000, "number of random points to insert")
	queries = flag.Int("queries", 10000000, "number of random query points")
	dims    = flag.Int("dims", 3, "dimensions")
	order   = flag.Int("order", 10, "bits of resolution per axis")
	eps     = flag.Float64("eps", 0.001, "match distance threshold")
	width   = flag.Int("width", 32, "code width in bits, 32 or 64")
	seed    = flag.Int64("seed", 1, "random seed")
	workers = flag.Int("workers", 0, "query and build goroutines, 0=GOMAXPROCS")
	qps     = flag.Float64("qps", 0, "query admission rate limit, 0=unlimited")
	mem     = flag.Int64("mem", int64((totalMiBs*7)/10), "MiB of memory available to the index, default=0.7x physical memory")

	recall    = flag.Int("recall", 100, "number of queries to compare against an exhaustive scan, 0=off")
	recallEps = flag.Float64("recallEps", 0.05, "distance threshold for the recall check")

	logLevel = flag.String("log", "warn", "log level: debug, info, warn or error")
	logJSON  = flag.Bool("json", false, "log as JSON")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid -log: %w", err)
	}
	logger := zindex.NewTextLogger(level)
	if *logJSON {
		logger = zindex.NewJSONLogger(level)
	}

	fmt.Printf("platform: %s\n", platform.Detect())
	fmt.Printf("physical memory: %d MiB, index budget: %d MiB\n", totalMiBs, *mem)

	codeWidth, err := parseWidth(*width)
	if err != nil {
		return err
	}

	box, err := geom.Cube(*dims, -1, 1)
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes: *mem * 1024 * 1024,
		QueriesPerSec:    *qps,
	})
	metrics := &zindex.BasicMetricsCollector{}

	grid, err := zindex.New(*dims, *order, box,
		zindex.WithCodeWidth(codeWidth),
		zindex.WithBuildWorkers(*workers),
		zindex.WithLogger(logger),
		zindex.WithMetricsCollector(metrics),
		zindex.WithResourceController(rc),
	)
	if err != nil {
		return err
	}
	fmt.Printf("kernel: %s, code width: %d\n", grid.Encoder().Kernel(), *width)

	points := testutil.NewRNG(*seed).UniformPoints(*num, box)

	start := time.Now()
	if err := grid.Load(ctx, points); err != nil {
		return err
	}
	fmt.Printf("insertion of %d random points took %d milliseconds.\n", grid.Snapshot().Len(), time.Since(start).Milliseconds())

	st := grid.Stats()
	fmt.Printf("%d cells occupied, max %d points per cell, mean %.2f.\n", st.Cells, st.MaxOccupancy, st.MeanOccupancy)

	found, matched, latencies, elapsed, err := search(ctx, grid, box)
	if err != nil {
		return err
	}
	fmt.Printf("searching for %d random points took %d milliseconds.\n", *queries, elapsed.Milliseconds())
	fmt.Printf("%d voxels found, %d close matching points.\n", found, matched)

	if len(latencies) > 1 {
		mean, std := stat.MeanStdDev(latencies, nil)
		fmt.Printf("query latency: %.1f ns mean, %.1f ns stddev over %d batches.\n", mean, std, len(latencies))
	}

	ms := metrics.GetStats()
	fmt.Printf("metrics: %d builds, %d queries, %d errors.\n", ms.BuildCount, ms.QueryCount, ms.BuildErrors+ms.QueryErrors)

	if *recall > 0 && len(points) > 0 {
		r, err := measureRecall(grid.Snapshot(), points, box)
		if err != nil {
			return err
		}
		fmt.Printf("same-cell recall at eps=%g over %d queries: %.4f\n", *recallEps, *recall, r)
	}

	return nil
}

// parseWidth validates the -width flag before narrowing it to morton.Width.
func parseWidth(bits int) (morton.Width, error) {
	switch bits {
	case int(morton.Width32):
		return morton.Width32, nil
	case int(morton.Width64):
		return morton.Width64, nil
	default:
		return 0, fmt.Errorf("invalid -width %d: must be 32 or 64", bits)
	}
}

// search runs the query benchmark split across workers. Each worker owns its
// random source and reports the mean latency of every batch of queries.
func search(ctx context.Context, grid *zindex.Grid, box geom.BoundingBox) (found, matched int, latencies []float64, elapsed time.Duration, err error) {
	n := *workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}

	type result struct {
		found, matched int
		latencies      []float64
	}
	results := make([]result, n)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < n; w++ {
		share := *queries / n
		if w < *queries%n {
			share++
		}
		g.Go(func() error {
			rng := testutil.NewFastRNG(uint32(*seed) + uint32(w))
			q := make(geom.Point, *dims)
			res := &results[w]

			for done := 0; done < share; {
				batch := min(batchSize, share-done)
				t0 := time.Now()
				for i := 0; i < batch; i++ {
					f, m, err := grid.Count(gctx, rng.PointIn(box, q), *eps)
					if err != nil {
						return err
					}
					res.found += f
					res.matched += m
				}
				res.latencies = append(res.latencies, float64(time.Since(t0).Nanoseconds())/float64(batch))
				done += batch
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, nil, 0, err
	}
	elapsed = time.Since(start)

	for _, r := range results {
		found += r.found
		matched += r.matched
		latencies = append(latencies, r.latencies...)
	}
	return found, matched, latencies, elapsed, nil
}

// measureRecall compares same-cell matches with an exhaustive scan. Queries
// are drawn near stored points so that the exhaustive result is non-empty.
func measureRecall(snap *index.Index, points []geom.Point, box geom.BoundingBox) (float64, error) {
	rng := testutil.NewRNG(*seed + 1)

	var total float64
	for i := 0; i < *recall; i++ {
		p := points[rng.Intn(len(points))]
		q := jitter(rng, p, *recallEps/2)
		if !box.Contains(q) {
			q = p
		}

		matches, err := snap.Query(q, *recallEps)
		if err != nil {
			return 0, err
		}
		got := make([]uint32, len(matches))
		for j, m := range matches {
			got[j] = m.ID
		}
		total += testutil.ComputeRecall(testutil.ExactWithin(points, q, *recallEps), got)
	}
	return total / float64(*recall), nil
}

func jitter(rng *testutil.RNG, p geom.Point, r float64) geom.Point {
	q := p.Clone()
	for i := range q {
		q[i] += (rng.Float64()*2 - 1) * r
	}
	return q
}
