package zindex

import (
	"log/slog"

	"github.com/hupe1980/zindex/morton"
	"github.com/hupe1980/zindex/resource"
)

type options struct {
	width              morton.Width
	bounds             morton.BoundsPolicy
	kernel             morton.Kernel
	buildWorkers       int
	metricsCollector   MetricsCollector
	logger             *Logger
	resourceController *resource.Controller
}

// Option configures Grid construction.
type Option func(*options)

// WithCodeWidth limits codes to 32 or 64 bits. order*dimensions must fit.
// Default: morton.Width64.
func WithCodeWidth(w morton.Width) Option {
	return func(o *options) {
		o.width = w
	}
}

// WithBoundsPolicy selects how coordinates outside the box are handled, for
// build and query points alike. Default: morton.BoundsReject.
func WithBoundsPolicy(p morton.BoundsPolicy) Option {
	return func(o *options) {
		o.bounds = p
	}
}

// WithKernel forces a bit-interleave kernel. Default: morton.KernelAuto.
func WithKernel(k morton.Kernel) Option {
	return func(o *options) {
		o.kernel = k
	}
}

// WithBuildWorkers sets the number of goroutines encoding points during a build.
// If n <= 0, GOMAXPROCS is used.
func WithBuildWorkers(n int) Option {
	return func(o *options) {
		o.buildWorkers = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &zindex.BasicMetricsCollector{}
//	grid, _ := zindex.New(3, 10, box, zindex.WithMetricsCollector(metrics))
//	// ... use grid ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := zindex.NewJSONLogger(slog.LevelInfo)
//	grid, _ := zindex.New(3, 10, box, zindex.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController applies memory, build concurrency and query rate
// limits. A nil controller imposes no limits.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resourceController = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		width:            morton.DefaultOptions.Width,
		bounds:           morton.DefaultOptions.Bounds,
		kernel:           morton.DefaultOptions.Kernel,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
